/*
 *  MIT License
 *
 *  Copyright (c) 2020 Nicolas JUHEL
 *
 *  Permission is hereby granted, free of charge, to any person obtaining a copy
 *  of this software and associated documentation files (the "Software"), to deal
 *  in the Software without restriction, including without limitation the rights
 *  to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *  copies of the Software, and to permit persons to whom the Software is
 *  furnished to do so, subject to the following conditions:
 *
 *  The above copyright notice and this permission notice shall be included in all
 *  copies or substantial portions of the Software.
 *
 *  THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *  IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *  FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *  AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *  LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *  OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *  SOFTWARE.
 *
 */

package listing

import (
	"context"
	"strconv"

	"github.com/nabbar/s3pathio/s3client"
)

// Engine drives ListObjectsV2 pagination against one bucket.
type Engine struct {
	cli *s3client.Client
}

// New builds an Engine on top of cli.
func New(cli *s3client.Client) *Engine {
	return &Engine{cli: cli}
}

// ListKeys drives ListObjectsV2 with the given prefix and delimiter,
// following continuation tokens until exhausted.
func (e *Engine) ListKeys(ctx context.Context, keyPrefix, delimiter string) ([]Key, []Prefix, error) {
	var keys []Key
	var prefixes []Prefix

	query := map[string]string{
		"max-keys":  strconv.Itoa(PageSize),
		"list-type": "2",
		"delimiter": delimiter,
		"prefix":    keyPrefix,
	}

	for {
		resp, body, err := e.cli.RequestFull(ctx, "GET", "/", query, nil, nil)
		if err != nil {
			return nil, nil, err
		}
		if err := s3client.RaiseForStatus(resp, body); err != nil {
			return nil, nil, err
		}

		p, err := parsePage(body)
		if err != nil {
			return nil, nil, err
		}

		keys = append(keys, p.Keys...)
		prefixes = append(prefixes, p.Prefixes...)

		if p.ContinuationToken == "" {
			return keys, prefixes, nil
		}

		// S3 carries prefix/delimiter in the continuation token; they are
		// not resent.
		query = map[string]string{
			"max-keys":           strconv.Itoa(PageSize),
			"list-type":          "2",
			"continuation-token": p.ContinuationToken,
		}
	}
}

// ListDescendantKeys recursively enumerates everything under keyPrefix
// using an empty delimiter.
func (e *Engine) ListDescendantKeys(ctx context.Context, keyPrefix string) ([]Key, error) {
	keys, _, err := e.ListKeys(ctx, keyPrefix, "")
	return keys, err
}
