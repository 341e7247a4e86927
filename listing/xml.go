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
	"encoding/xml"
	"time"

	"github.com/nabbar/s3pathio/s3ioerr"
)

// lastModifiedLayout matches S3's "%Y-%m-%dT%H:%M:%S.%fZ".
const lastModifiedLayout = "2006-01-02T15:04:05.999999999Z"

type listBucketResult struct {
	XMLName               xml.Name        `xml:"ListBucketResult"`
	Contents              []xmlContents   `xml:"Contents"`
	CommonPrefixes        []xmlCommonPfx  `xml:"CommonPrefixes"`
	NextContinuationToken string          `xml:"NextContinuationToken"`
}

type xmlContents struct {
	Key          string `xml:"Key"`
	LastModified string `xml:"LastModified"`
	Size         int64  `xml:"Size"`
}

type xmlCommonPfx struct {
	Prefix string `xml:"Prefix"`
}

// page is one parsed ListObjectsV2 response.
type page struct {
	Keys              []Key
	Prefixes          []Prefix
	ContinuationToken string
}

func parsePage(body []byte) (page, error) {
	var parsed listBucketResult
	if err := xml.Unmarshal(body, &parsed); err != nil {
		return page{}, s3ioerr.New(s3ioerr.CodeRemote, "failed to parse ListObjectsV2 response", err)
	}

	var p page
	for _, c := range parsed.Contents {
		t, err := time.Parse(lastModifiedLayout, c.LastModified)
		if err != nil {
			return page{}, s3ioerr.New(s3ioerr.CodeRemote, "failed to parse LastModified", err)
		}
		p.Keys = append(p.Keys, Key{
			Key:              c.Key,
			Size:             c.Size,
			LastModifiedUnix: t.Unix(),
		})
	}

	for _, cp := range parsed.CommonPrefixes {
		p.Prefixes = append(p.Prefixes, Prefix{Prefix: trimTrailingSlash(cp.Prefix)})
	}

	p.ContinuationToken = parsed.NextContinuationToken
	return p, nil
}

func trimTrailingSlash(s string) string {
	if len(s) > 0 && s[len(s)-1] == '/' {
		return s[:len(s)-1]
	}
	return s
}
