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

package s3client

import (
	"context"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/nabbar/s3pathio/httpsession"
	"github.com/nabbar/s3pathio/s3ioerr"
	"github.com/nabbar/s3pathio/sigv4"
)

// Request issues method against bucket-relative path with the given query
// and extra headers, signing with payloadHashHex as the x-amz-content-sha256
// value. body may be nil, a small in-memory reader, or a streaming reader
// for multipart part uploads. The caller is responsible for closing the
// returned response body and for calling RaiseForStatus.
func (c *Client) Request(ctx context.Context, method, path string, query map[string]string, extraHeaders map[string]string, body io.Reader, payloadHashHex string) (*httpsession.Response, error) {
	fullPath := "/" + c.bucket.Name + path

	creds, err := c.credentials(ctx)
	if err != nil {
		return nil, s3ioerr.New(s3ioerr.CodeTransport, "failed to obtain credentials", err)
	}

	preAuth := make(map[string]string, len(extraHeaders)+len(creds.PreAuthHeaders))
	for k, v := range extraHeaders {
		preAuth[k] = v
	}
	for k, v := range creds.PreAuthHeaders {
		preAuth[k] = v
	}

	signed := sigv4.Sign(sigv4.Request{
		AccessKeyID:     creds.AccessKeyID,
		SecretAccessKey: creds.SecretAccessKey,
		PreAuthHeaders:  preAuth,
		Region:          c.bucket.Region,
		Host:            c.bucket.Host,
		Method:          method,
		FullPath:        fullPath,
		Query:           query,
		PayloadHashHex:  payloadHashHex,
		Now:             time.Now(),
	})

	reqURL := "https://" + c.bucket.Host + canonicalPathForURL(fullPath)
	if qs := encodeQueryString(query); qs != "" {
		reqURL += "?" + qs
	}

	c.log.WithFields(logFields(method, fullPath)).Debug("issuing s3 request")

	resp, err := c.session.Do(ctx, method, reqURL, c.bucket.VerifyCerts, signed, body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, s3ioerr.New(s3ioerr.CodeCancelled, "request cancelled", err)
		}
		return nil, s3ioerr.New(s3ioerr.CodeTransport, "transport error", err)
	}

	return resp, nil
}

// RequestFull additionally buffers the full response body, for
// small-payload callers: listings, HEADs, and control-plane calls.
func (c *Client) RequestFull(ctx context.Context, method, path string, query map[string]string, extraHeaders map[string]string, body []byte) (*httpsession.Response, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = strings.NewReader(string(body))
	}

	resp, err := c.Request(ctx, method, path, query, extraHeaders, reader, sigv4.HashPayload(body))
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, s3ioerr.New(s3ioerr.CodeTransport, "failed reading response body", err)
	}

	return resp, data, nil
}

// RaiseForStatus classifies a non-2xx response as s3ioerr.CodeRemote.
func RaiseForStatus(resp *httpsession.Response, body []byte) error {
	if resp.Status >= 200 && resp.Status < 300 {
		return nil
	}
	return s3ioerr.Remote(resp.Status, body)
}

// canonicalPathForURL encodes fullPath with the exact routine the signer
// used to compute the canonical request, so the wire URL and the
// signature it carries never disagree on a byte.
func canonicalPathForURL(fullPath string) string {
	return sigv4.EncodePath(fullPath)
}

func encodeQueryString(query map[string]string) string {
	v := url.Values{}
	for k, val := range query {
		v.Set(k, val)
	}
	return v.Encode()
}

func logFields(method, path string) map[string]any {
	return map[string]any{"method": method, "path": path}
}
