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

// Package httpsession defines the HTTP session boundary treated as an
// external collaborator, plus one minimal net/http-backed default
// implementation. Callers embedding this module behind an FTP frontend
// may substitute a pooling or retrying client by satisfying Session
// directly.
package httpsession

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"strconv"
)

// Response is the streamable result of a Session.Do call.
type Response struct {
	Status int
	// Header is case-insensitive and must preserve "ETag".
	Header http.Header
	Body   io.ReadCloser
}

// Session is the external HTTP collaborator every S3 request goes through.
// Implementations must support concurrent calls.
type Session interface {
	// Do issues method against url with the given headers and body (nil,
	// an in-memory reader for small payloads, or a streaming reader for
	// multipart part uploads),
	// verifying the server certificate iff verifyCerts is true.
	Do(ctx context.Context, method, url string, verifyCerts bool, headers map[string]string, body io.Reader) (*Response, error)
}

type stdlibSession struct {
	insecure *http.Client
	secure   *http.Client
}

// NewStdlib wraps base (or http.DefaultClient if nil) as a Session. Two
// derived clients are kept so TLS verification can be toggled per bucket
// descriptor without mutating a shared client's Transport under
// concurrent use.
func NewStdlib(base *http.Client) Session {
	if base == nil {
		base = http.DefaultClient
	}

	secure := *base
	insecureTransport := &http.Transport{}
	if rt, ok := base.Transport.(*http.Transport); ok {
		insecureTransport = rt.Clone()
	}
	insecureTransport.TLSClientConfig = insecureTransport.TLSClientConfig.Clone()
	if insecureTransport.TLSClientConfig == nil {
		insecureTransport.TLSClientConfig = &tls.Config{}
	}
	insecureTransport.TLSClientConfig.InsecureSkipVerify = true
	insecure := *base
	insecure.Transport = insecureTransport

	return &stdlibSession{insecure: &insecure, secure: &secure}
}

func (s *stdlibSession) Do(ctx context.Context, method, url string, verifyCerts bool, headers map[string]string, body io.Reader) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	// net/http tracks the body length out of band from the Content-Length
	// header; a streaming multipart-upload body needs it set explicitly or
	// the request falls back to chunked transfer encoding.
	if v := req.Header.Get("Content-Length"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			req.ContentLength = n
			req.Header.Del("Content-Length")
		}
	}

	cli := s.secure
	if !verifyCerts {
		cli = s.insecure
	}

	resp, err := cli.Do(req)
	if err != nil {
		return nil, err
	}

	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: resp.Body}, nil
}
