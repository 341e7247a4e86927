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

package pathio_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nabbar/s3pathio/httpsession"
)

// fakeSession is an in-memory S3-ish object store understanding HEAD, GET
// (including ListObjectsV2), PUT, DELETE and the multipart upload calls
// (POST ?uploads, PUT ?partNumber, POST ?uploadId) against one fixed
// bucket, just enough surface for exercising Facade without a network
// round trip. Uploaded parts are concatenated in arrival order.
type fakeSession struct {
	mu      sync.Mutex
	objects map[string][]byte
	uploads map[string][]byte
	deleted []string
}

func newFakeSession() *fakeSession {
	return &fakeSession{objects: map[string][]byte{}, uploads: map[string][]byte{}}
}

func (f *fakeSession) put(key string, body []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = body
}

func (f *fakeSession) keyFromPath(p string) string {
	return strings.TrimPrefix(strings.TrimPrefix(p, "/test-bucket"), "/")
}

func (f *fakeSession) Do(_ context.Context, method, rawURL string, _ bool, _ map[string]string, body io.Reader) (*httpsession.Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	key := f.keyFromPath(u.Path)
	q := u.Query()

	switch method {
	case "HEAD":
		f.mu.Lock()
		obj, ok := f.objects[key]
		f.mu.Unlock()
		if !ok {
			return &httpsession.Response{Status: 404, Header: http.Header{}, Body: io.NopCloser(strings.NewReader(""))}, nil
		}
		h := http.Header{}
		h.Set("Content-Length", strconv.Itoa(len(obj)))
		h.Set("Last-Modified", time.Unix(1700000000, 0).UTC().Format(http.TimeFormat))
		return &httpsession.Response{Status: 200, Header: h, Body: io.NopCloser(strings.NewReader(""))}, nil

	case "GET":
		if q.Get("list-type") == "2" {
			return f.listResponse(q.Get("prefix"), q.Get("delimiter")), nil
		}
		f.mu.Lock()
		obj, ok := f.objects[key]
		f.mu.Unlock()
		if !ok {
			return &httpsession.Response{Status: 404, Header: http.Header{}, Body: io.NopCloser(strings.NewReader(""))}, nil
		}
		return &httpsession.Response{Status: 200, Header: http.Header{}, Body: io.NopCloser(bytes.NewReader(obj))}, nil

	case "PUT":
		var data []byte
		if body != nil {
			data, err = io.ReadAll(body)
			if err != nil {
				return nil, err
			}
		}
		if q.Has("partNumber") {
			f.mu.Lock()
			f.uploads[key] = append(f.uploads[key], data...)
			f.mu.Unlock()
			h := http.Header{}
			h.Set("ETag", `"etag-`+q.Get("partNumber")+`"`)
			return &httpsession.Response{Status: 200, Header: h, Body: io.NopCloser(strings.NewReader(""))}, nil
		}
		f.put(key, data)
		return &httpsession.Response{Status: 200, Header: http.Header{}, Body: io.NopCloser(strings.NewReader(""))}, nil

	case "POST":
		if q.Has("uploads") {
			xmlBody := "<InitiateMultipartUploadResult><UploadId>test-upload-id</UploadId></InitiateMultipartUploadResult>"
			return &httpsession.Response{Status: 200, Header: http.Header{}, Body: io.NopCloser(strings.NewReader(xmlBody))}, nil
		}
		f.mu.Lock()
		data := f.uploads[key]
		delete(f.uploads, key)
		f.mu.Unlock()
		f.put(key, data)
		return &httpsession.Response{Status: 200, Header: http.Header{}, Body: io.NopCloser(strings.NewReader(""))}, nil

	case "DELETE":
		f.mu.Lock()
		delete(f.objects, key)
		f.deleted = append(f.deleted, key)
		f.mu.Unlock()
		return &httpsession.Response{Status: 204, Header: http.Header{}, Body: io.NopCloser(strings.NewReader(""))}, nil

	default:
		return nil, fmt.Errorf("fakeSession: unhandled method %s", method)
	}
}

func (f *fakeSession) listResponse(prefix, delimiter string) *httpsession.Response {
	f.mu.Lock()
	defer f.mu.Unlock()

	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	type content struct {
		Key  string
		Size int
	}

	var contents []content
	prefixSet := map[string]bool{}

	for _, k := range keys {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		rest := k[len(prefix):]
		if delimiter != "" {
			if idx := strings.Index(rest, delimiter); idx >= 0 {
				prefixSet[prefix+rest[:idx+len(delimiter)]] = true
				continue
			}
		}
		contents = append(contents, content{Key: k, Size: len(f.objects[k])})
	}

	prefixes := make([]string, 0, len(prefixSet))
	for p := range prefixSet {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)

	var b strings.Builder
	b.WriteString("<ListBucketResult>")
	for _, c := range contents {
		b.WriteString("<Contents>")
		b.WriteString("<Key>" + c.Key + "</Key>")
		b.WriteString("<LastModified>2023-11-14T22:13:20.000Z</LastModified>")
		b.WriteString(fmt.Sprintf("<Size>%d</Size>", c.Size))
		b.WriteString("</Contents>")
	}
	for _, p := range prefixes {
		b.WriteString("<CommonPrefixes><Prefix>" + p + "</Prefix></CommonPrefixes>")
	}
	b.WriteString("</ListBucketResult>")

	return &httpsession.Response{Status: 200, Header: http.Header{}, Body: io.NopCloser(strings.NewReader(b.String()))}
}
