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

package pusher_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/nabbar/s3pathio/httpsession"
)

// fakeSession is a minimal in-memory stand-in for httpsession.Session that
// understands just enough of the S3 multipart wire protocol to drive
// pusher.Session without a network round trip: CreateMultipartUpload,
// UploadPart, CompleteMultipartUpload, and the parent-directory HEAD
// checks End performs before completing.
type fakeSession struct {
	uploadID string

	// dirs/files name keys that HEAD should report as an existing
	// directory marker or an existing plain object, respectively. A key
	// absent from both answers 404. Defaults to every parent directory
	// existing, matching the happy path every other test exercises.
	dirs  map[string]bool
	files map[string]bool

	mu             sync.Mutex
	parts          map[int]string
	partOrder      []int
	completeCalled bool
	completeBody   string
	blocked        map[int]chan struct{}
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		uploadID: "test-upload-id",
		parts:    map[int]string{},
		blocked:  map[int]chan struct{}{},
		dirs:     map[string]bool{"some/": true},
		files:    map[string]bool{},
	}
}

// blockPart makes the PUT for partNumber hang until the returned channel
// is closed, simulating a slow or out-of-order part completion.
func (f *fakeSession) blockPart(partNumber int) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.blocked[partNumber] = ch
	return ch
}

func (f *fakeSession) keyFromPath(p string) string {
	return strings.TrimPrefix(strings.TrimPrefix(p, "/test-bucket"), "/")
}

func (f *fakeSession) Do(ctx context.Context, method, rawURL string, _ bool, _ map[string]string, body io.Reader) (*httpsession.Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	q := u.Query()

	switch {
	case method == "HEAD":
		key := f.keyFromPath(u.Path)
		f.mu.Lock()
		exists := f.dirs[key] || f.files[key]
		f.mu.Unlock()
		if !exists {
			return &httpsession.Response{Status: 404, Header: http.Header{}, Body: io.NopCloser(strings.NewReader(""))}, nil
		}
		return &httpsession.Response{Status: 200, Header: http.Header{}, Body: io.NopCloser(strings.NewReader(""))}, nil

	case method == "POST" && q.Has("uploads"):
		xmlBody := fmt.Sprintf(`<InitiateMultipartUploadResult><UploadId>%s</UploadId></InitiateMultipartUploadResult>`, f.uploadID)
		return &httpsession.Response{Status: 200, Header: http.Header{}, Body: io.NopCloser(strings.NewReader(xmlBody))}, nil

	case method == "PUT" && q.Has("partNumber"):
		num, _ := strconv.Atoi(q.Get("partNumber"))

		f.mu.Lock()
		ch := f.blocked[num]
		f.mu.Unlock()
		if ch != nil {
			select {
			case <-ch:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		data, err := io.ReadAll(body)
		if err != nil {
			return nil, err
		}

		f.mu.Lock()
		f.parts[num] = string(data)
		f.partOrder = append(f.partOrder, num)
		f.mu.Unlock()

		header := http.Header{}
		header.Set("ETag", fmt.Sprintf(`"etag-%d"`, num))
		return &httpsession.Response{Status: 200, Header: header, Body: io.NopCloser(strings.NewReader(""))}, nil

	case method == "POST" && q.Has("uploadId"):
		data, err := io.ReadAll(body)
		if err != nil {
			return nil, err
		}

		f.mu.Lock()
		f.completeCalled = true
		f.completeBody = string(data)
		f.mu.Unlock()

		return &httpsession.Response{Status: 200, Header: http.Header{}, Body: io.NopCloser(strings.NewReader(""))}, nil

	default:
		return nil, fmt.Errorf("fakeSession: unhandled request %s %s", method, rawURL)
	}
}
