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

package pusher

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/hashicorp/go-uuid"
	"github.com/sirupsen/logrus"

	"github.com/nabbar/s3pathio/s3client"
	"github.com/nabbar/s3pathio/s3ioerr"
	"github.com/nabbar/s3pathio/sigv4"
)

// Start issues CreateMultipartUpload and stores the returned UploadId.
func (s *Session) Start(ctx context.Context) error {
	resp, body, err := s.cfg.Client.RequestFull(ctx, "POST", "/"+s.cfg.Key, map[string]string{"uploads": ""}, nil, nil)
	if err != nil {
		return err
	}
	if err := s3client.RaiseForStatus(resp, body); err != nil {
		return err
	}

	id, err := parseUploadID(body)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.uploadID = id
	s.mu.Unlock()

	s.cfg.logger().WithFields(logrus.Fields{"key": s.cfg.Key, "upload_id": id}).Debug("multipart upload started")
	return nil
}

// spawnUpload runs the part upload in its own goroutine, gated by the
// session's concurrency semaphore, and records the outcome on task.
func (s *Session) spawnUpload(ctx context.Context, task *partTask, acc *accumulator) {
	go func() {
		defer close(task.done)

		if err := s.sem.Acquire(ctx, 1); err != nil {
			task.err = s3ioerr.New(s3ioerr.CodeCancelled, "part upload never started", err)
			return
		}
		defer s.sem.Release(1)

		etag, err := s.uploadPart(ctx, task.number, acc)
		if err != nil {
			task.err = err
			return
		}
		task.etag = etag
	}()
}

// uploadPart streams the buffered chunks as a single PUT body without
// copying them into one combined buffer.
func (s *Session) uploadPart(ctx context.Context, number int, acc *accumulator) (string, error) {
	readers := make([]io.Reader, len(acc.chunks))
	for i, c := range acc.chunks {
		readers[i] = bytes.NewReader(c)
	}
	body := io.MultiReader(readers...)
	hashHex := hex.EncodeToString(acc.hasher.Sum(nil))

	headers := map[string]string{
		"Content-Length": strconv.FormatInt(acc.length, 10),
	}

	s.cfg.logger().WithFields(logrus.Fields{
		"key":            s.cfg.Key,
		"part":           number,
		"bytes":          acc.length,
		"correlation_id": correlationID(),
	}).Debug("uploading part")

	query := map[string]string{
		"partNumber": strconv.Itoa(number),
		"uploadId":   s.uploadIDSnapshot(),
	}

	resp, err := s.cfg.Client.Request(ctx, "PUT", "/"+s.cfg.Key, query, headers, body, hashHex)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", s3ioerr.New(s3ioerr.CodeTransport, "failed reading part upload response", err)
	}
	if err := s3client.RaiseForStatus(resp, respBody); err != nil {
		return "", err
	}

	etag := resp.Header.Get("ETag")
	if etag == "" {
		return "", s3ioerr.New(s3ioerr.CodeRemote, "part upload response missing ETag", nil)
	}
	return etag, nil
}

// checkParentDir verifies that the target key's parent names a directory
// and not a file. A key with no "/" lives directly under the bucket root,
// which always exists, so there is nothing to check.
func (s *Session) checkParentDir(ctx context.Context) error {
	parent, ok := parentKey(s.cfg.Key)
	if !ok {
		return nil
	}

	isFile, err := s.headExists(ctx, parent)
	if err != nil {
		return err
	}
	if isFile {
		return s3ioerr.New(s3ioerr.CodeNotADirectory, fmt.Sprintf("%s is not a directory", parent), nil)
	}

	isDir, err := s.headExists(ctx, parent+"/")
	if err != nil {
		return err
	}
	if !isDir {
		return s3ioerr.New(s3ioerr.CodeNotFound, fmt.Sprintf("%s does not exist", parent), nil)
	}
	return nil
}

func parentKey(key string) (string, bool) {
	idx := strings.LastIndex(key, "/")
	if idx < 0 {
		return "", false
	}
	return key[:idx], true
}

// headExists issues a HEAD on key and collapses the response to a
// present/absent bool; a 404 is not an error here, anything else non-2xx is.
func (s *Session) headExists(ctx context.Context, key string) (bool, error) {
	resp, err := s.cfg.Client.Request(ctx, "HEAD", "/"+key, nil, nil, nil, sigv4.HashPayload(nil))
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch {
	case resp.Status == http.StatusNotFound:
		return false, nil
	case resp.Status >= 200 && resp.Status < 300:
		return true, nil
	default:
		return false, s3ioerr.New(s3ioerr.CodeRemote, fmt.Sprintf("unexpected status %d on HEAD %s", resp.Status, key), nil)
	}
}

// complete issues CompleteMultipartUpload with parts in submission order.
func (s *Session) complete(ctx context.Context, parts []completedPart) error {
	id := s.uploadIDSnapshot()

	body, err := encodeCompleteBody(parts)
	if err != nil {
		return err
	}

	resp, respBody, err := s.cfg.Client.RequestFull(ctx, "POST", "/"+s.cfg.Key, map[string]string{"uploadId": id}, nil, body)
	if err != nil {
		return err
	}
	if err := s3client.RaiseForStatus(resp, respBody); err != nil {
		return err
	}

	s.cfg.logger().WithFields(logrus.Fields{
		"key": s.cfg.Key, "upload_id": id, "parts": len(parts),
	}).Debug("multipart upload completed")
	return nil
}

func correlationID() string {
	id, err := uuid.GenerateUUID()
	if err != nil {
		return "unknown"
	}
	return id
}
