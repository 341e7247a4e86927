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
	"context"
	"crypto/sha256"
	"hash"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/nabbar/s3pathio/s3ioerr"
)

// accumulator buffers the not-yet-uploaded tail of the object, tracking
// its running length and SHA-256 incrementally so the part's
// x-amz-content-sha256 never requires re-reading the buffered chunks.
type accumulator struct {
	chunks [][]byte
	length int64
	hasher hash.Hash
}

func newAccumulator() *accumulator {
	return &accumulator{hasher: sha256.New()}
}

func (a *accumulator) write(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	a.chunks = append(a.chunks, chunk)
	a.length += int64(len(chunk))
	a.hasher.Write(chunk)
}

// partTask tracks one spawned part upload.
type partTask struct {
	number int
	done   chan struct{}
	etag   string
	err    error
}

func (t *partTask) finished() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Session drives one multipart upload scope end to end. A Session is not
// safe for concurrent Write calls; Start must precede any
// Write, and End must be called exactly once to finalize or abandon it.
type Session struct {
	cfg Config

	mu       sync.Mutex
	uploadID string
	acc      *accumulator
	parts    []*partTask
	sem      *semaphore.Weighted
}

// New builds a Session bound to cfg. Start must be called before Write.
func New(cfg Config) *Session {
	return &Session{
		cfg: cfg,
		acc: newAccumulator(),
		sem: semaphore.NewWeighted(int64(cfg.maxConcurrentUploads())),
	}
}

func (s *Session) uploadIDSnapshot() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploadID
}

// flushLocked must be called with s.mu held. It swaps in a fresh
// accumulator, registers a part task for the current one, and spawns its
// upload, returning with s.mu held again.
func (s *Session) flushLocked(ctx context.Context) {
	acc := s.acc
	s.acc = newAccumulator()
	task := &partTask{number: len(s.parts) + 1, done: make(chan struct{})}
	s.parts = append(s.parts, task)

	s.mu.Unlock()
	s.spawnUpload(ctx, task, acc)
	s.mu.Lock()
}

// Write appends chunk to the current part, spawning a part upload once the
// accumulator reaches MinPartBytes. The backpressure gate: once more than
// two parts have started, a not-yet-finished second-most-recent part
// triggers a sleep, after which too many in-flight parts fail the write
// outright.
func (s *Session) Write(ctx context.Context, chunk []byte) error {
	s.mu.Lock()

	if len(s.parts) > 2 && !s.parts[len(s.parts)-2].finished() {
		s.mu.Unlock()
		s.cfg.logger().WithFields(logrus.Fields{"key": s.cfg.Key, "parts": len(s.parts)}).Warn("throttling write: previous part still uploading")

		select {
		case <-time.After(s.cfg.backpressureSleep()):
		case <-ctx.Done():
			return s3ioerr.New(s3ioerr.CodeCancelled, "write cancelled while throttled", ctx.Err())
		}

		s.mu.Lock()
		inFlight := 0
		for _, p := range s.parts {
			if !p.finished() {
				inFlight++
			}
		}
		if inFlight > s.cfg.maxConcurrentUploads() {
			s.mu.Unlock()
			return s3ioerr.New(s3ioerr.CodeBackpressureExceeded, "too many in-flight part uploads", nil)
		}
	}

	s.acc.write(chunk)
	if s.acc.length >= s.cfg.minPartBytes() {
		s.flushLocked(ctx)
	}

	s.mu.Unlock()
	return nil
}

// End awaits every part upload, flushing a final partial part (or a single
// empty part, if nothing was ever written — S3 rejects completion with
// zero parts), then acquires a write lock on the object key and issues
// CompleteMultipartUpload. Part uploads themselves mutate no visible
// state, so the lock is taken only for this last call.
func (s *Session) End(ctx context.Context) (err error) {
	defer func() {
		if err != nil {
			s.cfg.logger().WithFields(logrus.Fields{"key": s.cfg.Key, "upload_id": s.uploadIDSnapshot()}).WithError(err).Error("multipart upload abandoned")
		}
	}()

	s.mu.Lock()
	if len(s.parts) == 0 || s.acc.length > 0 {
		s.flushLocked(ctx)
	}
	tasks := append([]*partTask(nil), s.parts...)
	s.mu.Unlock()

	parts := make([]completedPart, len(tasks))
	for i, t := range tasks {
		<-t.done
		if t.err != nil {
			return t.err
		}
		parts[i] = completedPart{Number: t.number, ETag: t.etag}
	}

	release, err := s.cfg.Locks.Lock(ctx, []string{s.cfg.Key}, nil)
	if err != nil {
		return err
	}
	defer release()

	if err := s.checkParentDir(ctx); err != nil {
		return err
	}

	return s.complete(ctx, parts)
}
