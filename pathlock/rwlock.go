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

// Package pathlock implements per-path fair read/write locking with
// deadlock-free multi-path acquisition and automatic reaping of unused
// locks.
package pathlock

import (
	"context"
	"sync"

	"github.com/nabbar/s3pathio/s3ioerr"
)

type kind int

const (
	kindRead kind = iota
	kindWrite
)

type waiter struct {
	kind      kind
	ready     chan struct{}
	granted   bool
	cancelled bool
}

// rwlock is a fair reader/writer lock whose waiters are served strictly in
// FIFO order, regardless of kind — unlike a "writers block new readers"
// policy, which can starve writers indefinitely.
type rwlock struct {
	mu        sync.Mutex
	waiters   []*waiter
	readsHeld int
	writeHeld bool
}

func newRWLock() *rwlock {
	return &rwlock{}
}

// acquire blocks until the lock is granted in kind, or ctx is done.
func (l *rwlock) acquire(ctx context.Context, k kind) (func(), error) {
	l.mu.Lock()
	w := &waiter{kind: k, ready: make(chan struct{})}
	l.waiters = append(l.waiters, w)
	l.resolve()
	l.mu.Unlock()

	select {
	case <-w.ready:
		return l.releaseFunc(k), nil
	case <-ctx.Done():
		l.mu.Lock()
		if w.granted {
			l.mu.Unlock()
			release := l.releaseFunc(k)
			release()
			return nil, s3ioerr.New(s3ioerr.CodeCancelled, "lock acquisition cancelled", ctx.Err())
		}
		w.cancelled = true
		l.resolve()
		l.mu.Unlock()
		return nil, s3ioerr.New(s3ioerr.CodeCancelled, "lock acquisition cancelled", ctx.Err())
	}
}

func (l *rwlock) releaseFunc(k kind) func() {
	return func() {
		l.mu.Lock()
		if k == kindRead {
			l.readsHeld--
		} else {
			l.writeHeld = false
		}
		l.resolve()
		l.mu.Unlock()
	}
}

// resolve must be called with l.mu held. It grants all contiguous reader
// waiters from the queue head while no writer holds the lock, then grants
// at most one writer waiter once readers have drained.
func (l *rwlock) resolve() {
	if !l.writeHeld {
		for len(l.waiters) > 0 {
			w := l.waiters[0]
			if w.cancelled {
				l.waiters = l.waiters[1:]
				continue
			}
			if w.kind != kindRead {
				break
			}
			l.waiters = l.waiters[1:]
			l.readsHeld++
			w.granted = true
			close(w.ready)
		}
	}

	if !l.writeHeld && l.readsHeld == 0 {
		for len(l.waiters) > 0 {
			w := l.waiters[0]
			if w.cancelled {
				l.waiters = l.waiters[1:]
				continue
			}
			if w.kind != kindWrite {
				break
			}
			l.waiters = l.waiters[1:]
			l.writeHeld = true
			w.granted = true
			close(w.ready)
			break
		}
	}
}
