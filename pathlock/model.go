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

package pathlock

import (
	"context"
	"sort"
	"sync"
)

type mapEntry struct {
	lock *rwlock
	refs int
}

// Map is a weak-valued map from path to per-path lock, realized as an
// explicitly reference-counted map: an entry is removed once no scope
// holds it, since Go has no language-level weak map.
type Map struct {
	mu sync.Mutex
	m  map[string]*mapEntry
}

// New builds an empty Map.
func New() *Map {
	return &Map{m: make(map[string]*mapEntry)}
}

func (pl *Map) acquireEntry(p string) *mapEntry {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	e, ok := pl.m[p]
	if !ok {
		e = &mapEntry{lock: newRWLock()}
		pl.m[p] = e
	}
	e.refs++
	return e
}

func (pl *Map) releaseEntry(p string) {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	e, ok := pl.m[p]
	if !ok {
		return
	}
	e.refs--
	if e.refs == 0 {
		delete(pl.m, p)
	}
}

// Len reports the number of distinct paths currently holding a live lock
// entry. Exposed for tests verifying reclamation.
func (pl *Map) Len() int {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return len(pl.m)
}

type pathMode struct {
	path string
	mode kind
}

// Lock acquires write locks on writeTo and read locks on readFrom plus
// every ancestor of every path in writeTo ∪ readFrom (so a mutation of p
// always holds read-locks on every ancestor directory of p, preventing a
// concurrent mutation of an ancestor from observing p as both present and
// absent).
//
// Acquisition follows a single deadlock-free global order: shallowest path
// first, then lexicographic. On success it returns a release function
// that must be called exactly
// once to unlock everything acquired, in reverse acquisition order.
func (pl *Map) Lock(ctx context.Context, writeTo []string, readFrom []string) (func(), error) {
	writable := map[string]bool{}
	for _, p := range writeTo {
		writable[p] = true
	}

	ancestors := map[string]bool{}
	for _, p := range writeTo {
		for _, a := range parents(p) {
			ancestors[a] = true
		}
	}
	for _, p := range readFrom {
		for _, a := range parents(p) {
			ancestors[a] = true
		}
	}

	readable := map[string]bool{}
	for a := range ancestors {
		readable[a] = true
	}
	for _, p := range readFrom {
		readable[p] = true
	}
	for p := range writable {
		delete(readable, p)
	}

	entries := make([]pathMode, 0, len(writable)+len(readable))
	for p := range writable {
		entries = append(entries, pathMode{path: p, mode: kindWrite})
	}
	for p := range readable {
		entries = append(entries, pathMode{path: p, mode: kindRead})
	}

	sort.Slice(entries, func(i, j int) bool {
		pi, pj := len(parents(entries[i].path)), len(parents(entries[j].path))
		if pi != pj {
			return pi < pj
		}
		return entries[i].path < entries[j].path
	})

	acquiredReleases := make([]func(), 0, len(entries))
	acquiredPaths := make([]string, 0, len(entries))

	rollback := func() {
		for i := len(acquiredReleases) - 1; i >= 0; i-- {
			acquiredReleases[i]()
			pl.releaseEntry(acquiredPaths[i])
		}
	}

	for _, pm := range entries {
		e := pl.acquireEntry(pm.path)
		release, err := e.lock.acquire(ctx, pm.mode)
		if err != nil {
			pl.releaseEntry(pm.path)
			rollback()
			return nil, err
		}
		acquiredReleases = append(acquiredReleases, release)
		acquiredPaths = append(acquiredPaths, pm.path)
	}

	return func() {
		for i := len(acquiredReleases) - 1; i >= 0; i-- {
			acquiredReleases[i]()
			pl.releaseEntry(acquiredPaths[i])
		}
	}, nil
}
