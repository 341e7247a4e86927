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

package pathio

import (
	"context"
	"strings"

	"github.com/nabbar/s3pathio/listing"
	"github.com/nabbar/s3pathio/s3ioerr"
)

// Entry is one item yielded by List: a child Path already Stated, so a
// caller never needs a follow-up Stat call for what it just listed.
type Entry struct {
	Path Path
	Err  error
}

// List enumerates the immediate children of p and streams them through
// the returned channel: every directory first, then every file, each
// group in listing order. Deliberately unlocked: a
// directory listing is allowed to race a concurrent mutation rather than
// serialize every reader behind every writer.
func (f *Facade) List(ctx context.Context, p Path) <-chan Entry {
	out := make(chan Entry)

	go func() {
		defer close(out)

		prefix := objectKey(p)
		if prefix != "" {
			prefix += "/"
		}

		keys, prefixes, err := f.list.ListKeys(ctx, prefix, listing.DirSuffix)
		if err != nil {
			out <- Entry{Err: err}
			return
		}

		for _, pre := range prefixes {
			child := joinPath(p.String(), lastSegment(pre.Prefix))
			if !emit(ctx, out, Entry{Path: Stated(child, Stat{Mode: ModeDirectory, Nlink: 1})}) {
				return
			}
		}

		for _, k := range keys {
			if strings.HasSuffix(k.Key, listing.DirSuffix) {
				continue
			}
			child := joinPath(p.String(), lastSegment(k.Key))
			st := Stat{Size: uint64(k.Size), Mtime: k.LastModifiedUnix, Ctime: k.LastModifiedUnix, Nlink: 1, Mode: ModeRegular}
			if !emit(ctx, out, Entry{Path: Stated(child, st)}) {
				return
			}
		}
	}()

	return out
}

func emit(ctx context.Context, out chan<- Entry, e Entry) bool {
	select {
	case out <- e:
		return true
	case <-ctx.Done():
		out <- Entry{Err: s3ioerr.New(s3ioerr.CodeCancelled, "list cancelled", ctx.Err())}
		return false
	}
}

func lastSegment(key string) string {
	trimmed := strings.TrimSuffix(key, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}
