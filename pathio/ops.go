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
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nabbar/s3pathio/listing"
	"github.com/nabbar/s3pathio/s3client"
	"github.com/nabbar/s3pathio/s3ioerr"
	"github.com/nabbar/s3pathio/sigv4"
)

// headExists issues a HEAD on key and collapses the response to a
// present/absent bool; a 404 is not an error here, anything else non-2xx is.
func (f *Facade) headExists(ctx context.Context, key string) (bool, error) {
	resp, err := f.cli.Request(ctx, "HEAD", "/"+key, nil, nil, nil, sigv4.HashPayload(nil))
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

// IsDir reports whether p names a directory. The bucket root always is
// one; any Stated sidecar answers without a round trip.
func (f *Facade) IsDir(ctx context.Context, p Path) (bool, error) {
	if st, ok := p.Stat(); ok {
		return st.IsDir(), nil
	}
	if p.IsRoot() {
		return true, nil
	}
	return f.headExists(ctx, objectKey(p)+"/")
}

// IsFile reports whether p names a regular object.
func (f *Facade) IsFile(ctx context.Context, p Path) (bool, error) {
	if st, ok := p.Stat(); ok {
		return st.IsFile(), nil
	}
	if p.IsRoot() {
		return false, nil
	}
	return f.headExists(ctx, objectKey(p))
}

// Exists reports whether p names either a directory or a file.
func (f *Facade) Exists(ctx context.Context, p Path) (bool, error) {
	isDir, err := f.IsDir(ctx, p)
	if err != nil {
		return false, err
	}
	if isDir {
		return true, nil
	}
	return f.IsFile(ctx, p)
}

// Mkdir creates the zero-length directory marker key+"/", failing if p
// already names anything.
func (f *Facade) Mkdir(ctx context.Context, p Path) error {
	release, err := f.locks.Lock(ctx, []string{p.String()}, nil)
	if err != nil {
		return err
	}
	defer release()

	exists, err := f.Exists(ctx, Plain(p.String()))
	if err != nil {
		return err
	}
	if exists {
		return s3ioerr.New(s3ioerr.CodeAlreadyExists, fmt.Sprintf("%s already exists", p), nil)
	}

	resp, body, err := f.cli.RequestFull(ctx, "PUT", "/"+objectKey(p)+"/", nil, nil, nil)
	if err != nil {
		return err
	}
	return s3client.RaiseForStatus(resp, body)
}

// Rmdir deletes p and every descendant key, children before parents.
func (f *Facade) Rmdir(ctx context.Context, p Path) error {
	release, err := f.locks.Lock(ctx, []string{p.String()}, nil)
	if err != nil {
		return err
	}
	defer release()

	isDir, err := f.IsDir(ctx, Plain(p.String()))
	if err != nil {
		return err
	}
	if !isDir {
		return s3ioerr.New(s3ioerr.CodeNotADirectory, fmt.Sprintf("%s is not a directory", p), nil)
	}

	prefix := objectKey(p)
	if prefix != "" {
		prefix += "/"
	}

	keys, err := f.list.ListDescendantKeys(ctx, prefix)
	if err != nil {
		return err
	}

	sortDescendantsForDeletion(keys)

	for _, k := range keys {
		resp, body, err := f.cli.RequestFull(ctx, "DELETE", "/"+k.Key, nil, nil, nil)
		if err != nil {
			return err
		}
		if err := s3client.RaiseForStatus(resp, body); err != nil {
			return err
		}
	}

	return nil
}

// sortDescendantsForDeletion orders keys by decreasing depth, then
// decreasing length, then reverse-lexicographic, so a sequential delete
// never removes a directory marker before its contents.
func sortDescendantsForDeletion(keys []listing.Key) {
	sort.Slice(keys, func(i, j int) bool {
		di, dj := strings.Count(keys[i].Key, "/"), strings.Count(keys[j].Key, "/")
		if di != dj {
			return di > dj
		}
		if len(keys[i].Key) != len(keys[j].Key) {
			return len(keys[i].Key) > len(keys[j].Key)
		}
		return keys[i].Key > keys[j].Key
	})
}

// Unlink deletes the object named by p, failing if p is not a file.
func (f *Facade) Unlink(ctx context.Context, p Path) error {
	release, err := f.locks.Lock(ctx, []string{p.String()}, nil)
	if err != nil {
		return err
	}
	defer release()

	isFile, err := f.IsFile(ctx, Plain(p.String()))
	if err != nil {
		return err
	}
	if !isFile {
		return s3ioerr.New(s3ioerr.CodeNotAFile, fmt.Sprintf("%s is not a file", p), nil)
	}

	resp, body, err := f.cli.RequestFull(ctx, "DELETE", "/"+objectKey(p), nil, nil, nil)
	if err != nil {
		return err
	}
	return s3client.RaiseForStatus(resp, body)
}

// Stat resolves p's sidecar Stat, issuing a HEAD if p was not already
// Stated. The bucket root is always a directory.
func (f *Facade) Stat(ctx context.Context, p Path) (Stat, error) {
	if st, ok := p.Stat(); ok {
		return st, nil
	}
	if p.IsRoot() {
		return Stat{Mode: ModeDirectory, Nlink: 1}, nil
	}

	resp, err := f.cli.Request(ctx, "HEAD", "/"+objectKey(p), nil, nil, nil, sigv4.HashPayload(nil))
	if err != nil {
		return Stat{}, err
	}
	defer resp.Body.Close()

	if resp.Status >= 200 && resp.Status < 300 {
		return statFromHeaders(resp.Header), nil
	}
	if resp.Status != http.StatusNotFound {
		return Stat{}, s3ioerr.New(s3ioerr.CodeRemote, fmt.Sprintf("unexpected status %d on HEAD %s", resp.Status, p), nil)
	}

	isDir, err := f.headExists(ctx, objectKey(p)+"/")
	if err != nil {
		return Stat{}, err
	}
	if isDir {
		return Stat{Mode: ModeDirectory, Nlink: 1}, nil
	}
	return Stat{}, s3ioerr.New(s3ioerr.CodeNotFound, fmt.Sprintf("%s not found", p), nil)
}

func statFromHeaders(h http.Header) Stat {
	var size uint64
	if cl := h.Get("Content-Length"); cl != "" {
		if n, err := strconv.ParseUint(cl, 10, 64); err == nil {
			size = n
		}
	}
	var mtime int64
	if lm := h.Get("Last-Modified"); lm != "" {
		if t, err := time.Parse(http.TimeFormat, lm); err == nil {
			mtime = t.Unix()
		}
	}
	return Stat{Size: size, Mtime: mtime, Ctime: mtime, Nlink: 1, Mode: ModeRegular}
}

// Rename is an explicit Open Question resolved against: S3 has no atomic
// rename primitive, and emulating one with copy+delete would silently drop
// the at-most-one-writer guarantee pathlock gives every other operation.
func (f *Facade) Rename(ctx context.Context, src, dst Path) error {
	return s3ioerr.New(s3ioerr.CodeUnsupported, "rename is not supported", nil)
}
