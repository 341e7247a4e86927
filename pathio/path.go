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

// Package pathio is the public filesystem surface a frontend calls. It
// composes listing, readstream, pusher and pathlock behind
// exists/is_dir/is_file/mkdir/rmdir/unlink/list/stat/open.
package pathio

// Mode bits encode a Stat's file type.
const (
	ModeRegular   uint32 = 0o100666
	ModeDirectory uint32 = 0o040777
)

// Stat is an immutable filesystem record.
type Stat struct {
	Size  uint64
	Mtime int64
	Ctime int64
	Nlink uint32
	Mode  uint32
}

// IsDir reports whether s encodes a directory.
func (s Stat) IsDir() bool { return s.Mode&ModeDirectory == ModeDirectory }

// IsFile reports whether s encodes a regular file.
func (s Stat) IsFile() bool { return s.Mode&ModeRegular == ModeRegular }

// Path is either a bare path, or one carrying a pre-fetched Stat
// (populated by List) so the Facade can short-circuit a HEAD call.
type Path struct {
	path string
	stat *Stat
}

// Plain wraps path with no sidecar Stat.
func Plain(path string) Path {
	return Path{path: path}
}

// Stated wraps path with a pre-fetched Stat.
func Stated(path string, stat Stat) Path {
	return Path{path: path, stat: &stat}
}

// String returns the underlying POSIX-style path.
func (p Path) String() string { return p.path }

// IsRoot reports whether p is the bucket root.
func (p Path) IsRoot() bool { return p.path == "." }

// Stat returns the sidecar Stat, if any.
func (p Path) Stat() (Stat, bool) {
	if p.stat == nil {
		return Stat{}, false
	}
	return *p.stat, true
}

// objectKey maps a Path to its bucket-relative S3 key; the root maps to
// the empty prefix.
func objectKey(p Path) string {
	if p.IsRoot() {
		return ""
	}
	return p.path
}

func joinPath(parent, name string) string {
	if parent == "." {
		return name
	}
	return parent + "/" + name
}
