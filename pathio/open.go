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

	"github.com/nabbar/s3pathio/pusher"
	"github.com/nabbar/s3pathio/readstream"
	"github.com/nabbar/s3pathio/s3ioerr"
)

// OpenRead returns a scoped GET-backed byte stream for p. No network call
// is made until the stream is iterated.
func (f *Facade) OpenRead(p Path) *readstream.File {
	return readstream.Open(f.cli, objectKey(p))
}

// OpenWrite starts a multipart upload session targeting p and returns it
// ready for Write. The path write-lock is not held until End: only the
// final CompleteMultipartUpload call mutates visible state.
func (f *Facade) OpenWrite(ctx context.Context, p Path) (*pusher.Session, error) {
	sess := pusher.New(pusher.Config{
		Client: f.cli,
		Locks:  f.locks,
		Key:    objectKey(p),
		Log:    f.log,
	})
	if err := sess.Start(ctx); err != nil {
		return nil, err
	}
	return sess, nil
}

// Open resolves mode ("rb" or "wb") to the corresponding scoped resource.
// Callers that know their mode at compile time should prefer
// OpenRead/OpenWrite directly.
func (f *Facade) Open(ctx context.Context, p Path, mode string) (any, error) {
	switch mode {
	case "rb":
		return f.OpenRead(p), nil
	case "wb":
		return f.OpenWrite(ctx, p)
	default:
		return nil, s3ioerr.New(s3ioerr.CodeUnsupported, fmt.Sprintf("unsupported open mode %q", mode), nil)
	}
}
