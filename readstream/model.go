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

// Package readstream wraps a GET into a chunked byte iterator. Entering
// the scope is a no-op: S3 GETs are atomic, so
// no lock is needed — a concurrent writer either hasn't completed its
// multipart upload yet (the read sees the previous object or a 404) or has
// completed it (the read sees a whole new object).
package readstream

import (
	"context"
	"io"

	"github.com/nabbar/s3pathio/s3client"
	"github.com/nabbar/s3pathio/s3ioerr"
	"github.com/nabbar/s3pathio/sigv4"
)

// File is a scoped GET-backed byte stream.
type File struct {
	cli *s3client.Client
	key string
}

// Open returns a File ready to be iterated. No network call is made yet.
func Open(cli *s3client.Client, key string) *File {
	return &File{cli: cli, key: key}
}

// Chunk is one piece of a streamed GET body, or a terminal error. The
// channel producing Chunks is closed once the body is exhausted or an
// error occurs; an error Chunk carries no Data and is always last.
type Chunk struct {
	Data []byte
	Err  error
}

// IterByBlock issues the GET and returns a channel of Chunk. The final
// Chunk on an error path carries Err and no further Data is sent.
func (f *File) IterByBlock(ctx context.Context, n int) <-chan Chunk {
	out := make(chan Chunk)

	go func() {
		defer close(out)

		resp, err := f.cli.Request(ctx, "GET", "/"+f.key, nil, nil, nil, sigv4.HashPayload(nil))
		if err != nil {
			out <- Chunk{Err: err}
			return
		}
		defer resp.Body.Close()

		if resp.Status < 200 || resp.Status >= 300 {
			body, _ := io.ReadAll(resp.Body)
			out <- Chunk{Err: s3ioerr.Remote(resp.Status, body)}
			return
		}

		buf := make([]byte, n)
		for {
			read, rerr := resp.Body.Read(buf)
			if read > 0 {
				chunk := make([]byte, read)
				copy(chunk, buf[:read])
				select {
				case out <- Chunk{Data: chunk}:
				case <-ctx.Done():
					out <- Chunk{Err: s3ioerr.New(s3ioerr.CodeCancelled, "read cancelled", ctx.Err())}
					return
				}
			}
			if rerr == io.EOF {
				return
			}
			if rerr != nil {
				out <- Chunk{Err: s3ioerr.New(s3ioerr.CodeTransport, "error reading response body", rerr)}
				return
			}
		}
	}()

	return out
}
