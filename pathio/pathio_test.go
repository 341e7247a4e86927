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

package pathio_test

import (
	"context"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/s3pathio/bucket"
	"github.com/nabbar/s3pathio/pathio"
	"github.com/nabbar/s3pathio/pathlock"
	"github.com/nabbar/s3pathio/s3client"
	"github.com/nabbar/s3pathio/s3ioerr"
)

func newFacade(fs *fakeSession) *pathio.Facade {
	cli := s3client.New(
		bucket.Descriptor{Region: "us-east-1", Host: "example.com", Name: "test-bucket", VerifyCerts: true},
		bucket.Static("AKID", "SECRET"),
		fs,
		nil,
	)
	return pathio.New(cli, pathlock.New(), nil)
}

func drain(ch <-chan pathio.Entry) []pathio.Entry {
	var out []pathio.Entry
	for e := range ch {
		out = append(out, e)
	}
	return out
}

var _ = Describe("Facade", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("Mkdir and IsDir/Exists", func() {
		It("creates a directory marker and reports it as existing", func() {
			fs := newFakeSession()
			f := newFacade(fs)

			Expect(f.Mkdir(ctx, pathio.Plain("a"))).To(Succeed())

			isDir, err := f.IsDir(ctx, pathio.Plain("a"))
			Expect(err).NotTo(HaveOccurred())
			Expect(isDir).To(BeTrue())

			exists, err := f.Exists(ctx, pathio.Plain("a"))
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeTrue())
		})

		It("fails with AlreadyExists on a second Mkdir", func() {
			fs := newFakeSession()
			f := newFacade(fs)

			Expect(f.Mkdir(ctx, pathio.Plain("a"))).To(Succeed())
			err := f.Mkdir(ctx, pathio.Plain("a"))
			Expect(err).To(HaveOccurred())
			Expect(s3ioerr.Is(err, s3ioerr.CodeAlreadyExists)).To(BeTrue())
		})

		It("treats the bucket root as always a directory", func() {
			fs := newFakeSession()
			f := newFacade(fs)

			isDir, err := f.IsDir(ctx, pathio.Plain("."))
			Expect(err).NotTo(HaveOccurred())
			Expect(isDir).To(BeTrue())
		})
	})

	Describe("Stated paths short-circuit HEAD", func() {
		It("answers IsFile from the sidecar without any request", func() {
			fs := newFakeSession()
			f := newFacade(fs)

			p := pathio.Stated("a/b.txt", pathio.Stat{Mode: pathio.ModeRegular, Size: 3})
			isFile, err := f.IsFile(ctx, p)
			Expect(err).NotTo(HaveOccurred())
			Expect(isFile).To(BeTrue())

			st, err := f.Stat(ctx, p)
			Expect(err).NotTo(HaveOccurred())
			Expect(st.Size).To(Equal(uint64(3)))
		})
	})

	Describe("Unlink", func() {
		It("fails with NotAFile against a directory", func() {
			fs := newFakeSession()
			f := newFacade(fs)
			Expect(f.Mkdir(ctx, pathio.Plain("a"))).To(Succeed())

			err := f.Unlink(ctx, pathio.Plain("a"))
			Expect(err).To(HaveOccurred())
			Expect(s3ioerr.Is(err, s3ioerr.CodeNotAFile)).To(BeTrue())
		})

		It("deletes an existing object", func() {
			fs := newFakeSession()
			fs.put("a/b.txt", []byte("hi"))
			f := newFacade(fs)

			Expect(f.Unlink(ctx, pathio.Plain("a/b.txt"))).To(Succeed())

			isFile, err := f.IsFile(ctx, pathio.Plain("a/b.txt"))
			Expect(err).NotTo(HaveOccurred())
			Expect(isFile).To(BeFalse())
		})
	})

	Describe("Rmdir", func() {
		It("deletes every descendant before the directory marker itself", func() {
			fs := newFakeSession()
			f := newFacade(fs)

			Expect(f.Mkdir(ctx, pathio.Plain("a"))).To(Succeed())
			Expect(f.Mkdir(ctx, pathio.Plain("a/b"))).To(Succeed())
			fs.put("a/b/c.txt", []byte("hi"))

			Expect(f.Rmdir(ctx, pathio.Plain("a"))).To(Succeed())

			Expect(fs.deleted).To(HaveLen(3))
			Expect(fs.deleted[0]).To(Equal("a/b/c.txt"))
			Expect(fs.deleted[2]).To(Equal("a/"))

			isDir, err := f.IsDir(ctx, pathio.Plain("a"))
			Expect(err).NotTo(HaveOccurred())
			Expect(isDir).To(BeFalse())
		})

		It("fails with NotADirectory against a file", func() {
			fs := newFakeSession()
			fs.put("a.txt", []byte("hi"))
			f := newFacade(fs)

			err := f.Rmdir(ctx, pathio.Plain("a.txt"))
			Expect(err).To(HaveOccurred())
			Expect(s3ioerr.Is(err, s3ioerr.CodeNotADirectory)).To(BeTrue())
		})
	})

	Describe("List", func() {
		It("yields immediate children only, already Stated", func() {
			fs := newFakeSession()
			f := newFacade(fs)

			Expect(f.Mkdir(ctx, pathio.Plain("dir"))).To(Succeed())
			fs.put("top.txt", []byte("hello"))
			fs.put("dir/nested.txt", []byte("nope"))

			entries := drain(f.List(ctx, pathio.Plain(".")))

			var names []string
			for _, e := range entries {
				Expect(e.Err).NotTo(HaveOccurred())
				names = append(names, e.Path.String())
			}

			Expect(names).To(ContainElement("dir"))
			Expect(names).To(ContainElement("top.txt"))
			Expect(names).NotTo(ContainElement(ContainSubstring("nested")))

			for _, e := range entries {
				if e.Path.String() == "dir" {
					st, ok := e.Path.Stat()
					Expect(ok).To(BeTrue())
					Expect(st.IsDir()).To(BeTrue())
				}
				if e.Path.String() == "top.txt" {
					st, ok := e.Path.Stat()
					Expect(ok).To(BeTrue())
					Expect(st.IsFile()).To(BeTrue())
					Expect(st.Size).To(Equal(uint64(len("hello"))))
				}
			}
		})
	})

	Describe("Rename", func() {
		It("is unsupported", func() {
			fs := newFakeSession()
			f := newFacade(fs)

			err := f.Rename(ctx, pathio.Plain("a"), pathio.Plain("b"))
			Expect(err).To(HaveOccurred())
			Expect(s3ioerr.Is(err, s3ioerr.CodeUnsupported)).To(BeTrue())
		})
	})

	Describe("Open", func() {
		It("rejects unknown modes", func() {
			fs := newFakeSession()
			f := newFacade(fs)

			_, err := f.Open(ctx, pathio.Plain("a.txt"), "xx")
			Expect(err).To(HaveOccurred())
			Expect(s3ioerr.Is(err, s3ioerr.CodeUnsupported)).To(BeTrue())
		})

		It("opens a write session that completes as an empty object", func() {
			fs := newFakeSession()
			f := newFacade(fs)

			v, err := f.Open(ctx, pathio.Plain("new.txt"), "wb")
			Expect(err).NotTo(HaveOccurred())
			sess, ok := v.(interface {
				End(context.Context) error
			})
			Expect(ok).To(BeTrue())
			Expect(sess.End(ctx)).To(Succeed())
		})
	})
})

var _ = Describe("objectKey via String", func() {
	It("round-trips a plain path", func() {
		p := pathio.Plain("a/b")
		Expect(p.String()).To(Equal("a/b"))
		Expect(strings.HasPrefix(p.String(), "a")).To(BeTrue())
	})
})
