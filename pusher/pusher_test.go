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

package pusher_test

import (
	"context"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/s3pathio/bucket"
	"github.com/nabbar/s3pathio/pathlock"
	"github.com/nabbar/s3pathio/pusher"
	"github.com/nabbar/s3pathio/s3client"
	"github.com/nabbar/s3pathio/s3ioerr"
)

func newSession(fs *fakeSession, minPartBytes int64, maxConcurrent int, backpressureSleep time.Duration) *pusher.Session {
	cli := s3client.New(
		bucket.Descriptor{Region: "us-east-1", Host: "example.com", Name: "test-bucket", VerifyCerts: true},
		bucket.Static("AKID", "SECRET"),
		fs,
		nil,
	)

	return pusher.New(pusher.Config{
		Client:                      cli,
		Locks:                       pathlock.New(),
		Key:                         "some/object",
		MinPartBytes:                minPartBytes,
		MaxConcurrentUploadsPerFile: maxConcurrent,
		BackpressureSleep:           backpressureSleep,
	})
}

var _ = Describe("Session", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	When("nothing is ever written", func() {
		It("forces exactly one empty part so completion has something to reference", func() {
			fs := newFakeSession()
			sess := newSession(fs, 16, 3, 10*time.Millisecond)

			Expect(sess.Start(ctx)).To(Succeed())
			Expect(sess.End(ctx)).To(Succeed())

			Expect(fs.partOrder).To(Equal([]int{1}))
			Expect(fs.parts[1]).To(Equal(""))
			Expect(fs.completeCalled).To(BeTrue())
			Expect(fs.completeBody).To(ContainSubstring("<PartNumber>1</PartNumber>"))
		})
	})

	When("a write crosses the part threshold and a tail remains", func() {
		It("flushes the full part immediately and the tail on End", func() {
			fs := newFakeSession()
			sess := newSession(fs, 16, 3, 10*time.Millisecond)

			Expect(sess.Start(ctx)).To(Succeed())
			Expect(sess.Write(ctx, []byte(strings.Repeat("a", 16)))).To(Succeed())
			Expect(sess.Write(ctx, []byte("b"))).To(Succeed())
			Expect(sess.End(ctx)).To(Succeed())

			Expect(fs.parts).To(HaveLen(2))
			Expect(fs.parts[1]).To(Equal(strings.Repeat("a", 16)))
			Expect(fs.parts[2]).To(Equal("b"))
		})
	})

	When("a middle part finishes late", func() {
		It("still completes with parts in submission order, not completion order", func() {
			fs := newFakeSession()
			sess := newSession(fs, 4, 3, 20*time.Millisecond)

			blockTwo := fs.blockPart(2)

			Expect(sess.Start(ctx)).To(Succeed())
			Expect(sess.Write(ctx, []byte("AAAA"))).To(Succeed())
			Expect(sess.Write(ctx, []byte("BBBB"))).To(Succeed())

			go func() {
				time.Sleep(5 * time.Millisecond)
				close(blockTwo)
			}()

			Expect(sess.Write(ctx, []byte("CCCC"))).To(Succeed())
			Expect(sess.Write(ctx, []byte("DDDD"))).To(Succeed())
			Expect(sess.End(ctx)).To(Succeed())

			idx1 := strings.Index(fs.completeBody, "<PartNumber>1</PartNumber>")
			idx2 := strings.Index(fs.completeBody, "<PartNumber>2</PartNumber>")
			idx3 := strings.Index(fs.completeBody, "<PartNumber>3</PartNumber>")
			idx4 := strings.Index(fs.completeBody, "<PartNumber>4</PartNumber>")

			Expect(idx1).To(BeNumerically(">=", 0))
			Expect(idx2).To(BeNumerically(">", idx1))
			Expect(idx3).To(BeNumerically(">", idx2))
			Expect(idx4).To(BeNumerically(">", idx3))
		})
	})

	When("the target's parent directory does not exist", func() {
		It("fails End with NotFound instead of completing an orphan upload", func() {
			fs := newFakeSession()
			fs.dirs = map[string]bool{}
			sess := newSession(fs, 16, 3, 10*time.Millisecond)

			Expect(sess.Start(ctx)).To(Succeed())
			err := sess.End(ctx)

			Expect(err).To(HaveOccurred())
			Expect(s3ioerr.Is(err, s3ioerr.CodeNotFound)).To(BeTrue())
			Expect(fs.completeCalled).To(BeFalse())
		})
	})

	When("the target's parent is a file, not a directory", func() {
		It("fails End with NotADirectory instead of completing an orphan upload", func() {
			fs := newFakeSession()
			fs.dirs = map[string]bool{}
			fs.files = map[string]bool{"some": true}
			sess := newSession(fs, 16, 3, 10*time.Millisecond)

			Expect(sess.Start(ctx)).To(Succeed())
			err := sess.End(ctx)

			Expect(err).To(HaveOccurred())
			Expect(s3ioerr.Is(err, s3ioerr.CodeNotADirectory)).To(BeTrue())
			Expect(fs.completeCalled).To(BeFalse())
		})
	})

	When("too many parts are in flight after the backpressure sleep", func() {
		It("fails the write with BackpressureExceeded", func() {
			fs := newFakeSession()
			sess := newSession(fs, 4, 1, 10*time.Millisecond)

			blockOne := fs.blockPart(1)
			blockTwo := fs.blockPart(2)
			defer close(blockOne)
			defer close(blockTwo)

			Expect(sess.Start(ctx)).To(Succeed())
			Expect(sess.Write(ctx, []byte("AAAA"))).To(Succeed())
			Expect(sess.Write(ctx, []byte("BBBB"))).To(Succeed())
			Expect(sess.Write(ctx, []byte("CCCC"))).To(Succeed())

			err := sess.Write(ctx, []byte("DDDD"))
			Expect(err).To(HaveOccurred())
			Expect(s3ioerr.Is(err, s3ioerr.CodeBackpressureExceeded)).To(BeTrue())
		})
	})
})
