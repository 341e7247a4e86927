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

// Package s3client is the thin request builder over an injected HTTP
// session: URL assembly, percent-encoding, invocation, and
// streaming-body support. It signs every request with
// sigv4 and surfaces transport/remote failures through s3ioerr.
package s3client

import (
	"github.com/sirupsen/logrus"

	"github.com/nabbar/s3pathio/bucket"
	"github.com/nabbar/s3pathio/httpsession"
)

// Client issues signed requests against one S3 bucket.
type Client struct {
	bucket      bucket.Descriptor
	credentials bucket.Supplier
	session     httpsession.Session
	log         logrus.FieldLogger
}

// New builds a Client bound to desc, refreshing credentials via creds on
// every request and issuing HTTP through session.
func New(desc bucket.Descriptor, creds bucket.Supplier, session httpsession.Session, log logrus.FieldLogger) *Client {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{bucket: desc, credentials: creds, session: session, log: log}
}
