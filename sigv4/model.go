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

// Package sigv4 implements AWS Signature Version 4 header construction,
// byte-exact with AWS's canonicalization rules. It has no
// dependency beyond the standard library: SigV4 is a fixed algorithm, and
// the one library in this lineage that also signs S3 requests is the AWS
// SDK's own signer, which this package exists to replace, not depend on.
package sigv4

import "time"

const algorithm = "AWS4-HMAC-SHA256"
const service = "s3"

// Request carries everything needed to produce a signed header set.
type Request struct {
	AccessKeyID     string
	SecretAccessKey string
	// PreAuthHeaders are extra headers to sign and send, keyed as given by
	// the caller (case is not assumed); values are whitespace-collapsed
	// and trimmed before signing.
	PreAuthHeaders map[string]string
	Region         string
	Host           string
	Method         string
	// FullPath is the bucket-prefixed request path, e.g. "/my-bucket/a/b".
	FullPath string
	Query    map[string]string
	// PayloadHashHex is the hex-encoded SHA-256 of the request body.
	PayloadHashHex string
	// Now is the clock used to derive amzdate/datestamp. Callers pass it
	// explicitly so signing is deterministic and testable.
	Now time.Time
}

// Headers is the outgoing header set, including Authorization.
type Headers map[string]string
