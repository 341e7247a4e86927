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

// Package bucket holds the descriptors and credential vocabulary shared by
// every component that talks to S3: the bucket endpoint (§3 Bucket) and
// the rotating credential supplier (§3 AwsCredentials, §6).
package bucket

import "context"

// Descriptor identifies the S3 bucket an adapter instance is bound to.
type Descriptor struct {
	Region      string
	Host        string
	Name        string
	VerifyCerts bool
}

// Credentials is one snapshot of AWS credentials plus any extra headers
// that must be included in the SigV4 signature (e.g. a session token).
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	PreAuthHeaders  map[string]string
}

// Supplier returns a fresh Credentials value on every call, allowing
// rotation under the hood. It is invoked before each S3 request and must
// be safe to call concurrently.
type Supplier func(ctx context.Context) (Credentials, error)

// Static returns a Supplier that always returns the same credentials. It
// is the Go analogue of the original's
// s3_path_io_secret_access_key_credentials.
func Static(accessKeyID, secretAccessKey string) Supplier {
	return func(_ context.Context) (Credentials, error) {
		return Credentials{
			AccessKeyID:     accessKeyID,
			SecretAccessKey: secretAccessKey,
			PreAuthHeaders:  map[string]string{},
		}, nil
	}
}
