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

// Package pusher drives a streaming S3 multipart upload: a push-style
// Write accumulates bytes into parts, spawns a concurrent upload once a
// part reaches MinPartBytes, and End awaits every part before completing
// the upload under a path write-lock.
package pusher

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nabbar/s3pathio/pathlock"
	"github.com/nabbar/s3pathio/s3client"
)

const (
	// MinPartBytes is the default accumulator threshold that triggers a
	// part upload (25 MiB).
	MinPartBytes = 25 * 1024 * 1024
	// MaxConcurrentUploadsPerFile is the default backpressure ceiling.
	MaxConcurrentUploadsPerFile = 3
	// BackpressureSleep is the default pause before re-checking in-flight
	// part count.
	BackpressureSleep = time.Second
)

// Config wires a Session to its S3 client, path lock map, and tunables.
// Zero-valued tunables fall back to the package defaults.
type Config struct {
	Client *s3client.Client
	Locks  *pathlock.Map

	// Key is the bucket-relative object key being uploaded.
	Key string

	MinPartBytes                int64
	MaxConcurrentUploadsPerFile int
	BackpressureSleep           time.Duration

	Log logrus.FieldLogger
}

func (c *Config) minPartBytes() int64 {
	if c.MinPartBytes > 0 {
		return c.MinPartBytes
	}
	return MinPartBytes
}

func (c *Config) maxConcurrentUploads() int {
	if c.MaxConcurrentUploadsPerFile > 0 {
		return c.MaxConcurrentUploadsPerFile
	}
	return MaxConcurrentUploadsPerFile
}

func (c *Config) backpressureSleep() time.Duration {
	if c.BackpressureSleep > 0 {
		return c.BackpressureSleep
	}
	return BackpressureSleep
}

func (c *Config) logger() logrus.FieldLogger {
	if c.Log != nil {
		return c.Log
	}
	return logrus.StandardLogger()
}
