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

// Package s3ioerr is the uniform error boundary every public pathio
// operation funnels through. It is a narrowed descendant of the
// code+hierarchy error pattern used across this lineage: each error
// carries a Code classifying the failure, an optional parent chain, and
// compatibility with errors.Is/errors.As.
package s3ioerr

// Code classifies a failure.
type Code uint16

const (
	// CodeUnknown is the zero value: an error that was wrapped without
	// a more specific classification.
	CodeUnknown Code = iota
	// CodeTransport covers network, DNS and TLS failures reaching S3.
	CodeTransport
	// CodeRemote covers any non-2xx response from S3.
	CodeRemote
	// CodeNotFound is raised by the Facade before issuing a call that
	// would otherwise 404.
	CodeNotFound
	// CodeAlreadyExists is raised by mkdir when the target already exists.
	CodeAlreadyExists
	// CodeNotADirectory is raised when a directory operation targets a file.
	CodeNotADirectory
	// CodeNotAFile is raised when a file operation targets a directory.
	CodeNotAFile
	// CodeBackpressureExceeded is raised when more in-flight part uploads
	// are outstanding than MaxConcurrentUploadsPerFile allows.
	CodeBackpressureExceeded
	// CodeUnsupported is raised by Rename and by Open with an unknown mode.
	CodeUnsupported
	// CodeCancelled is raised when a caller's context is cancelled mid-scope.
	CodeCancelled
)

// String renders the code as its classification name.
func (c Code) String() string {
	switch c {
	case CodeTransport:
		return "Transport"
	case CodeRemote:
		return "Remote"
	case CodeNotFound:
		return "NotFound"
	case CodeAlreadyExists:
		return "AlreadyExists"
	case CodeNotADirectory:
		return "NotADirectory"
	case CodeNotAFile:
		return "NotAFile"
	case CodeBackpressureExceeded:
		return "BackpressureExceeded"
	case CodeUnsupported:
		return "Unsupported"
	case CodeCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}
