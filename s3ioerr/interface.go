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

package s3ioerr

import (
	"errors"
	"fmt"

	pkgerr "github.com/pkg/errors"
)

// Error is the interface every public pathio operation returns on failure.
type Error interface {
	error

	// Code returns the classification of this error.
	Code() Code
	// Is reports whether this error or any parent carries the given code.
	Is(code Code) bool
	// Status is the HTTP status associated with a CodeRemote error, or 0.
	Status() int
	// Unwrap exposes the immediate cause for errors.Is/errors.As.
	Unwrap() error
}

type ers struct {
	code   Code
	msg    string
	status int
	cause  error
}

func (e *ers) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("%s: %s", e.code, e.msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.code, e.msg, e.cause.Error())
}

func (e *ers) Code() Code     { return e.code }
func (e *ers) Status() int    { return e.status }
func (e *ers) Unwrap() error  { return e.cause }
func (e *ers) Is(code Code) bool {
	var cur error = e
	for cur != nil {
		if se, ok := cur.(Error); ok && se.Code() == code {
			return true
		}
		cur = errors.Unwrap(cur)
	}
	return false
}

// New builds an Error with the given code and message, optionally wrapping
// a cause. The cause is captured with github.com/pkg/errors.WithStack so a
// stack trace survives the wrap even when the original error has none.
func New(code Code, msg string, cause error) Error {
	if cause != nil {
		cause = pkgerr.WithStack(cause)
	}
	return &ers{code: code, msg: msg, cause: cause}
}

// Newf is New with a formatted message.
func Newf(code Code, cause error, format string, args ...any) Error {
	return New(code, fmt.Sprintf(format, args...), cause)
}

// Remote builds a CodeRemote error carrying the HTTP status and a snippet
// of the response body.
func Remote(status int, body []byte) Error {
	const maxBody = 512
	b := body
	if len(b) > maxBody {
		b = b[:maxBody]
	}
	return &ers{
		code:   CodeRemote,
		msg:    fmt.Sprintf("unexpected status %d: %s", status, string(b)),
		status: status,
	}
}

// As mirrors errors.As for the Error interface, so callers can use a plain
// function instead of declaring a local variable of interface type.
func As(err error) (Error, bool) {
	var e Error
	ok := errors.As(err, &e)
	return e, ok
}

// Is reports whether err is an Error carrying the given code anywhere in
// its chain.
func Is(err error, code Code) bool {
	e, ok := As(err)
	if !ok {
		return false
	}
	return e.Is(code)
}
