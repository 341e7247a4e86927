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
	"github.com/sirupsen/logrus"

	"github.com/nabbar/s3pathio/listing"
	"github.com/nabbar/s3pathio/pathlock"
	"github.com/nabbar/s3pathio/s3client"
)

// Facade is the composition root: one per bucket, shared by every
// caller, holding no per-path state beyond the lock map.
type Facade struct {
	cli   *s3client.Client
	list  *listing.Engine
	locks *pathlock.Map
	log   logrus.FieldLogger
}

// New builds a Facade over cli. locks may be nil, in which case a private
// Map is created; sharing one Map across Facades pointed at the same
// bucket is required for the lock to actually serialize anything.
func New(cli *s3client.Client, locks *pathlock.Map, log logrus.FieldLogger) *Facade {
	if locks == nil {
		locks = pathlock.New()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Facade{cli: cli, list: listing.New(cli), locks: locks, log: log}
}
