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

package sigv4

import (
	"sort"
	"strings"
)

const upperhex = "0123456789ABCDEF"

// percentEncode escapes every byte of s that is not in the unreserved set
// (A-Z a-z 0-9 - _ . ~) or listed in extraSafe, using upper-case hex, per
// the RFC 3986 flavour of encoding SigV4 requires.
func percentEncode(s string, extraSafe string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) || strings.IndexByte(extraSafe, c) >= 0 {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z':
		return true
	case c >= 'a' && c <= 'z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '-' || c == '_' || c == '.' || c == '~':
		return true
	default:
		return false
	}
}

// canonicalURI percent-encodes a path, keeping '/' and '~' unreserved.
func canonicalURI(path string) string {
	return percentEncode(path, "/")
}

// EncodePath percent-encodes path the same way canonicalURI does, so a
// caller building the wire request URL stays byte-for-byte consistent
// with the one that computed the signature over it.
func EncodePath(path string) string {
	return canonicalURI(path)
}

// canonicalQueryComponent percent-encodes a query key or value, keeping
// '~' unreserved (already covered by the base unreserved set).
func canonicalQueryComponent(s string) string {
	return percentEncode(s, "")
}

// canonicalQuery sorts the query map lexicographically by encoded key then
// encoded value and joins it k=v with '&'.
func canonicalQuery(query map[string]string) string {
	type kv struct{ k, v string }
	pairs := make([]kv, 0, len(query))
	for k, v := range query {
		pairs = append(pairs, kv{canonicalQueryComponent(k), canonicalQueryComponent(v)})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].k != pairs[j].k {
			return pairs[i].k < pairs[j].k
		}
		return pairs[i].v < pairs[j].v
	})
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, p.k+"="+p.v)
	}
	return strings.Join(parts, "&")
}

// collapseWhitespace trims and collapses internal whitespace runs to a
// single space.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
