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
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Sign produces the outgoing header set for r, including Authorization.
func Sign(r Request) Headers {
	amzdate := r.Now.UTC().Format("20060102T150405Z")
	datestamp := r.Now.UTC().Format("20060102")

	lowered := make(map[string]string, len(r.PreAuthHeaders))
	for k, v := range r.PreAuthHeaders {
		lowered[strings.ToLower(k)] = collapseWhitespace(v)
	}
	lowered["host"] = r.Host
	lowered["x-amz-content-sha256"] = r.PayloadHashHex
	lowered["x-amz-date"] = amzdate

	headerKeys := make([]string, 0, len(lowered))
	for k := range lowered {
		headerKeys = append(headerKeys, k)
	}
	sort.Strings(headerKeys)
	signedHeaders := strings.Join(headerKeys, ";")

	var canonicalHeaders strings.Builder
	for _, k := range headerKeys {
		canonicalHeaders.WriteString(k)
		canonicalHeaders.WriteByte(':')
		canonicalHeaders.WriteString(lowered[k])
		canonicalHeaders.WriteByte('\n')
	}

	canonicalRequest := strings.Join([]string{
		r.Method,
		canonicalURI(r.FullPath),
		canonicalQuery(r.Query),
		canonicalHeaders.String(),
		signedHeaders,
		r.PayloadHashHex,
	}, "\n")

	credentialScope := fmt.Sprintf("%s/%s/%s/aws4_request", datestamp, r.Region, service)
	stringToSign := strings.Join([]string{
		algorithm,
		amzdate,
		credentialScope,
		hexSHA256(canonicalRequest),
	}, "\n")

	signingKey := deriveSigningKey(r.SecretAccessKey, datestamp, r.Region)
	signature := hex.EncodeToString(hmacSHA256(signingKey, stringToSign))

	headers := make(Headers, len(r.PreAuthHeaders)+4)
	for k, v := range r.PreAuthHeaders {
		headers[k] = v
	}
	headers["x-amz-date"] = amzdate
	headers["x-amz-content-sha256"] = r.PayloadHashHex
	headers["Authorization"] = fmt.Sprintf(
		"%s Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		algorithm, r.AccessKeyID, credentialScope, signedHeaders, signature,
	)

	return headers
}

func deriveSigningKey(secretAccessKey, datestamp, region string) []byte {
	kDate := hmacSHA256([]byte("AWS4"+secretAccessKey), datestamp)
	kRegion := hmacSHA256(kDate, region)
	kService := hmacSHA256(kRegion, service)
	return hmacSHA256(kService, "aws4_request")
}

func hmacSHA256(key []byte, data string) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(data))
	return h.Sum(nil)
}

func hexSHA256(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// HashPayload is a convenience for producing the PayloadHashHex field.
func HashPayload(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
