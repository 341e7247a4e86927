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

package pusher

import (
	"encoding/xml"

	"github.com/nabbar/s3pathio/s3ioerr"
)

// completedPart is one (part_number, etag) pair collected in submission
// order.
type completedPart struct {
	Number int
	ETag   string
}

type xmlInitiateMultipartUploadResult struct {
	XMLName  xml.Name `xml:"InitiateMultipartUploadResult"`
	UploadID string   `xml:"UploadId"`
}

func parseUploadID(body []byte) (string, error) {
	var parsed xmlInitiateMultipartUploadResult
	if err := xml.Unmarshal(body, &parsed); err != nil {
		return "", s3ioerr.New(s3ioerr.CodeRemote, "failed to parse CreateMultipartUpload response", err)
	}
	if parsed.UploadID == "" {
		return "", s3ioerr.New(s3ioerr.CodeRemote, "CreateMultipartUpload response missing UploadId", nil)
	}
	return parsed.UploadID, nil
}

type xmlCompletedPart struct {
	PartNumber int    `xml:"PartNumber"`
	ETag       string `xml:"ETag"`
}

type xmlCompleteMultipartUpload struct {
	XMLName xml.Name           `xml:"CompleteMultipartUpload"`
	Part    []xmlCompletedPart `xml:"Part"`
}

func encodeCompleteBody(parts []completedPart) ([]byte, error) {
	doc := xmlCompleteMultipartUpload{Part: make([]xmlCompletedPart, len(parts))}
	for i, p := range parts {
		doc.Part[i] = xmlCompletedPart{PartNumber: p.Number, ETag: p.ETag}
	}

	body, err := xml.Marshal(doc)
	if err != nil {
		return nil, s3ioerr.New(s3ioerr.CodeUnknown, "failed to encode CompleteMultipartUpload body", err)
	}
	return body, nil
}
