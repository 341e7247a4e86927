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

package pathioconfig

import (
	"bytes"
	"encoding/json"

	"github.com/spf13/viper"

	"github.com/nabbar/s3pathio/bucket"
	"github.com/nabbar/s3pathio/s3ioerr"
)

var _defaultConfig = []byte(`{
  "region": "",
  "host": "",
  "bucket": "",
  "accesskey": "",
  "secretkey": "",
  "verifycerts": true
}`)

// DefaultConfig renders a starter Model (empty strings, verifycerts true)
// as indented JSON, for frontends that print a starter config file.
func DefaultConfig(indent string) []byte {
	var out bytes.Buffer
	if err := json.Indent(&out, _defaultConfig, "", indent); err != nil {
		return _defaultConfig
	}
	return out.Bytes()
}

// Load reads key (a viper sub-tree, e.g. "s3") into a Model and returns the
// bucket.Descriptor plus a static bucket.Credentials supplier built from it.
func Load(v *viper.Viper, key string) (bucket.Descriptor, bucket.Supplier, error) {
	var m Model
	if err := v.UnmarshalKey(key, &m); err != nil {
		return bucket.Descriptor{}, nil, s3ioerr.New(s3ioerr.CodeUnknown, "failed to unmarshal pathio config", err)
	}
	return NewConfig(m.Bucket, m.AccessKey, m.SecretKey, m.Host, m.Region, m.VerifyCerts)
}

// NewConfig builds a Descriptor and a static Supplier directly, extended
// with the host and verify-certs fields this module's Descriptor carries.
func NewConfig(bucketName, accessKey, secretKey, host, region string, verifyCerts bool) (bucket.Descriptor, bucket.Supplier, error) {
	if bucketName == "" || host == "" || region == "" {
		return bucket.Descriptor{}, nil, s3ioerr.New(s3ioerr.CodeUnknown, "bucket, host and region are required", nil)
	}

	desc := bucket.Descriptor{
		Region:      region,
		Host:        host,
		Name:        bucketName,
		VerifyCerts: verifyCerts,
	}

	return desc, bucket.Static(accessKey, secretKey), nil
}
