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

// Package pathioconfig loads the bucket descriptor and credentials an
// adapter needs to start, via spf13/viper. The pathio Facade itself never
// imports this package: it is the configuration-parsing collaborator a
// frontend wires in before constructing an s3client.Client.
package pathioconfig

// Model is the viper-unmarshalable shape of one bucket's configuration.
type Model struct {
	Region      string `mapstructure:"region" json:"region" yaml:"region" toml:"region"`
	Host        string `mapstructure:"host" json:"host" yaml:"host" toml:"host"`
	Bucket      string `mapstructure:"bucket" json:"bucket" yaml:"bucket" toml:"bucket"`
	AccessKey   string `mapstructure:"accesskey" json:"accesskey" yaml:"accesskey" toml:"accesskey"`
	SecretKey   string `mapstructure:"secretkey" json:"secretkey" yaml:"secretkey" toml:"secretkey"`
	VerifyCerts bool   `mapstructure:"verifycerts" json:"verifycerts" yaml:"verifycerts" toml:"verifycerts"`
}
