// Copyright (c) 2021 Uber Technologies, Inc.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package warc

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"strings"

	"github.com/golang/snappy"
)

var (
	gzipMagic      = []byte{0x1f, 0x8b}
	snappyStreamID = []byte{0xff, 0x06, 0x00, 0x00, 0x73, 0x4e, 0x61, 0x50, 0x70, 0x59}
)

// Compression is the compression applied to an archive stream.
type Compression byte

const (
	// CompressionAuto detects the compression from the archive name, then
	// from the leading bytes of the stream.
	CompressionAuto Compression = iota

	// CompressionNone is an uncompressed archive.
	CompressionNone

	// CompressionGzip is a gzip archive, typically one member per record.
	CompressionGzip

	// CompressionSnappy is a snappy framed archive.
	CompressionSnappy
)

var validCompressions = []Compression{
	CompressionAuto,
	CompressionNone,
	CompressionGzip,
	CompressionSnappy,
}

func (c Compression) String() string {
	switch c {
	case CompressionAuto:
		return "auto"
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionSnappy:
		return "snappy"
	default:
		return ""
	}
}

func (c Compression) valid() bool {
	for _, valid := range validCompressions {
		if c == valid {
			return true
		}
	}
	return false
}

// UnmarshalYAML unmarshals a Compression from its string form.
func (c *Compression) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var str string
	if err := unmarshal(&str); err != nil {
		return err
	}
	for _, valid := range validCompressions {
		if str == valid.String() {
			*c = valid
			return nil
		}
	}
	return fmt.Errorf("invalid Compression '%s' valid types are: %v", str, validCompressions)
}

// MarshalYAML marshals a Compression as its string form.
func (c Compression) MarshalYAML() (interface{}, error) {
	return c.String(), nil
}

// compressionFromName guesses the compression from the archive name,
// returning CompressionAuto when the name says nothing.
func compressionFromName(name string) Compression {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".gz"):
		return CompressionGzip
	case strings.HasSuffix(lower, ".sz"), strings.HasSuffix(lower, ".snappy"):
		return CompressionSnappy
	case strings.HasSuffix(lower, ".warc"):
		return CompressionNone
	default:
		return CompressionAuto
	}
}

// sniffCompression peeks at the head of the stream without consuming it.
func sniffCompression(br *bufio.Reader) (Compression, error) {
	head, err := br.Peek(len(snappyStreamID))
	if err != nil && err != io.EOF {
		return CompressionAuto, err
	}
	switch {
	case bytes.HasPrefix(head, snappyStreamID):
		return CompressionSnappy, nil
	case bytes.HasPrefix(head, gzipMagic):
		return CompressionGzip, nil
	default:
		return CompressionNone, nil
	}
}

// decompressor returns a reader of the decompressed stream and a function
// releasing any state held by the decompressor.
func decompressor(c Compression, r io.Reader) (io.Reader, func() error, error) {
	noop := func() error { return nil }
	switch c {
	case CompressionNone:
		return r, noop, nil
	case CompressionGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		// Concatenated members are read as one stream.
		zr.Multistream(true)
		return zr, zr.Close, nil
	case CompressionSnappy:
		return snappy.NewReader(r), noop, nil
	default:
		return nil, nil, errUnknownCompression
	}
}
