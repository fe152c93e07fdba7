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
	"errors"
	"fmt"
)

const (
	minReadBufferSize     = 256
	defaultReadBufferSize = 65536
)

var errReadBufferSizeTooSmall = fmt.Errorf("read buffer size must be at least %d", minReadBufferSize)

var errUnknownCompression = errors.New("unknown compression")

type options struct {
	compression    Compression
	readBufferSize int
}

// NewOptions creates a new set of archive options.
func NewOptions() Options {
	return &options{
		compression:    CompressionAuto,
		readBufferSize: defaultReadBufferSize,
	}
}

func (o *options) Validate() error {
	if o.readBufferSize < minReadBufferSize {
		return errReadBufferSizeTooSmall
	}
	if !o.compression.valid() {
		return errUnknownCompression
	}
	return nil
}

func (o *options) SetCompression(value Compression) Options {
	opts := *o
	opts.compression = value
	return &opts
}

func (o *options) Compression() Compression {
	return o.compression
}

func (o *options) SetReadBufferSize(value int) Options {
	opts := *o
	opts.readBufferSize = value
	return &opts
}

func (o *options) ReadBufferSize() int {
	return o.readBufferSize
}
