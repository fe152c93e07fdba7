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

package split

import (
	"errors"
	"io"

	"github.com/m3db/m3warc/src/warc"

	"github.com/cespare/xxhash/v2"
)

// maxDetachPrealloc bounds the buffer allocated up front for content, the
// Content-Length of a corrupt record can claim any size.
const maxDetachPrealloc = 64 * 1024

var errEmptyValue = errors.New("value holds no record")

// DetachedRecord is a record copied out of the archive stream. It owns its
// content and stays valid after the reader advances.
type DetachedRecord struct {
	Version string
	Header  warc.Header
	Offset  int64
	Length  int64
	Content []byte
	// Checksum is the xxhash64 of Content. It fingerprints the copy, it is
	// not a check against any digest recorded in the archive.
	Checksum uint64
}

// Record returns the borrowed record handle, or nil if the value has not
// been filled by a reader.
func (v *Value) Record() *warc.Record {
	return v.record
}

// Reset empties the value.
func (v *Value) Reset() {
	v.record = nil
}

// Detach copies the record into an owned DetachedRecord. It consumes the
// remaining record content, so it must be called before the content has
// been read by anything else.
func (v *Value) Detach() (DetachedRecord, error) {
	if v.record == nil {
		return DetachedRecord{}, errEmptyValue
	}
	rec := v.record
	prealloc := rec.ContentLength()
	if prealloc > maxDetachPrealloc {
		prealloc = maxDetachPrealloc
	}
	content := make([]byte, 0, prealloc)
	buf := make([]byte, 32*1024)
	for {
		n, err := rec.Content().Read(buf)
		content = append(content, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			return DetachedRecord{}, err
		}
	}
	return DetachedRecord{
		Version:  rec.Version,
		Header:   rec.Header.Clone(),
		Offset:   rec.Offset,
		Length:   rec.Length,
		Content:  content,
		Checksum: xxhash.Sum64(content),
	}, nil
}
