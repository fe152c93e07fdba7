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
	"io"
	"strconv"
	"strings"
)

// Well known header names.
const (
	HeaderType          = "WARC-Type"
	HeaderRecordID      = "WARC-Record-ID"
	HeaderDate          = "WARC-Date"
	HeaderTargetURI     = "WARC-Target-URI"
	HeaderContentLength = "Content-Length"
	HeaderContentType   = "Content-Type"
)

// Field is a single named header field.
type Field struct {
	Name  string
	Value string
}

// Header is the ordered list of fields of a record.
type Header []Field

// Get returns the value of the first field named name, compared case
// insensitively, or "" if there is none.
func (h Header) Get(name string) string {
	v, _ := h.Lookup(name)
	return v
}

// Lookup is like Get but reports whether the field was present.
func (h Header) Lookup(name string) (string, bool) {
	for _, f := range h {
		if strings.EqualFold(f.Name, name) {
			return f.Value, true
		}
	}
	return "", false
}

// Set replaces the value of the first field named name, appending a new
// field if there is none.
func (h *Header) Set(name, value string) {
	for i, f := range *h {
		if strings.EqualFold(f.Name, name) {
			(*h)[i].Value = value
			return
		}
	}
	*h = append(*h, Field{Name: name, Value: value})
}

// Clone returns a deep copy of the header.
func (h Header) Clone() Header {
	if h == nil {
		return nil
	}
	clone := make(Header, len(h))
	copy(clone, h)
	return clone
}

// Record is a handle on a single archive record. Its content streams from
// the archive, so a record is only valid until the reader that produced it
// advances.
type Record struct {
	// Version is the version from the record's version line, e.g. "WARC/1.0".
	Version string
	// Header is the record header.
	Header Header
	// Offset is the offset of the record in the decompressed stream.
	Offset int64
	// Length is the length of the record in the decompressed stream: version
	// line, header block and content block, excluding the trailer.
	Length int64

	contentLength int64
	content       *contentReader
}

// ContentLength returns the length of the content block.
func (r *Record) ContentLength() int64 {
	return r.contentLength
}

// Type returns the WARC-Type of the record.
func (r *Record) Type() string {
	return r.Header.Get(HeaderType)
}

// ID returns the WARC-Record-ID of the record.
func (r *Record) ID() string {
	return r.Header.Get(HeaderRecordID)
}

// TargetURI returns the WARC-Target-URI of the record.
func (r *Record) TargetURI() string {
	return r.Header.Get(HeaderTargetURI)
}

// Content returns a reader of the content block. All readers returned for
// a record share the same position.
func (r *Record) Content() io.Reader {
	return r.content
}

// Valid returns whether the record content can still be read.
func (r *Record) Valid() bool {
	return r.content != nil && !r.content.invalid
}

type contentReader struct {
	rr        *reader
	offset    int64
	remaining int64
	invalid   bool
}

func (c *contentReader) Read(p []byte) (int, error) {
	if c.invalid {
		return 0, ErrRecordInvalidated
	}
	if c.remaining <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > c.remaining {
		p = p[:c.remaining]
	}
	n, err := c.rr.br.Read(p)
	c.remaining -= int64(n)
	c.rr.pos += int64(n)
	switch {
	case err == io.EOF && c.remaining > 0:
		err = io.ErrUnexpectedEOF
	case err == io.EOF:
		return n, nil
	case err == nil:
		return n, nil
	}
	// The stream cannot be resynchronized after a broken content block.
	c.rr.err = c.rr.corrupt(c.offset, err)
	return n, c.rr.err
}

func (c *contentReader) drain() error {
	if c.remaining <= 0 {
		return nil
	}
	_, err := io.Copy(io.Discard, c)
	return err
}

func parseContentLength(h Header) (int64, error) {
	v, ok := h.Lookup(HeaderContentLength)
	if !ok {
		return 0, ErrMissingContentLength
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || n < 0 {
		return 0, ErrInvalidContentLength
	}
	return n, nil
}
