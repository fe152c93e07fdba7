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

var (
	// ErrInvalidVersion is returned when a record does not start with a
	// WARC version line.
	ErrInvalidVersion = errors.New("record does not start with a WARC version line")

	// ErrMalformedHeader is returned for a header line that is not a
	// "name: value" pair.
	ErrMalformedHeader = errors.New("malformed header line")

	// ErrHeaderLineTooLong is returned when a header line does not fit in
	// the read buffer.
	ErrHeaderLineTooLong = errors.New("header line exceeds read buffer size")

	// ErrMissingContentLength is returned when a record has no
	// Content-Length header.
	ErrMissingContentLength = errors.New("record has no Content-Length header")

	// ErrInvalidContentLength is returned when Content-Length is not a
	// non-negative integer.
	ErrInvalidContentLength = errors.New("record has an invalid Content-Length header")

	// ErrMissingTrailer is returned when a content block is not followed by
	// the two line breaks that end a record.
	ErrMissingTrailer = errors.New("record content is not followed by a record trailer")

	// ErrRecordInvalidated is returned when reading the content of a record
	// after the reader has moved past it.
	ErrRecordInvalidated = errors.New("record is no longer valid, the reader has advanced")

	// ErrReaderClosed is returned when reading from a closed reader.
	ErrReaderClosed = errors.New("archive reader is closed")
)

// CorruptRecordError is returned when the record starting at Offset in the
// decompressed stream cannot be parsed.
type CorruptRecordError struct {
	Name   string
	Offset int64
	Err    error
}

func (e *CorruptRecordError) Error() string {
	return fmt.Sprintf("corrupt record in %s at offset %d: %v", e.Name, e.Offset, e.Err)
}

// Unwrap returns the cause.
func (e *CorruptRecordError) Unwrap() error {
	return e.Err
}

// IsCorrupt returns whether err is, or wraps, a *CorruptRecordError.
func IsCorrupt(err error) bool {
	var target *CorruptRecordError
	return errors.As(err, &target)
}
