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

// Package warc reads and writes WARC archives: sequences of records, each a
// block of named header fields followed by a length-delimited content block.
// Streams may be uncompressed, gzip compressed (usually one member per
// record) or snappy framed.
package warc

// Reader is a forward-only, non-restartable cursor over the records of an
// archive.
type Reader interface {
	// ReadRecord returns the next record, or io.EOF once the archive is
	// exhausted. The returned record, including its content, is only valid
	// until the next call to ReadRecord or Close; afterwards reading its
	// content fails with ErrRecordInvalidated. Malformed or truncated records
	// fail with a *CorruptRecordError and every later call fails the same way.
	ReadRecord() (*Record, error)

	// Consumed returns the number of bytes consumed so far from the
	// underlying (possibly compressed) stream.
	Consumed() int64

	// Close releases the reader. It does not close the underlying stream,
	// which remains owned by the caller.
	Close() error
}

// Options represents the options for reading and writing archives.
type Options interface {
	// Validate validates the options.
	Validate() error

	// SetCompression sets the compression of the stream, CompressionAuto
	// detects it from the archive name and the leading bytes of the stream.
	SetCompression(value Compression) Options

	// Compression returns the compression of the stream.
	Compression() Compression

	// SetReadBufferSize sets the read buffer size, which also bounds the
	// length of a single header line.
	SetReadBufferSize(value int) Options

	// ReadBufferSize returns the read buffer size.
	ReadBufferSize() int
}
