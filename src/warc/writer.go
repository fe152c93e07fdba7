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
	"errors"
	"io"
	"strconv"

	"github.com/golang/snappy"
	"github.com/pborman/uuid"
)

// DefaultVersion is the version line written by Writer.
const DefaultVersion = "WARC/1.0"

var errWriterClosed = errors.New("archive writer is closed")

func newRecordID() string {
	return "<urn:uuid:" + uuid.New() + ">"
}

// Writer writes records to an archive stream. Gzip archives get one gzip
// member per record so that each record can be decompressed on its own.
type Writer struct {
	w           io.Writer
	compression Compression
	snappy      *snappy.Writer
	buf         bytes.Buffer
	closed      bool
}

// NewWriter returns a writer of archives compressed with c. CompressionAuto
// is treated as CompressionNone.
func NewWriter(w io.Writer, c Compression) *Writer {
	writer := &Writer{w: w, compression: c}
	if c == CompressionSnappy {
		writer.snappy = snappy.NewBufferedWriter(w)
	}
	return writer
}

// WriteRecord writes one record. The Content-Length field of the header is
// set from content and a WARC-Record-ID is generated if the header has none.
func (w *Writer) WriteRecord(header Header, content []byte) error {
	return w.WriteRecordVersion(DefaultVersion, header, content)
}

// WriteRecordVersion writes one record with the given version line.
func (w *Writer) WriteRecordVersion(version string, header Header, content []byte) error {
	if w.closed {
		return errWriterClosed
	}

	header = header.Clone()
	if id, ok := header.Lookup(HeaderRecordID); !ok || id == "" {
		header.Set(HeaderRecordID, newRecordID())
	}
	header.Set(HeaderContentLength, strconv.Itoa(len(content)))

	w.buf.Reset()
	bw := bufio.NewWriter(&w.buf)
	bw.WriteString(version)
	bw.WriteString("\r\n")
	for _, f := range header {
		bw.WriteString(f.Name)
		bw.WriteString(": ")
		bw.WriteString(f.Value)
		bw.WriteString("\r\n")
	}
	bw.WriteString("\r\n")
	bw.Write(content)
	bw.WriteString("\r\n\r\n")
	if err := bw.Flush(); err != nil {
		return err
	}

	switch w.compression {
	case CompressionGzip:
		zw := gzip.NewWriter(w.w)
		if _, err := zw.Write(w.buf.Bytes()); err != nil {
			return err
		}
		return zw.Close()
	case CompressionSnappy:
		_, err := w.snappy.Write(w.buf.Bytes())
		return err
	default:
		_, err := w.w.Write(w.buf.Bytes())
		return err
	}
}

// Close flushes buffered data. It does not close the underlying writer.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.snappy != nil {
		return w.snappy.Close()
	}
	return nil
}
