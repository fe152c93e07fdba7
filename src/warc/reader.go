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
	"io"
	"strings"

	"go.uber.org/multierr"
)

const versionPrefix = "WARC/"

type reader struct {
	name    string
	counter *countingReader
	br      *bufio.Reader
	release func() error

	// pos is the offset in the decompressed stream.
	pos     int64
	pending *Record
	current *Record
	err     error
	closed  bool
}

// Open binds a reader to the archive stream r. The name is used to detect
// the compression of the stream and to annotate errors. The header of the
// first record is parsed before returning so that streams that are not
// archives fail here rather than on the first read. An empty stream is a
// valid archive with no records.
func Open(name string, r io.Reader, opts Options) (Reader, error) {
	if opts == nil {
		opts = NewOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	var (
		counter     = &countingReader{r: r}
		raw         = bufio.NewReaderSize(counter, opts.ReadBufferSize())
		compression = opts.Compression()
	)
	if compression == CompressionAuto {
		compression = compressionFromName(name)
	}
	if compression == CompressionAuto {
		sniffed, err := sniffCompression(raw)
		if err != nil {
			return nil, err
		}
		compression = sniffed
	}

	rd := &reader{
		name:    name,
		counter: counter,
		br:      raw,
		release: func() error { return nil },
	}

	dr, release, err := decompressor(compression, raw)
	if err == io.EOF {
		// Nothing to decompress.
		rd.err = io.EOF
		return rd, nil
	}
	if err != nil {
		return nil, rd.corrupt(0, err)
	}
	rd.release = release
	if compression != CompressionNone {
		rd.br = bufio.NewReaderSize(dr, opts.ReadBufferSize())
	}

	first, err := rd.next()
	if err == io.EOF {
		rd.err = io.EOF
		return rd, nil
	}
	if err != nil {
		return nil, multierr.Append(err, rd.release())
	}
	rd.pending = first
	return rd, nil
}

func (r *reader) ReadRecord() (*Record, error) {
	if r.closed {
		return nil, ErrReaderClosed
	}
	if r.err != nil {
		return nil, r.err
	}
	if r.pending != nil {
		r.current, r.pending = r.pending, nil
		return r.current, nil
	}
	if r.current != nil {
		err := r.finish(r.current)
		r.current = nil
		if err != nil {
			r.err = err
			return nil, err
		}
	}

	rec, err := r.next()
	if err != nil {
		r.err = err
		return nil, err
	}
	r.current = rec
	return rec, nil
}

func (r *reader) Consumed() int64 {
	return r.counter.n
}

func (r *reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	for _, rec := range []*Record{r.pending, r.current} {
		if rec != nil {
			rec.content.invalid = true
		}
	}
	r.pending, r.current = nil, nil
	return r.release()
}

// next parses the version line and header block of the next record,
// leaving the stream positioned at the start of its content.
func (r *reader) next() (*Record, error) {
	offset := r.pos
	version, err := r.readLine()
	for err == nil && version == "" {
		offset = r.pos
		version, err = r.readLine()
	}
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, r.corrupt(offset, err)
	}
	if !strings.HasPrefix(version, versionPrefix) {
		return nil, r.corrupt(offset, ErrInvalidVersion)
	}

	var header Header
	for {
		line, err := r.readLine()
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		if err != nil {
			return nil, r.corrupt(offset, err)
		}
		if line == "" {
			break
		}
		if line[0] == ' ' || line[0] == '\t' {
			// Folded continuation of the previous field.
			if len(header) == 0 {
				return nil, r.corrupt(offset, ErrMalformedHeader)
			}
			last := &header[len(header)-1]
			last.Value = last.Value + " " + strings.TrimSpace(line)
			continue
		}
		idx := strings.IndexByte(line, ':')
		if idx <= 0 {
			return nil, r.corrupt(offset, ErrMalformedHeader)
		}
		header = append(header, Field{
			Name:  strings.TrimSpace(line[:idx]),
			Value: strings.TrimSpace(line[idx+1:]),
		})
	}

	contentLength, err := parseContentLength(header)
	if err != nil {
		return nil, r.corrupt(offset, err)
	}

	rec := &Record{
		Version:       version,
		Header:        header,
		Offset:        offset,
		Length:        r.pos - offset + contentLength,
		contentLength: contentLength,
	}
	rec.content = &contentReader{rr: r, offset: offset, remaining: contentLength}
	return rec, nil
}

// finish skips whatever is left of the record content and its trailer,
// then invalidates the record.
func (r *reader) finish(rec *Record) error {
	err := rec.content.drain()
	rec.content.invalid = true
	if err != nil {
		return err
	}
	for i := 0; i < 2; i++ {
		line, err := r.readLine()
		if err == io.EOF || (err == nil && line != "") {
			err = ErrMissingTrailer
		}
		if err != nil {
			return r.corrupt(rec.Offset, err)
		}
	}
	return nil
}

// readLine returns the next line without its line break. It returns io.EOF
// only if the stream ended cleanly before the line started.
func (r *reader) readLine() (string, error) {
	line, err := r.br.ReadSlice('\n')
	r.pos += int64(len(line))
	switch err {
	case nil:
		return strings.TrimRight(string(line), "\r\n"), nil
	case bufio.ErrBufferFull:
		return "", ErrHeaderLineTooLong
	case io.EOF:
		if len(line) == 0 {
			return "", io.EOF
		}
		return "", io.ErrUnexpectedEOF
	default:
		return "", err
	}
}

func (r *reader) corrupt(offset int64, err error) error {
	if IsCorrupt(err) {
		return err
	}
	return &CorruptRecordError{Name: r.name, Offset: offset, Err: err}
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
