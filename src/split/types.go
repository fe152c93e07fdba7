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

// Package split adapts an archive file assigned as a unit of parallel work
// into a record-at-a-time reader for a split based processing runtime.
package split

import (
	"fmt"
	"io"

	"github.com/m3db/m3warc/src/warc"
	"github.com/m3db/m3warc/src/x/instrument"
)

// Split identifies a source file and a byte range within it. Archives are
// not splittable so readers always consume the whole file.
type Split struct {
	Path   string
	Start  int64
	Length int64
}

func (s Split) String() string {
	return fmt.Sprintf("%s:%d+%d", s.Path, s.Start, s.Length)
}

// FileSystem resolves split paths.
type FileSystem interface {
	// Stat returns the length in bytes of the file at path.
	Stat(path string) (int64, error)

	// Open opens the file at path for sequential reading from its start.
	Open(path string) (io.ReadCloser, error)
}

// DirLister is implemented by file systems that can expand directories.
type DirLister interface {
	// ListDir returns the paths of the regular files directly under path
	// and true if path is a directory, or false if it is not.
	ListDir(path string) ([]string, bool, error)
}

// Key is the key materialized for each record. It carries no meaning and
// is always zero.
type Key int64

// Value wraps the record handle produced by the archive codec for the
// current position of a reader. The handle is borrowed: it, and reads of
// its content, are only valid until the next call to Next or Close on the
// reader that filled the value.
type Value struct {
	record *warc.Record
}

// RecordReader turns one split into a pull based record sequence. A reader
// is used by a single goroutine: constructed once, advanced until
// exhausted, then closed exactly once.
type RecordReader interface {
	// CreateKey returns a zero key for reuse across calls to Next.
	CreateKey() *Key

	// CreateValue returns an empty value for reuse across calls to Next.
	CreateValue() *Value

	// Next advances to the next record. It returns true after setting key
	// and value from the record, false with a nil error once the split is
	// exhausted (then on every later call) and false with an error if the
	// archive is corrupt or cannot be read, which is fatal for the split.
	// Calling Next after Close fails with ErrReaderClosed.
	Next(key *Key, value *Value) (bool, error)

	// Pos returns the number of bytes of the split accounted as read.
	Pos() int64

	// Progress returns the completed fraction of the split in [0, 1].
	Progress() float32

	// Close releases the file. A second call returns ErrReaderAlreadyClosed
	// and has no effect.
	Close() error
}

// Iterator is a forward only iterator over the records of a split.
type Iterator interface {
	// Next returns whether the iterator has the next record.
	Next() bool

	// Current returns the current key and value, valid until the next call
	// to Next or Close.
	Current() (Key, *Value)

	// Err returns the error that stopped iteration, if any.
	Err() error

	// Close closes the underlying reader.
	Close() error
}

// Options represents the options for record readers.
type Options interface {
	// Validate validates the options.
	Validate() error

	// SetInstrumentOptions sets the instrumentation options.
	SetInstrumentOptions(value instrument.Options) Options

	// InstrumentOptions returns the instrumentation options.
	InstrumentOptions() instrument.Options

	// SetArchiveOptions sets the options passed to the archive codec.
	SetArchiveOptions(value warc.Options) Options

	// ArchiveOptions returns the options passed to the archive codec.
	ArchiveOptions() warc.Options

	// SetProgressMode sets how progress is reported.
	SetProgressMode(value ProgressMode) Options

	// ProgressMode returns how progress is reported.
	ProgressMode() ProgressMode
}
