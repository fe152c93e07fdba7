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
	"path/filepath"
	"time"

	"github.com/m3db/m3warc/src/warc"
	"github.com/m3db/m3warc/src/x/instrument"

	pkgerrors "github.com/pkg/errors"
	"github.com/uber-go/tally"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// placeholderKey is the key set for every record. Consumers of the reader
// contract have always seen zero here, so it is kept rather than replaced
// with an ordinal or offset.
const placeholderKey Key = 0

var (
	// ErrReaderClosed is returned by Next after Close.
	ErrReaderClosed = errors.New("record reader is closed")

	// ErrReaderAlreadyClosed is returned by every Close after the first.
	ErrReaderAlreadyClosed = errors.New("record reader is already closed")

	errNilKeyOrValue = errors.New("key and value must not be nil")
)

type recordReaderMetrics struct {
	open    instrument.MethodMetrics
	next    instrument.MethodMetrics
	close   instrument.MethodMetrics
	records tally.Counter
}

func newRecordReaderMetrics(scope tally.Scope, samplingRate float64) recordReaderMetrics {
	return recordReaderMetrics{
		open:    instrument.NewMethodMetrics(scope, "open", samplingRate),
		next:    instrument.NewMethodMetrics(scope, "next", samplingRate),
		close:   instrument.NewMethodMetrics(scope, "close", samplingRate),
		records: scope.Counter("records"),
	}
}

type recordReader struct {
	split        Split
	progressMode ProgressMode
	logger       *zap.Logger
	metrics      recordReaderMetrics

	stream  io.ReadCloser
	archive warc.Reader

	totalFileSize  int64
	totalBytesRead int64

	done   bool
	err    error
	closed bool
}

// NewRecordReader opens the file of split through fs and binds the archive
// codec to it. Failing to stat or open the file, or to parse the head of
// the archive, is fatal to the split; any stream opened is released before
// the error is returned. Filesystem errors keep their identity, so
// errors.Is(err, os.ErrNotExist) holds for a missing file.
func NewRecordReader(split Split, fs FileSystem, opts Options) (RecordReader, error) {
	if opts == nil {
		opts = NewOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	var (
		iopts   = opts.InstrumentOptions()
		scope   = iopts.MetricsScope().SubScope("record-reader")
		metrics = newRecordReaderMetrics(scope, iopts.TimerSamplingRate())
		logger  = iopts.Logger().With(zap.String("path", split.Path))
		start   = time.Now()
	)

	r, err := openRecordReader(split, fs, opts)
	metrics.open.ReportSuccessOrError(err, time.Since(start))
	if err != nil {
		logger.Error("could not open split", zap.Error(err))
		return nil, err
	}

	r.logger = logger
	r.metrics = metrics
	logger.Debug("opened split",
		zap.Int64("size", r.totalFileSize),
		zap.Stringer("progressMode", r.progressMode))
	return r, nil
}

func openRecordReader(split Split, fs FileSystem, opts Options) (*recordReader, error) {
	size, err := fs.Stat(split.Path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "could not stat split %s", split.Path)
	}

	stream, err := fs.Open(split.Path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "could not open split %s", split.Path)
	}

	archive, err := warc.Open(filepath.Base(split.Path), stream, opts.ArchiveOptions())
	if err != nil {
		err = pkgerrors.Wrapf(err, "could not read archive of split %s", split.Path)
		return nil, multierr.Append(err, stream.Close())
	}

	return &recordReader{
		split:         split,
		progressMode:  opts.ProgressMode(),
		stream:        stream,
		archive:       archive,
		totalFileSize: size,
	}, nil
}

func (r *recordReader) CreateKey() *Key {
	return new(Key)
}

func (r *recordReader) CreateValue() *Value {
	return &Value{}
}

func (r *recordReader) Next(key *Key, value *Value) (bool, error) {
	if r.closed {
		return false, ErrReaderClosed
	}
	if key == nil || value == nil {
		return false, errNilKeyOrValue
	}
	if r.err != nil {
		return false, r.err
	}
	if r.done {
		return false, nil
	}

	start := time.Now()
	rec, err := r.archive.ReadRecord()
	if err == io.EOF {
		r.done = true
		r.logger.Debug("split exhausted")
		return false, nil
	}
	r.metrics.next.ReportSuccessOrError(err, time.Since(start))
	if err != nil {
		r.err = pkgerrors.Wrapf(err, "could not read record of split %s", r.split.Path)
		r.logger.Error("could not read record", zap.Error(err))
		return false, r.err
	}

	*key = placeholderKey
	value.record = rec
	r.metrics.records.Inc(1)
	if r.progressMode == ProgressModeStreaming {
		r.totalBytesRead = r.consumed()
	}
	return true, nil
}

func (r *recordReader) consumed() int64 {
	consumed := r.archive.Consumed()
	if consumed > r.totalFileSize {
		return r.totalFileSize
	}
	return consumed
}

func (r *recordReader) Pos() int64 {
	return r.totalBytesRead
}

// Progress reports zero then one for an empty file, before and after
// Close respectively.
func (r *recordReader) Progress() float32 {
	if r.totalFileSize == 0 {
		if r.closed {
			return 1
		}
		return 0
	}
	return float32(r.totalBytesRead) / float32(r.totalFileSize)
}

func (r *recordReader) Close() error {
	if r.closed {
		return ErrReaderAlreadyClosed
	}
	r.closed = true
	r.totalBytesRead = r.totalFileSize

	start := time.Now()
	// Release the stream even if the codec fails to close.
	err := multierr.Append(r.archive.Close(), r.stream.Close())
	r.metrics.close.ReportSuccessOrError(err, time.Since(start))
	if err != nil {
		r.logger.Error("could not close split", zap.Error(err))
		return pkgerrors.Wrapf(err, "could not close split %s", r.split.Path)
	}
	return nil
}
