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
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/m3db/m3warc/src/warc"
	"github.com/m3db/m3warc/src/x/instrument"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally"
)

func archiveBytes(t *testing.T, c warc.Compression, n int) []byte {
	var buf bytes.Buffer
	w := warc.NewWriter(&buf, c)
	for i := 0; i < n; i++ {
		header := warc.Header{
			{Name: warc.HeaderType, Value: "response"},
			{Name: warc.HeaderRecordID, Value: fmt.Sprintf("<urn:uuid:%d>", i)},
			{Name: warc.HeaderTargetURI, Value: fmt.Sprintf("http://example.com/%d", i)},
		}
		require.NoError(t, w.WriteRecord(header, []byte(fmt.Sprintf("content %d", i))))
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func writeArchiveFile(t *testing.T, dir, name string, data []byte) Split {
	path := filepath.Join(dir, name)
	require.NoError(t, ioutil.WriteFile(path, data, 0644))
	return Split{Path: path, Length: int64(len(data))}
}

func newTempDir(t *testing.T) (string, func()) {
	dir, err := ioutil.TempDir("", "split")
	require.NoError(t, err)
	return dir, func() { os.RemoveAll(dir) }
}

type closeRecorder struct {
	io.Reader
	closes   int
	closeErr error
}

func (c *closeRecorder) Close() error {
	c.closes++
	return c.closeErr
}

func TestRecordReaderThreeRecords(t *testing.T) {
	dir, cleanup := newTempDir(t)
	defer cleanup()

	data := archiveBytes(t, warc.CompressionGzip, 3)
	split := writeArchiveFile(t, dir, "three.warc.gz", data)

	r, err := NewRecordReader(split, NewOSFileSystem(), NewOptions())
	require.NoError(t, err)

	var (
		key      = r.CreateKey()
		value    = r.CreateValue()
		keys     []Key
		ids      []string
		handles  []*warc.Record
		contents []string
	)
	for {
		assert.Equal(t, int64(0), r.Pos())
		assert.Equal(t, float32(0), r.Progress())

		*key = 42
		ok, err := r.Next(key, value)
		require.NoError(t, err)
		if !ok {
			break
		}
		keys = append(keys, *key)
		ids = append(ids, value.Record().ID())
		handles = append(handles, value.Record())
		content, err := ioutil.ReadAll(value.Record().Content())
		require.NoError(t, err)
		contents = append(contents, string(content))
	}

	assert.Equal(t, []Key{0, 0, 0}, keys)
	assert.Equal(t, []string{"<urn:uuid:0>", "<urn:uuid:1>", "<urn:uuid:2>"}, ids)
	assert.Equal(t, []string{"content 0", "content 1", "content 2"}, contents)
	require.Len(t, handles, 3)
	assert.True(t, handles[0] != handles[1] && handles[1] != handles[2])

	// Exhaustion is idempotent and leaves outputs untouched.
	last := value.Record()
	*key = 7
	for i := 0; i < 3; i++ {
		ok, err := r.Next(key, value)
		require.NoError(t, err)
		assert.False(t, ok)
	}
	assert.Equal(t, Key(7), *key)
	assert.Equal(t, last, value.Record())
	assert.Equal(t, int64(0), r.Pos())

	require.NoError(t, r.Close())
	assert.Equal(t, int64(len(data)), r.Pos())
	assert.Equal(t, float32(1), r.Progress())
}

func TestRecordReaderPositionIgnoresSplitLength(t *testing.T) {
	dir, cleanup := newTempDir(t)
	defer cleanup()

	data := archiveBytes(t, warc.CompressionNone, 1)
	split := writeArchiveFile(t, dir, "one.warc", data)
	split.Length = 1

	r, err := NewRecordReader(split, NewOSFileSystem(), nil)
	require.NoError(t, err)

	// The length is cached at construction, later changes to the file
	// are not observed.
	require.NoError(t, ioutil.WriteFile(split.Path, append(data, data...), 0644))
	require.NoError(t, r.Close())
	assert.Equal(t, int64(len(data)), r.Pos())
}

func TestRecordReaderEmptyFile(t *testing.T) {
	dir, cleanup := newTempDir(t)
	defer cleanup()

	split := writeArchiveFile(t, dir, "empty.warc", nil)
	r, err := NewRecordReader(split, NewOSFileSystem(), nil)
	require.NoError(t, err)

	ok, err := r.Next(r.CreateKey(), r.CreateValue())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, float32(0), r.Progress())
	assert.Equal(t, int64(0), r.Pos())

	require.NoError(t, r.Close())
	assert.Equal(t, float32(1), r.Progress())
	assert.Equal(t, int64(0), r.Pos())
}

func TestRecordReaderStreamingProgress(t *testing.T) {
	dir, cleanup := newTempDir(t)
	defer cleanup()

	data := archiveBytes(t, warc.CompressionNone, 50)
	split := writeArchiveFile(t, dir, "many.warc", data)

	opts := NewOptions().
		SetProgressMode(ProgressModeStreaming).
		SetArchiveOptions(warc.NewOptions().SetReadBufferSize(256))
	r, err := NewRecordReader(split, NewOSFileSystem(), opts)
	require.NoError(t, err)

	var (
		key, value = r.CreateKey(), r.CreateValue()
		last       int64
		progressed bool
	)
	for {
		ok, err := r.Next(key, value)
		require.NoError(t, err)
		if !ok {
			break
		}
		pos := r.Pos()
		require.True(t, pos >= last)
		require.True(t, pos <= int64(len(data)))
		if pos > 0 && pos < int64(len(data)) {
			progressed = true
		}
		last = pos
		p := r.Progress()
		require.True(t, p >= 0 && p <= 1)
	}
	assert.True(t, progressed)

	require.NoError(t, r.Close())
	assert.Equal(t, float32(1), r.Progress())
}

func TestRecordReaderCloseTwice(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	stream := &closeRecorder{Reader: bytes.NewReader(archiveBytes(t, warc.CompressionNone, 1))}
	fs := NewMockFileSystem(ctrl)
	fs.EXPECT().Stat("a.warc").Return(int64(100), nil)
	fs.EXPECT().Open("a.warc").Return(stream, nil)

	r, err := NewRecordReader(Split{Path: "a.warc"}, fs, nil)
	require.NoError(t, err)

	require.NoError(t, r.Close())
	assert.Equal(t, ErrReaderAlreadyClosed, r.Close())
	assert.Equal(t, 1, stream.closes)
	assert.Equal(t, int64(100), r.Pos())

	ok, err := r.Next(r.CreateKey(), r.CreateValue())
	assert.False(t, ok)
	assert.Equal(t, ErrReaderClosed, err)
}

func TestRecordReaderCloseError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	closeErr := errors.New("close failed")
	stream := &closeRecorder{
		Reader:   bytes.NewReader(archiveBytes(t, warc.CompressionGzip, 2)),
		closeErr: closeErr,
	}
	fs := NewMockFileSystem(ctrl)
	fs.EXPECT().Stat("a.warc.gz").Return(int64(10), nil)
	fs.EXPECT().Open("a.warc.gz").Return(stream, nil)

	r, err := NewRecordReader(Split{Path: "a.warc.gz"}, fs, nil)
	require.NoError(t, err)

	err = r.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), closeErr.Error())
	assert.Equal(t, 1, stream.closes)
	assert.Equal(t, int64(10), r.Pos())

	// Failing close still counts as closed.
	assert.Equal(t, ErrReaderAlreadyClosed, r.Close())
	assert.Equal(t, 1, stream.closes)
}

func TestRecordReaderStatError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fs := NewMockFileSystem(ctrl)
	fs.EXPECT().Stat("a.warc").Return(int64(0), os.ErrPermission)

	_, err := NewRecordReader(Split{Path: "a.warc"}, fs, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrPermission))
}

func TestRecordReaderOpenError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fs := NewMockFileSystem(ctrl)
	fs.EXPECT().Stat("a.warc").Return(int64(10), nil)
	fs.EXPECT().Open("a.warc").Return(nil, os.ErrPermission)

	_, err := NewRecordReader(Split{Path: "a.warc"}, fs, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrPermission))
}

func TestRecordReaderMissingFile(t *testing.T) {
	dir, cleanup := newTempDir(t)
	defer cleanup()

	_, err := NewRecordReader(Split{Path: filepath.Join(dir, "missing.warc")}, NewOSFileSystem(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestRecordReaderCorruptHeaderReleasesStream(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	stream := &closeRecorder{Reader: bytes.NewReader([]byte("not an archive\r\n\r\n"))}
	fs := NewMockFileSystem(ctrl)
	fs.EXPECT().Stat("a.warc").Return(int64(18), nil)
	fs.EXPECT().Open("a.warc").Return(stream, nil)

	_, err := NewRecordReader(Split{Path: "a.warc"}, fs, nil)
	require.Error(t, err)
	assert.True(t, warc.IsCorrupt(err))
	assert.True(t, errors.Is(err, warc.ErrInvalidVersion))
	assert.Equal(t, 1, stream.closes)
}

func TestRecordReaderTruncatedArchive(t *testing.T) {
	dir, cleanup := newTempDir(t)
	defer cleanup()

	// Cut through the trailer and the content of the last record.
	data := archiveBytes(t, warc.CompressionNone, 3)
	split := writeArchiveFile(t, dir, "truncated.warc", data[:len(data)-10])

	r, err := NewRecordReader(split, NewOSFileSystem(), nil)
	require.NoError(t, err)

	var (
		key, value = r.CreateKey(), r.CreateValue()
		records    int
		readErr    error
	)
	for {
		ok, err := r.Next(key, value)
		if err != nil {
			readErr = err
			break
		}
		if !ok {
			break
		}
		records++
	}
	require.Error(t, readErr)
	assert.True(t, warc.IsCorrupt(readErr))
	assert.True(t, errors.Is(readErr, io.ErrUnexpectedEOF))
	assert.Equal(t, 3, records)

	// The failure is fatal for the split.
	ok, err := r.Next(key, value)
	assert.False(t, ok)
	assert.Equal(t, readErr, err)
	require.NoError(t, r.Close())
}

func TestRecordReaderValueInvalidatedOnAdvance(t *testing.T) {
	dir, cleanup := newTempDir(t)
	defer cleanup()

	split := writeArchiveFile(t, dir, "two.warc", archiveBytes(t, warc.CompressionNone, 2))
	r, err := NewRecordReader(split, NewOSFileSystem(), nil)
	require.NoError(t, err)
	defer r.Close()

	key, value := r.CreateKey(), r.CreateValue()
	ok, err := r.Next(key, value)
	require.NoError(t, err)
	require.True(t, ok)

	first := value.Record()
	detached, err := value.Detach()
	require.NoError(t, err)

	ok, err = r.Next(key, value)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = ioutil.ReadAll(first.Content())
	assert.Equal(t, warc.ErrRecordInvalidated, err)
	assert.Equal(t, "content 0", string(detached.Content))
	assert.Equal(t, "<urn:uuid:0>", detached.Header.Get(warc.HeaderRecordID))
	assert.NotZero(t, detached.Checksum)
}

func TestRecordReaderNilOutputs(t *testing.T) {
	dir, cleanup := newTempDir(t)
	defer cleanup()

	split := writeArchiveFile(t, dir, "one.warc", archiveBytes(t, warc.CompressionNone, 1))
	r, err := NewRecordReader(split, NewOSFileSystem(), nil)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Next(nil, r.CreateValue())
	assert.Equal(t, errNilKeyOrValue, err)
}

func TestRecordReaderMetrics(t *testing.T) {
	dir, cleanup := newTempDir(t)
	defer cleanup()

	split := writeArchiveFile(t, dir, "four.warc", archiveBytes(t, warc.CompressionSnappy, 4))
	scope := tally.NewTestScope("", nil)
	opts := NewOptions().SetInstrumentOptions(instrument.NewOptions().SetMetricsScope(scope))

	r, err := NewRecordReader(split, NewOSFileSystem(), opts)
	require.NoError(t, err)
	iter := NewIterator(r)
	for iter.Next() {
	}
	require.NoError(t, iter.Err())
	require.NoError(t, iter.Close())

	counters := make(map[string]int64)
	for _, c := range scope.Snapshot().Counters() {
		counters[c.Name()] = c.Value()
	}
	assert.Equal(t, int64(4), counters["record-reader.records"])
	assert.Equal(t, int64(1), counters["record-reader.open.success"])
	assert.Equal(t, int64(1), counters["record-reader.close.success"])
}

func TestOptionsValidate(t *testing.T) {
	require.NoError(t, NewOptions().Validate())
	require.Error(t, NewOptions().SetProgressMode(ProgressMode(9)).Validate())
	require.Error(t, NewOptions().SetInstrumentOptions(nil).Validate())
	require.Error(t, NewOptions().SetArchiveOptions(warc.NewOptions().SetReadBufferSize(1)).Validate())

	_, err := NewRecordReader(Split{Path: "a"}, NewOSFileSystem(), NewOptions().SetProgressMode(ProgressMode(9)))
	require.Error(t, err)
}
