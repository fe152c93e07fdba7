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
	"os"

	"go.uber.org/multierr"
	"golang.org/x/sys/unix"
)

var errMmapReaderClosed = errors.New("mmap reader is closed")

type mmapFileSystem struct {
	osFileSystem
}

// NewMmapFileSystem returns a FileSystem over the local file system that
// maps files into memory instead of reading them through the page cache
// with read calls.
func NewMmapFileSystem() FileSystem {
	return mmapFileSystem{}
}

func (fs mmapFileSystem) Open(path string) (io.ReadCloser, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := fd.Stat()
	if err != nil {
		return nil, multierr.Append(err, fd.Close())
	}
	data, err := mmap(fd, info.Size())
	if err != nil {
		err = fmt.Errorf("mmap file: %s, err: %v", path, err)
		return nil, multierr.Append(err, fd.Close())
	}
	return &mmapReader{
		r:    bytes.NewReader(data),
		fd:   fd,
		data: data,
	}, nil
}

func mmap(fd *os.File, size int64) ([]byte, error) {
	if size == 0 {
		// Nothing to map, return an empty but non-nil ref.
		return make([]byte, 0), nil
	}
	data, err := unix.Mmap(int(fd.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, err
	}
	// Records are read front to back exactly once.
	if err := unix.Madvise(data, unix.MADV_SEQUENTIAL); err != nil {
		return nil, multierr.Append(err, unix.Munmap(data))
	}
	return data, nil
}

type mmapReader struct {
	r      *bytes.Reader
	fd     *os.File
	data   []byte
	closed bool
}

func (r *mmapReader) Read(p []byte) (int, error) {
	if r.closed {
		return 0, errMmapReaderClosed
	}
	return r.r.Read(p)
}

func (r *mmapReader) Close() error {
	if r.closed {
		return errMmapReaderClosed
	}
	r.closed = true

	var err error
	if len(r.data) > 0 {
		err = unix.Munmap(r.data)
	}
	r.data = nil
	r.r = nil
	return multierr.Append(err, r.fd.Close())
}
