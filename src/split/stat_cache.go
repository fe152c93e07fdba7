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
	"io"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type statCachingFileSystem struct {
	FileSystem
	sizes *expirable.LRU[string, int64]
}

// NewStatCachingFileSystem wraps fs so that the length of each path is
// queried once and reused for up to ttl, for at most size paths. Listing
// splits and then reading them stats every file only once. A ttl of zero
// or less never expires lengths; any other ttl starts a goroutine that
// evicts expired lengths for the life of the process.
func NewStatCachingFileSystem(fs FileSystem, size int, ttl time.Duration) FileSystem {
	return &statCachingFileSystem{
		FileSystem: fs,
		sizes:      expirable.NewLRU[string, int64](size, nil, ttl),
	}
}

func (fs *statCachingFileSystem) Stat(path string) (int64, error) {
	if size, ok := fs.sizes.Get(path); ok {
		return size, nil
	}
	size, err := fs.FileSystem.Stat(path)
	if err != nil {
		return 0, err
	}
	fs.sizes.Add(path, size)
	return size, nil
}

func (fs *statCachingFileSystem) Open(path string) (io.ReadCloser, error) {
	return fs.FileSystem.Open(path)
}

func (fs *statCachingFileSystem) ListDir(path string) ([]string, bool, error) {
	lister, ok := fs.FileSystem.(DirLister)
	if !ok {
		return nil, false, nil
	}
	return lister.ListDir(path)
}
