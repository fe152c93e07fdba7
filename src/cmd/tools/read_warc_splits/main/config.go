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

package main

import (
	"github.com/m3db/m3warc/src/split"
	"github.com/m3db/m3warc/src/split/runner"
	"github.com/m3db/m3warc/src/warc"
	"github.com/m3db/m3warc/src/x/instrument"
	xlog "github.com/m3db/m3warc/src/x/log"
	"github.com/m3db/m3warc/src/x/retry"
)

// Configuration is the configuration of read_warc_splits.
type Configuration struct {
	// Logging configuration.
	Logging xlog.Configuration `yaml:"logging"`

	// Metrics configuration.
	Metrics instrument.MetricsConfiguration `yaml:"metrics"`

	// Reader configuration.
	Reader ReaderConfiguration `yaml:"reader"`

	// Runner configuration.
	Runner RunnerConfiguration `yaml:"runner"`
}

// ReaderConfiguration configures record readers.
type ReaderConfiguration struct {
	// ProgressMode is either binaryOnClose (default) or streaming.
	ProgressMode split.ProgressMode `yaml:"progressMode"`

	// Compression forces the archive compression, by default it is
	// detected per file.
	Compression warc.Compression `yaml:"compression"`

	// ReadBufferSize is the read buffer size, which also bounds the length
	// of a header line.
	ReadBufferSize int `yaml:"readBufferSize" validate:"min=0"`

	// Mmap maps files into memory instead of reading them.
	Mmap bool `yaml:"mmap"`

	// StatCacheSize is the number of file lengths cached between listing
	// and reading splits, zero disables the cache.
	StatCacheSize int `yaml:"statCacheSize" validate:"min=0"`
}

// NewOptions creates record reader options from the configuration.
func (c ReaderConfiguration) NewOptions(iopts instrument.Options) split.Options {
	archiveOpts := warc.NewOptions().SetCompression(c.Compression)
	if c.ReadBufferSize > 0 {
		archiveOpts = archiveOpts.SetReadBufferSize(c.ReadBufferSize)
	}
	return split.NewOptions().
		SetInstrumentOptions(iopts).
		SetArchiveOptions(archiveOpts).
		SetProgressMode(c.ProgressMode)
}

// NewFileSystem creates the file system splits are read from.
func (c ReaderConfiguration) NewFileSystem() split.FileSystem {
	fs := split.NewOSFileSystem()
	if c.Mmap {
		fs = split.NewMmapFileSystem()
	}
	if c.StatCacheSize > 0 {
		fs = split.NewStatCachingFileSystem(fs, c.StatCacheSize, 0)
	}
	return fs
}

// RunnerConfiguration configures the split runner.
type RunnerConfiguration struct {
	// Concurrency is the number of splits read at once, defaults to the
	// number of CPUs.
	Concurrency int `yaml:"concurrency" validate:"min=0"`

	// Retry configures how failed splits are retried.
	Retry retry.Configuration `yaml:"retry"`

	// Ledger is the path of the sqlite database recording completed
	// splits. Splits it holds are skipped, empty disables it.
	Ledger string `yaml:"ledger"`
}

// NewOptions creates runner options from the configuration.
func (c RunnerConfiguration) NewOptions(
	iopts instrument.Options,
	readerOpts split.Options,
) runner.Options {
	opts := runner.NewOptions().
		SetInstrumentOptions(iopts).
		SetReaderOptions(readerOpts).
		SetRetryOptions(c.Retry.NewOptions(iopts.MetricsScope()))
	if c.Concurrency > 0 {
		opts = opts.SetConcurrency(c.Concurrency)
	}
	return opts
}
