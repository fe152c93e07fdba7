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

package runner

import (
	"errors"
	"runtime"

	"github.com/m3db/m3warc/src/split"
	"github.com/m3db/m3warc/src/x/instrument"
	"github.com/m3db/m3warc/src/x/retry"
)

var (
	defaultConcurrency = runtime.NumCPU()

	errInstrumentOptionsNotSet = errors.New("instrument options not set")
	errReaderOptionsNotSet     = errors.New("reader options not set")
	errRetryOptionsNotSet      = errors.New("retry options not set")
	errInvalidConcurrency      = errors.New("concurrency must be positive")
)

type options struct {
	instrumentOpts instrument.Options
	readerOpts     split.Options
	retryOpts      retry.Options
	concurrency    int
	ledger         Ledger
}

// NewOptions creates new runner options.
func NewOptions() Options {
	return &options{
		instrumentOpts: instrument.NewOptions(),
		readerOpts:     split.NewOptions(),
		retryOpts:      retry.NewOptions(),
		concurrency:    defaultConcurrency,
	}
}

func (o *options) Validate() error {
	if o.instrumentOpts == nil {
		return errInstrumentOptionsNotSet
	}
	if err := o.instrumentOpts.Validate(); err != nil {
		return err
	}
	if o.readerOpts == nil {
		return errReaderOptionsNotSet
	}
	if err := o.readerOpts.Validate(); err != nil {
		return err
	}
	if o.retryOpts == nil {
		return errRetryOptionsNotSet
	}
	if o.concurrency <= 0 {
		return errInvalidConcurrency
	}
	return nil
}

func (o *options) SetInstrumentOptions(value instrument.Options) Options {
	opts := *o
	opts.instrumentOpts = value
	return &opts
}

func (o *options) InstrumentOptions() instrument.Options {
	return o.instrumentOpts
}

func (o *options) SetReaderOptions(value split.Options) Options {
	opts := *o
	opts.readerOpts = value
	return &opts
}

func (o *options) ReaderOptions() split.Options {
	return o.readerOpts
}

func (o *options) SetRetryOptions(value retry.Options) Options {
	opts := *o
	opts.retryOpts = value
	return &opts
}

func (o *options) RetryOptions() retry.Options {
	return o.retryOpts
}

func (o *options) SetConcurrency(value int) Options {
	opts := *o
	opts.concurrency = value
	return &opts
}

func (o *options) Concurrency() int {
	return o.concurrency
}

func (o *options) SetLedger(value Ledger) Options {
	opts := *o
	opts.ledger = value
	return &opts
}

func (o *options) Ledger() Ledger {
	return o.ledger
}
