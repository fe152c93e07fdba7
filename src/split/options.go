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

	"github.com/m3db/m3warc/src/warc"
	"github.com/m3db/m3warc/src/x/instrument"
)

var (
	errInstrumentOptionsNotSet = errors.New("instrument options not set")
	errArchiveOptionsNotSet    = errors.New("archive options not set")
	errInvalidProgressMode     = errors.New("invalid progress mode")
)

type options struct {
	instrumentOpts instrument.Options
	archiveOpts    warc.Options
	progressMode   ProgressMode
}

// NewOptions creates new record reader options.
func NewOptions() Options {
	return &options{
		instrumentOpts: instrument.NewOptions(),
		archiveOpts:    warc.NewOptions(),
		progressMode:   ProgressModeBinaryOnClose,
	}
}

func (o *options) Validate() error {
	if o.instrumentOpts == nil {
		return errInstrumentOptionsNotSet
	}
	if err := o.instrumentOpts.Validate(); err != nil {
		return err
	}
	if o.archiveOpts == nil {
		return errArchiveOptionsNotSet
	}
	if err := o.archiveOpts.Validate(); err != nil {
		return err
	}
	if !o.progressMode.valid() {
		return errInvalidProgressMode
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

func (o *options) SetArchiveOptions(value warc.Options) Options {
	opts := *o
	opts.archiveOpts = value
	return &opts
}

func (o *options) ArchiveOptions() warc.Options {
	return o.archiveOpts
}

func (o *options) SetProgressMode(value ProgressMode) Options {
	opts := *o
	opts.progressMode = value
	return &opts
}

func (o *options) ProgressMode() ProgressMode {
	return o.progressMode
}
