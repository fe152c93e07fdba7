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

// Package runner drives record readers over many splits in parallel, the
// way a split based processing runtime schedules its tasks.
package runner

import (
	"context"

	"github.com/m3db/m3warc/src/split"
	"github.com/m3db/m3warc/src/x/instrument"
	"github.com/m3db/m3warc/src/x/retry"
)

// RecordFn processes one record of a split. The value is only valid for
// the duration of the call. Attempt starts at 1 and grows each time the
// split is retried, in which case records delivered by earlier attempts
// are delivered again. Returning an error wrapped by
// retry.NewNonRetryableError fails the split without retrying it.
type RecordFn func(s split.Split, attempt int, key split.Key, value *split.Value) error

// SplitResult is the outcome of running one split.
type SplitResult struct {
	Split split.Split
	// Records is the number of records delivered by the last attempt.
	Records int64
	// Attempts is the number of readers constructed for the split.
	Attempts int
	// Bytes is the position reported by the last reader once closed.
	Bytes int64
	// Skipped is set when the ledger already held the split as completed.
	Skipped bool
	// Err is the error that failed the split, if any.
	Err error
}

// Report lists the result of every split given to Run, in the same order.
type Report struct {
	Splits []SplitResult
}

// Records returns the number of records delivered by the final attempt of
// every split.
func (r Report) Records() int64 {
	var n int64
	for _, s := range r.Splits {
		n += s.Records
	}
	return n
}

// Failed returns the results of the splits that failed.
func (r Report) Failed() []SplitResult {
	var failed []SplitResult
	for _, s := range r.Splits {
		if s.Err != nil {
			failed = append(failed, s)
		}
	}
	return failed
}

// Ledger records completed splits so that a later run can skip them.
type Ledger interface {
	// Completed returns whether the split was committed by an earlier run.
	Completed(s split.Split) (bool, error)

	// Commit records a successfully completed split.
	Commit(result SplitResult) error
}

// Skipped returns the number of splits skipped as already completed.
func (r Report) Skipped() int {
	var n int
	for _, s := range r.Splits {
		if s.Skipped {
			n++
		}
	}
	return n
}

// Runner runs splits.
type Runner interface {
	// Run reads every split, calling fn for each record, and blocks until
	// all splits have completed or failed. Each split is read by a single
	// goroutine from construction to close. The returned error combines the
	// errors of all failed splits.
	Run(ctx context.Context, splits []split.Split, fn RecordFn) (Report, error)
}

// Options represents the options for a runner.
type Options interface {
	// Validate validates the options.
	Validate() error

	// SetInstrumentOptions sets the instrumentation options.
	SetInstrumentOptions(value instrument.Options) Options

	// InstrumentOptions returns the instrumentation options.
	InstrumentOptions() instrument.Options

	// SetReaderOptions sets the options of the record readers.
	SetReaderOptions(value split.Options) Options

	// ReaderOptions returns the options of the record readers.
	ReaderOptions() split.Options

	// SetRetryOptions sets the options used to retry failed splits.
	SetRetryOptions(value retry.Options) Options

	// RetryOptions returns the options used to retry failed splits.
	RetryOptions() retry.Options

	// SetConcurrency sets the number of splits read at the same time.
	SetConcurrency(value int) Options

	// Concurrency returns the number of splits read at the same time.
	Concurrency() int

	// SetLedger sets the ledger of completed splits, nil runs every split.
	SetLedger(value Ledger) Options

	// Ledger returns the ledger of completed splits.
	Ledger() Ledger
}
