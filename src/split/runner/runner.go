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
	"context"
	"sync"
	"time"

	"github.com/m3db/m3warc/src/split"
	"github.com/m3db/m3warc/src/x/retry"
	xsync "github.com/m3db/m3warc/src/x/sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/uber-go/tally"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type runnerMetrics struct {
	splitSuccess tally.Counter
	splitFailed  tally.Counter
	splitRetried tally.Counter
	splitSkipped tally.Counter
	records      tally.Counter
	inFlight     tally.Gauge
	progress     tally.Gauge
	scheduleWait tally.Timer
}

func newRunnerMetrics(scope tally.Scope) runnerMetrics {
	return runnerMetrics{
		splitSuccess: scope.Counter("splits.success"),
		splitFailed:  scope.Counter("splits.failed"),
		splitRetried: scope.Counter("splits.retried"),
		splitSkipped: scope.Counter("splits.skipped"),
		records:      scope.Counter("records"),
		inFlight:     scope.Gauge("splits.in-flight"),
		progress:     scope.Gauge("progress"),
		scheduleWait: scope.Timer("schedule-wait"),
	}
}

// runProgress reports the fraction of the splits of a run that have
// finished, whether they succeeded, failed or were skipped.
type runProgress struct {
	gauge    tally.Gauge
	total    int
	finished atomic.Int64
}

func newRunProgress(gauge tally.Gauge, total int) *runProgress {
	p := &runProgress{gauge: gauge, total: total}
	if total > 0 {
		gauge.Update(0)
	}
	return p
}

func (p *runProgress) finish() {
	finished := p.finished.Inc()
	p.gauge.Update(float64(finished) / float64(p.total))
}

type runner struct {
	fs         split.FileSystem
	readerOpts split.Options
	retrier    retry.Retrier
	ledger     Ledger
	logger     *zap.Logger
	metrics    runnerMetrics
	workers    xsync.WorkerPool
	inFlight   atomic.Int64
}

// NewRunner creates a runner reading splits from fs.
func NewRunner(fs split.FileSystem, opts Options) (Runner, error) {
	if opts == nil {
		opts = NewOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	var (
		iopts = opts.InstrumentOptions()
		scope = iopts.MetricsScope().SubScope("runner")
	)
	workers := xsync.NewWorkerPool(opts.Concurrency())
	workers.Init()

	return &runner{
		fs:         fs,
		readerOpts: opts.ReaderOptions(),
		retrier:    retry.NewRetrier(opts.RetryOptions().SetMetricsScope(scope.SubScope("retry"))),
		ledger:     opts.Ledger(),
		logger:     iopts.Logger(),
		metrics:    newRunnerMetrics(scope),
		workers:    workers,
	}, nil
}

func (r *runner) Run(ctx context.Context, splits []split.Split, fn RecordFn) (Report, error) {
	var (
		report   = Report{Splits: make([]SplitResult, len(splits))}
		progress = newRunProgress(r.metrics.progress, len(splits))
		wg       sync.WaitGroup
		start    = time.Now()
	)
	for i, s := range splits {
		i, s := i, s
		wg.Add(1)
		result := r.workers.GoWithContext(ctx, func() {
			defer wg.Done()
			report.Splits[i] = r.runSplit(ctx, s, fn)
			progress.finish()
		})
		r.metrics.scheduleWait.Record(result.WaitTime)
		if !result.Available {
			wg.Done()
			report.Splits[i] = SplitResult{Split: s, Err: ctx.Err()}
			r.metrics.splitFailed.Inc(1)
			progress.finish()
		}
	}
	wg.Wait()

	var errs error
	for _, res := range report.Splits {
		if res.Err != nil {
			errs = multierr.Append(errs, pkgerrors.Wrapf(res.Err, "split %s failed", res.Split))
		}
	}
	r.logger.Info("finished running splits",
		zap.Int("splits", len(splits)),
		zap.Int("failed", len(report.Failed())),
		zap.Int("skipped", report.Skipped()),
		zap.Int64("records", report.Records()),
		zap.Duration("took", time.Since(start)))
	return report, errs
}

func (r *runner) runSplit(ctx context.Context, s split.Split, fn RecordFn) SplitResult {
	r.metrics.inFlight.Update(float64(r.inFlight.Inc()))
	defer func() {
		r.metrics.inFlight.Update(float64(r.inFlight.Dec()))
	}()

	var (
		result = SplitResult{Split: s}
		logger = r.logger.With(zap.Stringer("split", s))
	)
	if r.ledger != nil {
		completed, err := r.ledger.Completed(s)
		if err != nil {
			result.Err = pkgerrors.Wrap(err, "could not look up split in ledger")
			r.metrics.splitFailed.Inc(1)
			return result
		}
		if completed {
			result.Skipped = true
			r.metrics.splitSkipped.Inc(1)
			logger.Info("skipping completed split")
			return result
		}
	}

	continueFn := func(int) bool {
		return ctx.Err() == nil
	}
	err := r.retrier.AttemptWhile(continueFn, func() error {
		result.Attempts++
		if result.Attempts > 1 {
			r.metrics.splitRetried.Inc(1)
			logger.Warn("retrying split", zap.Int("attempt", result.Attempts))
		}
		records, bytes, err := r.readSplit(ctx, s, result.Attempts, fn)
		result.Records, result.Bytes = records, bytes
		if err != nil {
			logger.Error("split attempt failed",
				zap.Int("attempt", result.Attempts),
				zap.Int64("records", records),
				zap.Error(err))
		}
		return err
	})
	if err == retry.ErrWhileConditionFalse {
		err = ctx.Err()
	}

	if err == nil && r.ledger != nil {
		// An uncommitted split is read again by the next run.
		if commitErr := r.ledger.Commit(result); commitErr != nil {
			err = pkgerrors.Wrap(commitErr, "could not commit split to ledger")
		}
	}

	result.Err = err
	if err != nil {
		r.metrics.splitFailed.Inc(1)
		return result
	}
	r.metrics.splitSuccess.Inc(1)
	logger.Debug("split done",
		zap.Int("attempts", result.Attempts),
		zap.Int64("records", result.Records))
	return result
}

// readSplit reads the split once with a fresh reader. Readers cannot be
// rewound so a retry always starts from the first record again.
func (r *runner) readSplit(
	ctx context.Context,
	s split.Split,
	attempt int,
	fn RecordFn,
) (records int64, bytes int64, err error) {
	reader, err := split.NewRecordReader(s, r.fs, r.readerOpts)
	if err != nil {
		return 0, 0, err
	}
	defer func() {
		err = multierr.Append(err, reader.Close())
		bytes = reader.Pos()
	}()

	var (
		key   = reader.CreateKey()
		value = reader.CreateValue()
	)
	for {
		if err := ctx.Err(); err != nil {
			return records, 0, retry.NewNonRetryableError(err)
		}
		ok, err := reader.Next(key, value)
		if err != nil {
			return records, 0, err
		}
		if !ok {
			return records, 0, nil
		}
		if err := fn(s, attempt, *key, value); err != nil {
			return records, 0, err
		}
		records++
		r.metrics.records.Inc(1)
	}
}
