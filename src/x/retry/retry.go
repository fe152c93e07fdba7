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

package retry

import (
	"errors"
	"time"

	"github.com/uber-go/tally"
)

// NonRetryableError marks an error that should fail immediately
// without further attempts.
type NonRetryableError struct {
	err error
}

// NewNonRetryableError wraps err so the retrier gives up on it.
func NewNonRetryableError(err error) error {
	return NonRetryableError{err: err}
}

func (e NonRetryableError) Error() string { return e.err.Error() }

// Unwrap returns the wrapped error.
func (e NonRetryableError) Unwrap() error { return e.err }

// IsNonRetryableError returns whether err, or anything it wraps, is
// non-retryable.
func IsNonRetryableError(err error) bool {
	var target NonRetryableError
	return errors.As(err, &target)
}

type retrierMetrics struct {
	success            tally.Counter
	successLatency     tally.Histogram
	errors             tally.Counter
	errorsNotRetryable tally.Counter
	errorsFinal        tally.Counter
	errorsLatency      tally.Histogram
	retries            tally.Counter
}

type retrier struct {
	initialBackoff time.Duration
	backoffFactor  float64
	maxBackoff     time.Duration
	maxRetries     int
	jitter         bool
	randFn         RandFn
	sleepFn        func(t time.Duration)
	metrics        retrierMetrics
}

// NewRetrier creates a new retrier.
func NewRetrier(opts Options) Retrier {
	var (
		scope            = opts.MetricsScope()
		retryableTags    = map[string]string{"type": "retryable"}
		notRetryableTags = map[string]string{"type": "not-retryable"}
	)
	buckets := tally.MustMakeExponentialDurationBuckets(2*time.Millisecond, 1.5, 20)

	return &retrier{
		initialBackoff: opts.InitialBackoff(),
		backoffFactor:  opts.BackoffFactor(),
		maxBackoff:     opts.MaxBackoff(),
		maxRetries:     opts.MaxRetries(),
		jitter:         opts.Jitter(),
		randFn:         opts.RandFn(),
		sleepFn:        time.Sleep,
		metrics: retrierMetrics{
			success:            scope.Counter("success"),
			successLatency:     scope.Histogram("success-latency", buckets),
			errors:             scope.Tagged(retryableTags).Counter("errors"),
			errorsNotRetryable: scope.Tagged(notRetryableTags).Counter("errors"),
			errorsFinal:        scope.Counter("errors-final"),
			errorsLatency:      scope.Histogram("errors-latency", buckets),
			retries:            scope.Counter("retries"),
		},
	}
}

func (r *retrier) Attempt(fn Fn) error {
	return r.attempt(nil, fn)
}

func (r *retrier) AttemptWhile(continueFn ContinueFn, fn Fn) error {
	return r.attempt(continueFn, fn)
}

func (r *retrier) attempt(continueFn ContinueFn, fn Fn) error {
	attempt := 0

	if continueFn != nil && !continueFn(attempt) {
		return ErrWhileConditionFalse
	}

	start := time.Now()
	err := fn()
	duration := time.Since(start)
	attempt++
	if err == nil {
		r.metrics.successLatency.RecordDuration(duration)
		r.metrics.success.Inc(1)
		return nil
	}
	r.metrics.errorsLatency.RecordDuration(duration)
	if IsNonRetryableError(err) {
		r.metrics.errorsNotRetryable.Inc(1)
		return err
	}
	r.metrics.errors.Inc(1)

	for i := 1; i <= r.maxRetries; i++ {
		r.sleepFn(r.backoff(attempt))

		if continueFn != nil && !continueFn(attempt) {
			return ErrWhileConditionFalse
		}

		r.metrics.retries.Inc(1)
		start := time.Now()
		err = fn()
		duration := time.Since(start)
		attempt++
		if err == nil {
			r.metrics.successLatency.RecordDuration(duration)
			r.metrics.success.Inc(1)
			return nil
		}
		r.metrics.errorsLatency.RecordDuration(duration)
		if IsNonRetryableError(err) {
			r.metrics.errorsNotRetryable.Inc(1)
			return err
		}
		r.metrics.errors.Inc(1)
	}
	r.metrics.errorsFinal.Inc(1)

	return err
}

// backoff returns the delay before the attempt following the given one.
func (r *retrier) backoff(attempt int) time.Duration {
	backoff := float64(r.initialBackoff)
	for i := 1; i < attempt; i++ {
		backoff *= r.backoffFactor
		if backoff >= float64(r.maxBackoff) {
			break
		}
	}
	if backoff > float64(r.maxBackoff) {
		backoff = float64(r.maxBackoff)
	}

	d := time.Duration(backoff)
	if r.jitter && d > 1 {
		half := int64(d) / 2
		d = time.Duration(half + r.randFn()%half)
	}
	return d
}

// ErrWhileConditionFalse is returned when the while condition to a
// retry method evaluates false.
var ErrWhileConditionFalse = errors.New("retry while condition evaluated to false")
