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

// Package retry provides a retrier with exponential backoff and jitter.
package retry

import (
	"time"

	"github.com/uber-go/tally"
)

// Fn is a function that can be retried.
type Fn func() error

// ContinueFn is a function that returns whether to continue attempting
// an operation, given the number of attempts made so far.
type ContinueFn func(attempt int) bool

// Retrier is a executor that can retry attempts on executing methods.
type Retrier interface {
	// Attempt will attempt to perform a function with retries.
	Attempt(fn Fn) error

	// AttemptWhile will attempt to perform a function with retries
	// while the continue function returns true.
	AttemptWhile(continueFn ContinueFn, fn Fn) error
}

// Options is a set of retry options.
type Options interface {
	// SetMetricsScope sets the metrics scope.
	SetMetricsScope(value tally.Scope) Options

	// MetricsScope returns the metrics scope.
	MetricsScope() tally.Scope

	// SetInitialBackoff sets the initial delay duration.
	SetInitialBackoff(value time.Duration) Options

	// InitialBackoff gets the initial delay duration.
	InitialBackoff() time.Duration

	// SetBackoffFactor sets the backoff factor multiplier when moving to
	// next attempt.
	SetBackoffFactor(value float64) Options

	// BackoffFactor gets the backoff factor multiplier when moving to
	// next attempt.
	BackoffFactor() float64

	// SetMaxBackoff sets the maximum backoff delay.
	SetMaxBackoff(value time.Duration) Options

	// MaxBackoff returns the maximum backoff delay.
	MaxBackoff() time.Duration

	// SetMaxRetries sets the maximum retry attempts.
	SetMaxRetries(value int) Options

	// MaxRetries returns the maximum retry attempts.
	MaxRetries() int

	// SetJitter sets whether to jitter between the current backoff and
	// the next backoff when moving to next attempt.
	SetJitter(value bool) Options

	// Jitter returns whether to jitter between the current backoff and
	// the next backoff when moving to next attempt.
	Jitter() bool

	// SetRandFn sets the random number generator used for jitter.
	SetRandFn(value RandFn) Options

	// RandFn returns the random number generator used for jitter.
	RandFn() RandFn
}

// RandFn returns a non-negative pseudo-random int64.
type RandFn func() int64
