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

package instrument

import (
	"io"
	"time"

	"github.com/uber-go/tally"
	"go.uber.org/zap"
)

const defaultReportInterval = 10 * time.Second

// MetricsConfiguration configures the root metrics scope.
type MetricsConfiguration struct {
	// Prefix prepended to every metric name.
	Prefix string `yaml:"prefix"`

	// ReportInterval is how often metrics are reported.
	ReportInterval time.Duration `yaml:"reportInterval" validate:"min=0"`

	// SamplingRate is the timer sampling rate, defaults to 1.0.
	SamplingRate float64 `yaml:"samplingRate" validate:"min=0,max=1"`

	// Log reports metrics to the logger, otherwise metrics are dropped.
	Log bool `yaml:"log"`
}

// NewRootScope creates a new root scope, the returned closer flushes and
// stops reporting.
func (c MetricsConfiguration) NewRootScope(logger *zap.Logger) (tally.Scope, io.Closer) {
	interval := c.ReportInterval
	if interval <= 0 {
		interval = defaultReportInterval
	}
	reporter := tally.NullStatsReporter
	if c.Log {
		reporter = NewLoggingReporter(logger.Named("metrics"))
	}
	return tally.NewRootScope(tally.ScopeOptions{
		Prefix:   c.Prefix,
		Reporter: reporter,
	}, interval)
}

// NewOptions creates instrument options from the configuration, logger
// and scope.
func (c MetricsConfiguration) NewOptions(logger *zap.Logger, scope tally.Scope) Options {
	opts := NewOptions().
		SetLogger(logger).
		SetMetricsScope(scope)
	if c.SamplingRate > 0 {
		opts = opts.SetTimerSamplingRate(c.SamplingRate)
	}
	return opts
}
