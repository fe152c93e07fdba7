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
	"time"

	"github.com/uber-go/tally"
	"go.uber.org/zap"
)

type loggingReporter struct {
	logger *zap.Logger
}

// NewLoggingReporter returns a tally.StatsReporter that writes every
// reported value to logger at info level.
func NewLoggingReporter(logger *zap.Logger) tally.StatsReporter {
	return loggingReporter{logger: logger}
}

func (r loggingReporter) ReportCounter(name string, tags map[string]string, value int64) {
	r.logger.Info("counter",
		zap.String("name", name),
		zap.Any("tags", tags),
		zap.Int64("value", value))
}

func (r loggingReporter) ReportGauge(name string, tags map[string]string, value float64) {
	r.logger.Info("gauge",
		zap.String("name", name),
		zap.Any("tags", tags),
		zap.Float64("value", value))
}

func (r loggingReporter) ReportTimer(name string, tags map[string]string, interval time.Duration) {
	r.logger.Info("timer",
		zap.String("name", name),
		zap.Any("tags", tags),
		zap.Duration("value", interval))
}

func (r loggingReporter) ReportHistogramValueSamples(
	name string,
	tags map[string]string,
	_ tally.Buckets,
	bucketLowerBound,
	bucketUpperBound float64,
	samples int64,
) {
	r.logger.Info("histogram",
		zap.String("name", name),
		zap.Any("tags", tags),
		zap.Float64("lowerBound", bucketLowerBound),
		zap.Float64("upperBound", bucketUpperBound),
		zap.Int64("samples", samples))
}

func (r loggingReporter) ReportHistogramDurationSamples(
	name string,
	tags map[string]string,
	_ tally.Buckets,
	bucketLowerBound,
	bucketUpperBound time.Duration,
	samples int64,
) {
	r.logger.Info("histogram",
		zap.String("name", name),
		zap.Any("tags", tags),
		zap.Duration("lowerBound", bucketLowerBound),
		zap.Duration("upperBound", bucketUpperBound),
		zap.Int64("samples", samples))
}

func (r loggingReporter) Capabilities() tally.Capabilities {
	return r
}

func (r loggingReporter) Reporting() bool {
	return true
}

func (r loggingReporter) Tagging() bool {
	return true
}

func (r loggingReporter) Flush() {
	_ = r.logger.Sync()
}
