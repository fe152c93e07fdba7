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
	"go.uber.org/atomic"
)

// sampledTimer records one in every N observations.
// NB: tally has no native notion of sampling so it is layered on here.
type sampledTimer struct {
	tally.Timer

	cnt  *atomic.Uint64
	rate uint64
}

// NewSampledTimer wraps a timer so that only a fraction of the
// observations are recorded. Rates outside (0.0, 1.0] panic.
func NewSampledTimer(base tally.Timer, rate float64) tally.Timer {
	if rate <= 0.0 || rate > 1.0 {
		panic("sampled timer must have a sampling rate between 0.0 and 1.0")
	}
	if rate == 1.0 {
		return base
	}
	return &sampledTimer{
		Timer: base,
		cnt:   atomic.NewUint64(0),
		rate:  uint64(1.0 / rate),
	}
}

func (t *sampledTimer) shouldSample() bool {
	return t.cnt.Inc()%t.rate == 0
}

func (t *sampledTimer) Start() tally.Stopwatch {
	if !t.shouldSample() {
		return tally.NewStopwatch(time.Time{}, nullStopwatchRecorder{})
	}
	return t.Timer.Start()
}

func (t *sampledTimer) Record(d time.Duration) {
	if !t.shouldSample() {
		return
	}
	t.Timer.Record(d)
}

type nullStopwatchRecorder struct{}

func (nullStopwatchRecorder) RecordStopwatch(time.Time) {}

// MethodMetrics is a bundle of common metrics for a method call.
type MethodMetrics struct {
	Errors  tally.Counter
	Success tally.Counter
	Latency tally.Timer
}

// ReportSuccessOrError increments Errors or Success depending on err.
func (m MethodMetrics) ReportSuccessOrError(err error, d time.Duration) {
	if err != nil {
		m.Errors.Inc(1)
	} else {
		m.Success.Inc(1)
	}
	m.Latency.Record(d)
}

// NewMethodMetrics returns MethodMetrics for methodName under scope,
// with the latency timer sampled at samplingRate.
func NewMethodMetrics(scope tally.Scope, methodName string, samplingRate float64) MethodMetrics {
	return MethodMetrics{
		Errors:  scope.Counter(methodName + ".errors"),
		Success: scope.Counter(methodName + ".success"),
		Latency: NewSampledTimer(scope.Timer(methodName+".latency"), samplingRate),
	}
}
