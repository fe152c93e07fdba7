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
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally"
)

func TestOptionsValidate(t *testing.T) {
	opts := NewOptions()
	require.NoError(t, opts.Validate())
	require.NotNil(t, opts.Logger())
	require.Equal(t, tally.NoopScope, opts.MetricsScope())

	require.Error(t, opts.SetTimerSamplingRate(0).Validate())
	require.Error(t, opts.SetTimerSamplingRate(1.5).Validate())
	require.NoError(t, opts.SetTimerSamplingRate(0.25).Validate())
}

func TestOptionsImmutable(t *testing.T) {
	opts := NewOptions()
	scope := tally.NewTestScope("", nil)
	other := opts.SetMetricsScope(scope)
	require.Equal(t, tally.NoopScope, opts.MetricsScope())
	require.Equal(t, scope, other.MetricsScope())
}

func TestSampledTimerRecordsOneInN(t *testing.T) {
	scope := tally.NewTestScope("", nil)
	timer := NewSampledTimer(scope.Timer("latency"), 0.5)
	for i := 0; i < 10; i++ {
		timer.Record(time.Millisecond)
	}

	timers := scope.Snapshot().Timers()
	require.Len(t, timers, 1)
	for _, snap := range timers {
		require.Len(t, snap.Values(), 5)
	}
}

func TestSampledTimerInvalidRatePanics(t *testing.T) {
	scope := tally.NewTestScope("", nil)
	require.Panics(t, func() { NewSampledTimer(scope.Timer("latency"), 0) })
	require.Panics(t, func() { NewSampledTimer(scope.Timer("latency"), 2) })
}

func TestMethodMetrics(t *testing.T) {
	scope := tally.NewTestScope("", nil)
	m := NewMethodMetrics(scope, "open", 1.0)
	m.ReportSuccessOrError(nil, time.Millisecond)
	m.ReportSuccessOrError(nil, time.Millisecond)
	m.ReportSuccessOrError(errTimerSamplingRateOutOfRange, time.Millisecond)

	counters := make(map[string]int64)
	for _, c := range scope.Snapshot().Counters() {
		counters[c.Name()] = c.Value()
	}
	require.Equal(t, int64(2), counters["open.success"])
	require.Equal(t, int64(1), counters["open.errors"])
}
