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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggingReporter(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := NewLoggingReporter(zap.New(core))
	tags := map[string]string{"split": "a.warc"}

	r.ReportCounter("records", tags, 3)
	r.ReportGauge("progress", tags, 0.5)
	r.ReportTimer("latency", nil, time.Millisecond)
	r.ReportHistogramDurationSamples("backoff", nil, nil, time.Millisecond, 2*time.Millisecond, 4)
	r.ReportHistogramValueSamples("sizes", nil, nil, 1, 2, 5)
	r.Flush()

	assert.True(t, r.Capabilities().Reporting())
	assert.True(t, r.Capabilities().Tagging())

	entries := logs.All()
	require.Len(t, entries, 5)
	assert.Equal(t, "counter", entries[0].Message)
	assert.Equal(t, "records", entries[0].ContextMap()["name"])
	assert.Equal(t, int64(3), entries[0].ContextMap()["value"])
	assert.Equal(t, "gauge", entries[1].Message)
	assert.Equal(t, 0.5, entries[1].ContextMap()["value"])
	assert.Equal(t, "histogram", entries[4].Message)
	assert.Equal(t, int64(5), entries[4].ContextMap()["samples"])
}

func TestMetricsConfiguration(t *testing.T) {
	cfg := MetricsConfiguration{
		Prefix:         "warc",
		ReportInterval: time.Hour,
		SamplingRate:   0.5,
		Log:            true,
	}
	scope, closer := cfg.NewRootScope(zap.NewNop())
	scope.Counter("records").Inc(3)

	opts := cfg.NewOptions(zap.NewNop(), scope)
	require.NoError(t, opts.Validate())
	assert.Equal(t, 0.5, opts.TimerSamplingRate())
	require.NoError(t, closer.Close())
}

func TestMetricsConfigurationDefaults(t *testing.T) {
	scope, closer := MetricsConfiguration{}.NewRootScope(zap.NewNop())
	scope.Counter("records").Inc(1)
	require.NoError(t, closer.Close())

	opts := MetricsConfiguration{}.NewOptions(zap.NewNop(), scope)
	assert.Equal(t, 1.0, opts.TimerSamplingRate())
}
