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
	"errors"

	"github.com/uber-go/tally"
	"go.uber.org/zap"
)

const defaultTimerSamplingRate = 1.0

var errTimerSamplingRateOutOfRange = errors.New("timer sampling rate must be in (0.0, 1.0]")

type options struct {
	logger       *zap.Logger
	scope        tally.Scope
	samplingRate float64
}

// NewOptions creates new instrument options that log nowhere and report
// metrics to a no-op scope.
func NewOptions() Options {
	return &options{
		logger:       zap.NewNop(),
		scope:        tally.NoopScope,
		samplingRate: defaultTimerSamplingRate,
	}
}

func (o *options) Validate() error {
	if o.samplingRate <= 0.0 || o.samplingRate > 1.0 {
		return errTimerSamplingRateOutOfRange
	}
	return nil
}

func (o *options) SetLogger(value *zap.Logger) Options {
	opts := *o
	opts.logger = value
	return &opts
}

func (o *options) Logger() *zap.Logger {
	return o.logger
}

func (o *options) SetMetricsScope(value tally.Scope) Options {
	opts := *o
	opts.scope = value
	return &opts
}

func (o *options) MetricsScope() tally.Scope {
	return o.scope
}

func (o *options) SetTimerSamplingRate(value float64) Options {
	opts := *o
	opts.samplingRate = value
	return &opts
}

func (o *options) TimerSamplingRate() float64 {
	return o.samplingRate
}
