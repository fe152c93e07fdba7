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

package sync

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

const testWorkerPoolSize = 5

func TestWorkerPoolGo(t *testing.T) {
	defer leaktest.CheckTimeout(t, time.Second)()

	var count atomic.Uint32

	p := NewWorkerPool(testWorkerPoolSize)
	p.Init()
	require.Equal(t, testWorkerPoolSize, p.Size())

	var wg sync.WaitGroup
	for i := 0; i < testWorkerPoolSize*2; i++ {
		wg.Add(1)
		p.Go(func() {
			count.Inc()
			wg.Done()
		})
	}
	wg.Wait()

	require.Equal(t, uint32(testWorkerPoolSize*2), count.Load())
}

func TestWorkerPoolGoIfAvailable(t *testing.T) {
	defer leaktest.CheckTimeout(t, time.Second)()

	p := NewWorkerPool(1)
	p.Init()

	var (
		wg     sync.WaitGroup
		doneCh = make(chan struct{})
	)
	wg.Add(1)
	require.True(t, p.GoIfAvailable(func() {
		<-doneCh
		wg.Done()
	}))
	require.False(t, p.GoIfAvailable(func() {}))

	close(doneCh)
	wg.Wait()
}

func TestWorkerPoolGoWithContextCanceled(t *testing.T) {
	defer leaktest.CheckTimeout(t, time.Second)()

	p := NewWorkerPool(1)
	p.Init()

	var (
		wg     sync.WaitGroup
		doneCh = make(chan struct{})
	)
	wg.Add(1)
	p.Go(func() {
		<-doneCh
		wg.Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	result := p.GoWithContext(ctx, func() {})
	require.False(t, result.Available)

	close(doneCh)
	wg.Wait()

	result = p.GoWithContext(context.Background(), func() {})
	require.True(t, result.Available)
}
