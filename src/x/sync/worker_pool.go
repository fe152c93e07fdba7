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

// Package sync provides a bounded worker pool.
package sync

import (
	"context"
	"time"
)

// Work is a unit of item to be worked on.
type Work func()

// ScheduleResult is the result of scheduling a piece of work.
type ScheduleResult struct {
	// Available is true if the work was scheduled.
	Available bool
	// WaitTime is how long the caller waited for a worker token.
	WaitTime time.Duration
}

// WorkerPool provides a pool for goroutines.
type WorkerPool interface {
	// Init initializes the pool.
	Init()

	// Go waits until the next worker becomes available and executes it.
	Go(work Work)

	// GoIfAvailable performs the work if a worker is available and returns
	// true, or false otherwise.
	GoIfAvailable(work Work) bool

	// GoWithContext waits until a worker is available or the provided ctx is
	// canceled.
	GoWithContext(ctx context.Context, work Work) ScheduleResult

	// Size returns the number of workers in the pool.
	Size() int
}

type workerPool struct {
	workCh chan struct{}
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int) WorkerPool {
	return &workerPool{workCh: make(chan struct{}, size)}
}

func (p *workerPool) Init() {
	for i := 0; i < cap(p.workCh); i++ {
		p.workCh <- struct{}{}
	}
}

func (p *workerPool) Go(work Work) {
	token := <-p.workCh
	go p.run(token, work)
}

func (p *workerPool) GoIfAvailable(work Work) bool {
	select {
	case token := <-p.workCh:
		go p.run(token, work)
		return true
	default:
		return false
	}
}

func (p *workerPool) GoWithContext(ctx context.Context, work Work) ScheduleResult {
	// Don't give out a token if the ctx has already been canceled.
	select {
	case <-ctx.Done():
		return ScheduleResult{Available: false}
	default:
	}

	start := time.Now()
	select {
	case token := <-p.workCh:
		go p.run(token, work)
		return ScheduleResult{Available: true, WaitTime: time.Since(start)}
	case <-ctx.Done():
		return ScheduleResult{Available: false, WaitTime: time.Since(start)}
	}
}

func (p *workerPool) Size() int {
	return cap(p.workCh)
}

func (p *workerPool) run(token struct{}, work Work) {
	defer func() { p.workCh <- token }()
	work()
}
