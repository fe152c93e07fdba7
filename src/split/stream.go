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

package split

import (
	"context"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// Stream drives reader from a new goroutine and sends a detached copy of
// each record on the returned channel, which is closed once the split is
// exhausted, fails or ctx is done. The reader is closed by the producer.
// The returned function blocks until the producer has finished and returns
// the error that stopped it, if any. Callers must either drain the channel
// or cancel ctx.
func Stream(ctx context.Context, reader RecordReader, bufferSize int) (<-chan DetachedRecord, func() error) {
	out := make(chan DetachedRecord, bufferSize)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(out)
		return multierr.Append(produce(gctx, reader, out), reader.Close())
	})
	return out, g.Wait
}

func produce(ctx context.Context, reader RecordReader, out chan<- DetachedRecord) error {
	var (
		key   = reader.CreateKey()
		value = reader.CreateValue()
	)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		ok, err := reader.Next(key, value)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		rec, err := value.Detach()
		if err != nil {
			return err
		}
		select {
		case out <- rec:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
