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

package ledger

import (
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/m3db/m3warc/src/split"
	"github.com/m3db/m3warc/src/split/runner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T) (*Ledger, string, func()) {
	dir, err := ioutil.TempDir("", "ledger")
	require.NoError(t, err)

	path := filepath.Join(dir, "ledger.db")
	l, err := Open(path, nil)
	require.NoError(t, err)
	return l, path, func() {
		l.Close()
		os.RemoveAll(dir)
	}
}

func TestLedgerCommitAndLookup(t *testing.T) {
	l, _, cleanup := newTestLedger(t)
	defer cleanup()

	now := time.Date(2021, 1, 2, 3, 4, 5, 0, time.UTC)
	l.nowFn = func() time.Time { return now }

	a := split.Split{Path: "/data/a.warc.gz", Length: 100}
	completed, err := l.Completed(a)
	require.NoError(t, err)
	assert.False(t, completed)

	require.NoError(t, l.Commit(runner.SplitResult{Split: a, Records: 3, Attempts: 2, Bytes: 100}))
	completed, err = l.Completed(a)
	require.NoError(t, err)
	assert.True(t, completed)

	// A split of the same path with another length is a different split.
	completed, err = l.Completed(split.Split{Path: a.Path, Length: 101})
	require.NoError(t, err)
	assert.False(t, completed)

	// Committing again replaces the entry.
	require.NoError(t, l.Commit(runner.SplitResult{Split: a, Records: 4, Attempts: 1, Bytes: 100}))

	list, err := l.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, a, list[0].Split())
	assert.Equal(t, int64(4), list[0].Records)
	assert.Equal(t, 1, list[0].Attempts)
	assert.True(t, now.Equal(list[0].CompletedAt))
}

func TestLedgerRejectsFailedSplit(t *testing.T) {
	l, _, cleanup := newTestLedger(t)
	defer cleanup()

	s := split.Split{Path: "a.warc"}
	require.Error(t, l.Commit(runner.SplitResult{Split: s, Err: errors.New("failed")}))
	completed, err := l.Completed(s)
	require.NoError(t, err)
	assert.False(t, completed)
}

func TestLedgerPersists(t *testing.T) {
	l, path, cleanup := newTestLedger(t)
	defer cleanup()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := split.Split{Path: filepath.Join("/data", string(rune('a'+i))+".warc")}
			assert.NoError(t, l.Commit(runner.SplitResult{Split: s, Records: int64(i)}))
		}()
	}
	wg.Wait()
	require.NoError(t, l.Close())

	reopened, err := Open(path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	list, err := reopened.List()
	require.NoError(t, err)
	require.Len(t, list, 8)
	assert.Equal(t, "/data/a.warc", list[0].Path)
	assert.Equal(t, "/data/h.warc", list[7].Path)
}
