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
	"sort"

	pkgerrors "github.com/pkg/errors"
)

// ListSplits returns one whole-file split per path. Paths naming a
// directory are expanded to the regular files directly inside it when fs
// implements DirLister. Splits are ordered by path.
func ListSplits(fs FileSystem, paths ...string) ([]Split, error) {
	var files []string
	lister, canList := fs.(DirLister)
	for _, p := range paths {
		if !canList {
			files = append(files, p)
			continue
		}
		children, isDir, err := lister.ListDir(p)
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "could not list %s", p)
		}
		if isDir {
			files = append(files, children...)
		} else {
			files = append(files, p)
		}
	}
	sort.Strings(files)

	splits := make([]Split, 0, len(files))
	for _, f := range files {
		size, err := fs.Stat(f)
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "could not stat %s", f)
		}
		splits = append(splits, Split{Path: f, Start: 0, Length: size})
	}
	return splits, nil
}
