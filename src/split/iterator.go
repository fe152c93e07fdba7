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

type iterator struct {
	reader RecordReader
	key    *Key
	value  *Value
	err    error
	valid  bool
	closed bool
}

// NewIterator wraps a reader in an Iterator. Closing the iterator closes
// the reader.
func NewIterator(reader RecordReader) Iterator {
	return &iterator{
		reader: reader,
		key:    reader.CreateKey(),
		value:  reader.CreateValue(),
	}
}

func (i *iterator) Next() bool {
	if i.err != nil || i.closed {
		return false
	}
	ok, err := i.reader.Next(i.key, i.value)
	if err != nil {
		i.err = err
	}
	i.valid = ok
	return ok
}

func (i *iterator) Current() (Key, *Value) {
	if !i.valid || i.closed {
		return 0, nil
	}
	return *i.key, i.value
}

func (i *iterator) Err() error {
	return i.err
}

func (i *iterator) Close() error {
	if i.closed {
		return nil
	}
	i.closed = true
	i.valid = false
	return i.reader.Close()
}
