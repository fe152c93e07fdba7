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

import "fmt"

// ProgressMode determines how a record reader accounts bytes read.
type ProgressMode int

const (
	// ProgressModeBinaryOnClose reports nothing read until the reader is
	// closed, then the whole file. Records carry no consumed byte counts so
	// this is the only exact signal.
	ProgressModeBinaryOnClose ProgressMode = iota

	// ProgressModeStreaming reports the bytes the codec has consumed from
	// the file so far. Read-ahead buffering makes it an overestimate of up
	// to one buffer.
	ProgressModeStreaming
)

var validProgressModes = []ProgressMode{
	ProgressModeBinaryOnClose,
	ProgressModeStreaming,
}

func (m ProgressMode) String() string {
	switch m {
	case ProgressModeBinaryOnClose:
		return "binaryOnClose"
	case ProgressModeStreaming:
		return "streaming"
	default:
		return "unknown"
	}
}

func (m ProgressMode) valid() bool {
	for _, valid := range validProgressModes {
		if m == valid {
			return true
		}
	}
	return false
}

// UnmarshalYAML unmarshals a ProgressMode from its string form.
func (m *ProgressMode) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var str string
	if err := unmarshal(&str); err != nil {
		return err
	}
	for _, valid := range validProgressModes {
		if str == valid.String() {
			*m = valid
			return nil
		}
	}
	return fmt.Errorf("invalid ProgressMode '%s' valid modes are: %v", str, validProgressModes)
}

// MarshalYAML marshals a ProgressMode as its string form.
func (m ProgressMode) MarshalYAML() (interface{}, error) {
	return m.String(), nil
}
