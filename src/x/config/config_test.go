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

package config

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

const goodConfig = `
listenAddress: localhost:4385
bufferSpace: 1024
servers:
    - server1:8090
    - server2:8010
`

type configuration struct {
	ListenAddress string   `yaml:"listenAddress" validate:"nonzero"`
	BufferSpace   int      `yaml:"bufferSpace" validate:"min=255"`
	Servers       []string `yaml:"servers" validate:"nonzero"`
}

func TestLoadFile(t *testing.T) {
	var cfg configuration

	err := LoadFile(&cfg, "./no-config.yaml")
	require.Error(t, err)

	// Not yaml.
	err = LoadFile(&cfg, "./config.go")
	require.Error(t, err)

	fname := writeFile(t, goodConfig)
	defer os.Remove(fname)

	err = LoadFile(&cfg, fname)
	require.NoError(t, err)
	require.Equal(t, "localhost:4385", cfg.ListenAddress)
	require.Equal(t, 1024, cfg.BufferSpace)
	require.Equal(t, []string{"server1:8090", "server2:8010"}, cfg.Servers)
}

func TestLoadFilesNoFiles(t *testing.T) {
	var cfg configuration
	err := LoadFiles(&cfg)
	require.Equal(t, errNoFilesToLoad, err)
}

func TestLoadFilesUnknownField(t *testing.T) {
	fname := writeFile(t, goodConfig+"unknown: true\n")
	defer os.Remove(fname)

	var cfg configuration
	require.Error(t, LoadFiles(&cfg, fname))
}

func TestLoadFilesOverride(t *testing.T) {
	fname := writeFile(t, goodConfig)
	defer os.Remove(fname)

	partial := writeFile(t, `
bufferSpace: 8080
servers:
    - server3:8080
`)
	defer os.Remove(partial)

	var cfg configuration
	require.NoError(t, LoadFiles(&cfg, fname, partial))
	require.Equal(t, "localhost:4385", cfg.ListenAddress)
	require.Equal(t, 8080, cfg.BufferSpace)
	require.Equal(t, []string{"server3:8080"}, cfg.Servers)
}

func TestLoadFilesValidateOnce(t *testing.T) {
	invalid1 := writeFile(t, `
listenAddress:
bufferSpace: 256
`)
	defer os.Remove(invalid1)

	invalid2 := writeFile(t, `
listenAddress: "localhost:8080"
servers:
  - server2:8010
`)
	defer os.Remove(invalid2)

	var cfg1 configuration
	require.Error(t, LoadFiles(&cfg1, invalid1))

	var cfg2 configuration
	require.Error(t, LoadFiles(&cfg2, invalid2))

	var merged configuration
	require.NoError(t, LoadFiles(&merged, invalid1, invalid2))
	require.Equal(t, "localhost:8080", merged.ListenAddress)
	require.Equal(t, 256, merged.BufferSpace)
	require.Equal(t, []string{"server2:8010"}, merged.Servers)
}

func TestDump(t *testing.T) {
	cfg := configuration{ListenAddress: "a", BufferSpace: 300, Servers: []string{"b"}}
	data, err := Dump(cfg)
	require.NoError(t, err)

	fname := writeFile(t, string(data))
	defer os.Remove(fname)

	var loaded configuration
	require.NoError(t, LoadFile(&loaded, fname))
	require.Equal(t, cfg, loaded)
}

func writeFile(t *testing.T, contents string) string {
	f, err := ioutil.TempFile("", "configtest")
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Write([]byte(contents))
	require.NoError(t, err)
	return f.Name()
}
