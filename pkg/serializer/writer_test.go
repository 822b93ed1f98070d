// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package serializer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Name   string   `json:"name" yaml:"name"`
	Ports  []int32  `json:"ports" yaml:"ports"`
	Secret string   `json:"-" yaml:"-"`
	Claims []string `json:"claims,omitempty" yaml:"claims,omitempty"`
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"out.json":   FormatJSON,
		"OUT.YAML":   FormatYAML,
		"out.yml":    FormatYAML,
		"out.table":  FormatTable,
		"out.txt":    FormatTable,
		"out":        FormatYAML,
		"noext.conf": FormatYAML,
	}
	for path, want := range tests {
		assert.Equal(t, want, FormatFromPath(path), path)
	}
}

func TestFormat_IsUnknown(t *testing.T) {
	for _, f := range SupportedFormats() {
		assert.False(t, Format(f).IsUnknown(), f)
	}
	assert.True(t, Format("xml").IsUnknown())
}

func TestWriter_Serialize(t *testing.T) {
	v := entry{Name: "prometheus", Ports: []int32{9090}, Secret: "hidden"}

	tests := []struct {
		format   Format
		contains []string
		excludes []string
	}{
		{format: FormatJSON, contains: []string{`"name": "prometheus"`, `"ports": [`}, excludes: []string{"hidden"}},
		{format: FormatYAML, contains: []string{"name: prometheus", "- 9090"}, excludes: []string{"hidden"}},
		{format: FormatTable, contains: []string{"FIELD", "name", "ports.[0]", "9090"}, excludes: []string{"hidden", "Secret"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			w := NewWriter(tt.format, &buf)
			require.NoError(t, w.Serialize(context.Background(), v))
			for _, s := range tt.contains {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}

func TestWriter_UnknownFormatDefaultsToJSON(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(Format("xml"), &buf)
	require.NoError(t, w.Serialize(context.Background(), map[string]int{"a": 1}))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())
}

func TestMarshal_TableEmpty(t *testing.T) {
	out, err := Marshal(FormatTable, struct{}{})
	require.NoError(t, err)
	assert.Equal(t, "<empty>\n", string(out))
}

func TestMarshal_TableSortedRows(t *testing.T) {
	out, err := Marshal(FormatTable, map[string]any{"b": 2, "a": map[string]string{"x": "y"}})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[2], "a.x"))
	assert.True(t, strings.HasPrefix(lines[3], "b"))
}

func TestNewFileWriterOrStdout(t *testing.T) {
	w, err := NewFileWriterOrStdout(FormatYAML, "")
	require.NoError(t, err)
	assert.Nil(t, w.closer)

	path := filepath.Join(t.TempDir(), "out.yaml")
	w, err = NewFileWriterOrStdout(FormatYAML, path)
	require.NoError(t, err)
	require.NoError(t, w.Serialize(context.Background(), entry{Name: "grafana", Ports: []int32{3000}}))
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: grafana")

	_, err = NewFileWriterOrStdout(FormatYAML, filepath.Join(t.TempDir(), "missing", "out.yaml"))
	assert.Error(t, err)
}
