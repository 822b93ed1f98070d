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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"reflect"
	"slices"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Format represents the output format type
type Format string

const (
	// FormatJSON outputs data in JSON format
	FormatJSON Format = "json"
	// FormatYAML outputs data in YAML format
	FormatYAML Format = "yaml"
	// FormatTable outputs data in table format
	FormatTable Format = "table"
)

const defaultValueKey = "value"

// IsUnknown reports whether f is not a supported format.
func (f Format) IsUnknown() bool {
	switch f {
	case FormatJSON, FormatYAML, FormatTable:
		return false
	default:
		return true
	}
}

// SupportedFormats returns the names of all output formats.
func SupportedFormats() []string {
	return []string{
		string(FormatJSON),
		string(FormatYAML),
		string(FormatTable),
	}
}

// FormatFromPath picks a format from a file extension: .json, .yaml/.yml
// or .table/.txt. Unknown extensions default to YAML.
func FormatFromPath(path string) Format {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".json"):
		return FormatJSON
	case strings.HasSuffix(lower, ".yaml"), strings.HasSuffix(lower, ".yml"):
		return FormatYAML
	case strings.HasSuffix(lower, ".table"), strings.HasSuffix(lower, ".txt"):
		return FormatTable
	default:
		return FormatYAML
	}
}

// Writer serializes values to an io.Writer.
// Close must be called for writers created with NewFileWriterOrStdout.
type Writer struct {
	format Format
	output io.Writer
	closer io.Closer
}

// NewWriter creates a Writer. A nil output means stdout and an unknown
// format means JSON.
func NewWriter(format Format, output io.Writer) *Writer {
	if output == nil {
		output = os.Stdout
	}
	return &Writer{
		format: normalize(format),
		output: output,
	}
}

// NewStdoutWriter creates a Writer on stdout.
func NewStdoutWriter(format Format) *Writer {
	return NewWriter(format, os.Stdout)
}

// NewFileWriterOrStdout returns a Writer for path, or for stdout when path
// is empty or "-".
func NewFileWriterOrStdout(format Format, path string) (*Writer, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" || trimmed == "-" {
		return NewStdoutWriter(format), nil
	}

	file, err := os.Create(trimmed)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file %s: %w", trimmed, err)
	}

	return &Writer{
		format: normalize(format),
		output: file,
		closer: file,
	}, nil
}

func normalize(format Format) Format {
	if format.IsUnknown() {
		slog.Warn("unknown format, defaulting to JSON", "format", format)
		return FormatJSON
	}
	return format
}

// Close releases the underlying file, if any. It is safe to call twice.
func (w *Writer) Close() error {
	if w.closer == nil {
		return nil
	}
	err := w.closer.Close()
	w.closer = nil
	return err
}

// Serialize writes v in the configured format.
func (w *Writer) Serialize(_ context.Context, v any) error {
	content, err := Marshal(w.format, v)
	if err != nil {
		return err
	}
	if _, err := w.output.Write(content); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// Marshal encodes v in the given format.
func Marshal(format Format, v any) ([]byte, error) {
	switch format {
	case FormatJSON:
		content, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to serialize to JSON: %w", err)
		}
		return append(content, '\n'), nil
	case FormatYAML:
		var sb strings.Builder
		enc := yaml.NewEncoder(&sb)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("failed to serialize to YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to serialize to YAML: %w", err)
		}
		return []byte(sb.String()), nil
	case FormatTable:
		return marshalTable(v)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func marshalTable(v any) ([]byte, error) {
	flat := make(map[string]any)
	flattenValue(flat, reflect.ValueOf(v), "")
	if len(flat) == 0 {
		return []byte("<empty>\n"), nil
	}

	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tVALUE")
	fmt.Fprintln(tw, "-----\t-----")
	for _, key := range slices.Sorted(maps.Keys(flat)) {
		fmt.Fprintf(tw, "%s\t%v\n", key, flat[key])
	}
	if err := tw.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush table: %w", err)
	}
	return []byte(sb.String()), nil
}

// flattenValue collects leaf values keyed by their dotted path. Struct
// fields use their json tag name when one is set.
func flattenValue(out map[string]any, val reflect.Value, prefix string) {
	if !val.IsValid() {
		return
	}

	for val.Kind() == reflect.Pointer || val.Kind() == reflect.Interface {
		if val.IsNil() {
			if prefix != "" {
				out[prefix] = nil
			}
			return
		}
		val = val.Elem()
	}

	//nolint:exhaustive // common kinds handled explicitly, the rest are leaves
	switch val.Kind() {
	case reflect.Struct:
		typ := val.Type()
		for i := range val.NumField() {
			field := typ.Field(i)
			if !field.IsExported() {
				continue
			}
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			switch {
			case name == "-":
				continue
			case name == "" && field.Anonymous:
				flattenValue(out, val.Field(i), prefix)
				continue
			case name == "":
				name = field.Name
			}
			flattenValue(out, val.Field(i), joinKey(prefix, name))
		}
	case reflect.Map:
		for _, mapKey := range val.MapKeys() {
			key := joinKey(prefix, fmt.Sprintf("%v", mapKey.Interface()))
			flattenValue(out, val.MapIndex(mapKey), key)
		}
	case reflect.Slice, reflect.Array:
		if val.Kind() == reflect.Slice && val.Type().Elem().Kind() == reflect.Uint8 {
			out[leafKey(prefix)] = string(val.Bytes())
			return
		}
		for i := range val.Len() {
			flattenValue(out, val.Index(i), joinKey(prefix, fmt.Sprintf("[%d]", i)))
		}
	default:
		out[leafKey(prefix)] = val.Interface()
	}
}

func leafKey(prefix string) string {
	if prefix == "" {
		return defaultValueKey
	}
	return prefix
}

func joinKey(prefix, suffix string) string {
	if prefix == "" {
		return suffix
	}
	if suffix == "" {
		return prefix
	}
	return prefix + "." + suffix
}
