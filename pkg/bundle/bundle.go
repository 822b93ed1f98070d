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

package bundle

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/NVIDIA/observability-stack/pkg/bundle/checksum"
	"github.com/NVIDIA/observability-stack/pkg/errors"
	"github.com/NVIDIA/observability-stack/pkg/render"
)

// CombinedFileName holds every object of the bundle in render order.
const CombinedFileName = "all.yaml"

// Writer writes render results to a directory.
//
// Thread-safety: Writer is safe for concurrent use when each call targets
// a different directory.
type Writer struct {
	checksums bool
	combined  bool
}

// Option defines a functional option for configuring Writer.
type Option func(*Writer)

// WithChecksums controls whether checksums.txt is written. Default true.
func WithChecksums(enabled bool) Option {
	return func(w *Writer) {
		w.checksums = enabled
	}
}

// WithCombined controls whether all.yaml is written. Default true.
func WithCombined(enabled bool) Option {
	return func(w *Writer) {
		w.combined = enabled
	}
}

// NewWriter creates a Writer with the given options.
func NewWriter(opts ...Option) *Writer {
	w := &Writer{checksums: true, combined: true}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Output summarizes a written bundle.
type Output struct {
	// Dir is the directory the bundle was written to.
	Dir string `json:"dir" yaml:"dir"`

	// Files lists written files relative to Dir, in render order.
	Files []string `json:"files" yaml:"files"`

	// TotalSize is the total size in bytes of all written files.
	TotalSize int64 `json:"total_size_bytes" yaml:"total_size_bytes"`

	// Duration is the time taken to write the bundle.
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Summary returns a human-readable summary of the written bundle.
func (o *Output) Summary() string {
	return fmt.Sprintf("Wrote %d files (%s) to %s in %v.",
		len(o.Files), formatBytes(o.TotalSize), o.Dir, o.Duration.Round(time.Millisecond))
}

// FileName returns the bundle file name for the object at position i.
func FileName(i int, o *render.Object) string {
	return fmt.Sprintf("%03d-%s-%s.yaml", i, strings.ToLower(o.Kind), o.Name)
}

// Write writes one file per object named NNN-<kind>-<name>.yaml, plus
// all.yaml and checksums.txt unless disabled.
func (w *Writer) Write(ctx context.Context, res *render.Result, dir string) (*Output, error) {
	start := time.Now()

	if res == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "render result cannot be nil")
	}
	if dir == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "output directory is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to create output directory", err)
	}

	out := &Output{Dir: dir}
	var written []string
	write := func(name string, data []byte) error {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0600); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to write %s", name), err)
		}
		out.Files = append(out.Files, name)
		out.TotalSize += int64(len(data))
		written = append(written, path)
		return nil
	}

	for i, o := range res.Objects {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, "bundle write cancelled", err)
		}
		if err := write(FileName(i, o), o.Encoded); err != nil {
			return nil, err
		}
	}

	if w.combined {
		if err := write(CombinedFileName, res.Bytes()); err != nil {
			return nil, err
		}
	}

	if w.checksums {
		if err := checksum.GenerateChecksums(ctx, dir, written); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, "failed to generate checksums", err)
		}
		out.Files = append(out.Files, checksum.ChecksumFileName)
	}

	out.Duration = time.Since(start)

	slog.Debug("bundle written",
		"dir", dir,
		"files", len(out.Files),
		"size_bytes", out.TotalSize,
	)
	return out, nil
}

// formatBytes formats bytes into human-readable format.
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
