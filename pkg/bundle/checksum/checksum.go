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

package checksum

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ChecksumFileName is the standard name for checksum files.
const ChecksumFileName = "checksums.txt"

// Mismatch describes a bundle file whose content no longer matches
// its recorded checksum.
type Mismatch struct {
	Path     string
	Expected string
	Actual   string
}

func (m Mismatch) String() string {
	if m.Actual == "" {
		return fmt.Sprintf("%s: missing", m.Path)
	}
	return fmt.Sprintf("%s: expected %s, got %s", m.Path, m.Expected, m.Actual)
}

// Sum returns the hex SHA256 of data.
func Sum(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// GenerateChecksums creates a checksums.txt file containing SHA256 checksums
// for all provided files, in the order given. Paths are written relative to
// the bundle directory using forward slashes.
//
// The file format is compatible with sha256sum:
//
//	sha256sum -c checksums.txt
func GenerateChecksums(ctx context.Context, bundleDir string, files []string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	var buf bytes.Buffer
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s for checksum: %w", file, err)
		}

		relPath, err := filepath.Rel(bundleDir, file)
		if err != nil {
			relPath = file
		}
		fmt.Fprintf(&buf, "%s  %s\n", Sum(data), filepath.ToSlash(relPath))
	}

	checksumPath := GetChecksumFilePath(bundleDir)
	if err := os.WriteFile(checksumPath, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write checksums: %w", err)
	}

	slog.Debug("checksums generated",
		"file_count", len(files),
		"path", checksumPath,
	)

	return nil
}

// Parse reads a checksums file into a path to hex digest map.
func Parse(data []byte) (map[string]string, error) {
	out := make(map[string]string)
	sc := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		sum, path, ok := strings.Cut(text, "  ")
		if !ok || len(sum) != sha256.Size*2 {
			return nil, fmt.Errorf("invalid checksum entry on line %d", line)
		}
		out[path] = sum
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read checksums: %w", err)
	}
	return out, nil
}

// Verify re-hashes every file listed in the bundle's checksums.txt and
// returns the files that are missing or changed.
func Verify(ctx context.Context, bundleDir string) ([]Mismatch, error) {
	data, err := os.ReadFile(GetChecksumFilePath(bundleDir))
	if err != nil {
		return nil, fmt.Errorf("failed to read checksums: %w", err)
	}
	sums, err := Parse(data)
	if err != nil {
		return nil, err
	}

	var mismatches []Mismatch
	for _, path := range sortedPaths(sums) {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled: %w", err)
		}
		content, err := os.ReadFile(filepath.Join(bundleDir, filepath.FromSlash(path)))
		if os.IsNotExist(err) {
			mismatches = append(mismatches, Mismatch{Path: path, Expected: sums[path]})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if actual := Sum(content); actual != sums[path] {
			mismatches = append(mismatches, Mismatch{Path: path, Expected: sums[path], Actual: actual})
		}
	}
	return mismatches, nil
}

// GetChecksumFilePath returns the full path to the checksums.txt file
// in the given bundle directory.
func GetChecksumFilePath(bundleDir string) string {
	return filepath.Join(bundleDir, ChecksumFileName)
}

func sortedPaths(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for p := range m {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}
