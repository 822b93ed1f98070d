/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package checksum provides SHA256 checksum generation and verification for
// rendered bundles.
//
// Usage:
//
//	err := checksum.GenerateChecksums(ctx, "/path/to/bundle", fileList)
//	mismatches, err := checksum.Verify(ctx, "/path/to/bundle")
//
// The checksums.txt file format is compatible with sha256sum:
//
//	sha256sum -c checksums.txt
package checksum
