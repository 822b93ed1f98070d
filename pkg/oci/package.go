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

package oci

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	oras "oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content/file"
	"oras.land/oras-go/v2/content/oci"
)

// ArtifactType is the media type of rendered bundle artifacts.
const ArtifactType = "application/vnd.nvidia.observability.bundle"

// layoutDirName is the OCI image layout directory created under OutputDir.
const layoutDirName = "oci-layout"

// PackageOptions configures local packaging of a bundle directory.
type PackageOptions struct {
	// SourceDir is the bundle directory to package.
	SourceDir string
	// OutputDir receives the OCI image layout.
	OutputDir  string
	Registry   string
	Repository string
	Tag        string
	// Annotations are added to the manifest. A fixed
	// org.opencontainers.image.created value keeps the digest reproducible.
	Annotations map[string]string
}

// PackageResult describes a packaged artifact.
type PackageResult struct {
	Digest    string
	Reference string
	// StorePath is the OCI image layout directory.
	StorePath string
}

// Package packs SourceDir as a single reproducible tar+gzip layer into an
// OCI image layout under OutputDir and tags it with Tag.
func Package(ctx context.Context, opts PackageOptions) (*PackageResult, error) {
	switch {
	case opts.Tag == "":
		return nil, fmt.Errorf("tag is required for OCI packaging")
	case opts.Registry == "":
		return nil, fmt.Errorf("registry is required for OCI packaging")
	case opts.Repository == "":
		return nil, fmt.Errorf("repository is required for OCI packaging")
	}
	if err := ValidateRegistryReference(opts.Registry, opts.Repository); err != nil {
		return nil, err
	}

	absSource, err := filepath.Abs(opts.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source directory: %w", err)
	}
	if info, statErr := os.Stat(absSource); statErr != nil || !info.IsDir() {
		return nil, fmt.Errorf("source %s is not a directory", opts.SourceDir)
	}

	fs, err := file.New(absSource)
	if err != nil {
		return nil, fmt.Errorf("failed to create file store: %w", err)
	}
	defer func() { _ = fs.Close() }()

	// deterministic tars keep the layer digest stable across runs
	fs.TarReproducible = true

	layer, err := fs.Add(ctx, ".", ociv1.MediaTypeImageLayerGzip, absSource)
	if err != nil {
		return nil, fmt.Errorf("failed to add bundle directory to store: %w", err)
	}

	manifest, err := oras.PackManifest(ctx, fs, oras.PackManifestVersion1_1, ArtifactType, oras.PackManifestOptions{
		Layers:              []ociv1.Descriptor{layer},
		ManifestAnnotations: opts.Annotations,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to pack manifest: %w", err)
	}
	if err := fs.Tag(ctx, manifest, opts.Tag); err != nil {
		return nil, fmt.Errorf("failed to tag manifest in file store: %w", err)
	}

	storePath := filepath.Join(opts.OutputDir, layoutDirName)
	store, err := oci.New(storePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create OCI layout: %w", err)
	}
	desc, err := oras.Copy(ctx, fs, opts.Tag, store, opts.Tag, oras.DefaultCopyOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to copy artifact into OCI layout: %w", err)
	}

	return &PackageResult{
		Digest:    desc.Digest.String(),
		Reference: fmt.Sprintf("%s/%s:%s", stripProtocol(opts.Registry), opts.Repository, opts.Tag),
		StorePath: storePath,
	}, nil
}
