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
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"

	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	oras "oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content/oci"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/credentials"

	apperrors "github.com/NVIDIA/observability-stack/pkg/errors"
)

// PushOptions configures pushing a packaged artifact.
type PushOptions struct {
	Registry   string
	Repository string
	Tag        string
	// PlainHTTP uses HTTP instead of HTTPS for the registry connection.
	PlainHTTP bool
	// InsecureTLS skips TLS certificate verification.
	InsecureTLS bool
}

// PushResult contains the result of a successful push.
type PushResult struct {
	Digest    string
	Reference string
}

// PushFromStore copies the artifact tagged Tag in the OCI layout at
// storePath to the remote repository.
func PushFromStore(ctx context.Context, storePath string, opts PushOptions) (*PushResult, error) {
	if opts.Tag == "" {
		return nil, fmt.Errorf("tag is required to push OCI artifact")
	}
	if err := ValidateRegistryReference(opts.Registry, opts.Repository); err != nil {
		return nil, err
	}

	store, err := oci.New(storePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open OCI layout: %w", err)
	}

	registry := stripProtocol(opts.Registry)
	repo, err := remote.NewRepository(fmt.Sprintf("%s/%s", registry, opts.Repository))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize remote repository: %w", err)
	}
	repo.PlainHTTP = opts.PlainHTTP
	repo.Client = createAuthClient(opts.PlainHTTP, opts.InsecureTLS)

	desc, err := oras.Copy(ctx, store, opts.Tag, repo, opts.Tag, oras.DefaultCopyOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to push artifact to registry: %w", err)
	}

	return &PushResult{
		Digest:    desc.Digest.String(),
		Reference: fmt.Sprintf("%s/%s:%s", registry, opts.Repository, opts.Tag),
	}, nil
}

// OutputConfig configures the package and push workflow.
type OutputConfig struct {
	SourceDir string
	// OutputDir holds the intermediate OCI layout.
	OutputDir string
	Reference *Reference
	// Version is recorded as org.opencontainers.image.version.
	Version     string
	PlainHTTP   bool
	InsecureTLS bool
	// Annotations replace the default manifest annotations when set.
	Annotations map[string]string
}

// PackageAndPushResult contains the result of a package and push.
type PackageAndPushResult struct {
	Digest    string
	Reference string
	StorePath string
}

// PackageAndPush packages a bundle directory and pushes it to a registry.
func PackageAndPush(ctx context.Context, cfg OutputConfig) (*PackageAndPushResult, error) {
	if cfg.Reference == nil || !cfg.Reference.IsOCI {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "OCI reference is required for PackageAndPush")
	}
	if cfg.Reference.Tag == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "tag is required for OCI packaging")
	}

	absOutputDir, err := filepath.Abs(cfg.OutputDir)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to resolve output directory", err)
	}

	annotations := cfg.Annotations
	if annotations == nil {
		annotations = DefaultAnnotations(cfg.Version)
	}

	slog.Info("packaging bundle as OCI artifact",
		"registry", cfg.Reference.Registry,
		"repository", cfg.Reference.Repository,
		"tag", cfg.Reference.Tag,
	)

	pkg, err := Package(ctx, PackageOptions{
		SourceDir:   cfg.SourceDir,
		OutputDir:   absOutputDir,
		Registry:    cfg.Reference.Registry,
		Repository:  cfg.Reference.Repository,
		Tag:         cfg.Reference.Tag,
		Annotations: annotations,
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to package OCI artifact", err)
	}

	pushed, err := PushFromStore(ctx, pkg.StorePath, PushOptions{
		Registry:    cfg.Reference.Registry,
		Repository:  cfg.Reference.Repository,
		Tag:         cfg.Reference.Tag,
		PlainHTTP:   cfg.PlainHTTP,
		InsecureTLS: cfg.InsecureTLS,
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to push OCI artifact to registry", err)
	}

	slog.Info("OCI artifact pushed",
		"reference", pushed.Reference,
		"digest", pushed.Digest,
	)

	return &PackageAndPushResult{
		Digest:    pushed.Digest,
		Reference: pushed.Reference,
		StorePath: pkg.StorePath,
	}, nil
}

// DefaultAnnotations returns the manifest annotations applied when none are
// configured. The created timestamp is fixed so equal bundles share a digest.
func DefaultAnnotations(version string) map[string]string {
	return map[string]string{
		ociv1.AnnotationCreated: "1970-01-01T00:00:00Z",
		ociv1.AnnotationVersion: version,
		ociv1.AnnotationVendor:  "NVIDIA",
		ociv1.AnnotationTitle:   "Observability Stack Bundle",
		ociv1.AnnotationSource:  "https://github.com/NVIDIA/observability-stack",
	}
}

// createAuthClient creates an HTTP client with optional TLS configuration
// and Docker credential support.
func createAuthClient(plainHTTP, insecureTLS bool) *auth.Client {
	credStore, _ := credentials.NewStoreFromDocker(credentials.StoreOptions{})

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !plainHTTP && insecureTLS {
		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
		} else {
			transport.TLSClientConfig.InsecureSkipVerify = true //nolint:gosec
		}
	}

	client := &auth.Client{
		Client: &http.Client{Transport: transport},
		Cache:  auth.NewCache(),
	}
	if credStore != nil {
		client.Credential = credentials.Credential(credStore)
	}
	return client
}
