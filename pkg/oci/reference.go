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
	"fmt"
	"strings"

	"github.com/distribution/reference"

	apperrors "github.com/NVIDIA/observability-stack/pkg/errors"
)

// URIScheme is the URI scheme for OCI registry output (e.g., "oci://ghcr.io/org/repo:tag").
const URIScheme = "oci://"

// Reference is a parsed output target: an OCI registry reference or a
// local directory.
type Reference struct {
	// IsOCI is true for oci:// targets.
	IsOCI bool
	// Registry is the OCI registry host (e.g., "ghcr.io", "localhost:5000").
	Registry string
	// Repository is the repository path (e.g., "nvidia/monitoring-bundle").
	Repository string
	// Tag is empty when the target names none; callers apply a default.
	Tag string
	// LocalPath is set for non-OCI targets.
	LocalPath string
}

// ParseOutputTarget parses "oci://registry/repository[:tag]" or a plain
// directory path.
func ParseOutputTarget(target string) (*Reference, error) {
	if !strings.HasPrefix(target, URIScheme) {
		return &Reference{LocalPath: target}, nil
	}

	ref, err := reference.ParseNormalizedNamed(strings.TrimPrefix(target, URIScheme))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "invalid OCI reference", err)
	}

	var tag string
	if tagged, ok := ref.(reference.Tagged); ok {
		tag = tagged.Tag()
	}

	out := &Reference{
		IsOCI:      true,
		Registry:   reference.Domain(ref),
		Repository: reference.Path(ref),
		Tag:        tag,
	}
	if err := ValidateRegistryReference(out.Registry, out.Repository); err != nil {
		return nil, err
	}
	return out, nil
}

// ValidateRegistryReference checks that registry and repository form a
// valid image name. A leading http:// or https:// on the registry is ignored.
func ValidateRegistryReference(registry, repository string) error {
	name := fmt.Sprintf("%s/%s", stripProtocol(registry), repository)
	if _, err := reference.ParseNamed(name); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid registry reference %q", name), err)
	}
	return nil
}

// String returns "oci://registry/repository[:tag]" or the local path.
func (r *Reference) String() string {
	if !r.IsOCI {
		return r.LocalPath
	}
	return URIScheme + r.ImageReference()
}

// ImageReference returns "registry/repository[:tag]", or an empty string
// for local targets.
func (r *Reference) ImageReference() string {
	if !r.IsOCI {
		return ""
	}
	if r.Tag == "" {
		return fmt.Sprintf("%s/%s", r.Registry, r.Repository)
	}
	return fmt.Sprintf("%s/%s:%s", r.Registry, r.Repository, r.Tag)
}

// WithTag returns a copy of the reference with the given tag.
func (r *Reference) WithTag(tag string) *Reference {
	if !r.IsOCI {
		return r
	}
	cp := *r
	cp.Tag = tag
	return &cp
}

// stripProtocol removes http:// or https:// prefix from a registry URL.
func stripProtocol(registry string) string {
	registry = strings.TrimPrefix(registry, "https://")
	registry = strings.TrimPrefix(registry, "http://")
	return registry
}
