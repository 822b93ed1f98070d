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

// Package oci packages rendered bundle directories as OCI artifacts and
// pushes them to OCI-compliant registries using ORAS.
//
// A bundle is packed as a single reproducible tar+gzip layer under an OCI
// 1.1 manifest with artifact type ArtifactType. Packaging writes a local OCI
// image layout first, so the artifact can be inspected or pushed later:
//
//	ref, err := oci.ParseOutputTarget("oci://ghcr.io/acme/monitoring:v1")
//	res, err := oci.PackageAndPush(ctx, oci.OutputConfig{
//	    SourceDir: "./bundle",
//	    OutputDir: os.TempDir(),
//	    Reference: ref,
//	})
//
// Registry credentials come from the Docker configuration
// (~/.docker/config.json) and its credential helpers.
package oci
