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

// Package cli implements obsctl, the command-line front end of the
// descriptor renderer.
//
// # Commands
//
// render - Render descriptors into Kubernetes manifests:
//
//	obsctl render -f descriptors.yaml --params-file prod.yaml [-o manifests.yaml]
//
// Without --file the built-in Prometheus and Grafana catalog is rendered,
// optionally narrowed with --component. The output goes to stdout, a file,
// a bundle directory (--bundle), an OCI registry (oci://) or a ConfigMap
// (cm://namespace/name).
//
// validate - Check descriptors and list every problem with its field path:
//
//	obsctl validate -f descriptors.yaml [--with-params --params-file prod.yaml]
//
// diff - Compare two manifest streams, or one set under two parameter sets:
//
//	obsctl diff --old old.yaml --new new.yaml
//	obsctl diff --old-params-file prod.yaml --params-file staging.yaml
//
// catalog - List or export the built-in components:
//
//	obsctl catalog --format table
//
// verify - Re-check a bundle directory against its checksums.txt:
//
//	obsctl verify ./monitoring
//
// # Parameters
//
// Parameter values are merged from --params-file, then --param-env, then
// --param, later sources winning. A parameters file is either
//
//	kind: Parameters
//	apiVersion: obs.nvidia.com/v1alpha1
//	values:
//	  DOMAIN_NAME: example.com
//
// or a flat map of names to values.
//
// # Sources
//
// --file, --params-file, --old and --new accept file paths, "-" for stdin,
// HTTP/HTTPS URLs and ConfigMap URIs (cm://namespace/name).
//
// # Environment Variables
//
//	OBSCTL_LOG_LEVEL, LOG_LEVEL  logging verbosity (debug, info, warn, error)
//	OBSCTL_FILE                  default for --file
//	OBSCTL_PARAMS_FILE           default for --params-file
//	OBSCTL_TARGET                default for --target
//	OBSCTL_NAMESPACE             default for --namespace
//	KUBECONFIG                   kubeconfig for cm:// sources and destinations
//
// # Exit Codes
//
//	0  Success
//	1  Any error, including validation failures and --exit-code diffs
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/NVIDIA/observability-stack/pkg/cli.version=1.0.0'"
package cli
