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

// Package render turns descriptor sets into ordered deployment objects.
//
// Rendering is a pure function of a DescriptorSet and a parameter map:
//
//	r, err := render.New()
//	res, err := r.Render(ctx, set, params.Params{"DOMAIN_NAME": "example.com"})
//	os.Stdout.Write(res.Bytes())
//
// Render copies the set, substitutes ${PARAM} placeholders, validates the
// result and asks a Target to build each component. Components are built
// concurrently and reassembled in a fixed order:
//
//   - config tier: ServiceAccount, Role, ClusterRole, RoleBinding,
//     ClusterRoleBinding, ConfigMap, Secret, PersistentVolumeClaim
//   - workload tier: Deployment
//   - network tier: Service, Ingress
//
// Within a tier objects follow component declaration order, then kind
// order, then name. Each object is encoded as canonical YAML with sorted
// keys, so rendering the same input twice yields byte-identical output.
//
// Targets register themselves by name; the Kubernetes target is always
// available. Diff compares two rendered streams object by object.
package render
