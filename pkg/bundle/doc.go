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

// Package bundle writes rendered objects to a directory.
//
// A bundle directory looks like:
//
//	000-serviceaccount-prometheus.yaml
//	001-clusterrole-monitoring-prometheus.yaml
//	...
//	all.yaml        every object in render order
//	checksums.txt   sha256sum compatible digests of the files above
//
// File prefixes follow render order, so applying the files in name order
// creates dependencies before their consumers:
//
//	kubectl apply -f ./bundle/all.yaml
package bundle
