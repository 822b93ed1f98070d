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

// Package client builds Kubernetes clients for reading descriptor sets
// from ConfigMaps and publishing rendered manifests.
//
// The default client is created once and shared:
//
//	c, err := client.GetKubeClient()
//	cm, err := c.CoreV1().ConfigMaps("monitoring").Get(ctx, "descriptors", metav1.GetOptions{})
//
// Configuration is discovered from an explicit path, then KUBECONFIG, then
// ~/.kube/config, then the in-cluster service account. Tests pass a fake
// clientset from k8s.io/client-go/kubernetes/fake wherever an Interface is
// accepted.
package client
