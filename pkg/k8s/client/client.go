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

package client

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
)

// Interface is kubernetes.Interface, so fake clientsets satisfy it in tests.
type Interface = kubernetes.Interface

var (
	clientOnce   sync.Once
	cachedClient Interface
	clientErr    error
)

// GetKubeClient returns the shared client built from the discovered
// kubeconfig. It is created on first use.
func GetKubeClient() (Interface, error) {
	clientOnce.Do(func() {
		cachedClient, _, clientErr = BuildKubeClient("")
	})
	return cachedClient, clientErr
}

// ForKubeconfig returns the shared client for an empty path and a new
// client for an explicit kubeconfig file.
func ForKubeconfig(kubeconfig string) (Interface, error) {
	if kubeconfig == "" {
		return GetKubeClient()
	}
	c, _, err := BuildKubeClient(kubeconfig)
	return c, err
}

// BuildKubeClient creates a client from kubeconfig. An empty path falls
// back to KUBECONFIG, then ~/.kube/config, then the in-cluster service
// account.
func BuildKubeClient(kubeconfig string) (*kubernetes.Clientset, *rest.Config, error) {
	path := ResolveKubeconfig(kubeconfig)

	var (
		config *rest.Config
		err    error
	)
	if path == "" {
		config, err = rest.InClusterConfig()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get in-cluster config: %w", err)
		}
	} else {
		config, err = clientcmd.BuildConfigFromFlags("", path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to build kube config from %s: %w", path, err)
		}
	}

	c, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}
	return c, config, nil
}

// ResolveKubeconfig returns the kubeconfig path to use, or an empty
// string when only in-cluster configuration remains.
func ResolveKubeconfig(kubeconfig string) string {
	if kubeconfig != "" {
		return kubeconfig
	}
	if env := os.Getenv("KUBECONFIG"); env != "" {
		return env
	}
	home := filepath.Join(homedir.HomeDir(), ".kube", "config")
	if _, err := os.Stat(home); err == nil {
		return home
	}
	return ""
}
