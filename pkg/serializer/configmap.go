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

package serializer

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	accorev1 "k8s.io/client-go/applyconfigurations/core/v1"

	"github.com/NVIDIA/observability-stack/pkg/defaults"
	"github.com/NVIDIA/observability-stack/pkg/k8s/client"
)

// ConfigMapURIScheme prefixes ConfigMap sources and destinations
// (cm://namespace/name).
const ConfigMapURIScheme = "cm://"

const (
	// DescriptorsKey is the ConfigMap key read for a descriptor set.
	DescriptorsKey = "descriptors.yaml"
	// ParamsKey is the ConfigMap key read for a parameters file.
	ParamsKey = "params.yaml"
	// ManifestsKey is the ConfigMap key holding rendered manifests.
	ManifestsKey = "manifests.yaml"

	fieldManager = "obsctl"
)

// ParseConfigMapURI splits cm://namespace/name.
func ParseConfigMapURI(uri string) (namespace, name string, err error) {
	if !strings.HasPrefix(uri, ConfigMapURIScheme) {
		return "", "", fmt.Errorf("invalid ConfigMap URI: must start with %s", ConfigMapURIScheme)
	}

	path := strings.TrimPrefix(uri, ConfigMapURIScheme)
	ns, n, ok := strings.Cut(path, "/")
	if !ok {
		return "", "", fmt.Errorf("invalid ConfigMap URI format: expected %snamespace/name, got %s", ConfigMapURIScheme, uri)
	}

	namespace = strings.TrimSpace(ns)
	name = strings.TrimSpace(n)
	if namespace == "" {
		return "", "", fmt.Errorf("invalid ConfigMap URI: namespace cannot be empty")
	}
	if name == "" {
		return "", "", fmt.Errorf("invalid ConfigMap URI: name cannot be empty")
	}
	return namespace, name, nil
}

// ReadConfigMap returns the data stored under the first present key of
// keys. With no match, a ConfigMap holding a single key yields that key.
func ReadConfigMap(ctx context.Context, c client.Interface, namespace, name string, keys ...string) ([]byte, error) {
	readCtx, cancel := context.WithTimeout(ctx, defaults.ConfigMapReadTimeout)
	defer cancel()

	cm, err := c.CoreV1().ConfigMaps(namespace).Get(readCtx, name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get ConfigMap %s/%s: %w", namespace, name, err)
	}

	for _, k := range keys {
		if v, ok := cm.Data[k]; ok {
			return []byte(v), nil
		}
	}
	if len(cm.Data) == 1 {
		for _, v := range cm.Data {
			return []byte(v), nil
		}
	}
	return nil, fmt.Errorf("ConfigMap %s/%s has none of keys %v (found %v)",
		namespace, name, keys, slices.Sorted(maps.Keys(cm.Data)))
}

// ConfigMapWriter stores rendered manifests in a ConfigMap using
// server-side apply, creating it when absent.
type ConfigMapWriter struct {
	client    client.Interface
	namespace string
	name      string
	key       string
}

// NewConfigMapWriter creates a writer for namespace/name. An empty key
// means ManifestsKey.
func NewConfigMapWriter(c client.Interface, namespace, name, key string) *ConfigMapWriter {
	if key == "" {
		key = ManifestsKey
	}
	return &ConfigMapWriter{
		client:    c,
		namespace: namespace,
		name:      name,
		key:       key,
	}
}

// Write applies content under the writer's key. Labels are set on the
// ConfigMap.
func (w *ConfigMapWriter) Write(ctx context.Context, content []byte, labels map[string]string) error {
	writeCtx, cancel := context.WithTimeout(ctx, defaults.ConfigMapWriteTimeout)
	defer cancel()

	cm := accorev1.ConfigMap(w.name, w.namespace).
		WithLabels(labels).
		WithData(map[string]string{w.key: string(content)})

	slog.Info("applying ConfigMap",
		"namespace", w.namespace,
		"name", w.name,
		"key", w.key,
		"size", len(content))

	_, err := w.client.CoreV1().ConfigMaps(w.namespace).Apply(writeCtx, cm, metav1.ApplyOptions{
		FieldManager: fieldManager,
		Force:        true,
	})
	if err != nil {
		return fmt.Errorf("failed to apply ConfigMap %s/%s: %w", w.namespace, w.name, err)
	}
	return nil
}
