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

package render

import (
	"fmt"

	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/yaml"
)

// toContent converts a typed API object to its canonical unstructured form:
// null fields dropped, empty top-level status removed.
func toContent(obj runtime.Object) (map[string]any, error) {
	content, err := runtime.DefaultUnstructuredConverter.ToUnstructured(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to convert %T to unstructured: %w", obj, err)
	}
	pruneNulls(content)
	if status, ok := content["status"].(map[string]any); ok && len(status) == 0 {
		delete(content, "status")
	}
	return content, nil
}

func pruneNulls(m map[string]any) {
	for k, v := range m {
		switch t := v.(type) {
		case nil:
			delete(m, k)
		case map[string]any:
			pruneNulls(t)
		case []any:
			for _, item := range t {
				if mm, ok := item.(map[string]any); ok {
					pruneNulls(mm)
				}
			}
		}
	}
}

// Encode returns the canonical YAML document for an unstructured object.
// Keys are emitted in sorted order so equal content yields equal bytes.
func Encode(content map[string]any) ([]byte, error) {
	out, err := yaml.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("failed to encode object: %w", err)
	}
	return out, nil
}
