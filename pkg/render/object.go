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
	"bytes"
	"cmp"
	"fmt"
	"slices"
)

// Tier groups rendered objects so that dependencies are declared before
// their consumers.
type Tier int

const (
	// TierConfig holds identities, RBAC, configuration, secrets and storage.
	TierConfig Tier = iota
	// TierWorkload holds the workloads consuming the config tier.
	TierWorkload
	// TierNetwork holds objects exposing workloads.
	TierNetwork
)

// String returns the tier name.
func (t Tier) String() string {
	switch t {
	case TierConfig:
		return "config"
	case TierWorkload:
		return "workload"
	case TierNetwork:
		return "network"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// Object is a single rendered output object.
type Object struct {
	// Component is the name of the descriptor that produced the object.
	Component string `json:"component" yaml:"component"`

	APIVersion string `json:"apiVersion" yaml:"apiVersion"`
	Kind       string `json:"kind" yaml:"kind"`
	Name       string `json:"name" yaml:"name"`
	Namespace  string `json:"namespace,omitempty" yaml:"namespace,omitempty"`

	Tier Tier `json:"tier" yaml:"tier"`
	// Rank orders kinds inside a tier.
	Rank int `json:"-" yaml:"-"`

	// Content is the object in unstructured form.
	Content map[string]any `json:"content" yaml:"content"`

	// Encoded is the canonical YAML document for Content.
	Encoded []byte `json:"-" yaml:"-"`

	index int
}

// Ref returns the identity of the object as kind/namespace/name.
func (o *Object) Ref() string {
	if o.Namespace == "" {
		return fmt.Sprintf("%s/%s", o.Kind, o.Name)
	}
	return fmt.Sprintf("%s/%s/%s", o.Kind, o.Namespace, o.Name)
}

// sortObjects orders objects by tier, then component declaration order,
// then kind rank, then name.
func sortObjects(objs []*Object) {
	slices.SortStableFunc(objs, func(a, b *Object) int {
		return cmp.Or(
			cmp.Compare(a.Tier, b.Tier),
			cmp.Compare(a.index, b.index),
			cmp.Compare(a.Rank, b.Rank),
			cmp.Compare(a.Name, b.Name),
		)
	})
}

// Result is the ordered output of a render.
type Result struct {
	// Target is the name of the target that produced the objects.
	Target string `json:"target" yaml:"target"`

	// Namespace the objects were rendered into.
	Namespace string `json:"namespace" yaml:"namespace"`

	Objects []*Object `json:"objects" yaml:"objects"`

	// Unused lists supplied parameters no placeholder referenced.
	Unused []string `json:"unused,omitempty" yaml:"unused,omitempty"`
}

// documentSeparator joins rendered documents.
const documentSeparator = "---\n"

// Bytes returns all objects as a multi-document YAML stream in render order.
func (r *Result) Bytes() []byte {
	var buf bytes.Buffer
	for i, o := range r.Objects {
		if i > 0 {
			buf.WriteString(documentSeparator)
		}
		buf.Write(o.Encoded)
	}
	return buf.Bytes()
}

// Kinds returns the number of rendered objects per kind.
func (r *Result) Kinds() map[string]int {
	out := make(map[string]int)
	for _, o := range r.Objects {
		out[o.Kind]++
	}
	return out
}

// Find returns the object with the given kind and name, or nil.
func (r *Result) Find(kind, name string) *Object {
	for _, o := range r.Objects {
		if o.Kind == kind && o.Name == name {
			return o
		}
	}
	return nil
}
