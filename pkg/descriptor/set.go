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

package descriptor

import (
	"encoding/json"
	"fmt"
	"strconv"

	"k8s.io/apimachinery/pkg/util/intstr"
	"sigs.k8s.io/yaml"

	"github.com/NVIDIA/observability-stack/pkg/errors"
	"github.com/NVIDIA/observability-stack/pkg/header"
	"github.com/NVIDIA/observability-stack/pkg/params"
)

// Parse decodes a YAML or JSON DescriptorSet. Unknown fields are rejected
// with a SCHEMA_ERROR so typos do not silently drop configuration.
func Parse(data []byte) (*DescriptorSet, error) {
	var s DescriptorSet
	if err := yaml.UnmarshalStrict(data, &s); err != nil {
		return nil, &errors.StructuredError{
			Code:    errors.ErrCodeSchema,
			Message: "failed to decode descriptor set",
			Cause:   err,
		}
	}
	if s.Kind == "" {
		s.Kind = header.KindDescriptorSet
	}
	if s.APIVersion == "" {
		s.APIVersion = header.APIVersion
	}
	return &s, nil
}

// DeepCopy returns an independent copy of the set.
func (s *DescriptorSet) DeepCopy() (*DescriptorSet, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to copy descriptor set: %w", err)
	}
	var out DescriptorSet
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to copy descriptor set: %w", err)
	}
	return &out, nil
}

// DeclaredDefaults returns the default value of every parameter that
// declares one.
func (s *DescriptorSet) DeclaredDefaults() params.Params {
	out := make(params.Params)
	for _, p := range s.Parameters {
		if p.Default != nil {
			out[p.Name] = *p.Default
		}
	}
	return out
}

// SecretParameters returns the names of parameters marked secret.
func (s *DescriptorSet) SecretParameters() map[string]bool {
	out := make(map[string]bool)
	for _, p := range s.Parameters {
		if p.Secret {
			out[p.Name] = true
		}
	}
	return out
}

// Component returns the named component, or nil.
func (s *DescriptorSet) Component(name string) *ComponentDescriptor {
	for i := range s.Components {
		if s.Components[i].Name == name {
			return &s.Components[i]
		}
	}
	return nil
}

// VolumeKind identifies what backs a named volume.
type VolumeKind string

const (
	VolumeConfigBundle VolumeKind = "ConfigBundle"
	VolumeSecret       VolumeKind = "Secret"
	VolumeStorageClaim VolumeKind = "StorageClaim"
	VolumeEmptyDir     VolumeKind = "EmptyDir"
)

// Volumes maps every declared volume name of the component to its kind.
func (c *ComponentDescriptor) Volumes() map[string]VolumeKind {
	out := make(map[string]VolumeKind)
	for _, b := range c.ConfigBundles {
		out[b.Name] = VolumeConfigBundle
	}
	for _, sec := range c.Secrets {
		out[sec.Name] = VolumeSecret
	}
	for _, cl := range c.StorageClaims {
		out[cl.Name] = VolumeStorageClaim
	}
	for _, e := range c.EmptyDirs {
		out[e.Name] = VolumeEmptyDir
	}
	return out
}

// ResolvePort finds the declared port a probe or service refers to.
// Numeric strings are treated as port numbers.
func (c *ComponentDescriptor) ResolvePort(ref intstr.IntOrString) (Port, bool) {
	ref = NormalizePort(ref)
	for _, p := range c.Ports {
		if ref.Type == intstr.Int && p.Port == ref.IntVal {
			return p, true
		}
		if ref.Type == intstr.String && p.Name != "" && p.Name == ref.StrVal {
			return p, true
		}
	}
	return Port{}, false
}

// NormalizePort converts numeric string ports into integer ports.
func NormalizePort(ref intstr.IntOrString) intstr.IntOrString {
	if ref.Type == intstr.String {
		if n, err := strconv.ParseInt(ref.StrVal, 10, 32); err == nil {
			return intstr.FromInt32(int32(n))
		}
	}
	return ref
}

// PrimaryPort returns the first declared port.
func (c *ComponentDescriptor) PrimaryPort() Port {
	if len(c.Ports) == 0 {
		return Port{}
	}
	return c.Ports[0]
}
