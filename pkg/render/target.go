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
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/NVIDIA/observability-stack/pkg/descriptor"
)

// ComponentInput is everything a target needs to build one component.
// The component has already been parameter-expanded and validated.
type ComponentInput struct {
	// Index is the declaration position of the component in its set.
	Index int

	Namespace string

	// Labels are the set-level labels applied to every object.
	Labels map[string]string

	Component *descriptor.ComponentDescriptor

	// SecretData holds resolved values per secret name and key.
	SecretData map[string]map[string][]byte
}

// Target turns expanded descriptors into objects for one orchestration API.
// Implementations must be safe for concurrent use and must return the same
// objects for the same input.
type Target interface {
	Name() string
	Build(ctx context.Context, in *ComponentInput) ([]*Object, error)
}

// Factory creates a Target instance.
type Factory func() Target

// Global registry for target factories.
// Targets register themselves via init() functions.
var (
	globalFactories = make(map[string]Factory)
	globalMu        sync.RWMutex
)

// Register registers a target factory globally.
// Returns an error if a target with the same name is already registered.
func Register(name string, factory Factory) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if _, exists := globalFactories[name]; exists {
		return fmt.Errorf("target %s already registered", name)
	}

	globalFactories[name] = factory
	return nil
}

// MustRegister is a convenience function that panics on registration error.
func MustRegister(name string, factory Factory) {
	if err := Register(name, factory); err != nil {
		panic(err)
	}
}

// Targets returns the names of all globally registered targets, sorted.
func Targets() []string {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return slices.Sorted(maps.Keys(globalFactories))
}

// NewTarget instantiates a globally registered target.
func NewTarget(name string) (Target, bool) {
	globalMu.RLock()
	defer globalMu.RUnlock()

	f, ok := globalFactories[name]
	if !ok {
		return nil, false
	}
	return f(), true
}
