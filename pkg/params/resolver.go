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

package params

import (
	"maps"
	"slices"
	"strings"

	"github.com/NVIDIA/observability-stack/pkg/errors"
)

// Resolver substitutes placeholders using supplied values, then inline
// ${NAME:-default} values, then declared defaults.
// A Resolver is not safe for concurrent use.
type Resolver struct {
	values   Params
	defaults Params
	secret   map[string]bool
	used     map[string]struct{}
}

// NewResolver creates a Resolver over supplied values and declared defaults.
func NewResolver(values, defaults Params) *Resolver {
	return &Resolver{
		values:   Merge(values),
		defaults: Merge(defaults),
		used:     make(map[string]struct{}),
	}
}

// WithSecrets marks parameters whose values may only be read through Lookup.
// Expand rejects placeholders naming them.
func (r *Resolver) WithSecrets(names map[string]bool) *Resolver {
	r.secret = maps.Clone(names)
	return r
}

// Expand replaces every placeholder in s. field is the descriptor path
// reported when a parameter cannot be resolved.
func (r *Resolver) Expand(field, s string) (string, error) {
	if !strings.Contains(s, "${") {
		return s, nil
	}

	matches := placeholderPattern.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s, nil
	}

	var b strings.Builder
	b.Grow(len(s))
	last := 0
	for _, m := range matches {
		b.WriteString(s[last:m[0]])
		last = m[1]

		// $${NAME...} drops one dollar and is otherwise kept verbatim
		if m[2] >= 0 {
			b.WriteString(s[m[0]+1 : m[1]])
			continue
		}

		name := s[m[4]:m[5]]
		if r.secret[name] {
			return "", errors.SchemaWithContext(field,
				map[string]any{"parameter": name},
				"secret parameter %q may only be referenced from secret keys", name)
		}
		if v, ok := r.values[name]; ok {
			r.used[name] = struct{}{}
			b.WriteString(v)
			continue
		}
		if m[8] >= 0 {
			b.WriteString(s[m[8]:m[9]])
			continue
		}
		if v, ok := r.defaults[name]; ok {
			b.WriteString(v)
			continue
		}
		return "", errors.Parameter(field, name)
	}
	b.WriteString(s[last:])
	return b.String(), nil
}

// Lookup resolves a single parameter by name without inline defaults.
func (r *Resolver) Lookup(field, name string) (string, error) {
	if v, ok := r.values[name]; ok {
		r.used[name] = struct{}{}
		return v, nil
	}
	if v, ok := r.defaults[name]; ok {
		return v, nil
	}
	return "", errors.Parameter(field, name)
}

// Unused returns supplied parameter names that no placeholder consumed.
func (r *Resolver) Unused() []string {
	var out []string
	for _, name := range slices.Sorted(maps.Keys(r.values)) {
		if _, ok := r.used[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}
