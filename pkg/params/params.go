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
	"fmt"
	"maps"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/NVIDIA/observability-stack/pkg/errors"
)

// Params holds parameter values keyed by name.
type Params map[string]string

var namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// placeholderPattern matches ${NAME}, ${NAME:-default} and the escaped
// form $${NAME} which renders as a literal ${NAME}.
var placeholderPattern = regexp.MustCompile(`\$(\$)?\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// ValidName reports whether name can be used as a parameter name.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

// Parse converts KEY=VALUE pairs into Params. Later pairs win.
func Parse(pairs []string) (Params, error) {
	p := make(Params, len(pairs))
	for _, kv := range pairs {
		key, value, ok := strings.Cut(kv, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.New(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("invalid parameter %q: expected KEY=VALUE", kv))
		}
		if !ValidName(key) {
			return nil, errors.New(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("invalid parameter name %q", key))
		}
		p[key] = value
	}
	return p, nil
}

// FromEnv reads the named environment variables into Params.
// Variables that are not set are reported as an error so credentials
// are never silently rendered empty.
func FromEnv(names []string) (Params, error) {
	p := make(Params, len(names))
	for _, name := range names {
		v, ok := os.LookupEnv(name)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("environment variable %q is not set", name))
		}
		p[name] = v
	}
	return p, nil
}

// Merge returns a new Params combining all inputs; later inputs win.
func Merge(all ...Params) Params {
	out := make(Params)
	for _, p := range all {
		maps.Copy(out, p)
	}
	return out
}

// Names returns the parameter names in sorted order.
func (p Params) Names() []string {
	return slices.Sorted(maps.Keys(p))
}

// Placeholders returns the distinct parameter names referenced by s,
// excluding escaped placeholders.
func Placeholders(s string) []string {
	seen := make(map[string]struct{})
	for _, m := range placeholderPattern.FindAllStringSubmatch(s, -1) {
		if m[1] != "" {
			continue
		}
		seen[m[2]] = struct{}{}
	}
	return slices.Sorted(maps.Keys(seen))
}

// HasPlaceholder reports whether s contains an unescaped placeholder.
func HasPlaceholder(s string) bool {
	return len(Placeholders(s)) > 0
}
