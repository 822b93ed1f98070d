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

package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"maps"
	"path"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/NVIDIA/observability-stack/pkg/descriptor"
	"github.com/NVIDIA/observability-stack/pkg/errors"
)

//go:embed data/catalog.yaml data/files
var catalogFS embed.FS

const (
	catalogFile = "data/catalog.yaml"
	filesDir    = "data/files"
)

var (
	loadOnce  sync.Once
	cachedSet *descriptor.DescriptorSet
	cachedErr error
)

// Entry summarizes one built-in component.
type Entry struct {
	Name        string   `json:"name" yaml:"name"`
	DisplayName string   `json:"displayName" yaml:"displayName"`
	Image       string   `json:"image" yaml:"image"`
	Ports       []int32  `json:"ports" yaml:"ports"`
	Bundles     []string `json:"bundles,omitempty" yaml:"bundles,omitempty"`
	Claims      []string `json:"claims,omitempty" yaml:"claims,omitempty"`
}

// load parses the embedded set once and attaches bundle files from
// data/files/<bundle>/.
func load() (*descriptor.DescriptorSet, error) {
	loadOnce.Do(func() {
		data, err := catalogFS.ReadFile(catalogFile)
		if err != nil {
			cachedErr = errors.Wrap(errors.ErrCodeInternal, "failed to read embedded catalog", err)
			return
		}
		set, err := descriptor.Parse(data)
		if err != nil {
			cachedErr = err
			return
		}
		for i := range set.Components {
			for j := range set.Components[i].ConfigBundles {
				b := &set.Components[i].ConfigBundles[j]
				files, err := bundleFiles(b.Name)
				if err != nil {
					cachedErr = err
					return
				}
				if b.Files == nil {
					b.Files = make(map[string]string, len(files))
				}
				maps.Copy(b.Files, files)
			}
		}
		cachedSet = set
	})
	return cachedSet, cachedErr
}

func bundleFiles(bundle string) (map[string]string, error) {
	dir := path.Join(filesDir, bundle)
	entries, err := fs.ReadDir(catalogFS, dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal,
			fmt.Sprintf("no embedded files for config bundle %s", bundle), err)
	}
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		content, err := catalogFS.ReadFile(path.Join(dir, e.Name()))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal,
				fmt.Sprintf("failed to read embedded file %s", e.Name()), err)
		}
		out[e.Name()] = string(content)
	}
	return out, nil
}

// Default returns a copy of the built-in Prometheus and Grafana set.
// Callers may modify the returned set.
func Default() (*descriptor.DescriptorSet, error) {
	set, err := load()
	if err != nil {
		return nil, err
	}
	return set.DeepCopy()
}

// Select returns a copy of the built-in set reduced to the named
// components, in catalog order.
func Select(names ...string) (*descriptor.DescriptorSet, error) {
	set, err := Default()
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return set, nil
	}
	for _, n := range names {
		if set.Component(n) == nil {
			return nil, errors.NewWithContext(errors.ErrCodeNotFound,
				fmt.Sprintf("component %q is not in the catalog", n),
				map[string]any{"available": Names()})
		}
	}
	set.Components = slices.DeleteFunc(set.Components, func(c descriptor.ComponentDescriptor) bool {
		return !slices.Contains(names, c.Name)
	})
	return set, nil
}

// Names returns the built-in component names in catalog order.
func Names() []string {
	set, err := load()
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(set.Components))
	for _, c := range set.Components {
		out = append(out, c.Name)
	}
	return out
}

// List summarizes the built-in components.
func List() ([]Entry, error) {
	set, err := load()
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(set.Components))
	for _, c := range set.Components {
		e := Entry{
			Name:        c.Name,
			DisplayName: DisplayName(c.Name),
			Image:       c.Image,
		}
		for _, p := range c.Ports {
			e.Ports = append(e.Ports, p.Port)
		}
		for _, b := range c.ConfigBundles {
			e.Bundles = append(e.Bundles, b.Name)
		}
		for _, cl := range c.StorageClaims {
			e.Claims = append(e.Claims, cl.Name)
		}
		out = append(out, e)
	}
	return out, nil
}

// DisplayName turns a component name such as "node-exporter" into
// "Node Exporter".
func DisplayName(name string) string {
	// a Caser keeps state, so each call gets its own
	return cases.Title(language.English).String(strings.ReplaceAll(name, "-", " "))
}
