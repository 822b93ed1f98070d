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
	"log/slog"
	"maps"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/observability-stack/pkg/defaults"
	"github.com/NVIDIA/observability-stack/pkg/descriptor"
	"github.com/NVIDIA/observability-stack/pkg/errors"
	"github.com/NVIDIA/observability-stack/pkg/params"
)

// Renderer turns descriptor sets into ordered deployment objects.
//
// Render is a pure function of the set and the parameters: the input set is
// never modified and equal inputs produce byte-identical output.
//
// Thread-safety: Renderer is safe for concurrent use.
type Renderer struct {
	target      Target
	namespace   string
	concurrency int
}

// Option defines a functional option for configuring Renderer.
type Option func(*Renderer)

// WithTarget sets the target objects are built for.
func WithTarget(t Target) Option {
	return func(r *Renderer) {
		if t != nil {
			r.target = t
		}
	}
}

// WithDefaultNamespace sets the namespace used when a set declares none.
func WithDefaultNamespace(ns string) Option {
	return func(r *Renderer) {
		if ns != "" {
			r.namespace = ns
		}
	}
}

// WithConcurrency limits how many components are built at once.
// Values below one leave the build unbounded.
func WithConcurrency(n int) Option {
	return func(r *Renderer) {
		r.concurrency = n
	}
}

// New creates a Renderer for the Kubernetes target unless another is given.
//
// Example:
//
//	r, err := render.New(render.WithDefaultNamespace("observability"))
//	res, err := r.Render(ctx, set, params.Params{"DOMAIN_NAME": "example.com"})
func New(opts ...Option) (*Renderer, error) {
	r := &Renderer{
		namespace: defaults.DefaultNamespace,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.target == nil {
		t, ok := NewTarget(defaults.DefaultTarget)
		if !ok {
			return nil, errors.New(errors.ErrCodeInternal,
				fmt.Sprintf("target %s is not registered", defaults.DefaultTarget))
		}
		r.target = t
	}
	return r, nil
}

// NewForTarget creates a Renderer for a globally registered target name.
func NewForTarget(name string, opts ...Option) (*Renderer, error) {
	t, ok := NewTarget(name)
	if !ok {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("unknown target %q", name),
			map[string]any{"available": Targets()})
	}
	return New(append([]Option{WithTarget(t)}, opts...)...)
}

// Target returns the name of the renderer's target.
func (r *Renderer) Target() string {
	return r.target.Name()
}

// Render validates and renders the set with the given parameter values.
//
// Placeholders resolve to the supplied value, else the inline default, else
// the default declared under parameters. Failures are reported as
// SCHEMA_ERROR, REFERENCE_ERROR or PARAMETER_ERROR structured errors and no
// partial result is returned.
func (r *Renderer) Render(ctx context.Context, set *descriptor.DescriptorSet, values params.Params) (*Result, error) {
	start := time.Now()
	res, err := r.render(ctx, set, values)

	code := string(errors.CodeOf(err))
	if err == nil {
		code = "OK"
	} else if code == "" {
		code = string(errors.ErrCodeInternal)
	}
	rendersTotal.WithLabelValues(r.target.Name(), code).Inc()
	renderDuration.WithLabelValues(r.target.Name()).Observe(time.Since(start).Seconds())

	if err != nil {
		return nil, err
	}
	for _, o := range res.Objects {
		renderedObjectsTotal.WithLabelValues(o.Kind).Inc()
	}

	slog.Debug("descriptor set rendered",
		"target", res.Target,
		"namespace", res.Namespace,
		"objects", len(res.Objects),
		"duration", time.Since(start),
	)
	return res, nil
}

// Prepare expands parameters into a copy of the set and validates it.
// The returned set is what Render builds objects from.
func (r *Renderer) Prepare(set *descriptor.DescriptorSet, values params.Params) (*descriptor.DescriptorSet, *params.Resolver, error) {
	if set == nil {
		return nil, nil, errors.New(errors.ErrCodeInvalidRequest, "descriptor set cannot be nil")
	}

	cp, err := set.DeepCopy()
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInternal, "failed to copy descriptor set", err)
	}

	resolver := params.NewResolver(values, cp.DeclaredDefaults()).WithSecrets(cp.SecretParameters())
	if err := resolver.ExpandAll(cp, ""); err != nil {
		return nil, nil, err
	}
	if err := expandBundles(resolver, cp); err != nil {
		return nil, nil, err
	}
	if cp.Namespace == "" {
		cp.Namespace = r.namespace
	}
	if err := cp.ValidateExpanded(); err != nil {
		return nil, nil, err
	}
	return cp, resolver, nil
}

func (r *Renderer) render(ctx context.Context, set *descriptor.DescriptorSet, values params.Params) (*Result, error) {
	cp, resolver, err := r.Prepare(set, values)
	if err != nil {
		return nil, err
	}

	secretData := make([]map[string]map[string][]byte, len(cp.Components))
	for i := range cp.Components {
		data, err := resolveSecrets(resolver, i, &cp.Components[i])
		if err != nil {
			return nil, err
		}
		secretData[i] = data
	}

	built := make([][]*Object, len(cp.Components))
	g, gctx := errgroup.WithContext(ctx)
	if r.concurrency > 0 {
		g.SetLimit(r.concurrency)
	}
	for i := range cp.Components {
		g.Go(func() error {
			objs, err := r.target.Build(gctx, &ComponentInput{
				Index:      i,
				Namespace:  cp.Namespace,
				Labels:     cp.Labels,
				Component:  &cp.Components[i],
				SecretData: secretData[i],
			})
			if err != nil {
				return fmt.Errorf("failed to build component %s: %w", cp.Components[i].Name, err)
			}
			for _, o := range objs {
				o.index = i
				if o.Encoded, err = Encode(o.Content); err != nil {
					return err
				}
			}
			built[i] = objs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if errors.CodeOf(err) != "" {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, "render failed", err)
	}

	var objs []*Object
	for _, b := range built {
		objs = append(objs, b...)
	}
	sortObjects(objs)

	if unused := resolver.Unused(); len(unused) > 0 {
		slog.Warn("supplied parameters are not referenced by any descriptor", "params", unused)
	}

	return &Result{
		Target:    r.target.Name(),
		Namespace: cp.Namespace,
		Objects:   objs,
		Unused:    resolver.Unused(),
	}, nil
}

// expandBundles substitutes placeholders in config bundle files unless the
// bundle is marked verbatim.
func expandBundles(resolver *params.Resolver, set *descriptor.DescriptorSet) error {
	for i := range set.Components {
		for j := range set.Components[i].ConfigBundles {
			b := &set.Components[i].ConfigBundles[j]
			if b.Verbatim {
				continue
			}
			for _, name := range slices.Sorted(maps.Keys(b.Files)) {
				field := fmt.Sprintf("components[%d].configBundles[%d].files.%s", i, j, name)
				out, err := resolver.Expand(field, b.Files[name])
				if err != nil {
					return err
				}
				b.Files[name] = out
			}
		}
	}
	return nil
}

// resolveSecrets looks up the parameter behind every key of every rendered
// secret of a component.
func resolveSecrets(resolver *params.Resolver, index int, c *descriptor.ComponentDescriptor) (map[string]map[string][]byte, error) {
	out := make(map[string]map[string][]byte)
	for j, s := range c.Secrets {
		if s.External {
			continue
		}
		data := make(map[string][]byte, len(s.Keys))
		for _, key := range slices.Sorted(maps.Keys(s.Keys)) {
			field := fmt.Sprintf("components[%d].secrets[%d].keys.%s", index, j, key)
			v, err := resolver.Lookup(field, s.Keys[key])
			if err != nil {
				return nil, err
			}
			data[key] = []byte(v)
		}
		out[s.Name] = data
	}
	return out, nil
}
