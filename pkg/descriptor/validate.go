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
	"fmt"
	"slices"
	"strings"

	"github.com/distribution/reference"
	"k8s.io/apimachinery/pkg/api/resource"
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/apimachinery/pkg/util/validation"

	"github.com/NVIDIA/observability-stack/pkg/errors"
	"github.com/NVIDIA/observability-stack/pkg/header"
	"github.com/NVIDIA/observability-stack/pkg/params"
)

var (
	supportedResources   = []string{"cpu", "memory", "ephemeral-storage"}
	supportedAccessModes = []string{"ReadWriteOnce", "ReadOnlyMany", "ReadWriteMany", "ReadWriteOncePod"}
	supportedServiceType = []string{"ClusterIP", "NodePort", "LoadBalancer"}
	supportedProtocols   = []string{"TCP", "UDP", "SCTP"}
)

// validator accumulates problems in traversal order. An expanded validator
// treats placeholder-shaped values as literals.
type validator struct {
	errs     []error
	expanded bool
}

func (v *validator) schema(field, format string, args ...any) {
	v.errs = append(v.errs, errors.Schema(field, format, args...))
}

func (v *validator) reference(field, format string, args ...any) {
	v.errs = append(v.errs, errors.Reference(field, format, args...))
}

// Validate checks the set and returns the first problem found, or nil.
// Problems are SCHEMA_ERROR or REFERENCE_ERROR structured errors carrying
// the offending field path.
func (s *DescriptorSet) Validate() error {
	if errs := s.ValidateAll(); len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// ValidateAll returns every problem in the set in a stable order.
func (s *DescriptorSet) ValidateAll() []error {
	v := &validator{}
	s.validate(v)
	return v.errs
}

// ValidateExpanded checks a set whose placeholders have already been
// substituted. Nothing is deferred: a value that still reads like a
// placeholder is checked as written and rejected where it is not valid.
func (s *DescriptorSet) ValidateExpanded() error {
	v := &validator{expanded: true}
	s.validate(v)
	if len(v.errs) > 0 {
		return v.errs[0]
	}
	return nil
}

// Validate checks a single component and returns the first problem found.
func (c *ComponentDescriptor) Validate() error {
	v := &validator{}
	c.validate(v, "")
	if len(v.errs) > 0 {
		return v.errs[0]
	}
	return nil
}

func (s *DescriptorSet) validate(v *validator) {
	if s.Kind != "" && s.Kind != header.KindDescriptorSet {
		v.schema("kind", "expected %q, got %q", header.KindDescriptorSet, s.Kind)
	}
	if s.Namespace != "" && !v.deferred(s.Namespace) {
		for _, msg := range validation.IsDNS1123Label(s.Namespace) {
			v.schema("namespace", "invalid namespace %q: %s", s.Namespace, msg)
		}
	}
	validateLabels(v, "labels", s.Labels)

	seenParams := make(map[string]bool)
	for i, p := range s.Parameters {
		field := fmt.Sprintf("parameters[%d].name", i)
		switch {
		case p.Name == "":
			v.schema(field, "parameter name is required")
		case !params.ValidName(p.Name):
			v.schema(field, "invalid parameter name %q", p.Name)
		case seenParams[p.Name]:
			v.schema(field, "duplicate parameter %q", p.Name)
		}
		seenParams[p.Name] = true
	}

	if len(s.Components) == 0 {
		v.schema("components", "at least one component is required")
		return
	}

	// rendered object names share a namespace, so they must be unique per kind
	owners := map[string]map[string]string{
		"component":     {},
		"config bundle": {},
		"secret":        {},
		"storage claim": {},
	}
	claim := func(kind, name, field string) {
		if name == "" {
			return
		}
		if prev, ok := owners[kind][name]; ok {
			v.schema(field, "%s %q already declared at %s", kind, name, prev)
			return
		}
		owners[kind][name] = field
	}

	for i := range s.Components {
		c := &s.Components[i]
		path := fmt.Sprintf("components[%d]", i)
		claim("component", c.Name, path+".name")
		for j, b := range c.ConfigBundles {
			claim("config bundle", b.Name, fmt.Sprintf("%s.configBundles[%d].name", path, j))
		}
		for j, sec := range c.Secrets {
			if !sec.External {
				claim("secret", sec.Name, fmt.Sprintf("%s.secrets[%d].name", path, j))
			}
		}
		for j, cl := range c.StorageClaims {
			claim("storage claim", cl.Name, fmt.Sprintf("%s.storageClaims[%d].name", path, j))
		}
		c.validate(v, path)
	}
}

func (c *ComponentDescriptor) validate(v *validator, path string) {
	at := func(f string) string {
		if path == "" {
			return f
		}
		return path + "." + f
	}

	// required fields
	if c.Name == "" {
		v.schema(at("name"), "name is required")
	} else {
		for _, msg := range validation.IsDNS1123Label(c.Name) {
			v.schema(at("name"), "invalid name %q: %s", c.Name, msg)
		}
	}
	switch {
	case c.Image == "":
		v.schema(at("image"), "image is required")
	case v.deferred(c.Image):
	default:
		if _, err := reference.ParseNormalizedNamed(c.Image); err != nil {
			v.schema(at("image"), "invalid image reference %q: %v", c.Image, err)
		}
	}
	if len(c.Ports) == 0 {
		v.schema(at("ports"), "at least one port is required")
	}
	if c.Replicas != nil && *c.Replicas < 0 {
		v.schema(at("replicas"), "replicas must not be negative")
	}

	c.validatePorts(v, at)
	c.validateVolumes(v, at)
	c.validateMounts(v, at)
	c.validateEnv(v, at)
	validateResources(v, at("resources"), c.Resources)
	c.validateProbe(v, at("livenessProbe"), c.LivenessProbe)
	c.validateProbe(v, at("readinessProbe"), c.ReadinessProbe)
	c.validateSecurity(v, at("security"))
	c.validateService(v, at("service"))
	c.validateIngress(v, at("ingress"))
	c.validateRBAC(v, at("rbac"))
	validateLabels(v, at("labels"), c.Labels)
}

func (c *ComponentDescriptor) validatePorts(v *validator, at func(string) string) {
	numbers := make(map[int32]bool)
	names := make(map[string]bool)
	for i, p := range c.Ports {
		field := at(fmt.Sprintf("ports[%d]", i))
		if p.Port < 1 || p.Port > 65535 {
			v.schema(field+".port", "port %d out of range 1-65535", p.Port)
		}
		if numbers[p.Port] {
			v.schema(field+".port", "duplicate port %d", p.Port)
		}
		numbers[p.Port] = true
		if p.Name != "" {
			for _, msg := range validation.IsValidPortName(p.Name) {
				v.schema(field+".name", "invalid port name %q: %s", p.Name, msg)
			}
			if names[p.Name] {
				v.schema(field+".name", "duplicate port name %q", p.Name)
			}
			names[p.Name] = true
		}
		if p.Protocol != "" && !slices.Contains(supportedProtocols, p.Protocol) {
			v.schema(field+".protocol", "unsupported protocol %q", p.Protocol)
		}
	}
}

func (c *ComponentDescriptor) validateVolumes(v *validator, at func(string) string) {
	seen := make(map[string]string)
	declare := func(name, field string) {
		if name == "" {
			v.schema(field, "name is required")
			return
		}
		for _, msg := range validation.IsDNS1123Subdomain(name) {
			v.schema(field, "invalid name %q: %s", name, msg)
		}
		if prev, ok := seen[name]; ok {
			v.schema(field, "volume name %q already declared at %s", name, prev)
			return
		}
		seen[name] = field
	}

	for i, b := range c.ConfigBundles {
		field := at(fmt.Sprintf("configBundles[%d]", i))
		declare(b.Name, field+".name")
		if len(b.Files) == 0 {
			v.schema(field+".files", "config bundle %q has no files", b.Name)
		}
		for _, key := range sortedKeys(b.Files) {
			for _, msg := range validation.IsConfigMapKey(key) {
				v.schema(field+".files", "invalid file name %q: %s", key, msg)
			}
		}
	}

	for i, sec := range c.Secrets {
		field := at(fmt.Sprintf("secrets[%d]", i))
		declare(sec.Name, field+".name")
		if !sec.External && len(sec.Keys) == 0 {
			v.schema(field+".keys", "secret %q declares no keys", sec.Name)
		}
		for _, key := range sortedKeys(sec.Keys) {
			for _, msg := range validation.IsConfigMapKey(key) {
				v.schema(field+".keys", "invalid secret key %q: %s", key, msg)
			}
			if pname := sec.Keys[key]; !sec.External && !params.ValidName(pname) {
				v.schema(field+".keys."+key, "invalid parameter name %q", pname)
			}
		}
	}

	for i, cl := range c.StorageClaims {
		field := at(fmt.Sprintf("storageClaims[%d]", i))
		declare(cl.Name, field+".name")
		switch {
		case cl.Size == "":
			v.schema(field+".size", "size is required")
		case v.deferred(cl.Size):
		default:
			if q, err := resource.ParseQuantity(cl.Size); err != nil {
				v.schema(field+".size", "invalid size %q: %v", cl.Size, err)
			} else if q.Sign() <= 0 {
				v.schema(field+".size", "size must be positive")
			}
		}
		if cl.AccessMode != "" && !slices.Contains(supportedAccessModes, cl.AccessMode) {
			v.schema(field+".accessMode", "unsupported access mode %q", cl.AccessMode)
		}
		if cl.StorageClass != "" && !v.deferred(cl.StorageClass) {
			for _, msg := range validation.IsDNS1123Subdomain(cl.StorageClass) {
				v.schema(field+".storageClass", "invalid storage class %q: %s", cl.StorageClass, msg)
			}
		}
	}

	for i, e := range c.EmptyDirs {
		field := at(fmt.Sprintf("emptyDirs[%d]", i))
		declare(e.Name, field+".name")
		if e.SizeLimit != "" && !v.deferred(e.SizeLimit) {
			if _, err := resource.ParseQuantity(e.SizeLimit); err != nil {
				v.schema(field+".sizeLimit", "invalid size limit %q: %v", e.SizeLimit, err)
			}
		}
	}
}

func (c *ComponentDescriptor) validateMounts(v *validator, at func(string) string) {
	volumes := c.Volumes()
	paths := make(map[string]bool)
	for i, m := range c.Mounts {
		field := at(fmt.Sprintf("mounts[%d]", i))
		if m.Name == "" {
			v.schema(field+".name", "name is required")
		} else if _, ok := volumes[m.Name]; !ok {
			v.reference(field+".name",
				"volume %q is not a declared config bundle, secret, storage claim or emptyDir", m.Name)
		}
		if m.MountPath == "" {
			v.schema(field+".mountPath", "mountPath is required")
			continue
		}
		if !strings.HasPrefix(m.MountPath, "/") {
			v.schema(field+".mountPath", "mountPath %q must be absolute", m.MountPath)
		}
		key := m.MountPath + "|" + m.SubPath
		if paths[key] {
			v.schema(field+".mountPath", "duplicate mount path %q", m.MountPath)
		}
		paths[key] = true
	}
}

func (c *ComponentDescriptor) validateEnv(v *validator, at func(string) string) {
	names := make(map[string]bool)
	for i, e := range c.Env {
		field := at(fmt.Sprintf("env[%d]", i))
		if e.Name == "" {
			v.schema(field+".name", "name is required")
		} else {
			for _, msg := range validation.IsEnvVarName(e.Name) {
				v.schema(field+".name", "invalid env var name %q: %s", e.Name, msg)
			}
			if names[e.Name] {
				v.schema(field+".name", "duplicate env var %q", e.Name)
			}
			names[e.Name] = true
		}

		sources := 0
		if e.Value != "" {
			sources++
		}
		if e.SecretRef != nil {
			sources++
		}
		if e.ConfigRef != nil {
			sources++
		}
		if sources > 1 {
			v.schema(field, "env var %q must set exactly one of value, secretRef, configRef", e.Name)
			continue
		}

		if ref := e.SecretRef; ref != nil {
			sec := c.secret(ref.Name)
			switch {
			case sec == nil:
				v.reference(field+".secretRef.name", "secret %q is not declared", ref.Name)
			case !sec.External:
				if _, ok := sec.Keys[ref.Key]; !ok {
					v.reference(field+".secretRef.key", "secret %q has no key %q", ref.Name, ref.Key)
				}
			}
		}
		if ref := e.ConfigRef; ref != nil {
			b := c.bundle(ref.Name)
			switch {
			case b == nil:
				v.reference(field+".configRef.name", "config bundle %q is not declared", ref.Name)
			default:
				if _, ok := b.Files[ref.Key]; !ok {
					v.reference(field+".configRef.key", "config bundle %q has no file %q", ref.Name, ref.Key)
				}
			}
		}
	}
}

func validateResources(v *validator, path string, r Resources) {
	parse := func(kind string, m map[string]string) map[string]resource.Quantity {
		out := make(map[string]resource.Quantity, len(m))
		for _, name := range sortedKeys(m) {
			field := fmt.Sprintf("%s.%s.%s", path, kind, name)
			if !slices.Contains(supportedResources, name) {
				v.schema(field, "unsupported resource %q", name)
				continue
			}
			if v.deferred(m[name]) {
				continue
			}
			q, err := resource.ParseQuantity(m[name])
			if err != nil {
				v.schema(field, "invalid quantity %q: %v", m[name], err)
				continue
			}
			out[name] = q
		}
		return out
	}

	requests := parse("requests", r.Requests)
	limits := parse("limits", r.Limits)
	for _, name := range supportedResources {
		req, hasReq := requests[name]
		lim, hasLim := limits[name]
		if hasReq && hasLim && lim.Cmp(req) < 0 {
			v.schema(fmt.Sprintf("%s.limits.%s", path, name),
				"limit %s is below request %s", lim.String(), req.String())
		}
	}
}

func (c *ComponentDescriptor) validateProbe(v *validator, path string, p *Probe) {
	if p == nil {
		return
	}
	if !strings.HasPrefix(p.Path, "/") {
		v.schema(path+".path", "probe path %q must start with /", p.Path)
	}
	if isZeroPort(p.Port) {
		v.schema(path+".port", "probe port is required")
	} else if _, ok := c.ResolvePort(p.Port); !ok {
		v.reference(path+".port", "probe port %s does not match a declared port", p.Port.String())
	}
	timings := []struct {
		name string
		val  int32
	}{
		{"initialDelaySeconds", p.InitialDelaySeconds},
		{"periodSeconds", p.PeriodSeconds},
		{"timeoutSeconds", p.TimeoutSeconds},
		{"failureThreshold", p.FailureThreshold},
	}
	for _, t := range timings {
		if t.val < 0 {
			v.schema(path+"."+t.name, "%s must not be negative", t.name)
		}
	}
}

func (c *ComponentDescriptor) validateSecurity(v *validator, path string) {
	s := c.Security
	if s == nil {
		return
	}
	ids := []struct {
		name string
		id   *int64
	}{
		{"runAsUser", s.RunAsUser},
		{"runAsGroup", s.RunAsGroup},
		{"fsGroup", s.FSGroup},
	}
	for _, f := range ids {
		if f.id != nil && *f.id < 0 {
			v.schema(path+"."+f.name, "%s must not be negative", f.name)
		}
	}
	if s.RunAsNonRoot != nil && *s.RunAsNonRoot && s.RunAsUser != nil && *s.RunAsUser == 0 {
		v.schema(path+".runAsUser", "runAsNonRoot conflicts with runAsUser 0")
	}
	for i, capName := range s.DropCapabilities {
		if strings.TrimSpace(capName) == "" {
			v.schema(fmt.Sprintf("%s.dropCapabilities[%d]", path, i), "capability name is required")
		}
	}
}

func (c *ComponentDescriptor) validateService(v *validator, path string) {
	s := c.Service
	if s == nil {
		return
	}
	if s.Type != "" && !slices.Contains(supportedServiceType, s.Type) {
		v.schema(path+".type", "unsupported service type %q", s.Type)
	}
	if s.Port < 0 || s.Port > 65535 {
		v.schema(path+".port", "port %d out of range 1-65535", s.Port)
	}
	if isZeroPort(s.TargetPort) {
		return
	}
	if _, ok := c.ResolvePort(s.TargetPort); !ok {
		v.reference(path+".targetPort", "target port %s does not match a declared port", s.TargetPort.String())
	}
}

func (c *ComponentDescriptor) validateIngress(v *validator, path string) {
	in := c.Ingress
	if in == nil {
		return
	}
	if in.Host == "" {
		v.schema(path+".host", "host is required")
	} else if !v.deferred(in.Host) {
		for _, msg := range validation.IsDNS1123Subdomain(in.Host) {
			v.schema(path+".host", "invalid host %q: %s", in.Host, msg)
		}
	}
	if c.Service == nil {
		v.reference(path, "ingress requires a service on the component")
	}
	if in.Path != "" && !strings.HasPrefix(in.Path, "/") {
		v.schema(path+".path", "path %q must start with /", in.Path)
	}
}

func (c *ComponentDescriptor) validateRBAC(v *validator, path string) {
	r := c.RBAC
	if r == nil {
		return
	}
	if len(r.Rules) == 0 {
		v.schema(path+".rules", "at least one rule is required")
	}
	for i, rule := range r.Rules {
		field := fmt.Sprintf("%s.rules[%d]", path, i)
		if len(rule.Verbs) == 0 {
			v.schema(field+".verbs", "at least one verb is required")
		}
		if len(rule.Resources) == 0 && len(rule.NonResourceURLs) == 0 {
			v.schema(field, "rule must name resources or nonResourceURLs")
		}
		if len(rule.NonResourceURLs) > 0 && !r.ClusterScoped {
			v.schema(field+".nonResourceURLs", "nonResourceURLs require clusterScoped rbac")
		}
	}
}

func validateLabels(v *validator, path string, labels map[string]string) {
	for _, k := range sortedKeys(labels) {
		for _, msg := range validation.IsQualifiedName(k) {
			v.schema(path+"."+k, "invalid label key: %s", msg)
		}
		for _, msg := range validation.IsValidLabelValue(labels[k]) {
			v.schema(path+"."+k, "invalid label value %q: %s", labels[k], msg)
		}
	}
}

func (c *ComponentDescriptor) secret(name string) *SecretRef {
	for i := range c.Secrets {
		if c.Secrets[i].Name == name {
			return &c.Secrets[i]
		}
	}
	return nil
}

func (c *ComponentDescriptor) bundle(name string) *ConfigBundle {
	for i := range c.ConfigBundles {
		if c.ConfigBundles[i].Name == name {
			return &c.ConfigBundles[i]
		}
	}
	return nil
}

// deferred reports whether s still carries placeholders. Such values are
// validated after substitution.
func (v *validator) deferred(s string) bool {
	return !v.expanded && params.HasPlaceholder(s)
}

func isZeroPort(p intstr.IntOrString) bool {
	return (p.Type == intstr.Int && p.IntVal == 0) || (p.Type == intstr.String && p.StrVal == "")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
