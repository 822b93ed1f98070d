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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"maps"
	"slices"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	rbacv1 "k8s.io/api/rbac/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/utils/ptr"

	"github.com/NVIDIA/observability-stack/pkg/defaults"
	"github.com/NVIDIA/observability-stack/pkg/descriptor"
	"github.com/NVIDIA/observability-stack/pkg/errors"
)

// KubernetesTarget is the name of the Kubernetes target.
const KubernetesTarget = "kubernetes"

const (
	labelName      = "app.kubernetes.io/name"
	labelPartOf    = "app.kubernetes.io/part-of"
	labelManagedBy = "app.kubernetes.io/managed-by"

	partOf    = "observability-stack"
	managedBy = "obsctl"

	// annotationConfigChecksum rolls the workload when bundle content changes.
	annotationConfigChecksum = "checksum/config"
)

// Kind ranks inside each tier.
var kindRank = map[string]int{
	"ServiceAccount":        0,
	"Role":                  1,
	"ClusterRole":           2,
	"RoleBinding":           3,
	"ClusterRoleBinding":    4,
	"ConfigMap":             5,
	"Secret":                6,
	"PersistentVolumeClaim": 7,
	"Deployment":            0,
	"Service":               0,
	"Ingress":               1,
}

var kindTier = map[string]Tier{
	"ServiceAccount":        TierConfig,
	"Role":                  TierConfig,
	"ClusterRole":           TierConfig,
	"RoleBinding":           TierConfig,
	"ClusterRoleBinding":    TierConfig,
	"ConfigMap":             TierConfig,
	"Secret":                TierConfig,
	"PersistentVolumeClaim": TierConfig,
	"Deployment":            TierWorkload,
	"Service":               TierNetwork,
	"Ingress":               TierNetwork,
}

func init() {
	MustRegister(KubernetesTarget, func() Target { return kubernetes{} })
}

// kubernetes renders components into core, apps, rbac and networking
// API objects.
type kubernetes struct{}

func (kubernetes) Name() string { return KubernetesTarget }

func (k kubernetes) Build(ctx context.Context, in *ComponentInput) ([]*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b := &k8sBuilder{in: in, c: in.Component}

	var typed []runtime.Object
	typed = append(typed, b.rbac()...)
	typed = append(typed, b.configMaps()...)
	typed = append(typed, b.secrets()...)
	typed = append(typed, b.claims()...)
	typed = append(typed, b.deployment())
	if svc := b.service(); svc != nil {
		typed = append(typed, svc)
	}
	if ing := b.ingress(); ing != nil {
		typed = append(typed, ing)
	}
	if b.err != nil {
		return nil, b.err
	}

	objs := make([]*Object, 0, len(typed))
	for _, t := range typed {
		o, err := newObject(in.Component.Name, t)
		if err != nil {
			return nil, err
		}
		objs = append(objs, o)
	}
	return objs, nil
}

func newObject(component string, t runtime.Object) (*Object, error) {
	content, err := toContent(t)
	if err != nil {
		return nil, err
	}
	meta, err := metaOf(t)
	if err != nil {
		return nil, err
	}
	gvk := t.GetObjectKind().GroupVersionKind()
	kind := gvk.Kind
	return &Object{
		Component:  component,
		APIVersion: gvk.GroupVersion().String(),
		Kind:       kind,
		Name:       meta.GetName(),
		Namespace:  meta.GetNamespace(),
		Tier:       kindTier[kind],
		Rank:       kindRank[kind],
		Content:    content,
	}, nil
}

func metaOf(t runtime.Object) (metav1.Object, error) {
	m, ok := t.(metav1.Object)
	if !ok {
		return nil, fmt.Errorf("%T has no object metadata", t)
	}
	return m, nil
}

type k8sBuilder struct {
	in *ComponentInput
	c  *descriptor.ComponentDescriptor

	// err holds the first value that could not be converted.
	err error
}

// quantity parses s, recording a SCHEMA_ERROR at the component field on
// failure.
func (b *k8sBuilder) quantity(field, s string) resource.Quantity {
	q, err := resource.ParseQuantity(s)
	if err != nil && b.err == nil {
		b.err = errors.Schema(fmt.Sprintf("components[%d].%s", b.in.Index, field),
			"invalid quantity %q: %v", s, err)
	}
	return q
}

func (b *k8sBuilder) selector() map[string]string {
	return map[string]string{labelName: b.c.Name}
}

func (b *k8sBuilder) labels() map[string]string {
	out := map[string]string{
		labelPartOf:    partOf,
		labelManagedBy: managedBy,
	}
	maps.Copy(out, b.in.Labels)
	maps.Copy(out, b.c.Labels)
	maps.Copy(out, b.selector())
	return out
}

func (b *k8sBuilder) meta(name string, namespaced bool, extra map[string]string) metav1.ObjectMeta {
	m := metav1.ObjectMeta{
		Name:   name,
		Labels: b.labels(),
	}
	if namespaced {
		m.Namespace = b.in.Namespace
	}
	annotations := make(map[string]string)
	maps.Copy(annotations, b.c.Annotations)
	maps.Copy(annotations, extra)
	if len(annotations) > 0 {
		m.Annotations = annotations
	}
	return m
}

// clusterName prefixes cluster-scoped names with the namespace so two
// installs in different namespaces do not collide.
func (b *k8sBuilder) clusterName() string {
	return fmt.Sprintf("%s-%s", b.in.Namespace, b.c.Name)
}

func (b *k8sBuilder) rbac() []runtime.Object {
	r := b.c.RBAC
	if r == nil {
		return nil
	}

	sa := &corev1.ServiceAccount{
		TypeMeta:   metav1.TypeMeta{APIVersion: "v1", Kind: "ServiceAccount"},
		ObjectMeta: b.meta(b.c.Name, true, nil),
	}

	rules := make([]rbacv1.PolicyRule, 0, len(r.Rules))
	for _, rule := range r.Rules {
		pr := rbacv1.PolicyRule{
			Verbs:           slices.Clone(rule.Verbs),
			Resources:       slices.Clone(rule.Resources),
			NonResourceURLs: slices.Clone(rule.NonResourceURLs),
		}
		if len(rule.Resources) > 0 {
			pr.APIGroups = slices.Clone(rule.APIGroups)
			if len(pr.APIGroups) == 0 {
				pr.APIGroups = []string{""}
			}
		}
		rules = append(rules, pr)
	}

	subjects := []rbacv1.Subject{{
		Kind:      rbacv1.ServiceAccountKind,
		Name:      b.c.Name,
		Namespace: b.in.Namespace,
	}}

	if r.ClusterScoped {
		name := b.clusterName()
		return []runtime.Object{
			sa,
			&rbacv1.ClusterRole{
				TypeMeta:   metav1.TypeMeta{APIVersion: rbacv1.SchemeGroupVersion.String(), Kind: "ClusterRole"},
				ObjectMeta: b.meta(name, false, nil),
				Rules:      rules,
			},
			&rbacv1.ClusterRoleBinding{
				TypeMeta:   metav1.TypeMeta{APIVersion: rbacv1.SchemeGroupVersion.String(), Kind: "ClusterRoleBinding"},
				ObjectMeta: b.meta(name, false, nil),
				Subjects:   subjects,
				RoleRef: rbacv1.RoleRef{
					APIGroup: rbacv1.GroupName,
					Kind:     "ClusterRole",
					Name:     name,
				},
			},
		}
	}

	return []runtime.Object{
		sa,
		&rbacv1.Role{
			TypeMeta:   metav1.TypeMeta{APIVersion: rbacv1.SchemeGroupVersion.String(), Kind: "Role"},
			ObjectMeta: b.meta(b.c.Name, true, nil),
			Rules:      rules,
		},
		&rbacv1.RoleBinding{
			TypeMeta:   metav1.TypeMeta{APIVersion: rbacv1.SchemeGroupVersion.String(), Kind: "RoleBinding"},
			ObjectMeta: b.meta(b.c.Name, true, nil),
			Subjects:   subjects,
			RoleRef: rbacv1.RoleRef{
				APIGroup: rbacv1.GroupName,
				Kind:     "Role",
				Name:     b.c.Name,
			},
		},
	}
}

func (b *k8sBuilder) configMaps() []runtime.Object {
	out := make([]runtime.Object, 0, len(b.c.ConfigBundles))
	for _, bundle := range b.c.ConfigBundles {
		out = append(out, &corev1.ConfigMap{
			TypeMeta:   metav1.TypeMeta{APIVersion: "v1", Kind: "ConfigMap"},
			ObjectMeta: b.meta(bundle.Name, true, nil),
			Data:       maps.Clone(bundle.Files),
		})
	}
	return out
}

func (b *k8sBuilder) secrets() []runtime.Object {
	var out []runtime.Object
	for _, s := range b.c.Secrets {
		if s.External {
			continue
		}
		out = append(out, &corev1.Secret{
			TypeMeta:   metav1.TypeMeta{APIVersion: "v1", Kind: "Secret"},
			ObjectMeta: b.meta(s.Name, true, nil),
			Type:       corev1.SecretTypeOpaque,
			Data:       maps.Clone(b.in.SecretData[s.Name]),
		})
	}
	return out
}

func (b *k8sBuilder) claims() []runtime.Object {
	out := make([]runtime.Object, 0, len(b.c.StorageClaims))
	for i, cl := range b.c.StorageClaims {
		mode := cl.AccessMode
		if mode == "" {
			mode = defaults.DefaultAccessMode
		}
		pvc := &corev1.PersistentVolumeClaim{
			TypeMeta:   metav1.TypeMeta{APIVersion: "v1", Kind: "PersistentVolumeClaim"},
			ObjectMeta: b.meta(cl.Name, true, nil),
			Spec: corev1.PersistentVolumeClaimSpec{
				AccessModes: []corev1.PersistentVolumeAccessMode{corev1.PersistentVolumeAccessMode(mode)},
				Resources: corev1.VolumeResourceRequirements{
					Requests: corev1.ResourceList{
						corev1.ResourceStorage: b.quantity(fmt.Sprintf("storageClaims[%d].size", i), cl.Size),
					},
				},
			},
		}
		if cl.StorageClass != "" {
			pvc.Spec.StorageClassName = ptr.To(cl.StorageClass)
		}
		out = append(out, pvc)
	}
	return out
}

func (b *k8sBuilder) deployment() *appsv1.Deployment {
	c := b.c
	replicas := defaults.DefaultReplicas
	if c.Replicas != nil {
		replicas = *c.Replicas
	}

	// claims that cannot be attached twice must be released before the
	// replacement pod starts
	strategy := appsv1.DeploymentStrategy{Type: appsv1.RollingUpdateDeploymentStrategyType}
	for _, cl := range c.StorageClaims {
		if cl.AccessMode == "" || cl.AccessMode == string(corev1.ReadWriteOnce) || cl.AccessMode == string(corev1.ReadWriteOncePod) {
			strategy = appsv1.DeploymentStrategy{Type: appsv1.RecreateDeploymentStrategyType}
			break
		}
	}

	var podAnnotations map[string]string
	if sum := b.configChecksum(); sum != "" {
		podAnnotations = map[string]string{annotationConfigChecksum: sum}
	}
	template := b.meta("", false, podAnnotations)

	pod := corev1.PodSpec{
		Containers: []corev1.Container{b.container()},
		Volumes:    b.volumes(),
	}
	if c.RBAC != nil {
		pod.ServiceAccountName = c.Name
	}
	if s := c.Security; s != nil {
		if s.RunAsUser != nil || s.RunAsGroup != nil || s.FSGroup != nil || s.RunAsNonRoot != nil {
			pod.SecurityContext = &corev1.PodSecurityContext{
				RunAsUser:    s.RunAsUser,
				RunAsGroup:   s.RunAsGroup,
				FSGroup:      s.FSGroup,
				RunAsNonRoot: s.RunAsNonRoot,
			}
		}
	}

	return &appsv1.Deployment{
		TypeMeta:   metav1.TypeMeta{APIVersion: appsv1.SchemeGroupVersion.String(), Kind: "Deployment"},
		ObjectMeta: b.meta(c.Name, true, nil),
		Spec: appsv1.DeploymentSpec{
			Replicas: ptr.To(replicas),
			Selector: &metav1.LabelSelector{MatchLabels: b.selector()},
			Strategy: strategy,
			Template: corev1.PodTemplateSpec{
				ObjectMeta: template,
				Spec:       pod,
			},
		},
	}
}

func (b *k8sBuilder) container() corev1.Container {
	c := b.c
	ctr := corev1.Container{
		Name:  c.Name,
		Image: c.Image,
		Args:  slices.Clone(c.Args),
	}

	for _, p := range c.Ports {
		proto := corev1.ProtocolTCP
		if p.Protocol != "" {
			proto = corev1.Protocol(p.Protocol)
		}
		ctr.Ports = append(ctr.Ports, corev1.ContainerPort{
			Name:          p.Name,
			ContainerPort: p.Port,
			Protocol:      proto,
		})
	}

	for _, e := range c.Env {
		ev := corev1.EnvVar{Name: e.Name, Value: e.Value}
		switch {
		case e.SecretRef != nil:
			ev.ValueFrom = &corev1.EnvVarSource{SecretKeyRef: &corev1.SecretKeySelector{
				LocalObjectReference: corev1.LocalObjectReference{Name: e.SecretRef.Name},
				Key:                  e.SecretRef.Key,
			}}
		case e.ConfigRef != nil:
			ev.ValueFrom = &corev1.EnvVarSource{ConfigMapKeyRef: &corev1.ConfigMapKeySelector{
				LocalObjectReference: corev1.LocalObjectReference{Name: e.ConfigRef.Name},
				Key:                  e.ConfigRef.Key,
			}}
		}
		ctr.Env = append(ctr.Env, ev)
	}

	for _, m := range c.Mounts {
		ctr.VolumeMounts = append(ctr.VolumeMounts, corev1.VolumeMount{
			Name:      m.Name,
			MountPath: m.MountPath,
			SubPath:   m.SubPath,
			ReadOnly:  m.ReadOnly,
		})
	}

	ctr.Resources = corev1.ResourceRequirements{
		Requests: b.resourceList("resources.requests", c.Resources.Requests),
		Limits:   b.resourceList("resources.limits", c.Resources.Limits),
	}
	ctr.LivenessProbe = b.probe(c.LivenessProbe)
	ctr.ReadinessProbe = b.probe(c.ReadinessProbe)

	if s := c.Security; s != nil {
		sc := &corev1.SecurityContext{
			ReadOnlyRootFilesystem:   s.ReadOnlyRootFilesystem,
			AllowPrivilegeEscalation: s.AllowPrivilegeEscalation,
		}
		if len(s.DropCapabilities) > 0 {
			sc.Capabilities = &corev1.Capabilities{}
			for _, name := range s.DropCapabilities {
				sc.Capabilities.Drop = append(sc.Capabilities.Drop, corev1.Capability(name))
			}
		}
		if sc.ReadOnlyRootFilesystem != nil || sc.AllowPrivilegeEscalation != nil || sc.Capabilities != nil {
			ctr.SecurityContext = sc
		}
	}
	return ctr
}

func (b *k8sBuilder) probe(p *descriptor.Probe) *corev1.Probe {
	if p == nil {
		return nil
	}
	port, _ := b.c.ResolvePort(p.Port)
	return &corev1.Probe{
		ProbeHandler: corev1.ProbeHandler{
			HTTPGet: &corev1.HTTPGetAction{
				Path: p.Path,
				Port: intstr.FromInt32(port.Port),
			},
		},
		InitialDelaySeconds: p.InitialDelaySeconds,
		PeriodSeconds:       p.PeriodSeconds,
		TimeoutSeconds:      p.TimeoutSeconds,
		FailureThreshold:    p.FailureThreshold,
	}
}

func (b *k8sBuilder) volumes() []corev1.Volume {
	c := b.c
	var out []corev1.Volume
	for _, bundle := range c.ConfigBundles {
		out = append(out, corev1.Volume{
			Name: bundle.Name,
			VolumeSource: corev1.VolumeSource{ConfigMap: &corev1.ConfigMapVolumeSource{
				LocalObjectReference: corev1.LocalObjectReference{Name: bundle.Name},
			}},
		})
	}
	for _, s := range c.Secrets {
		out = append(out, corev1.Volume{
			Name:         s.Name,
			VolumeSource: corev1.VolumeSource{Secret: &corev1.SecretVolumeSource{SecretName: s.Name}},
		})
	}
	for _, cl := range c.StorageClaims {
		out = append(out, corev1.Volume{
			Name: cl.Name,
			VolumeSource: corev1.VolumeSource{PersistentVolumeClaim: &corev1.PersistentVolumeClaimVolumeSource{
				ClaimName: cl.Name,
			}},
		})
	}
	for i, e := range c.EmptyDirs {
		src := &corev1.EmptyDirVolumeSource{}
		if e.Memory {
			src.Medium = corev1.StorageMediumMemory
		}
		if e.SizeLimit != "" {
			src.SizeLimit = ptr.To(b.quantity(fmt.Sprintf("emptyDirs[%d].sizeLimit", i), e.SizeLimit))
		}
		out = append(out, corev1.Volume{
			Name:         e.Name,
			VolumeSource: corev1.VolumeSource{EmptyDir: src},
		})
	}
	return out
}

// configChecksum hashes bundle names and files in a stable order.
func (b *k8sBuilder) configChecksum() string {
	if len(b.c.ConfigBundles) == 0 {
		return ""
	}
	h := sha256.New()
	for _, bundle := range b.c.ConfigBundles {
		fmt.Fprintf(h, "%s\x00", bundle.Name)
		for _, name := range slices.Sorted(maps.Keys(bundle.Files)) {
			fmt.Fprintf(h, "%s\x00%s\x00", name, bundle.Files[name])
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (b *k8sBuilder) service() *corev1.Service {
	s := b.c.Service
	if s == nil {
		return nil
	}

	target := b.c.PrimaryPort()
	if p, ok := b.c.ResolvePort(s.TargetPort); ok {
		target = p
	}
	port := s.Port
	if port == 0 {
		port = target.Port
	}
	targetPort := intstr.FromInt32(target.Port)
	if target.Name != "" {
		targetPort = intstr.FromString(target.Name)
	}
	proto := corev1.ProtocolTCP
	if target.Protocol != "" {
		proto = corev1.Protocol(target.Protocol)
	}
	svcType := s.Type
	if svcType == "" {
		svcType = defaults.DefaultServiceType
	}

	return &corev1.Service{
		TypeMeta:   metav1.TypeMeta{APIVersion: "v1", Kind: "Service"},
		ObjectMeta: b.meta(b.c.Name, true, s.Annotations),
		Spec: corev1.ServiceSpec{
			Type:     corev1.ServiceType(svcType),
			Selector: b.selector(),
			Ports: []corev1.ServicePort{{
				Name:       target.Name,
				Port:       port,
				TargetPort: targetPort,
				Protocol:   proto,
			}},
		},
	}
}

func (b *k8sBuilder) ingress() *networkingv1.Ingress {
	in := b.c.Ingress
	if in == nil {
		return nil
	}
	path := in.Path
	if path == "" {
		path = defaults.DefaultIngressPath
	}
	port := b.c.Service.Port
	if port == 0 {
		port = b.service().Spec.Ports[0].Port
	}

	ing := &networkingv1.Ingress{
		TypeMeta:   metav1.TypeMeta{APIVersion: networkingv1.SchemeGroupVersion.String(), Kind: "Ingress"},
		ObjectMeta: b.meta(b.c.Name, true, in.Annotations),
		Spec: networkingv1.IngressSpec{
			Rules: []networkingv1.IngressRule{{
				Host: in.Host,
				IngressRuleValue: networkingv1.IngressRuleValue{HTTP: &networkingv1.HTTPIngressRuleValue{
					Paths: []networkingv1.HTTPIngressPath{{
						Path:     path,
						PathType: ptr.To(networkingv1.PathTypePrefix),
						Backend: networkingv1.IngressBackend{Service: &networkingv1.IngressServiceBackend{
							Name: b.c.Name,
							Port: networkingv1.ServiceBackendPort{Number: port},
						}},
					}},
				}},
			}},
		},
	}
	if in.ClassName != "" {
		ing.Spec.IngressClassName = ptr.To(in.ClassName)
	}
	if in.TLSSecret != "" {
		ing.Spec.TLS = []networkingv1.IngressTLS{{Hosts: []string{in.Host}, SecretName: in.TLSSecret}}
	}
	return ing
}

func (b *k8sBuilder) resourceList(field string, m map[string]string) corev1.ResourceList {
	if len(m) == 0 {
		return nil
	}
	out := make(corev1.ResourceList, len(m))
	for _, name := range slices.Sorted(maps.Keys(m)) {
		out[corev1.ResourceName(name)] = b.quantity(field+"."+name, m[name])
	}
	return out
}
