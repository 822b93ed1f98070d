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
	"k8s.io/apimachinery/pkg/util/intstr"

	"github.com/NVIDIA/observability-stack/pkg/header"
)

// DescriptorSet is the authored input of a render: the components to deploy
// plus the parameters they expect from each environment.
type DescriptorSet struct {
	header.Header `json:",inline" yaml:",inline"`

	// Namespace all objects are rendered into. May contain placeholders.
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`

	// Labels are merged onto every rendered object.
	Labels map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`

	// Parameters declares the parameters the set expects and their defaults.
	Parameters []ParameterSpec `json:"parameters,omitempty" yaml:"parameters,omitempty" expand:"-"`

	Components []ComponentDescriptor `json:"components" yaml:"components"`
}

// ParameterSpec declares one environment parameter.
type ParameterSpec struct {
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Default     *string `json:"default,omitempty" yaml:"default,omitempty"`
	// Secret marks values that must not be echoed in logs or reports.
	Secret bool `json:"secret,omitempty" yaml:"secret,omitempty"`
}

// ComponentDescriptor is the structured declaration of one deployable
// component's shape.
type ComponentDescriptor struct {
	Name     string   `json:"name" yaml:"name"`
	Image    string   `json:"image" yaml:"image"`
	Replicas *int32   `json:"replicas,omitempty" yaml:"replicas,omitempty"`
	Args     []string `json:"args,omitempty" yaml:"args,omitempty"`

	Ports []Port   `json:"ports" yaml:"ports"`
	Env   []EnvVar `json:"env,omitempty" yaml:"env,omitempty"`

	ConfigBundles []ConfigBundle `json:"configBundles,omitempty" yaml:"configBundles,omitempty"`
	Secrets       []SecretRef    `json:"secrets,omitempty" yaml:"secrets,omitempty"`
	StorageClaims []StorageClaim `json:"storageClaims,omitempty" yaml:"storageClaims,omitempty"`
	EmptyDirs     []EmptyDir     `json:"emptyDirs,omitempty" yaml:"emptyDirs,omitempty"`
	Mounts        []VolumeMount  `json:"mounts,omitempty" yaml:"mounts,omitempty"`

	Resources      Resources            `json:"resources,omitempty" yaml:"resources,omitempty"`
	LivenessProbe  *Probe               `json:"livenessProbe,omitempty" yaml:"livenessProbe,omitempty"`
	ReadinessProbe *Probe               `json:"readinessProbe,omitempty" yaml:"readinessProbe,omitempty"`
	Security       *SecurityConstraints `json:"security,omitempty" yaml:"security,omitempty"`

	Service *ServiceSpec `json:"service,omitempty" yaml:"service,omitempty"`
	Ingress *IngressSpec `json:"ingress,omitempty" yaml:"ingress,omitempty"`
	RBAC    *RBACSpec    `json:"rbac,omitempty" yaml:"rbac,omitempty"`

	Labels      map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty" yaml:"annotations,omitempty"`
}

// Port is a port exposed by the component's container.
type Port struct {
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Port     int32  `json:"port" yaml:"port"`
	Protocol string `json:"protocol,omitempty" yaml:"protocol,omitempty"`
}

// EnvVar sets one environment variable from exactly one source.
type EnvVar struct {
	Name      string        `json:"name" yaml:"name"`
	Value     string        `json:"value,omitempty" yaml:"value,omitempty"`
	SecretRef *KeyReference `json:"secretRef,omitempty" yaml:"secretRef,omitempty"`
	ConfigRef *KeyReference `json:"configRef,omitempty" yaml:"configRef,omitempty"`
}

// KeyReference points at one key of a declared secret or config bundle.
type KeyReference struct {
	Name string `json:"name" yaml:"name"`
	Key  string `json:"key" yaml:"key"`
}

// ConfigBundle is a named collection of configuration file contents
// attached to a component.
type ConfigBundle struct {
	Name  string            `json:"name" yaml:"name"`
	Files map[string]string `json:"files" yaml:"files" expand:"-"`
	// Verbatim disables parameter expansion of Files.
	Verbatim bool `json:"verbatim,omitempty" yaml:"verbatim,omitempty"`
}

// SecretRef declares a secret the component consumes. Keys maps each secret
// key to the parameter supplying its value at render time.
type SecretRef struct {
	Name string            `json:"name" yaml:"name"`
	Keys map[string]string `json:"keys,omitempty" yaml:"keys,omitempty"`
	// External secrets are referenced but never rendered.
	External bool `json:"external,omitempty" yaml:"external,omitempty"`
}

// StorageClaim requests persistent storage for one component instance.
type StorageClaim struct {
	Name         string `json:"name" yaml:"name"`
	Size         string `json:"size" yaml:"size"`
	AccessMode   string `json:"accessMode,omitempty" yaml:"accessMode,omitempty"`
	StorageClass string `json:"storageClass,omitempty" yaml:"storageClass,omitempty"`
}

// EmptyDir is an ephemeral volume scoped to the pod lifetime.
type EmptyDir struct {
	Name      string `json:"name" yaml:"name"`
	SizeLimit string `json:"sizeLimit,omitempty" yaml:"sizeLimit,omitempty"`
	Memory    bool   `json:"memory,omitempty" yaml:"memory,omitempty"`
}

// VolumeMount mounts a declared bundle, secret, claim or emptyDir.
type VolumeMount struct {
	Name      string `json:"name" yaml:"name"`
	MountPath string `json:"mountPath" yaml:"mountPath"`
	SubPath   string `json:"subPath,omitempty" yaml:"subPath,omitempty"`
	ReadOnly  bool   `json:"readOnly,omitempty" yaml:"readOnly,omitempty"`
}

// Resources holds quantity strings keyed by resource name
// (cpu, memory, ephemeral-storage).
type Resources struct {
	Requests map[string]string `json:"requests,omitempty" yaml:"requests,omitempty"`
	Limits   map[string]string `json:"limits,omitempty" yaml:"limits,omitempty"`
}

// Probe is an HTTP GET health check.
type Probe struct {
	Path                string             `json:"path" yaml:"path"`
	Port                intstr.IntOrString `json:"port" yaml:"port"`
	InitialDelaySeconds int32              `json:"initialDelaySeconds,omitempty" yaml:"initialDelaySeconds,omitempty"`
	PeriodSeconds       int32              `json:"periodSeconds,omitempty" yaml:"periodSeconds,omitempty"`
	TimeoutSeconds      int32              `json:"timeoutSeconds,omitempty" yaml:"timeoutSeconds,omitempty"`
	FailureThreshold    int32              `json:"failureThreshold,omitempty" yaml:"failureThreshold,omitempty"`
}

// SecurityConstraints restrict how the container runs.
type SecurityConstraints struct {
	RunAsUser                *int64   `json:"runAsUser,omitempty" yaml:"runAsUser,omitempty"`
	RunAsGroup               *int64   `json:"runAsGroup,omitempty" yaml:"runAsGroup,omitempty"`
	FSGroup                  *int64   `json:"fsGroup,omitempty" yaml:"fsGroup,omitempty"`
	RunAsNonRoot             *bool    `json:"runAsNonRoot,omitempty" yaml:"runAsNonRoot,omitempty"`
	ReadOnlyRootFilesystem   *bool    `json:"readOnlyRootFilesystem,omitempty" yaml:"readOnlyRootFilesystem,omitempty"`
	AllowPrivilegeEscalation *bool    `json:"allowPrivilegeEscalation,omitempty" yaml:"allowPrivilegeEscalation,omitempty"`
	DropCapabilities         []string `json:"dropCapabilities,omitempty" yaml:"dropCapabilities,omitempty"`
}

// ServiceSpec shapes the network object fronting the component.
// A zero TargetPort means the first declared container port.
type ServiceSpec struct {
	Type        string             `json:"type,omitempty" yaml:"type,omitempty"`
	Port        int32              `json:"port,omitempty" yaml:"port,omitempty"`
	TargetPort  intstr.IntOrString `json:"targetPort,omitempty" yaml:"targetPort,omitempty"`
	Annotations map[string]string  `json:"annotations,omitempty" yaml:"annotations,omitempty"`
}

// IngressSpec exposes the component's service under a host name.
type IngressSpec struct {
	Host        string            `json:"host" yaml:"host"`
	Path        string            `json:"path,omitempty" yaml:"path,omitempty"`
	ClassName   string            `json:"className,omitempty" yaml:"className,omitempty"`
	TLSSecret   string            `json:"tlsSecret,omitempty" yaml:"tlsSecret,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty" yaml:"annotations,omitempty"`
}

// RBACSpec grants the component's service account API access.
type RBACSpec struct {
	ClusterScoped bool         `json:"clusterScoped,omitempty" yaml:"clusterScoped,omitempty"`
	Rules         []PolicyRule `json:"rules" yaml:"rules"`
}

// PolicyRule mirrors an orchestrator permission rule.
type PolicyRule struct {
	APIGroups       []string `json:"apiGroups,omitempty" yaml:"apiGroups,omitempty"`
	Resources       []string `json:"resources,omitempty" yaml:"resources,omitempty"`
	NonResourceURLs []string `json:"nonResourceURLs,omitempty" yaml:"nonResourceURLs,omitempty"`
	Verbs           []string `json:"verbs" yaml:"verbs"`
}
