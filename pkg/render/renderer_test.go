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
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/NVIDIA/observability-stack/pkg/catalog"
	"github.com/NVIDIA/observability-stack/pkg/descriptor"
	"github.com/NVIDIA/observability-stack/pkg/errors"
	"github.com/NVIDIA/observability-stack/pkg/params"
)

var catalogParams = params.Params{
	"DOMAIN_NAME":            "example.com",
	"GRAFANA_ADMIN_PASSWORD": "s3cret-value",
}

func newRenderer(t *testing.T, opts ...Option) *Renderer {
	t.Helper()
	r, err := New(opts...)
	require.NoError(t, err)
	return r
}

func catalogSet(t *testing.T) *descriptor.DescriptorSet {
	t.Helper()
	set, err := catalog.Default()
	require.NoError(t, err)
	return set
}

func refs(res *Result) []string {
	out := make([]string, 0, len(res.Objects))
	for _, o := range res.Objects {
		out = append(out, o.Kind+"/"+o.Name)
	}
	return out
}

func TestRenderCatalogOrder(t *testing.T) {
	res, err := newRenderer(t).Render(context.Background(), catalogSet(t), catalogParams)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"ServiceAccount/prometheus",
		"ClusterRole/monitoring-prometheus",
		"ClusterRoleBinding/monitoring-prometheus",
		"ConfigMap/prometheus-config",
		"ConfigMap/prometheus-rules",
		"PersistentVolumeClaim/prometheus-storage",
		"ConfigMap/grafana-dashboard-provider",
		"ConfigMap/grafana-dashboards",
		"ConfigMap/grafana-datasources",
		"Secret/grafana-admin",
		"PersistentVolumeClaim/grafana-storage",
		"Deployment/prometheus",
		"Deployment/grafana",
		"Service/prometheus",
		"Service/grafana",
		"Ingress/grafana",
	}, refs(res))

	assert.Equal(t, KubernetesTarget, res.Target)
	assert.Equal(t, "monitoring", res.Namespace)
	assert.Equal(t, 4, res.Kinds()["ConfigMap"])

	var tier Tier
	for _, o := range res.Objects {
		assert.GreaterOrEqual(t, o.Tier, tier, "object %s out of tier order", o.Ref())
		tier = o.Tier
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	set := catalogSet(t)

	first, err := newRenderer(t).Render(context.Background(), set, catalogParams)
	require.NoError(t, err)

	for _, n := range []int{0, 1, 4} {
		t.Run(fmt.Sprintf("concurrency %d", n), func(t *testing.T) {
			again, err := newRenderer(t, WithConcurrency(n)).Render(context.Background(), set, catalogParams)
			require.NoError(t, err)
			assert.Equal(t, string(first.Bytes()), string(again.Bytes()))
		})
	}
}

func TestRenderDoesNotMutateInput(t *testing.T) {
	set := catalogSet(t)
	before, err := set.DeepCopy()
	require.NoError(t, err)

	_, err = newRenderer(t).Render(context.Background(), set, catalogParams)
	require.NoError(t, err)
	assert.Equal(t, before, set)
}

func TestRenderMissingParameter(t *testing.T) {
	tests := []struct {
		name   string
		values params.Params
		param  string
		field  string
	}{
		{
			name:   "domain name in env value",
			values: params.Params{"GRAFANA_ADMIN_PASSWORD": "x"},
			param:  "DOMAIN_NAME",
			field:  "components[1].env[0].value",
		},
		{
			name:   "secret key parameter",
			values: params.Params{"DOMAIN_NAME": "example.com"},
			param:  "GRAFANA_ADMIN_PASSWORD",
			field:  "components[1].secrets[0].keys.admin-password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newRenderer(t).Render(context.Background(), catalogSet(t), tt.values)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, errors.IsParameterError(err))

			var se *errors.StructuredError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.param, se.Context["parameter"])
			assert.Equal(t, tt.field, se.Field)
			assert.Contains(t, err.Error(), tt.param)
		})
	}
}

func TestRenderReportsValidationErrors(t *testing.T) {
	set := catalogSet(t)
	set.Components[1].Mounts = append(set.Components[1].Mounts,
		descriptor.VolumeMount{Name: "cache-volume", MountPath: "/cache"})

	res, err := newRenderer(t).Render(context.Background(), set, catalogParams)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.IsReferenceError(err))
	assert.Contains(t, err.Error(), "cache-volume")
}

func TestRenderValidatesExpandedValues(t *testing.T) {
	values := params.Merge(catalogParams, params.Params{"PROMETHEUS_STORAGE_SIZE": "lots"})

	_, err := newRenderer(t).Render(context.Background(), catalogSet(t), values)
	require.Error(t, err)
	assert.True(t, errors.IsSchemaError(err))
	assert.Contains(t, err.Error(), "components[0].storageClaims[0].size")
}

func TestRenderRejectsPlaceholderValues(t *testing.T) {
	tests := []struct {
		name  string
		param string
		field string
	}{
		{name: "claim size", param: "PROMETHEUS_STORAGE_SIZE", field: "components[0].storageClaims[0].size"},
		{name: "storage class", param: "STORAGE_CLASS", field: "components[0].storageClaims[0].storageClass"},
		{name: "ingress host", param: "DOMAIN_NAME", field: "components[1].ingress.host"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := params.Merge(catalogParams, params.Params{tt.param: "${OOPS}"})

			var res *Result
			var err error
			require.NotPanics(t, func() {
				res, err = newRenderer(t).Render(context.Background(), catalogSet(t), values)
			})
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, errors.IsSchemaError(err))

			var se *errors.StructuredError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.field, se.Field)
		})
	}
}

func TestKubernetesBuildInvalidQuantity(t *testing.T) {
	c := catalogSet(t).Components[0]
	c.StorageClaims[0].Size = "10Gi"
	c.StorageClaims[0].StorageClass = "standard"
	c.Resources.Requests = map[string]string{"cpu": "half"}

	var objs []*Object
	var err error
	require.NotPanics(t, func() {
		objs, err = kubernetes{}.Build(context.Background(), &ComponentInput{
			Index:     0,
			Namespace: "monitoring",
			Component: &c,
		})
	})
	require.Error(t, err)
	assert.Nil(t, objs)
	assert.True(t, errors.IsSchemaError(err))

	var se *errors.StructuredError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "components[0].resources.requests.cpu", se.Field)
}

func TestRenderRejectsSecretOutsideSecretKeys(t *testing.T) {
	set := catalogSet(t)
	grafana := &set.Components[1]
	grafana.Env = append(grafana.Env, descriptor.EnvVar{Name: "LEAK", Value: "${GRAFANA_ADMIN_PASSWORD}"})
	field := fmt.Sprintf("components[1].env[%d].value", len(grafana.Env)-1)

	res, err := newRenderer(t).Render(context.Background(), set, catalogParams)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.IsSchemaError(err))
	assert.NotContains(t, err.Error(), catalogParams["GRAFANA_ADMIN_PASSWORD"])

	var se *errors.StructuredError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, field, se.Field)
	assert.Equal(t, "GRAFANA_ADMIN_PASSWORD", se.Context["parameter"])
}

func TestRenderSecretIsEncoded(t *testing.T) {
	res, err := newRenderer(t).Render(context.Background(), catalogSet(t), catalogParams)
	require.NoError(t, err)

	out := string(res.Bytes())
	assert.NotContains(t, out, "s3cret-value")
	assert.Contains(t, out, base64.StdEncoding.EncodeToString([]byte("s3cret-value")))

	secret := res.Find("Secret", "grafana-admin")
	require.NotNil(t, secret)
	user, found, err := unstructured.NestedString(secret.Content, "data", "admin-user")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("admin")), user)

	_, hasStringData, _ := unstructured.NestedFieldNoCopy(secret.Content, "stringData")
	assert.False(t, hasStringData)
}

func TestRenderBundleExpansion(t *testing.T) {
	res, err := newRenderer(t).Render(context.Background(), catalogSet(t), catalogParams)
	require.NoError(t, err)

	promConfig, _, err := unstructured.NestedString(res.Find("ConfigMap", "prometheus-config").Content, "data", "prometheus.yml")
	require.NoError(t, err)
	assert.Contains(t, promConfig, "replacement: ${1}:${2}")

	dashboard, _, err := unstructured.NestedString(res.Find("ConfigMap", "grafana-dashboards").Content, "data", "cluster-overview.json")
	require.NoError(t, err)
	assert.Contains(t, dashboard, `"uid": "${datasource}"`)

	datasources, _, err := unstructured.NestedString(res.Find("ConfigMap", "grafana-datasources").Content, "data", "datasources.yaml")
	require.NoError(t, err)
	assert.Contains(t, datasources, "url: http://prometheus.monitoring.svc:9090")
}

func TestRenderNamespaceParameter(t *testing.T) {
	values := params.Merge(catalogParams, params.Params{"NAMESPACE": "obs"})
	res, err := newRenderer(t).Render(context.Background(), catalogSet(t), values)
	require.NoError(t, err)

	assert.Equal(t, "obs", res.Namespace)
	for _, o := range res.Objects {
		switch o.Kind {
		case "ClusterRole", "ClusterRoleBinding":
			assert.Empty(t, o.Namespace)
			assert.Equal(t, "obs-prometheus", o.Name)
		default:
			assert.Equal(t, "obs", o.Namespace, o.Ref())
		}
	}

	subjectNS, _, _ := unstructured.NestedSlice(res.Find("ClusterRoleBinding", "obs-prometheus").Content, "subjects")
	require.Len(t, subjectNS, 1)
	assert.Equal(t, "obs", subjectNS[0].(map[string]any)["namespace"])
}

func TestRenderDeployment(t *testing.T) {
	res, err := newRenderer(t).Render(context.Background(), catalogSet(t), catalogParams)
	require.NoError(t, err)

	prom := res.Find("Deployment", "prometheus").Content
	strategy, _, _ := unstructured.NestedString(prom, "spec", "strategy", "type")
	assert.Equal(t, "Recreate", strategy)

	sa, _, _ := unstructured.NestedString(prom, "spec", "template", "spec", "serviceAccountName")
	assert.Equal(t, "prometheus", sa)

	checksum, found, _ := unstructured.NestedString(prom, "spec", "template", "metadata", "annotations", annotationConfigChecksum)
	assert.True(t, found)
	assert.Len(t, checksum, 64)

	replicas, _, _ := unstructured.NestedInt64(prom, "spec", "replicas")
	assert.Equal(t, int64(1), replicas)

	containers, _, _ := unstructured.NestedSlice(prom, "spec", "template", "spec", "containers")
	require.Len(t, containers, 1)
	ctr := containers[0].(map[string]any)
	probePort, _, _ := unstructured.NestedInt64(ctr, "livenessProbe", "httpGet", "port")
	assert.Equal(t, int64(9090), probePort)
	cpuLimit, _, _ := unstructured.NestedString(ctr, "resources", "limits", "cpu")
	assert.Equal(t, "2", cpuLimit)
	args, _, _ := unstructured.NestedStringSlice(ctr, "args")
	assert.Contains(t, args, "--storage.tsdb.retention.time=15d")

	_, hasStatus := prom["status"]
	assert.False(t, hasStatus)
	_, hasTimestamp, _ := unstructured.NestedFieldNoCopy(prom, "metadata", "creationTimestamp")
	assert.False(t, hasTimestamp)

	grafana := res.Find("Deployment", "grafana").Content
	user, _, _ := unstructured.NestedInt64(grafana, "spec", "template", "spec", "securityContext", "runAsUser")
	assert.Equal(t, int64(472), user)
	_, hasSA, _ := unstructured.NestedString(grafana, "spec", "template", "spec", "serviceAccountName")
	assert.False(t, hasSA)
}

func TestRenderNetwork(t *testing.T) {
	res, err := newRenderer(t).Render(context.Background(), catalogSet(t), catalogParams)
	require.NoError(t, err)

	svc := res.Find("Service", "grafana").Content
	ports, _, _ := unstructured.NestedSlice(svc, "spec", "ports")
	require.Len(t, ports, 1)
	assert.Equal(t, "http", ports[0].(map[string]any)["targetPort"])
	svcType, _, _ := unstructured.NestedString(svc, "spec", "type")
	assert.Equal(t, "ClusterIP", svcType)

	ing := res.Find("Ingress", "grafana").Content
	rules, _, _ := unstructured.NestedSlice(ing, "spec", "rules")
	require.Len(t, rules, 1)
	assert.Equal(t, "grafana.example.com", rules[0].(map[string]any)["host"])
	class, _, _ := unstructured.NestedString(ing, "spec", "ingressClassName")
	assert.Equal(t, "nginx", class)
}

func TestRenderEscapedPlaceholder(t *testing.T) {
	set := &descriptor.DescriptorSet{
		Components: []descriptor.ComponentDescriptor{{
			Name:  "echo",
			Image: "hashicorp/http-echo:1.0",
			Args:  []string{"-text=$${NOT_A_PARAM}"},
			Ports: []descriptor.Port{{Port: 5678}},
		}},
	}

	res, err := newRenderer(t, WithDefaultNamespace("demo")).Render(context.Background(), set, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Deployment/echo"}, refs(res))
	assert.Equal(t, "demo", res.Objects[0].Namespace)
	assert.Contains(t, string(res.Bytes()), "-text=${NOT_A_PARAM}")
}

func TestRenderUnusedParameters(t *testing.T) {
	values := params.Merge(catalogParams, params.Params{"NOT_USED": "x"})
	res, err := newRenderer(t).Render(context.Background(), catalogSet(t), values)
	require.NoError(t, err)
	assert.Equal(t, []string{"NOT_USED"}, res.Unused)
}

func TestRenderNilSet(t *testing.T) {
	_, err := newRenderer(t).Render(context.Background(), nil, nil)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidRequest, errors.CodeOf(err))
}

func TestRenderCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newRenderer(t).Render(ctx, catalogSet(t), catalogParams)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

type fakeTarget struct{}

func (fakeTarget) Name() string { return "fake" }

func (fakeTarget) Build(_ context.Context, in *ComponentInput) ([]*Object, error) {
	return []*Object{
		{Kind: "Service", Name: in.Component.Name, Tier: TierNetwork, Content: map[string]any{"kind": "Service"}},
		{Kind: "Config", Name: in.Component.Name, Tier: TierConfig, Content: map[string]any{"kind": "Config"}},
	}, nil
}

func TestRenderCustomTarget(t *testing.T) {
	res, err := newRenderer(t, WithTarget(fakeTarget{})).Render(context.Background(), catalogSet(t), catalogParams)
	require.NoError(t, err)

	assert.Equal(t, "fake", res.Target)
	assert.Equal(t, []string{
		"Config/prometheus", "Config/grafana",
		"Service/prometheus", "Service/grafana",
	}, refs(res))
}

func TestNewForTarget(t *testing.T) {
	r, err := NewForTarget(KubernetesTarget)
	require.NoError(t, err)
	assert.Equal(t, KubernetesTarget, r.Target())

	_, err = NewForTarget("nomad")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidRequest, errors.CodeOf(err))
}

func TestTargetsRegistry(t *testing.T) {
	assert.Contains(t, Targets(), KubernetesTarget)
	assert.Error(t, Register(KubernetesTarget, func() Target { return fakeTarget{} }))
	assert.Panics(t, func() { MustRegister(KubernetesTarget, func() Target { return fakeTarget{} }) })
}
