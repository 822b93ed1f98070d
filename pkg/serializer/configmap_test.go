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

package serializer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func TestParseConfigMapURI(t *testing.T) {
	tests := []struct {
		name          string
		uri           string
		wantNamespace string
		wantName      string
		wantErr       bool
	}{
		{name: "valid", uri: "cm://monitoring/descriptors", wantNamespace: "monitoring", wantName: "descriptors"},
		{name: "spaces trimmed", uri: "cm://monitoring / descriptors ", wantNamespace: "monitoring", wantName: "descriptors"},
		{name: "missing scheme", uri: "monitoring/descriptors", wantErr: true},
		{name: "wrong scheme", uri: "http://monitoring/descriptors", wantErr: true},
		{name: "missing name", uri: "cm://monitoring/", wantErr: true},
		{name: "missing namespace", uri: "cm:///descriptors", wantErr: true},
		{name: "missing separator", uri: "cm://monitoring", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ns, name, err := ParseConfigMapURI(tt.uri)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantNamespace, ns)
			assert.Equal(t, tt.wantName, name)
		})
	}
}

func configMap(name string, data map[string]string) *corev1.ConfigMap {
	return &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: "monitoring"},
		Data:       data,
	}
}

func TestReadConfigMap(t *testing.T) {
	c := fake.NewClientset(
		configMap("descriptors", map[string]string{DescriptorsKey: "components: []\n", "other": "x"}),
		configMap("single", map[string]string{"set.yaml": "kind: DescriptorSet\n"}),
		configMap("ambiguous", map[string]string{"a.yaml": "a", "b.yaml": "b"}),
	)
	ctx := context.Background()

	data, err := ReadConfigMap(ctx, c, "monitoring", "descriptors", DescriptorsKey)
	require.NoError(t, err)
	assert.Equal(t, "components: []\n", string(data))

	data, err = ReadConfigMap(ctx, c, "monitoring", "single", DescriptorsKey)
	require.NoError(t, err)
	assert.Equal(t, "kind: DescriptorSet\n", string(data))

	_, err = ReadConfigMap(ctx, c, "monitoring", "ambiguous", DescriptorsKey)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a.yaml")

	_, err = ReadConfigMap(ctx, c, "monitoring", "absent", DescriptorsKey)
	assert.Error(t, err)
}

func TestConfigMapWriter_Write(t *testing.T) {
	c := fake.NewClientset()
	w := NewConfigMapWriter(c, "monitoring", "rendered", "")

	err := w.Write(context.Background(), []byte("kind: Service\n"), map[string]string{"app.kubernetes.io/managed-by": "obsctl"})
	require.NoError(t, err)

	cm, err := c.CoreV1().ConfigMaps("monitoring").Get(context.Background(), "rendered", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "kind: Service\n", cm.Data[ManifestsKey])
	assert.Equal(t, "obsctl", cm.Labels["app.kubernetes.io/managed-by"])
}
