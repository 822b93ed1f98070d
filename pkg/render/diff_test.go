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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/observability-stack/pkg/errors"
	"github.com/NVIDIA/observability-stack/pkg/header"
	"github.com/NVIDIA/observability-stack/pkg/params"
)

const (
	cmA = `apiVersion: v1
kind: ConfigMap
metadata:
  name: a
  namespace: monitoring
data:
  key: one
`
	cmB = `apiVersion: v1
kind: ConfigMap
metadata:
  name: b
  namespace: monitoring
data:
  key: two
`
	secret = `apiVersion: v1
kind: Secret
metadata:
  name: creds
  namespace: monitoring
data:
  password: b2xk
`
)

func stream(docs ...string) []byte {
	return []byte(strings.Join(docs, documentSeparator))
}

func TestDiffIdentical(t *testing.T) {
	d, err := Diff(stream(cmA, cmB), stream(cmA, cmB))
	require.NoError(t, err)
	assert.True(t, d.Identical)
	assert.True(t, d.Equal())
	assert.False(t, d.Reordered)
	assert.Equal(t, header.KindDiffReport, d.Kind)
}

func TestDiffAddedRemoved(t *testing.T) {
	d, err := Diff(stream(cmA), stream(cmB))
	require.NoError(t, err)
	assert.False(t, d.Identical)
	assert.Equal(t, []string{"v1/ConfigMap/monitoring/a"}, d.Removed)
	assert.Equal(t, []string{"v1/ConfigMap/monitoring/b"}, d.Added)
	assert.Empty(t, d.Changed)
}

func TestDiffChangedField(t *testing.T) {
	changed := strings.Replace(cmA, "key: one", "key: uno\n  extra: x", 1)

	d, err := Diff(stream(cmA), stream(changed))
	require.NoError(t, err)
	require.Len(t, d.Changed, 1)
	assert.Equal(t, "v1/ConfigMap/monitoring/a", d.Changed[0].Ref)
	assert.Equal(t, []FieldChange{
		{Path: "data.extra", Old: nil, New: "x"},
		{Path: "data.key", Old: "one", New: "uno"},
	}, d.Changed[0].Fields)
}

func TestDiffRedactsSecretValues(t *testing.T) {
	changed := strings.Replace(secret, "b2xk", "bmV3", 1)

	d, err := Diff(stream(secret), stream(changed))
	require.NoError(t, err)
	require.Len(t, d.Changed, 1)
	assert.Equal(t, []FieldChange{{Path: "data.password", Old: redacted, New: redacted}}, d.Changed[0].Fields)
}

func TestDiffReordered(t *testing.T) {
	d, err := Diff(stream(cmA, cmB), stream(cmB, cmA))
	require.NoError(t, err)
	assert.False(t, d.Identical)
	assert.True(t, d.Equal())
	assert.True(t, d.Reordered)
}

func TestDiffRejectsDuplicates(t *testing.T) {
	_, err := Diff(stream(cmA, cmA), stream(cmA))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidRequest, errors.CodeOf(err))
}

func TestDiffAcceptsJSON(t *testing.T) {
	js := `{"apiVersion":"v1","kind":"ConfigMap","metadata":{"name":"a","namespace":"monitoring"},"data":{"key":"one"}}`
	d, err := Diff(stream(cmA), []byte(js))
	require.NoError(t, err)
	assert.False(t, d.Identical)
	assert.True(t, d.Equal())
}

func TestDiffResults(t *testing.T) {
	r := newRenderer(t)
	set := catalogSet(t)

	a, err := r.Render(context.Background(), set, catalogParams)
	require.NoError(t, err)
	b, err := r.Render(context.Background(), set, catalogParams)
	require.NoError(t, err)

	d, err := DiffResults(a, b)
	require.NoError(t, err)
	assert.True(t, d.Identical)

	c, err := r.Render(context.Background(), set, params.Merge(catalogParams, params.Params{"DOMAIN_NAME": "example.org"}))
	require.NoError(t, err)

	d, err = DiffResults(a, c)
	require.NoError(t, err)
	assert.False(t, d.Identical)
	assert.Empty(t, d.Added)
	assert.Empty(t, d.Removed)

	changed := make([]string, 0, len(d.Changed))
	for _, ch := range d.Changed {
		changed = append(changed, ch.Ref)
	}
	assert.Equal(t, []string{
		"apps/v1/Deployment/monitoring/grafana",
		"networking.k8s.io/v1/Ingress/monitoring/grafana",
	}, changed)

	_, err = DiffResults(nil, c)
	assert.Error(t, err)
}
