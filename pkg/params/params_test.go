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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/observability-stack/pkg/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      []string
		want    Params
		wantErr bool
	}{
		{
			name: "simple pairs",
			in:   []string{"DOMAIN_NAME=example.com", "STORAGE_CLASS=gp3"},
			want: Params{"DOMAIN_NAME": "example.com", "STORAGE_CLASS": "gp3"},
		},
		{
			name: "value containing equals",
			in:   []string{"TOKEN=a=b=c"},
			want: Params{"TOKEN": "a=b=c"},
		},
		{
			name: "empty value allowed",
			in:   []string{"SUFFIX="},
			want: Params{"SUFFIX": ""},
		},
		{
			name: "later wins",
			in:   []string{"A=1", "A=2"},
			want: Params{"A": "2"},
		},
		{name: "missing equals", in: []string{"DOMAIN_NAME"}, wantErr: true},
		{name: "empty key", in: []string{"=value"}, wantErr: true},
		{name: "invalid name", in: []string{"1BAD=x"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("OBS_TEST_PASSWORD", "s3cret")

	p, err := FromEnv([]string{"OBS_TEST_PASSWORD"})
	require.NoError(t, err)
	assert.Equal(t, "s3cret", p["OBS_TEST_PASSWORD"])

	_, err = FromEnv([]string{"OBS_TEST_DEFINITELY_UNSET"})
	assert.Error(t, err)
}

func TestMergeAndNames(t *testing.T) {
	merged := Merge(Params{"B": "1", "A": "1"}, Params{"B": "2"}, nil)
	assert.Equal(t, Params{"A": "1", "B": "2"}, merged)
	assert.Equal(t, []string{"A", "B"}, merged.Names())
}

func TestPlaceholders(t *testing.T) {
	got := Placeholders("https://grafana.${DOMAIN_NAME}/${PATH:-x} $${DS_PROMETHEUS} ${DOMAIN_NAME} $1 ${1}")
	assert.Equal(t, []string{"DOMAIN_NAME", "PATH"}, got)
	assert.False(t, HasPlaceholder("replacement: ${1}"))
}

func TestResolverExpand(t *testing.T) {
	r := NewResolver(
		Params{"DOMAIN_NAME": "example.com", "EMPTY": ""},
		Params{"STORAGE_CLASS": "standard", "DOMAIN_NAME": "ignored.local"},
	)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no placeholder", "plain", "plain"},
		{"supplied", "grafana.${DOMAIN_NAME}", "grafana.example.com"},
		{"supplied beats declared default", "${DOMAIN_NAME}", "example.com"},
		{"declared default", "${STORAGE_CLASS}", "standard"},
		{"inline default", "${RETENTION:-15d}", "15d"},
		{"inline empty default", "x${SUFFIX:-}y", "xy"},
		{"supplied empty", "x${EMPTY}y", "xy"},
		{"escaped", "$${DS_PROMETHEUS}", "${DS_PROMETHEUS}"},
		{"regex backref untouched", "$1:${1}", "$1:${1}"},
		{"multiple", "${DOMAIN_NAME}/${STORAGE_CLASS}", "example.com/standard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Expand("field", tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolverMissingParameter(t *testing.T) {
	r := NewResolver(nil, nil)

	_, err := r.Expand("components[1].ingress.host", "grafana.${DOMAIN_NAME}")
	require.Error(t, err)
	assert.True(t, errors.IsParameterError(err))
	assert.Contains(t, err.Error(), "DOMAIN_NAME")
	assert.Contains(t, err.Error(), "components[1].ingress.host")
}

func TestResolverSecretParameters(t *testing.T) {
	r := NewResolver(Params{"ADMIN_PASSWORD": "hunter2"}, nil).
		WithSecrets(map[string]bool{"ADMIN_PASSWORD": true})

	_, err := r.Expand("components[0].env[0].value", "pw=${ADMIN_PASSWORD}")
	require.Error(t, err)
	assert.True(t, errors.IsSchemaError(err))
	assert.NotContains(t, err.Error(), "hunter2")

	out, err := r.Expand("components[0].args[0]", "$${ADMIN_PASSWORD}")
	require.NoError(t, err)
	assert.Equal(t, "${ADMIN_PASSWORD}", out)

	v, err := r.Lookup("components[0].secrets[0].keys.password", "ADMIN_PASSWORD")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", v)
}

func TestResolverUnused(t *testing.T) {
	r := NewResolver(Params{"USED": "1", "EXTRA": "2"}, nil)
	_, err := r.Expand("f", "${USED}")
	require.NoError(t, err)
	assert.Equal(t, []string{"EXTRA"}, r.Unused())
}

type inner struct {
	Host  string            `json:"host"`
	Files map[string]string `json:"files" expand:"-"`
}

type outer struct {
	Name   string            `json:"name"`
	Tags   []string          `json:"tags"`
	Labels map[string]string `json:"labels"`
	Inner  *inner            `json:"inner"`
	Items  []inner           `json:"items"`
	Extra  map[string]any    `json:"extra"`
}

func TestExpandAll(t *testing.T) {
	r := NewResolver(Params{"D": "example.com"}, nil)
	v := &outer{
		Name:   "${D}",
		Tags:   []string{"a-${D}"},
		Labels: map[string]string{"host": "${D}"},
		Inner:  &inner{Host: "g.${D}", Files: map[string]string{"x": "${UNRESOLVED}"}},
		Items:  []inner{{Host: "${D}"}},
		Extra:  map[string]any{"nested": []any{"${D}"}},
	}

	require.NoError(t, r.ExpandAll(v, ""))
	assert.Equal(t, "example.com", v.Name)
	assert.Equal(t, []string{"a-example.com"}, v.Tags)
	assert.Equal(t, "example.com", v.Labels["host"])
	assert.Equal(t, "g.example.com", v.Inner.Host)
	assert.Equal(t, "${UNRESOLVED}", v.Inner.Files["x"])
	assert.Equal(t, "example.com", v.Items[0].Host)
	assert.Equal(t, []any{"example.com"}, v.Extra["nested"])
}

func TestExpandAllFieldPath(t *testing.T) {
	r := NewResolver(nil, nil)
	v := &outer{Items: []inner{{Host: "ok"}, {Host: "${MISSING}"}}}

	err := r.ExpandAll(v, "components[0]")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "components[0].items[1].host")
}

func TestExpandAllRequiresPointer(t *testing.T) {
	r := NewResolver(nil, nil)
	assert.Error(t, r.ExpandAll(outer{}, ""))
}

func TestParseFile(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Params
		wantErr bool
	}{
		{
			name: "parameters kind",
			in:   "kind: Parameters\nvalues:\n  DOMAIN_NAME: example.com\n  REPLICAS: 2\n",
			want: Params{"DOMAIN_NAME": "example.com", "REPLICAS": "2"},
		},
		{
			name: "flat map",
			in:   "DOMAIN_NAME: example.com\n",
			want: Params{"DOMAIN_NAME": "example.com"},
		},
		{name: "empty document", in: "", want: Params{}},
		{name: "wrong kind", in: "kind: DescriptorSet\n", wantErr: true},
		{name: "invalid name", in: "1BAD: x\n", wantErr: true},
		{name: "malformed", in: "values: [\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFile([]byte(tt.in))
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errors.ErrCodeInvalidRequest, errors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
