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

package client

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuildKubeClient_InvalidPath(t *testing.T) {
	tests := []struct {
		name string
		arg  string
		env  string
	}{
		{name: "explicit path", arg: "/nonexistent/kubeconfig"},
		{name: "env path", env: "/nonexistent/env/kubeconfig"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("KUBECONFIG", tt.env)

			_, _, err := BuildKubeClient(tt.arg)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), "failed to build kube config") {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestResolveKubeconfig(t *testing.T) {
	if got := ResolveKubeconfig("/explicit"); got != "/explicit" {
		t.Errorf("explicit path = %q", got)
	}

	t.Setenv("KUBECONFIG", "/from/env")
	if got := ResolveKubeconfig(""); got != "/from/env" {
		t.Errorf("env path = %q", got)
	}

	home := t.TempDir()
	t.Setenv("KUBECONFIG", "")
	t.Setenv("HOME", home)
	if got := ResolveKubeconfig(""); got != "" {
		t.Errorf("expected in-cluster fallback, got %q", got)
	}

	cfg := filepath.Join(home, ".kube", "config")
	if err := os.MkdirAll(filepath.Dir(cfg), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfg, []byte("apiVersion: v1\nkind: Config\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if got := ResolveKubeconfig(""); got != cfg {
		t.Errorf("home path = %q, want %q", got, cfg)
	}
}

func TestForKubeconfig_InvalidPath(t *testing.T) {
	if _, err := ForKubeconfig("/nonexistent/kubeconfig"); err == nil {
		t.Error("expected error for missing kubeconfig")
	}
}
