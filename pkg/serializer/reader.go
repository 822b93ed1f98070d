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
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/NVIDIA/observability-stack/pkg/k8s/client"
)

// StdinURI reads a source from standard input.
const StdinURI = "-"

// loader resolves a source URI to bytes.
type loader struct {
	kubeconfig string
	kube       client.Interface
	http       *HttpReader
	stdin      io.Reader
	keys       []string
}

// LoadOption configures Load.
type LoadOption func(*loader)

// WithKubeconfig selects the kubeconfig used for cm:// sources.
func WithKubeconfig(path string) LoadOption {
	return func(l *loader) {
		l.kubeconfig = path
	}
}

// WithKubeClient sets the client used for cm:// sources.
func WithKubeClient(c client.Interface) LoadOption {
	return func(l *loader) {
		l.kube = c
	}
}

// WithHttpReader sets the reader used for http(s) sources.
func WithHttpReader(r *HttpReader) LoadOption {
	return func(l *loader) {
		l.http = r
	}
}

// WithStdin sets the reader used for "-".
func WithStdin(r io.Reader) LoadOption {
	return func(l *loader) {
		l.stdin = r
	}
}

// WithConfigMapKeys sets the ConfigMap keys tried in order for cm://
// sources. The default is DescriptorsKey.
func WithConfigMapKeys(keys ...string) LoadOption {
	return func(l *loader) {
		l.keys = keys
	}
}

// Load reads the raw bytes of a source: a file path, "-" for stdin, an
// http(s) URL, or cm://namespace/name.
func Load(ctx context.Context, uri string, opts ...LoadOption) ([]byte, error) {
	l := &loader{
		stdin: os.Stdin,
		keys:  []string{DescriptorsKey},
	}
	for _, opt := range opts {
		opt(l)
	}

	uri = strings.TrimSpace(uri)
	slog.Debug("loading source", "uri", uri)

	switch {
	case uri == "":
		return nil, fmt.Errorf("source is empty")
	case uri == StdinURI:
		data, err := io.ReadAll(l.stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		if l.http == nil {
			l.http = NewHttpReader()
		}
		return l.http.ReadWithContext(ctx, uri)
	case strings.HasPrefix(uri, ConfigMapURIScheme):
		namespace, name, err := ParseConfigMapURI(uri)
		if err != nil {
			return nil, err
		}
		if l.kube == nil {
			if l.kube, err = client.ForKubeconfig(l.kubeconfig); err != nil {
				return nil, fmt.Errorf("failed to get kubernetes client: %w", err)
			}
		}
		return ReadConfigMap(ctx, l.kube, namespace, name, l.keys...)
	default:
		data, err := os.ReadFile(uri)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", uri, err)
		}
		return data, nil
	}
}
