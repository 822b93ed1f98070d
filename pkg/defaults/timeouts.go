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

package defaults

import "time"

// Handler timeouts for HTTP request processing.
const (
	// RenderHandlerTimeout is the timeout for render, validate and diff requests.
	RenderHandlerTimeout = 30 * time.Second

	// RenderTimeout is the internal timeout for a single render call.
	// Should be less than RenderHandlerTimeout to allow error handling.
	RenderTimeout = 25 * time.Second
)

// Server timeouts for HTTP server configuration.
const (
	// ServerReadTimeout is the maximum duration for reading request headers.
	ServerReadTimeout = 10 * time.Second

	// ServerReadHeaderTimeout prevents slow header attacks.
	ServerReadHeaderTimeout = 5 * time.Second

	// ServerWriteTimeout is the maximum duration for writing a response.
	ServerWriteTimeout = 30 * time.Second

	// ServerIdleTimeout is the maximum duration to wait for the next request.
	ServerIdleTimeout = 120 * time.Second

	// ServerShutdownTimeout is the maximum duration for graceful shutdown.
	ServerShutdownTimeout = 30 * time.Second
)

// HTTP client timeouts for outbound requests.
const (
	// HTTPClientTimeout is the default total timeout for HTTP requests.
	HTTPClientTimeout = 30 * time.Second

	// HTTPConnectTimeout is the timeout for establishing connections.
	HTTPConnectTimeout = 5 * time.Second

	// HTTPTLSHandshakeTimeout is the timeout for TLS handshake.
	HTTPTLSHandshakeTimeout = 5 * time.Second

	// HTTPResponseHeaderTimeout is the timeout for reading response headers.
	HTTPResponseHeaderTimeout = 10 * time.Second

	// HTTPIdleConnTimeout is the timeout for idle connections in the pool.
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPKeepAlive is the keep-alive duration for connections.
	HTTPKeepAlive = 30 * time.Second
)

// Kubernetes and registry timeouts.
const (
	// ConfigMapReadTimeout is the timeout for reading descriptor ConfigMaps.
	ConfigMapReadTimeout = 15 * time.Second

	// ConfigMapWriteTimeout is the timeout for storing rendered manifests.
	ConfigMapWriteTimeout = 30 * time.Second

	// OCIPushTimeout is the timeout for pushing a rendered bundle.
	OCIPushTimeout = 5 * time.Minute
)

// Render defaults applied when a descriptor leaves a field empty.
const (
	// DefaultNamespace is used when a descriptor set does not name one.
	DefaultNamespace = "monitoring"

	// DefaultReplicas is the workload replica count.
	DefaultReplicas int32 = 1

	// DefaultAccessMode is the storage claim access mode.
	DefaultAccessMode = "ReadWriteOnce"

	// DefaultServiceType is the Service type.
	DefaultServiceType = "ClusterIP"

	// DefaultIngressPath is the Ingress path.
	DefaultIngressPath = "/"

	// DefaultTarget is the orchestration target name.
	DefaultTarget = "kubernetes"
)
