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

// Package server provides the HTTP server used by obsd.
//
// API routes are supplied by the caller and wrapped in a fixed middleware
// chain:
//
//   - Prometheus request metrics (obs_http_*)
//   - API version negotiation via Accept: application/vnd.nvidia.obs.v1+json
//   - request ID tracking (X-Request-Id)
//   - panic recovery
//   - token bucket rate limiting (golang.org/x/time/rate)
//   - request body size limits
//   - debug request logging
//
// System endpoints are served without rate limiting:
//
//	GET /health   liveness
//	GET /ready    readiness, 503 while starting or shutting down
//	GET /metrics  Prometheus metrics
//
// Usage:
//
//	s := server.New(
//	    server.WithName("obsd"),
//	    server.WithVersion(version),
//	    server.WithHandler(map[string]http.HandlerFunc{
//	        "/v1/render": h.HandleRender,
//	    }),
//	)
//	err := s.Run(ctx)
//
// Errors are written as ErrorResponse JSON. WriteErrorFromErr maps
// SCHEMA_ERROR, REFERENCE_ERROR, PARAMETER_ERROR and INVALID_REQUEST to
// 400 and reports the offending field path in details.field.
//
// Configuration is read from the environment: PORT, RATE_LIMIT,
// RATE_LIMIT_BURST and SHUTDOWN_TIMEOUT_SECONDS.
package server
