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

// Package api exposes descriptor rendering over HTTP.
//
// Application endpoints (rate limited):
//   - POST /v1/render    render a descriptor set to YAML or a JSON object list
//   - POST /v1/validate  validate a descriptor set
//   - POST /v1/diff      compare two manifest streams, or one set under two parameter sets
//   - GET  /v1/catalog   list the built-in components
//
// A render request names a descriptor set inline or selects from the
// built-in catalog:
//
//	curl -s localhost:8080/v1/render -d '{
//	  "components": ["grafana"],
//	  "params": {"DOMAIN_NAME": "example.com", "GRAFANA_ADMIN_PASSWORD": "s3cret"}
//	}'
//
// Descriptor problems return 400 with SCHEMA_ERROR, REFERENCE_ERROR or
// PARAMETER_ERROR and the offending field in details.field.
//
// Server lifecycle, middleware and the /health, /ready and /metrics
// endpoints come from pkg/server.
package api
