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

// Package descriptor defines the component descriptor schema and its
// validation rules.
//
// A DescriptorSet is a YAML or JSON document of kind DescriptorSet listing
// the components to deploy together with the parameters they expect:
//
//	kind: DescriptorSet
//	apiVersion: obs.nvidia.com/v1alpha1
//	namespace: monitoring
//	parameters:
//	  - name: DOMAIN_NAME
//	components:
//	  - name: grafana
//	    image: grafana/grafana:11.2.0
//	    ports:
//	      - name: http
//	        port: 3000
//	    ingress:
//	      host: grafana.${DOMAIN_NAME}
//
// Validation reports SCHEMA_ERROR for missing or malformed fields and
// REFERENCE_ERROR for names that point at nothing declared on the same
// component: volume mounts, env var secret and config references, probe
// ports and service target ports. Values that still carry ${PARAM}
// placeholders are only checked for shape after substitution.
package descriptor
