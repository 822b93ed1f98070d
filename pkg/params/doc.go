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

// Package params implements environment parameterization of descriptors.
//
// Placeholder syntax:
//
//	${NAME}           value of NAME; PARAMETER_ERROR when unresolved
//	${NAME:-default}  value of NAME, else the inline default
//	$${NAME}          literal ${NAME} (for files consumed by Grafana or
//	                  Prometheus that use the same syntax themselves)
//
// Names follow [A-Za-z_][A-Za-z0-9_]*, so Prometheus relabel backreferences
// such as ${1} are never treated as parameters.
//
// Resolution order is: supplied value, inline default, declared default.
package params
