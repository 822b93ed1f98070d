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

// Package serializer reads descriptor and parameter sources and writes
// command output.
//
// Sources are addressed by URI:
//   - a local path, or "-" for stdin
//   - an http:// or https:// URL
//   - cm://namespace/name for a Kubernetes ConfigMap
//
// Output goes through a Writer in one of three formats:
//   - JSON: indented machine-readable output
//   - YAML: human-readable output
//   - Table: flattened FIELD/VALUE rows
//
// Usage:
//
//	data, err := serializer.Load(ctx, "cm://monitoring/descriptors")
//
//	w := serializer.NewStdoutWriter(serializer.FormatTable)
//	defer w.Close()
//	err = w.Serialize(ctx, report)
//
// Rendered manifests can be stored in a ConfigMap with ConfigMapWriter,
// and HTTP handlers reply with RespondJSON.
package serializer
