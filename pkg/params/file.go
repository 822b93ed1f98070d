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
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/observability-stack/pkg/errors"
)

// FileKind is the kind of a parameters document.
const FileKind = "Parameters"

// File is the on-disk form of a parameters file:
//
//	kind: Parameters
//	values:
//	  DOMAIN_NAME: example.com
//
// A document without kind is read as a flat NAME: value map.
type File struct {
	Kind   string            `yaml:"kind,omitempty"`
	Values map[string]string `yaml:"values"`
}

// ParseFile decodes a parameters document.
func ParseFile(data []byte) (Params, error) {
	var probe struct {
		Kind string `yaml:"kind"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "failed to decode parameters file", err)
	}

	var values map[string]string
	switch probe.Kind {
	case FileKind:
		var f File
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "failed to decode parameters file", err)
		}
		values = f.Values
	case "":
		if err := yaml.Unmarshal(data, &values); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "failed to decode parameters file", err)
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("unsupported parameters kind %q, expected %s", probe.Kind, FileKind))
	}

	out := make(Params, len(values))
	for k, v := range values {
		if !ValidName(k) {
			return nil, errors.New(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("invalid parameter name %q", k))
		}
		out[k] = v
	}
	return out, nil
}
