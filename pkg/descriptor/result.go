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

package descriptor

import (
	stderrors "errors"

	"github.com/NVIDIA/observability-stack/pkg/errors"
	"github.com/NVIDIA/observability-stack/pkg/header"
)

// Issue is one validation failure.
type Issue struct {
	Code    string `json:"code" yaml:"code"`
	Field   string `json:"field,omitempty" yaml:"field,omitempty"`
	Message string `json:"message" yaml:"message"`
}

// ValidationResult is the report document produced by validating a set.
type ValidationResult struct {
	header.Header `json:",inline" yaml:",inline"`

	Valid      bool     `json:"valid" yaml:"valid"`
	Components []string `json:"components,omitempty" yaml:"components,omitempty"`
	Issues     []Issue  `json:"issues,omitempty" yaml:"issues,omitempty"`
}

// NewValidationResult builds the report for set from the errors returned
// by ValidateAll. A nil set yields a report with no components.
func NewValidationResult(set *DescriptorSet, errs []error) *ValidationResult {
	res := &ValidationResult{
		Header: header.Header{Kind: header.KindValidationResult, APIVersion: header.APIVersion},
		Valid:  len(errs) == 0,
	}
	if set != nil {
		for _, c := range set.Components {
			res.Components = append(res.Components, c.Name)
		}
	}
	for _, err := range errs {
		res.Issues = append(res.Issues, issueOf(err))
	}
	return res
}

// Check validates the set and returns the report.
func (s *DescriptorSet) Check() *ValidationResult {
	return NewValidationResult(s, s.ValidateAll())
}

func issueOf(err error) Issue {
	var se *errors.StructuredError
	if stderrors.As(err, &se) {
		return Issue{Code: string(se.Code), Field: se.Field, Message: se.Message}
	}
	return Issue{Code: string(errors.ErrCodeInternal), Message: err.Error()}
}
