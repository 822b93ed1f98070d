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

package header

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindIsValid(t *testing.T) {
	for _, k := range []Kind{KindDescriptorSet, KindParameters, KindValidationResult, KindDiffReport} {
		assert.True(t, k.IsValid(), k.String())
	}
	unknown := Kind("Recipe")
	assert.False(t, unknown.IsValid())
}

func TestNew(t *testing.T) {
	h := New(
		WithKind(KindDescriptorSet),
		WithAPIVersion(APIVersion),
		WithMetadata("owner", "platform"),
	)

	assert.Equal(t, KindDescriptorSet, h.GetKind())
	assert.Equal(t, APIVersion, h.APIVersion)
	assert.Equal(t, "platform", h.GetMetadata()["owner"])
}

func TestInit(t *testing.T) {
	var h Header
	h.Init(KindDiffReport, APIVersion, "v0.1.0")

	assert.Equal(t, KindDiffReport, h.Kind)
	assert.Equal(t, "v0.1.0", h.Metadata["version"])
	assert.NotEmpty(t, h.Metadata["timestamp"])
}
