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

package api

import "testing"

func TestServerIdentity(t *testing.T) {
	if name != "obsd" {
		t.Errorf("name = %q, want obsd", name)
	}
	if versionDefault != "dev" {
		t.Errorf("versionDefault = %q, want dev", versionDefault)
	}
	if version == "" || commit == "" || date == "" {
		t.Error("build metadata must have defaults")
	}
}
