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

package server

import (
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/NVIDIA/observability-stack/pkg/defaults"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("RATE_LIMIT", "")
	t.Setenv("RATE_LIMIT_BURST", "")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "")

	cfg := NewConfig()
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.RateLimit != 100 || cfg.RateLimitBurst != 200 {
		t.Errorf("rate limit = %v/%d", cfg.RateLimit, cfg.RateLimitBurst)
	}
	if cfg.ShutdownTimeout != defaults.ServerShutdownTimeout {
		t.Errorf("ShutdownTimeout = %v", cfg.ShutdownTimeout)
	}
}

func TestNewConfig_Environment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("RATE_LIMIT", "5")
	t.Setenv("RATE_LIMIT_BURST", "10")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "45")

	cfg := NewConfig()
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.RateLimit != rate.Limit(5) || cfg.RateLimitBurst != 10 {
		t.Errorf("rate limit = %v/%d", cfg.RateLimit, cfg.RateLimitBurst)
	}
	if cfg.ShutdownTimeout != 45*time.Second {
		t.Errorf("ShutdownTimeout = %v", cfg.ShutdownTimeout)
	}
}

func TestNewConfig_IgnoresInvalidValues(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "-3")

	cfg := NewConfig()
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.ShutdownTimeout != defaults.ServerShutdownTimeout {
		t.Errorf("ShutdownTimeout = %v", cfg.ShutdownTimeout)
	}
}
