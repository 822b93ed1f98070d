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
	"net/http"
	"os"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/NVIDIA/observability-stack/pkg/defaults"
)

// Config holds server configuration
type Config struct {
	// Server identity
	Name    string
	Version string

	// Handlers are API routes wrapped in the middleware chain.
	Handlers map[string]http.HandlerFunc

	// Server configuration
	Address string
	Port    int

	// Rate limiting configuration
	RateLimit      rate.Limit // requests per second
	RateLimitBurst int        // burst size

	// MaxBodyBytes caps request bodies on API routes.
	MaxBodyBytes int64

	// Timeouts
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
}

// NewConfig returns defaults overridden by PORT, RATE_LIMIT,
// RATE_LIMIT_BURST and SHUTDOWN_TIMEOUT_SECONDS.
func NewConfig() *Config {
	return parseConfig()
}

func parseConfig() *Config {
	cfg := &Config{
		Name:              "server",
		Version:           "undefined",
		Port:              8080,
		RateLimit:         100, // 100 req/s
		RateLimitBurst:    200, // burst of 200
		MaxBodyBytes:      4 << 20,
		ReadTimeout:       defaults.ServerReadTimeout,
		ReadHeaderTimeout: defaults.ServerReadHeaderTimeout,
		WriteTimeout:      defaults.ServerWriteTimeout,
		IdleTimeout:       defaults.ServerIdleTimeout,
		ShutdownTimeout:   defaults.ServerShutdownTimeout,
	}

	if port, ok := envInt("PORT"); ok {
		cfg.Port = port
	}
	if limit, ok := envInt("RATE_LIMIT"); ok {
		cfg.RateLimit = rate.Limit(limit)
	}
	if burst, ok := envInt("RATE_LIMIT_BURST"); ok {
		cfg.RateLimitBurst = burst
	}
	// match the pod termination grace period
	if seconds, ok := envInt("SHUTDOWN_TIMEOUT_SECONDS"); ok {
		cfg.ShutdownTimeout = time.Duration(seconds) * time.Second
	}

	return cfg
}

// envInt returns a positive integer from the environment.
func envInt(key string) (int, bool) {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
