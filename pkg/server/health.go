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
	"time"

	"github.com/NVIDIA/observability-stack/pkg/errors"
	"github.com/NVIDIA/observability-stack/pkg/serializer"
)

// Probe statuses.
const (
	StatusHealthy  = "healthy"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
)

// ProbeResponse is the body of /health and /ready.
type ProbeResponse struct {
	Status    string    `json:"status"`
	Name      string    `json:"name,omitempty"`
	Version   string    `json:"version,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// handleHealth reports liveness. The renderer holds no external
// connections, so a running process is healthy.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.probe(w, r, StatusHealthy, http.StatusOK)
}

// handleReady reports 503 until the listener is up and again once
// shutdown has begun.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.IsReady() {
		s.probe(w, r, StatusNotReady, http.StatusServiceUnavailable)
		return
	}
	s.probe(w, r, StatusReady, http.StatusOK)
}

func (s *Server) probe(w http.ResponseWriter, r *http.Request, status string, code int) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		WriteError(w, r, http.StatusMethodNotAllowed, errors.ErrCodeMethodNotAllowed,
			"method not allowed", false, map[string]any{"method": r.Method})
		return
	}
	serializer.RespondJSON(w, code, ProbeResponse{
		Status:    status,
		Name:      s.config.Name,
		Version:   s.config.Version,
		Timestamp: time.Now().UTC(),
	})
}
