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
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/NVIDIA/observability-stack/pkg/errors"
)

func TestHTTPStatusFromCode(t *testing.T) {
	tests := []struct {
		name string
		code errors.ErrorCode
		want int
	}{
		{"schema", errors.ErrCodeSchema, http.StatusBadRequest},
		{"reference", errors.ErrCodeReference, http.StatusBadRequest},
		{"parameter", errors.ErrCodeParameter, http.StatusBadRequest},
		{"invalid request", errors.ErrCodeInvalidRequest, http.StatusBadRequest},
		{"not found", errors.ErrCodeNotFound, http.StatusNotFound},
		{"method not allowed", errors.ErrCodeMethodNotAllowed, http.StatusMethodNotAllowed},
		{"rate limit", errors.ErrCodeRateLimitExceeded, http.StatusTooManyRequests},
		{"timeout", errors.ErrCodeTimeout, http.StatusGatewayTimeout},
		{"internal", errors.ErrCodeInternal, http.StatusInternalServerError},
		{"unknown defaults to internal", errors.ErrorCode("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatusFromCode(tt.code); got != tt.want {
				t.Fatalf("HTTPStatusFromCode(%q) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}

func TestRetryableFromCode(t *testing.T) {
	tests := []struct {
		code errors.ErrorCode
		want bool
	}{
		{errors.ErrCodeSchema, false},
		{errors.ErrCodeParameter, false},
		{errors.ErrCodeNotFound, false},
		{errors.ErrCodeTimeout, true},
		{errors.ErrCodeRateLimitExceeded, true},
		{errors.ErrCodeInternal, true},
	}

	for _, tt := range tests {
		if got := retryableFromCode(tt.code); got != tt.want {
			t.Errorf("retryableFromCode(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestMergeDetails(t *testing.T) {
	if got := mergeDetails(nil, map[string]any{}); got != nil {
		t.Fatalf("expected nil, got %#v", got)
	}

	got := mergeDetails(map[string]any{"a": 1, "shared": "old"}, map[string]any{"b": 2, "shared": "new"})
	if got["a"] != 1 || got["b"] != 2 || got["shared"] != "new" {
		t.Fatalf("unexpected merge result %#v", got)
	}
}

func TestWriteError_WritesErrorResponse(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), contextKeyRequestID, "req-123"))
	w := httptest.NewRecorder()

	WriteError(w, req, http.StatusBadRequest, errors.ErrCodeInvalidRequest, "bad request", false, map[string]any{"k": "v"})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Code != string(errors.ErrCodeInvalidRequest) || resp.Message != "bad request" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.RequestID != "req-123" {
		t.Fatalf("expected requestId req-123, got %q", resp.RequestID)
	}
	if resp.Details["k"] != "v" {
		t.Fatalf("expected details to include k=v, got %#v", resp.Details)
	}
}

func TestWriteErrorFromErr_FieldPath(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/render", nil)
	w := httptest.NewRecorder()

	WriteErrorFromErr(w, req, errors.Parameter("components[1].ingress.host", "DOMAIN_NAME"), "render failed", nil)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Code != string(errors.ErrCodeParameter) {
		t.Errorf("Code = %q", resp.Code)
	}
	if resp.Details["field"] != "components[1].ingress.host" {
		t.Errorf("details.field = %#v", resp.Details["field"])
	}
	if resp.Details["parameter"] != "DOMAIN_NAME" {
		t.Errorf("details.parameter = %#v", resp.Details["parameter"])
	}
	if resp.Retryable {
		t.Error("parameter errors are not retryable")
	}
}

func TestWriteErrorFromErr_WrappedCause(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	err := errors.Wrap(errors.ErrCodeTimeout, "render timed out", stderrors.New("deadline exceeded"))
	WriteErrorFromErr(w, req, err, "fallback", map[string]any{"extra": "yes"})

	if w.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected status %d, got %d", http.StatusGatewayTimeout, w.Code)
	}

	var resp ErrorResponse
	if uerr := json.Unmarshal(w.Body.Bytes(), &resp); uerr != nil {
		t.Fatalf("failed to unmarshal response: %v", uerr)
	}
	if !resp.Retryable {
		t.Error("expected retryable=true")
	}
	if resp.Details["error"] != "deadline exceeded" || resp.Details["extra"] != "yes" {
		t.Errorf("unexpected details %#v", resp.Details)
	}
}

func TestWriteErrorFromErr_NonStructuredFallsBackToInternal(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	WriteErrorFromErr(w, req, stderrors.New("boom"), "fallback", nil)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Code != string(errors.ErrCodeInternal) || resp.Message != "fallback" {
		t.Errorf("unexpected response %+v", resp)
	}
	if resp.Details["error"] != "boom" {
		t.Errorf("expected details error=boom, got %#v", resp.Details)
	}
}
