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
	stderrors "errors"
	"maps"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/NVIDIA/observability-stack/pkg/errors"
	"github.com/NVIDIA/observability-stack/pkg/serializer"
)

// HTTPStatusFromCode maps an error code to its HTTP status.
func HTTPStatusFromCode(code errors.ErrorCode) int {
	switch code {
	case errors.ErrCodeSchema, errors.ErrCodeReference, errors.ErrCodeParameter, errors.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case errors.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func retryableFromCode(code errors.ErrorCode) bool {
	switch code {
	case errors.ErrCodeTimeout, errors.ErrCodeRateLimitExceeded, errors.ErrCodeInternal:
		return true
	default:
		return false
	}
}

// mergeDetails combines detail maps; later maps win. Empty input yields nil.
func mergeDetails(all ...map[string]any) map[string]any {
	var out map[string]any
	for _, m := range all {
		if len(m) == 0 {
			continue
		}
		if out == nil {
			out = make(map[string]any)
		}
		maps.Copy(out, m)
	}
	return out
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, r *http.Request, statusCode int,
	code errors.ErrorCode, message string, retryable bool, details map[string]any) {

	httpErrorResponses.WithLabelValues(string(code)).Inc()

	requestID := RequestID(r.Context())
	if requestID == "" {
		requestID = uuid.New().String()
	}

	serializer.RespondJSON(w, statusCode, ErrorResponse{
		Code:      string(code),
		Message:   message,
		Details:   details,
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
		Retryable: retryable,
	})
}

// WriteErrorFromErr writes err as an error response. A StructuredError
// supplies status, code and message; its field path is reported as
// details.field and its cause as details.error. Other errors are INTERNAL
// with fallbackMessage.
func WriteErrorFromErr(w http.ResponseWriter, r *http.Request, err error, fallbackMessage string, extra map[string]any) {
	var se *errors.StructuredError
	if !stderrors.As(err, &se) {
		WriteError(w, r, http.StatusInternalServerError, errors.ErrCodeInternal, fallbackMessage, true,
			mergeDetails(extra, map[string]any{"error": err.Error()}))
		return
	}

	own := make(map[string]any)
	if se.Field != "" {
		own["field"] = se.Field
	}
	if se.Cause != nil {
		own["error"] = se.Cause.Error()
	}

	WriteError(w, r, HTTPStatusFromCode(se.Code), se.Code, se.Message, retryableFromCode(se.Code),
		mergeDetails(se.Context, extra, own))
}
