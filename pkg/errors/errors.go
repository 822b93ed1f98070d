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

package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a structured error classification.
type ErrorCode string

const (
	// ErrCodeSchema indicates a malformed descriptor: a required field is
	// missing or a value cannot be parsed.
	ErrCodeSchema ErrorCode = "SCHEMA_ERROR"
	// ErrCodeReference indicates a dangling name reference inside a descriptor.
	ErrCodeReference ErrorCode = "REFERENCE_ERROR"
	// ErrCodeParameter indicates a placeholder with no supplied value and no default.
	ErrCodeParameter ErrorCode = "PARAMETER_ERROR"
	// ErrCodeNotFound indicates a requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeInternal indicates an internal system error.
	ErrCodeInternal ErrorCode = "INTERNAL"
	// ErrCodeInvalidRequest indicates malformed or invalid input.
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	// ErrCodeTimeout indicates an operation exceeded its time limit.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeRateLimitExceeded indicates the client exceeded an enforced request limit.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	// ErrCodeMethodNotAllowed indicates the HTTP method is not allowed for the resource.
	ErrCodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
)

// StructuredError provides structured error information for better observability.
// It includes an error code for programmatic handling, a human-readable message,
// the offending field path when the error concerns descriptor input,
// the underlying cause, and optional context for debugging.
type StructuredError struct {
	Code    ErrorCode
	Message string
	Field   string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, msg)
}

// Unwrap returns the underlying cause for errors.Is and errors.As support.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// New creates a new StructuredError with the given code and message.
func New(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
	}
}

// NewWithContext creates a new StructuredError with context information.
func NewWithContext(code ErrorCode, message string, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Context: context,
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(code ErrorCode, message string, cause error) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithContext wraps an error with additional context information.
func WrapWithContext(code ErrorCode, message string, cause error, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: context,
	}
}

// Schema returns a SCHEMA_ERROR for the given field path.
func Schema(field, format string, args ...any) *StructuredError {
	return &StructuredError{
		Code:    ErrCodeSchema,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

// SchemaWithContext returns a SCHEMA_ERROR carrying additional context.
func SchemaWithContext(field string, context map[string]any, format string, args ...any) *StructuredError {
	se := Schema(field, format, args...)
	se.Context = context
	return se
}

// Reference returns a REFERENCE_ERROR for the given field path.
func Reference(field, format string, args ...any) *StructuredError {
	return &StructuredError{
		Code:    ErrCodeReference,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

// Parameter returns a PARAMETER_ERROR naming the missing parameter.
// The parameter name is also recorded under the "parameter" context key.
func Parameter(field, param string) *StructuredError {
	return &StructuredError{
		Code:    ErrCodeParameter,
		Field:   field,
		Message: fmt.Sprintf("no value supplied for parameter %q and no default declared", param),
		Context: map[string]any{"parameter": param},
	}
}

// CodeOf returns the code of the first StructuredError in err's chain,
// or an empty code when there is none.
func CodeOf(err error) ErrorCode {
	var se *StructuredError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsSchemaError reports whether err carries ErrCodeSchema.
func IsSchemaError(err error) bool { return CodeOf(err) == ErrCodeSchema }

// IsReferenceError reports whether err carries ErrCodeReference.
func IsReferenceError(err error) bool { return CodeOf(err) == ErrCodeReference }

// IsParameterError reports whether err carries ErrCodeParameter.
func IsParameterError(err error) bool { return CodeOf(err) == ErrCodeParameter }
