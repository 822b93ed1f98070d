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

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/NVIDIA/observability-stack/pkg/catalog"
	"github.com/NVIDIA/observability-stack/pkg/defaults"
	"github.com/NVIDIA/observability-stack/pkg/descriptor"
	"github.com/NVIDIA/observability-stack/pkg/errors"
	"github.com/NVIDIA/observability-stack/pkg/params"
	"github.com/NVIDIA/observability-stack/pkg/render"
	"github.com/NVIDIA/observability-stack/pkg/serializer"
	"github.com/NVIDIA/observability-stack/pkg/server"
)

// Output formats of POST /v1/render.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// RenderRequest is the body of POST /v1/render and POST /v1/validate.
// Descriptors holds a DescriptorSet document in YAML or JSON. When it is
// empty the built-in catalog is used, reduced to Components if given.
type RenderRequest struct {
	Descriptors string            `json:"descriptors,omitempty"`
	Components  []string          `json:"components,omitempty"`
	Params      map[string]string `json:"params,omitempty"`
	Format      string            `json:"format,omitempty"`

	// WithParams makes /v1/validate substitute Params before validating.
	// Implied when Params is not empty.
	WithParams bool `json:"withParams,omitempty"`
}

// DiffRequest is the body of POST /v1/diff. Either Old and New hold two
// rendered manifest streams, or Descriptors is rendered twice with
// OldParams and NewParams.
type DiffRequest struct {
	Old string `json:"old,omitempty"`
	New string `json:"new,omitempty"`

	Descriptors string            `json:"descriptors,omitempty"`
	Components  []string          `json:"components,omitempty"`
	OldParams   map[string]string `json:"oldParams,omitempty"`
	NewParams   map[string]string `json:"newParams,omitempty"`
}

// Handler serves the render API. It is stateless and safe for concurrent use.
type Handler struct {
	renderer *render.Renderer
}

// NewHandler creates a Handler around a renderer.
func NewHandler(r *render.Renderer) *Handler {
	return &Handler{renderer: r}
}

// Routes returns the API routes keyed by path.
func (h *Handler) Routes() map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		"/v1/render":   h.HandleRender,
		"/v1/validate": h.HandleValidate,
		"/v1/diff":     h.HandleDiff,
		"/v1/catalog":  h.HandleCatalog,
	}
}

// HandleRender handles POST /v1/render.
func (h *Handler) HandleRender(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req RenderRequest
	if !decode(w, r, &req) {
		return
	}

	format := strings.ToLower(req.Format)
	if format == "" {
		format = FormatYAML
	}
	if format != FormatYAML && format != FormatJSON {
		server.WriteError(w, r, http.StatusBadRequest, errors.ErrCodeInvalidRequest,
			fmt.Sprintf("unsupported format %q", req.Format), false,
			map[string]any{"supported": []string{FormatYAML, FormatJSON}})
		return
	}

	set, err := loadSet(req.Descriptors, req.Components)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "failed to load descriptors", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaults.RenderTimeout)
	defer cancel()

	res, err := h.renderer.Render(ctx, set, params.Params(req.Params))
	if err != nil {
		server.WriteErrorFromErr(w, r, timeoutOr(ctx, err), "render failed", nil)
		return
	}

	slog.Debug("render request served",
		"requestID", server.RequestID(r.Context()),
		"objects", len(res.Objects),
		"format", format,
	)

	if format == FormatJSON {
		serializer.RespondJSON(w, http.StatusOK, res)
		return
	}
	serializer.RespondBytes(w, http.StatusOK, "application/yaml", res.Bytes())
}

// HandleValidate handles POST /v1/validate. By default the set is validated
// as written, with placeholder values left unchecked, and every issue is
// listed under details.issues. With parameters the expanded set is
// validated, which also reports PARAMETER_ERROR.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req RenderRequest
	if !decode(w, r, &req) {
		return
	}

	set, err := loadSet(req.Descriptors, req.Components)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "failed to load descriptors", nil)
		return
	}

	if req.WithParams || len(req.Params) > 0 {
		if _, _, err := h.renderer.Prepare(set, params.Params(req.Params)); err != nil {
			server.WriteErrorFromErr(w, r, err, "validation failed", nil)
			return
		}
	} else if errs := set.ValidateAll(); len(errs) > 0 {
		server.WriteErrorFromErr(w, r, errs[0], "validation failed", map[string]any{
			"issues": descriptor.NewValidationResult(set, errs).Issues,
		})
		return
	}

	serializer.RespondJSON(w, http.StatusOK, descriptor.NewValidationResult(set, nil))
}

// HandleDiff handles POST /v1/diff.
func (h *Handler) HandleDiff(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req DiffRequest
	if !decode(w, r, &req) {
		return
	}

	var (
		report *render.DiffReport
		err    error
	)
	switch {
	case req.Old != "" || req.New != "":
		report, err = render.Diff([]byte(req.Old), []byte(req.New))
	default:
		report, err = h.diffParams(r.Context(), &req)
	}
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "diff failed", nil)
		return
	}
	serializer.RespondJSON(w, http.StatusOK, report)
}

func (h *Handler) diffParams(ctx context.Context, req *DiffRequest) (*render.DiffReport, error) {
	set, err := loadSet(req.Descriptors, req.Components)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaults.RenderTimeout)
	defer cancel()

	oldRes, err := h.renderer.Render(ctx, set, params.Params(req.OldParams))
	if err != nil {
		return nil, timeoutOr(ctx, err)
	}
	newRes, err := h.renderer.Render(ctx, set, params.Params(req.NewParams))
	if err != nil {
		return nil, timeoutOr(ctx, err)
	}
	return render.DiffResults(oldRes, newRes)
}

// HandleCatalog handles GET /v1/catalog.
func (h *Handler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	entries, err := catalog.List()
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "failed to list catalog", nil)
		return
	}
	serializer.RespondJSON(w, http.StatusOK, entries)
}

// loadSet parses inline descriptors or selects from the built-in catalog.
func loadSet(descriptors string, components []string) (*descriptor.DescriptorSet, error) {
	if strings.TrimSpace(descriptors) == "" {
		return catalog.Select(components...)
	}
	if len(components) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidRequest,
			"components selects from the built-in catalog and cannot be combined with descriptors")
	}
	return descriptor.Parse([]byte(descriptors))
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	server.WriteError(w, r, http.StatusMethodNotAllowed, errors.ErrCodeMethodNotAllowed,
		fmt.Sprintf("method %s not allowed", r.Method), false, nil)
	return false
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		server.WriteErrorFromErr(w, r,
			errors.Wrap(errors.ErrCodeInvalidRequest, "invalid request body", err), "", nil)
		return false
	}
	return true
}

// timeoutOr reports a render cut short by the request deadline as TIMEOUT.
func timeoutOr(ctx context.Context, err error) error {
	if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.Wrap(errors.ErrCodeTimeout, "render timed out", err)
	}
	return err
}
