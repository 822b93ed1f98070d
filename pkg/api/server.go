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
	"log/slog"

	"github.com/NVIDIA/observability-stack/pkg/logging"
	"github.com/NVIDIA/observability-stack/pkg/render"
	"github.com/NVIDIA/observability-stack/pkg/server"
)

const (
	name           = "obsd"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags, e.g.
	// -X "github.com/NVIDIA/observability-stack/pkg/api.version=1.0.0"
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Serve starts the API server and blocks until shutdown.
func Serve(ctx context.Context, opts ...render.Option) error {
	logging.SetDefaultStructuredLogger(name, version)
	slog.Info("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date,
	)

	r, err := render.New(opts...)
	if err != nil {
		return err
	}

	s := server.New(
		server.WithName(name),
		server.WithVersion(version),
		server.WithHandler(NewHandler(r).Routes()),
	)

	if err := s.Run(ctx); err != nil {
		slog.Error("server exited with error", "error", err)
		return err
	}
	return nil
}
