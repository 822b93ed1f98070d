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

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/observability-stack/pkg/logging"
)

const (
	name           = "obsctl"
	versionDefault = "dev"
	envPrefix      = "OBSCTL_"
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Execute runs obsctl with the process arguments and exits non-zero on error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cli.Command {
	return &cli.Command{
		Name:                  name,
		Version:               fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		EnableShellCompletion: true,
		Usage:                 "Render Prometheus and Grafana descriptors into Kubernetes manifests",
		// parameter values may contain commas
		DisableSliceFlagSeparator: true,
		Description: `obsctl turns component descriptors plus per-environment parameters into the
ordered Kubernetes objects needed to run them.

  render    render descriptors to manifests, a bundle directory or an OCI artifact
  validate  check descriptors without rendering
  diff      compare two manifest streams or two parameter sets
  catalog   list the built-in components
  verify    re-check the checksums of a bundle directory`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "log level (debug, info, warn, error)",
				Sources: cli.EnvVars(envPrefix+"LOG_LEVEL", "LOG_LEVEL"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			level := cmd.String("log-level")
			logging.SetDefaultStructuredLoggerWithLevel(name, version, level)
			slog.Debug("starting",
				"name", name,
				"version", version,
				"commit", commit,
				"date", date,
				"logLevel", level)
			return ctx, nil
		},
		Commands: []*cli.Command{
			renderCmd(),
			validateCmd(),
			diffCmd(),
			catalogCmd(),
			verifyCmd(),
		},
	}
}
