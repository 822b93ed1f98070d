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

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/observability-stack/pkg/render"
	"github.com/NVIDIA/observability-stack/pkg/serializer"
)

func diffCmd() *cli.Command {
	flags := []cli.Flag{fileFlag(), componentFlag()}
	flags = append(flags, paramFlags()...)
	flags = append(flags, renderFlags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:  "old",
			Usage: "Path/URI of the old manifest stream (cm:// sources read the manifests.yaml key)",
		},
		&cli.StringFlag{
			Name:  "new",
			Usage: "Path/URI of the new manifest stream (cm:// sources read the manifests.yaml key)",
		},
		&cli.StringFlag{
			Name:  "old-params-file",
			Usage: "Parameters file the descriptors are rendered with for the old side",
		},
		&cli.BoolFlag{
			Name:  "exit-code",
			Usage: "Exit with non-zero status when the two sides differ",
		},
		outputFlag("Output file path for the diff report (default: stdout)"),
		formatFlag(),
		kubeconfigFlag(),
	)

	return &cli.Command{
		Name:                  "diff",
		EnableShellCompletion: true,
		Usage:                 "Compare two rendered manifest streams",
		Description: `Compares two renders object by object. Objects are matched by apiVersion, kind,
namespace and name; the report lists added, removed and changed objects with
the differing field paths. Secret values are never printed.

With --old and --new two existing streams are compared. Otherwise the
descriptors are rendered twice: once with --old-params-file and once with the
regular parameter flags.

# Examples

Compare a stored render with a fresh one:
  obsctl render --params-file prod.yaml -o new.yaml
  obsctl diff --old cm://ops/monitoring-manifests --new new.yaml

Preview the effect of a parameter change:
  obsctl diff --old-params-file prod.yaml --params-file prod.yaml -p PROMETHEUS_RETENTION=30d`,
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			var report *render.DiffReport
			oldURI, newURI := cmd.String("old"), cmd.String("new")
			switch {
			case oldURI != "" && newURI != "":
				report, err = diffStreams(ctx, cmd, oldURI, newURI)
			case oldURI != "" || newURI != "":
				return fmt.Errorf("--old and --new must be used together")
			default:
				report, err = diffParams(ctx, cmd)
			}
			if err != nil {
				return err
			}

			if err := serialize(ctx, cmd, outFormat, cmd.String("output"), report); err != nil {
				return fmt.Errorf("failed to serialize diff report: %w", err)
			}

			slog.Info("diff completed",
				"identical", report.Identical,
				"added", len(report.Added),
				"removed", len(report.Removed),
				"changed", len(report.Changed))

			if cmd.Bool("exit-code") && !report.Equal() {
				return fmt.Errorf("renders differ: %d added, %d removed, %d changed",
					len(report.Added), len(report.Removed), len(report.Changed))
			}
			return nil
		},
	}
}

func diffStreams(ctx context.Context, cmd *cli.Command, oldURI, newURI string) (*render.DiffReport, error) {
	opts := append(loadOptions(cmd), serializer.WithConfigMapKeys(serializer.ManifestsKey))

	oldData, err := serializer.Load(ctx, oldURI, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load %q: %w", oldURI, err)
	}
	newData, err := serializer.Load(ctx, newURI, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load %q: %w", newURI, err)
	}
	return render.Diff(oldData, newData)
}

func diffParams(ctx context.Context, cmd *cli.Command) (*render.DiffReport, error) {
	set, err := loadDescriptorSet(ctx, cmd)
	if err != nil {
		return nil, err
	}
	r, err := newRenderer(cmd)
	if err != nil {
		return nil, err
	}

	newValues, err := loadParams(ctx, cmd)
	if err != nil {
		return nil, err
	}
	oldValues := newValues
	if path := cmd.String("old-params-file"); path != "" {
		if oldValues, err = loadParamsFile(ctx, cmd, path); err != nil {
			return nil, err
		}
	}

	oldRes, err := r.Render(ctx, set, oldValues)
	if err != nil {
		return nil, fmt.Errorf("old render failed: %w", err)
	}
	newRes, err := r.Render(ctx, set, newValues)
	if err != nil {
		return nil, fmt.Errorf("new render failed: %w", err)
	}
	return render.DiffResults(oldRes, newRes)
}
