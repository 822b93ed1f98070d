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
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/observability-stack/pkg/catalog"
	"github.com/NVIDIA/observability-stack/pkg/defaults"
	"github.com/NVIDIA/observability-stack/pkg/descriptor"
	"github.com/NVIDIA/observability-stack/pkg/params"
	"github.com/NVIDIA/observability-stack/pkg/render"
	"github.com/NVIDIA/observability-stack/pkg/serializer"
)

// Flags are built per command so state never leaks between runs.

func fileFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "file",
		Aliases: []string{"f"},
		Usage: `Path/URI of the descriptor set.
	Supports: file paths, "-" for stdin, HTTP/HTTPS URLs, or ConfigMap URIs (cm://namespace/name).
	When unset the built-in catalog is used.`,
		Sources: cli.EnvVars(envPrefix + "FILE"),
	}
}

func componentFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:    "component",
		Aliases: []string{"c"},
		Usage: fmt.Sprintf("Built-in component to include when --file is unset, can be repeated (supported values: %s)",
			strings.Join(catalog.Names(), ", ")),
	}
}

func paramFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "param",
			Aliases: []string{"p"},
			Usage:   "Parameter value (format: KEY=VALUE, can be repeated)",
		},
		&cli.StringFlag{
			Name: "params-file",
			Usage: `Path/URI of a parameters file (kind: Parameters, or a flat KEY: VALUE map).
	Supports the same sources as --file; ConfigMaps are read from the params.yaml key.`,
			Sources: cli.EnvVars(envPrefix + "PARAMS_FILE"),
		},
		&cli.StringSliceFlag{
			Name:  "param-env",
			Usage: "Read the named parameter from the environment variable of the same name, can be repeated",
		},
	}
}

func renderFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "target",
			Value:   defaults.DefaultTarget,
			Usage:   fmt.Sprintf("Render target (supported values: %s)", strings.Join(render.Targets(), ", ")),
			Sources: cli.EnvVars(envPrefix + "TARGET"),
		},
		&cli.StringFlag{
			Name:    "namespace",
			Aliases: []string{"n"},
			Usage:   fmt.Sprintf("Namespace used when the descriptor set declares none (default: %s)", defaults.DefaultNamespace),
			Sources: cli.EnvVars(envPrefix + "NAMESPACE"),
		},
	}
}

func outputFlag(usage string) cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   usage,
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Value:   string(serializer.FormatYAML),
		Usage:   fmt.Sprintf("Output format (supported values: %s)", strings.Join(serializer.SupportedFormats(), ", ")),
	}
}

func kubeconfigFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "kubeconfig",
		Aliases: []string{"k"},
		Usage:   "Path to kubeconfig file for cm:// sources and destinations (default: KUBECONFIG or ~/.kube/config)",
		Sources: cli.EnvVars("KUBECONFIG"),
	}
}

// parseOutputFormat returns the --format value or an error listing the
// supported formats.
func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	f := serializer.Format(strings.ToLower(cmd.String("format")))
	if f.IsUnknown() {
		return "", fmt.Errorf("unknown output format: %q (supported values: %s)",
			cmd.String("format"), strings.Join(serializer.SupportedFormats(), ", "))
	}
	return f, nil
}

func loadOptions(cmd *cli.Command) []serializer.LoadOption {
	return []serializer.LoadOption{
		serializer.WithKubeconfig(cmd.String("kubeconfig")),
		serializer.WithStdin(cmd.Root().Reader),
	}
}

// loadDescriptorSet reads --file, or selects --component entries from the
// built-in catalog when no file is given.
func loadDescriptorSet(ctx context.Context, cmd *cli.Command) (*descriptor.DescriptorSet, error) {
	file := cmd.String("file")
	components := cmd.StringSlice("component")

	if file == "" {
		return catalog.Select(components...)
	}
	if len(components) > 0 {
		return nil, fmt.Errorf("--component selects from the built-in catalog and cannot be combined with --file")
	}

	data, err := serializer.Load(ctx, file, loadOptions(cmd)...)
	if err != nil {
		return nil, fmt.Errorf("failed to load descriptors from %q: %w", file, err)
	}
	set, err := descriptor.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse descriptors from %q: %w", file, err)
	}
	return set, nil
}

// loadParams merges --params-file, --param-env and --param in that order,
// later sources winning.
func loadParams(ctx context.Context, cmd *cli.Command) (params.Params, error) {
	fromFile, err := loadParamsFile(ctx, cmd, cmd.String("params-file"))
	if err != nil {
		return nil, err
	}

	fromEnv, err := params.FromEnv(cmd.StringSlice("param-env"))
	if err != nil {
		return nil, fmt.Errorf("invalid --param-env: %w", err)
	}

	fromFlags, err := params.Parse(cmd.StringSlice("param"))
	if err != nil {
		return nil, fmt.Errorf("invalid --param: %w", err)
	}

	return params.Merge(fromFile, fromEnv, fromFlags), nil
}

// loadParamsFile reads a parameters file. An empty path yields no values.
func loadParamsFile(ctx context.Context, cmd *cli.Command, path string) (params.Params, error) {
	if path == "" {
		return nil, nil
	}
	opts := append(loadOptions(cmd), serializer.WithConfigMapKeys(serializer.ParamsKey))
	data, err := serializer.Load(ctx, path, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load parameters from %q: %w", path, err)
	}
	values, err := params.ParseFile(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse parameters from %q: %w", path, err)
	}
	return values, nil
}

func newRenderer(cmd *cli.Command) (*render.Renderer, error) {
	return render.NewForTarget(cmd.String("target"),
		render.WithDefaultNamespace(cmd.String("namespace")))
}

// writeOutput writes data to path, or to the command's writer when path
// is empty or "-".
func writeOutput(cmd *cli.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.Root().Writer.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// serialize writes v in format to path or the command's writer.
func serialize(ctx context.Context, cmd *cli.Command, format serializer.Format, path string, v any) error {
	w := serializer.NewWriter(format, cmd.Root().Writer)
	if path != "" && path != "-" {
		var err error
		if w, err = serializer.NewFileWriterOrStdout(format, path); err != nil {
			return err
		}
	}
	defer func() {
		if err := w.Close(); err != nil {
			slog.Warn("failed to close output", "error", err)
		}
	}()
	return w.Serialize(ctx, v)
}
