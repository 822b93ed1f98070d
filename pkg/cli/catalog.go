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

	"github.com/urfave/cli/v3"
	"sigs.k8s.io/yaml"

	"github.com/NVIDIA/observability-stack/pkg/catalog"
)

func catalogCmd() *cli.Command {
	return &cli.Command{
		Name:                  "catalog",
		EnableShellCompletion: true,
		Usage:                 "List the built-in components",
		Description: `Lists the components shipped with obsctl. With --export the selected
components are written as a descriptor set to start your own from.

# Examples

  obsctl catalog --format table
  obsctl catalog --export -c grafana -o grafana.yaml`,
		Flags: []cli.Flag{
			componentFlag(),
			&cli.BoolFlag{
				Name:  "export",
				Usage: "Write the selected components as a descriptor set (YAML)",
			},
			outputFlag("Output file path (default: stdout)"),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Bool("export") {
				set, err := catalog.Select(cmd.StringSlice("component")...)
				if err != nil {
					return err
				}
				// sigs.k8s.io/yaml honours the JSON encoding of port references
				data, err := yaml.Marshal(set)
				if err != nil {
					return fmt.Errorf("failed to encode descriptor set: %w", err)
				}
				return writeOutput(cmd, cmd.String("output"), data)
			}

			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}
			entries, err := catalog.List()
			if err != nil {
				return err
			}
			return serialize(ctx, cmd, outFormat, cmd.String("output"), entries)
		},
	}
}
