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

	"github.com/NVIDIA/observability-stack/pkg/descriptor"
)

func validateCmd() *cli.Command {
	flags := []cli.Flag{fileFlag(), componentFlag()}
	flags = append(flags, paramFlags()...)
	flags = append(flags, renderFlags()...)
	flags = append(flags,
		&cli.BoolFlag{
			Name:  "with-params",
			Usage: "Validate the set after parameter substitution, reporting missing parameters",
		},
		outputFlag("Output file path for the validation result (default: stdout)"),
		formatFlag(),
		kubeconfigFlag(),
	)

	return &cli.Command{
		Name:                  "validate",
		EnableShellCompletion: true,
		Usage:                 "Validate descriptors without rendering",
		Description: `Checks a descriptor set and reports every problem found with the field path
that caused it:

  SCHEMA_ERROR     malformed or out-of-range values (ports, quantities, names)
  REFERENCE_ERROR  mounts, env refs, probes or services naming something undeclared
  PARAMETER_ERROR  a placeholder with no value and no default (--with-params only)

Values that still hold placeholders are checked only with --with-params,
which substitutes the supplied parameters first and stops at the first error.

# Examples

Validate a descriptor file:
  obsctl validate -f descriptors.yaml

Validate against production parameters:
  obsctl validate -f descriptors.yaml --params-file prod.yaml --with-params`,
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			set, err := loadDescriptorSet(ctx, cmd)
			if err != nil {
				return err
			}

			var errs []error
			if cmd.Bool("with-params") {
				values, err := loadParams(ctx, cmd)
				if err != nil {
					return err
				}
				r, err := newRenderer(cmd)
				if err != nil {
					return err
				}
				if _, _, err := r.Prepare(set, values); err != nil {
					errs = append(errs, err)
				}
			} else {
				errs = set.ValidateAll()
			}

			res := descriptor.NewValidationResult(set, errs)
			if err := serialize(ctx, cmd, outFormat, cmd.String("output"), res); err != nil {
				return fmt.Errorf("failed to serialize validation result: %w", err)
			}

			slog.Info("validation completed",
				"valid", res.Valid,
				"components", len(res.Components),
				"issues", len(res.Issues))

			if !res.Valid {
				return fmt.Errorf("validation failed: %d issue(s), first: %w", len(errs), errs[0])
			}
			return nil
		},
	}
}
