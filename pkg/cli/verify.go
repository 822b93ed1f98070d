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

	"github.com/NVIDIA/observability-stack/pkg/bundle/checksum"
)

func verifyCmd() *cli.Command {
	return &cli.Command{
		Name:                  "verify",
		EnableShellCompletion: true,
		Usage:                 "Verify the checksums of a bundle directory",
		ArgsUsage:             "DIR",
		Description: `Re-hashes every file listed in DIR/checksums.txt and reports files that are
missing or changed since the bundle was written by render --bundle.

# Examples

  obsctl verify ./monitoring`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return fmt.Errorf("expected exactly one bundle directory, got %d", cmd.Args().Len())
			}
			dir := cmd.Args().First()

			mismatches, err := checksum.Verify(ctx, dir)
			if err != nil {
				return fmt.Errorf("failed to verify %s: %w", dir, err)
			}
			for _, m := range mismatches {
				fmt.Fprintln(cmd.Root().Writer, m.String())
			}
			if len(mismatches) > 0 {
				return fmt.Errorf("bundle %s failed verification: %d file(s) differ", dir, len(mismatches))
			}

			slog.Info("bundle verified", "dir", dir)
			fmt.Fprintf(cmd.Root().Writer, "%s: OK\n", dir)
			return nil
		},
	}
}
