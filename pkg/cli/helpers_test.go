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
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/observability-stack/pkg/params"
	"github.com/NVIDIA/observability-stack/pkg/serializer"
)

const echoSet = `kind: DescriptorSet
apiVersion: obs.nvidia.com/v1alpha1
components:
  - name: echo
    image: hashicorp/http-echo:1.0
    ports:
      - name: http
        port: 5678
    env:
      - name: TEXT
        value: ${GREETING}
    service: {}
`

// run executes obsctl with args and returns what it wrote to stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.Writer = &out
	cmd.ErrWriter = &errOut
	cmd.Reader = strings.NewReader(stdin)
	err := cmd.Run(context.Background(), append([]string{name, "--log-level", "error"}, args...))
	return out.String(), err
}

func writeFile(t *testing.T, dir, file, content string) string {
	t.Helper()
	path := filepath.Join(dir, file)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		name       string
		format     string
		wantFormat serializer.Format
		wantErr    bool
	}{
		{name: "yaml", format: "yaml", wantFormat: serializer.FormatYAML},
		{name: "json", format: "json", wantFormat: serializer.FormatJSON},
		{name: "table", format: "table", wantFormat: serializer.FormatTable},
		{name: "upper case", format: "JSON", wantFormat: serializer.FormatJSON},
		{name: "xml", format: "xml", wantErr: true},
		{name: "empty", format: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cli.Command{
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Value: tt.format},
				},
				Action: func(_ context.Context, c *cli.Command) error {
					got, err := parseOutputFormat(c)
					if tt.wantErr {
						assert.Error(t, err)
						return nil
					}
					assert.NoError(t, err)
					assert.Equal(t, tt.wantFormat, got)
					return nil
				},
			}
			require.NoError(t, cmd.Run(context.Background(), []string{"test"}))
		})
	}
}

func TestLoadParams_Precedence(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "params.yaml", `kind: Parameters
values:
  FROM_FILE: file
  OVERRIDDEN: file
  ENV_WINS: file
`)
	t.Setenv("ENV_WINS", "env")
	t.Setenv("OVERRIDDEN", "env")

	var got params.Params
	cmd := &cli.Command{
		Flags: paramFlags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			var err error
			got, err = loadParams(ctx, c)
			return err
		},
	}
	require.NoError(t, cmd.Run(context.Background(), []string{"test",
		"--params-file", file,
		"--param-env", "ENV_WINS",
		"--param-env", "OVERRIDDEN",
		"-p", "OVERRIDDEN=flag",
	}))

	assert.Equal(t, params.Params{
		"FROM_FILE":  "file",
		"ENV_WINS":   "env",
		"OVERRIDDEN": "flag",
	}, got)
}

func TestLoadParams_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "malformed pair", args: []string{"-p", "NOVALUE"}},
		{name: "invalid name", args: []string{"-p", "1BAD=x"}},
		{name: "unset env", args: []string{"--param-env", "OBSCTL_TEST_SURELY_UNSET"}},
		{name: "missing file", args: []string{"--params-file", "/does/not/exist.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cli.Command{
				Flags: paramFlags(),
				Action: func(ctx context.Context, c *cli.Command) error {
					_, err := loadParams(ctx, c)
					return err
				},
			}
			assert.Error(t, cmd.Run(context.Background(), append([]string{"test"}, tt.args...)))
		})
	}
}
