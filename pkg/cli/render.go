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
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/observability-stack/pkg/bundle"
	"github.com/NVIDIA/observability-stack/pkg/defaults"
	"github.com/NVIDIA/observability-stack/pkg/k8s/client"
	"github.com/NVIDIA/observability-stack/pkg/oci"
	"github.com/NVIDIA/observability-stack/pkg/render"
	"github.com/NVIDIA/observability-stack/pkg/serializer"
)

const defaultOCITag = "latest"

// managedByLabel marks ConfigMaps written by obsctl.
var managedByLabel = map[string]string{"app.kubernetes.io/managed-by": name}

// objectSummary is one row of the table output of render.
type objectSummary struct {
	Component string `json:"component"`
	Kind      string `json:"kind"`
	Name      string `json:"name"`
	Namespace string `json:"namespace,omitempty"`
	Tier      string `json:"tier"`
}

func renderCmd() *cli.Command {
	flags := []cli.Flag{fileFlag(), componentFlag()}
	flags = append(flags, paramFlags()...)
	flags = append(flags, renderFlags()...)
	flags = append(flags,
		outputFlag(`Output destination (default: stdout).
	Supports: file paths, directories with --bundle, OCI registries (oci://registry/repository[:tag]),
	or ConfigMaps (cm://namespace/name, the stream is stored under the manifests.yaml key;
	the rendered objects themselves are not applied).`),
		formatFlag(),
		&cli.BoolFlag{
			Name:  "bundle",
			Usage: "Write --output as a directory with one file per object, all.yaml and checksums.txt",
		},
		&cli.BoolFlag{
			Name:  "insecure-tls",
			Usage: "Skip TLS certificate verification for the OCI registry",
		},
		&cli.BoolFlag{
			Name:  "plain-http",
			Usage: "Use HTTP instead of HTTPS for the OCI registry (for local development)",
		},
		kubeconfigFlag(),
	)

	return &cli.Command{
		Name:                  "render",
		EnableShellCompletion: true,
		Usage:                 "Render descriptors with parameters into Kubernetes manifests",
		Description: `Validates the descriptor set, substitutes ${PARAM} placeholders and emits the
resulting objects in dependency order: RBAC, then ConfigMaps, Secrets and claims,
then Deployments, then Services and Ingresses.

Placeholders resolve to the supplied value, else the inline default
(${PARAM:-default}), else the default declared under parameters. $${TEXT} emits
a literal ${TEXT}.

# Examples

Render the built-in Prometheus and Grafana stack:
  obsctl render -p DOMAIN_NAME=example.com --param-env GRAFANA_ADMIN_PASSWORD

Render your own descriptors with a parameters file:
  obsctl render -f descriptors.yaml --params-file prod.yaml -o manifests.yaml

Write a bundle directory:
  obsctl render --params-file prod.yaml --bundle -o ./monitoring

Package and push the bundle to an OCI registry:
  obsctl render --params-file prod.yaml -o oci://ghcr.io/acme/monitoring:v1.0.0

Store the manifests in a ConfigMap:
  obsctl render --params-file cm://ops/params -o cm://ops/monitoring-manifests`,
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			res, err := renderFromCmd(ctx, cmd)
			if err != nil {
				return err
			}

			output := cmd.String("output")
			switch {
			case strings.HasPrefix(output, oci.URIScheme):
				return pushOCI(ctx, cmd, res, output)
			case strings.HasPrefix(output, serializer.ConfigMapURIScheme):
				return writeConfigMap(ctx, cmd, res, output)
			case cmd.Bool("bundle"):
				return writeBundle(ctx, cmd, res, output)
			}

			switch outFormat {
			case serializer.FormatYAML:
				return writeOutput(cmd, output, res.Bytes())
			case serializer.FormatTable:
				return serialize(ctx, cmd, outFormat, output, summarize(res))
			default:
				return serialize(ctx, cmd, outFormat, output, res)
			}
		},
	}
}

// renderFromCmd loads descriptors and parameters and renders them.
func renderFromCmd(ctx context.Context, cmd *cli.Command) (*render.Result, error) {
	set, err := loadDescriptorSet(ctx, cmd)
	if err != nil {
		return nil, err
	}
	values, err := loadParams(ctx, cmd)
	if err != nil {
		return nil, err
	}
	r, err := newRenderer(cmd)
	if err != nil {
		return nil, err
	}

	res, err := r.Render(ctx, set, values)
	if err != nil {
		return nil, err
	}
	if len(res.Unused) > 0 {
		slog.Warn("parameters not referenced by any placeholder", "params", res.Unused)
	}
	slog.Info("descriptors rendered",
		"target", res.Target,
		"namespace", res.Namespace,
		"objects", len(res.Objects))
	return res, nil
}

func summarize(res *render.Result) []objectSummary {
	out := make([]objectSummary, 0, len(res.Objects))
	for _, o := range res.Objects {
		out = append(out, objectSummary{
			Component: o.Component,
			Kind:      o.Kind,
			Name:      o.Name,
			Namespace: o.Namespace,
			Tier:      o.Tier.String(),
		})
	}
	return out
}

func writeBundle(ctx context.Context, cmd *cli.Command, res *render.Result, dir string) error {
	if dir == "" || dir == "-" {
		return fmt.Errorf("--bundle requires --output to name a directory")
	}
	out, err := bundle.NewWriter().Write(ctx, res, dir)
	if err != nil {
		return err
	}
	slog.Info("bundle written",
		"dir", out.Dir,
		"files", len(out.Files),
		"size_bytes", out.TotalSize)
	fmt.Fprintln(cmd.Root().ErrWriter, out.Summary())
	return nil
}

// pushOCI writes a bundle to a temporary directory and pushes it as an OCI
// artifact.
func pushOCI(ctx context.Context, cmd *cli.Command, res *render.Result, target string) error {
	ref, err := oci.ParseOutputTarget(target)
	if err != nil {
		return err
	}
	if ref.Tag == "" {
		ref = ref.WithTag(defaultOCITag)
	}

	work, err := os.MkdirTemp("", name+"-bundle-")
	if err != nil {
		return fmt.Errorf("failed to create bundle directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(work); err != nil {
			slog.Warn("failed to remove bundle directory", "dir", work, "error", err)
		}
	}()

	bundleDir := filepath.Join(work, "bundle")
	if _, err := bundle.NewWriter().Write(ctx, res, bundleDir); err != nil {
		return err
	}

	pushCtx, cancel := context.WithTimeout(ctx, defaults.OCIPushTimeout)
	defer cancel()

	pushed, err := oci.PackageAndPush(pushCtx, oci.OutputConfig{
		SourceDir:   bundleDir,
		OutputDir:   work,
		Reference:   ref,
		Version:     version,
		PlainHTTP:   cmd.Bool("plain-http"),
		InsecureTLS: cmd.Bool("insecure-tls"),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.Root().ErrWriter, "Pushed %s@%s\n", pushed.Reference, pushed.Digest)
	return nil
}

func writeConfigMap(ctx context.Context, cmd *cli.Command, res *render.Result, uri string) error {
	namespace, cmName, err := serializer.ParseConfigMapURI(uri)
	if err != nil {
		return err
	}
	c, err := client.ForKubeconfig(cmd.String("kubeconfig"))
	if err != nil {
		return fmt.Errorf("failed to get kubernetes client: %w", err)
	}
	return serializer.NewConfigMapWriter(c, namespace, cmName, serializer.ManifestsKey).
		Write(ctx, res.Bytes(), managedByLabel)
}
