// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"

	"github.com/bureau-foundation/stampede/cmd/stampede/cli"
	"github.com/bureau-foundation/stampede/lib/diagnostics"
)

func diagnosticsCommand() *cli.Command {
	return &cli.Command{
		Name:    "diagnostics",
		Summary: "Combine per-step diagnostics reports",
		Subcommands: []*cli.Command{
			diagnosticsAggregateCommand(),
		},
	}
}

type diagnosticsAggregateParams struct {
	Connection
	Output string `json:"output" flag:"output,o" desc:"write the combined report to this file (\"-\" for stdout)"`
}

func diagnosticsAggregateCommand() *cli.Command {
	var params diagnosticsAggregateParams
	const usage = "stampede diagnostics aggregate <report>... [flags]"
	return &cli.Command{
		Name:    "aggregate",
		Summary: "Merge JSON diagnostics files into one array",
		Description: `Read each report (JSON, comments allowed) and write them, ordered by
path, as one compact JSON array. A report named twice is included once.
Without --output the result goes to diagnostics.json under
paths.diagnostics.`,
		Usage: usage,
		Examples: []cli.Example{
			{
				Description: "Combine reports and print the result",
				Command:     "stampede diagnostics aggregate step-*.json -o -",
			},
		},
		Params: func() any { return &params },
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if len(args) == 0 {
				return cli.Validation("at least one report required\n\nUsage: %s", usage)
			}

			var err error
			output := params.Output
			switch output {
			case "-":
				err = diagnostics.Aggregate(args, cli.Stdout)
			case "":
				cfg, loadErr := params.LoadConfig()
				if loadErr != nil {
					return loadErr
				}
				if err := cfg.EnsurePaths(); err != nil {
					return cli.Internal("%w", err)
				}
				output = filepath.Join(cfg.Paths.Diagnostics, diagnostics.Filename)
				fallthrough
			default:
				err = diagnostics.AggregateFile(args, output)
			}
			if errors.Is(err, diagnostics.ErrMissingInput) {
				return cli.NotFound("%w", err)
			}
			if err != nil {
				return cli.Validation("%w", err)
			}
			if output != "-" {
				logger.Info("diagnostics aggregated", "reports", len(args), "path", output)
				printf("%s\n", output)
			}
			return nil
		},
	}
}
