// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the stampede CLI command tree.
//
// Every command that talks to the coordinator embeds [Connection],
// which loads the configuration file, applies --socket and --workers
// overrides, and opens a [distbuild.Service] over the coordinator's
// Unix socket.
package commands

import (
	"context"
	"log/slog"

	"github.com/bureau-foundation/stampede/cmd/stampede/cli"
	"github.com/bureau-foundation/stampede/lib/version"
)

// Root builds and returns the complete stampede CLI command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "stampede",
		Description: `Stampede: distributed build client.

Create and start builds on a remote coordinator, transfer build graphs
and file contents, propagate tool version and dotfiles, and read worker
logs.`,
		Subcommands: []*cli.Command{
			buildCommand(),
			graphCommand(),
			filesCommand(),
			logsCommand(),
			diagnosticsCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, _ []string, _ *slog.Logger) error {
					printf("stampede %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Submit a build described by a graph manifest",
				Command:     "stampede build submit graph.jsonc",
			},
			{
				Description: "Wait for a build to finish",
				Command:     "stampede build status 7f3c --wait",
			},
			{
				Description: "Read stderr of one worker",
				Command:     "stampede logs lines 7f3c run-1 --stream stderr",
			},
		},
	}
}
