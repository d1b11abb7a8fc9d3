// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/bureau-foundation/stampede/cmd/stampede/cli"
	"github.com/bureau-foundation/stampede/lib/async"
	"github.com/bureau-foundation/stampede/lib/distbuild"
	"github.com/bureau-foundation/stampede/lib/projectfs"
)

func graphCommand() *cli.Command {
	return &cli.Command{
		Name:    "graph",
		Summary: "Transfer build graphs",
		Subcommands: []*cli.Command{
			graphUploadCommand(),
			graphFetchCommand(),
		},
	}
}

type graphUploadParams struct {
	Connection
	cli.JSONOutput
}

// graphUploadResult is the --json output of "graph upload".
type graphUploadResult struct {
	StampedeID string                  `json:"stampede_id"`
	Entries    int                     `json:"entries"`
	Files      distbuild.UploadSummary `json:"files"`
}

func graphUploadCommand() *cli.Command {
	var params graphUploadParams
	const usage = "stampede graph upload <build-id> <manifest> [flags]"
	return &cli.Command{
		Name:    "upload",
		Summary: "Upload a graph manifest and its missing file contents",
		Description: `Store the graph described by a manifest on an existing build and
upload the contents of its files that the coordinator does not hold.
The build is not started.`,
		Usage:  usage,
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			id, rest, err := parseStampedeID(args, usage)
			if err != nil {
				return err
			}
			if len(rest) != 1 {
				return cli.Validation("exactly one manifest path required\n\nUsage: %s", usage)
			}
			manifest, err := readManifest(rest[0])
			if err != nil {
				return cli.Validation("%w", err)
			}

			service, cfg, err := params.Open(logger)
			if err != nil {
				return err
			}
			defer service.Close()

			buildRoot, err := projectfs.NewDir(cfg.Paths.BuildRoot)
			if err != nil {
				return cli.Validation("build root: %w", err)
			}
			state, err := manifest.buildState(buildRoot)
			if err != nil {
				return cli.Validation("%w", err)
			}

			graph := service.UploadTargetGraph(ctx, state, id)
			files := service.UploadMissingFiles(ctx, state.FileHashes)
			if err := async.JoinAll(ctx, graph, files); err != nil {
				return operationError(err, cfg)
			}
			summary, err := files.Wait(ctx)
			if err != nil {
				return operationError(err, cfg)
			}

			result := graphUploadResult{StampedeID: id.ID, Entries: state.EntryCount(), Files: summary}
			if done, err := params.EmitJSON(result); done {
				return err
			}
			printf("%s: graph stored (%d file entries)\n", id.ID, result.Entries)
			printf("%s\n", renderUploadSummary("files", summary))
			return nil
		},
	}
}

type graphFetchParams struct {
	Connection
	cli.JSONOutput
}

func graphFetchCommand() *cli.Command {
	var params graphFetchParams
	const usage = "stampede graph fetch <build-id> [flags]"
	return &cli.Command{
		Name:    "fetch",
		Summary: "Fetch and summarize a build's stored graph",
		Description: `Fetch the graph stored on a build. Text output summarizes it; --json
prints the whole decoded graph.`,
		Usage:  usage,
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			id, rest, err := parseStampedeID(args, usage)
			if err != nil {
				return err
			}
			if err := noExtraArgs(rest); err != nil {
				return err
			}
			service, cfg, err := params.Open(logger)
			if err != nil {
				return err
			}
			defer service.Close()

			state, err := service.FetchBuildJobState(ctx, id)
			if err != nil {
				var empty *distbuild.EmptyGraphError
				if errors.As(err, &empty) {
					return cli.NotFound("%w", err).
						WithHint("Upload one with 'stampede graph upload " + id.ID + " <manifest>'.")
				}
				return operationError(err, cfg)
			}
			if done, err := params.EmitJSON(state); done {
				return err
			}

			printf("build     %s\n", id.ID)
			printf("cells     %d\n", len(state.Cells))
			printf("targets   %d\n", len(state.TargetGraph.Nodes))
			printf("entries   %d\n", state.EntryCount())
			topLevel := slices.Clone(state.TopLevelTargets)
			slices.Sort(topLevel)
			for _, target := range topLevel {
				printf("  %s\n", target)
			}
			return nil
		},
	}
}
