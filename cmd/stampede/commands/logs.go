// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/bureau-foundation/stampede/cmd/stampede/cli"
	"github.com/bureau-foundation/stampede/lib/frontend"
)

func logsCommand() *cli.Command {
	return &cli.Command{
		Name:    "logs",
		Summary: "Read build worker logs",
		Subcommands: []*cli.Command{
			logsLinesCommand(),
			logsDirCommand(),
		},
	}
}

// parseRunIDs validates the worker run arguments that follow the build
// id. Run ids become file names in "logs dir", so path separators are
// rejected.
func parseRunIDs(args []string, usage string) ([]frontend.RunID, error) {
	if len(args) == 0 {
		return nil, cli.Validation("at least one run id required\n\nUsage: %s", usage)
	}
	runIDs := make([]frontend.RunID, 0, len(args))
	for _, arg := range args {
		if arg == "" || arg == "." || arg == ".." || strings.ContainsRune(arg, '/') {
			return nil, cli.Validation("invalid run id %q", arg)
		}
		runIDs = append(runIDs, frontend.RunID{ID: arg})
	}
	return runIDs, nil
}

type logsLinesParams struct {
	Connection
	cli.JSONOutput
	Stream string `json:"stream" flag:"stream" desc:"worker stream to read: stdout or stderr" default:"stdout"`
	Batch  int    `json:"batch" flag:"batch" desc:"first batch number to return"`
}

func logsLinesCommand() *cli.Command {
	var params logsLinesParams
	const usage = "stampede logs lines <build-id> <run-id>... [flags]"
	return &cli.Command{
		Name:    "lines",
		Summary: "Print real-time log lines of build workers",
		Description: `Fetch log line batches of one stream of each named worker run,
starting at --batch. With several runs, each line is prefixed by its
run id. Runs the coordinator has no logs for are reported on stderr.`,
		Usage: usage,
		Examples: []cli.Example{
			{
				Description: "Follow up from batch 10 of two workers' stderr",
				Command:     "stampede logs lines stampede-1 run-1 run-2 --stream stderr --batch 10",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			id, rest, err := parseStampedeID(args, usage)
			if err != nil {
				return err
			}
			runIDs, err := parseRunIDs(rest, usage)
			if err != nil {
				return err
			}
			stream, err := frontend.ParseLogStreamType(params.Stream)
			if err != nil {
				return cli.Validation("--stream: %w", err)
			}
			if params.Batch < 0 {
				return cli.Validation("--batch must not be negative, got %d", params.Batch)
			}

			service, cfg, err := params.Open(logger)
			if err != nil {
				return err
			}
			defer service.Close()

			requests := make([]frontend.LogLineBatchRequest, 0, len(runIDs))
			for _, run := range runIDs {
				requests = append(requests, frontend.LogLineBatchRequest{
					RunID:       run,
					Stream:      stream,
					BatchNumber: int32(params.Batch),
				})
			}
			response, err := service.FetchSlaveLogLines(ctx, id, requests)
			if err != nil {
				return operationError(err, cfg)
			}
			if done, err := params.EmitJSON(response.MultiStreamLogs); done {
				return err
			}

			prefixed := len(runIDs) > 1
			for _, streamLogs := range response.MultiStreamLogs {
				if streamLogs.ErrorMessage != "" {
					logger.Warn("log stream unavailable",
						"run", streamLogs.RunID.ID,
						"stream", streamLogs.Stream.String(),
						"error", streamLogs.ErrorMessage,
					)
					continue
				}
				for _, batch := range streamLogs.Batches {
					for _, line := range batch.Lines {
						if prefixed {
							printf("[%s] %s\n", streamLogs.RunID.ID, line)
						} else {
							printf("%s\n", line)
						}
					}
				}
			}
			return nil
		},
	}
}

type logsDirParams struct {
	Connection
	Output string `json:"output" flag:"output,o" desc:"directory to write one archive per run into" default:"."`
}

func logsDirCommand() *cli.Command {
	var params logsDirParams
	const usage = "stampede logs dir <build-id> <run-id>... [flags]"
	return &cli.Command{
		Name:    "dir",
		Summary: "Download archived log directories of build workers",
		Description: `Download the archived log directory of each named worker run and
write it to <output>/<run-id>. Runs without an archive are reported and
make the command fail after the others have been written.`,
		Usage:  usage,
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			id, rest, err := parseStampedeID(args, usage)
			if err != nil {
				return err
			}
			runIDs, err := parseRunIDs(rest, usage)
			if err != nil {
				return err
			}

			service, cfg, err := params.Open(logger)
			if err != nil {
				return err
			}
			defer service.Close()

			response, err := service.FetchBuildSlaveLogDir(ctx, id, runIDs)
			if err != nil {
				return operationError(err, cfg)
			}

			var missing []string
			for _, logDir := range response.LogDirs {
				if logDir.ErrorMessage != "" {
					logger.Warn("log directory unavailable", "run", logDir.RunID.ID, "error", logDir.ErrorMessage)
					missing = append(missing, logDir.RunID.ID)
					continue
				}
				path := filepath.Join(params.Output, filepath.Base(logDir.RunID.ID))
				size, err := writeFile(path, bytes.NewReader(logDir.Data))
				if err != nil {
					return cli.Internal("%w", err)
				}
				printf("%s  %s\n", path, humanize.IBytes(uint64(size)))
			}
			if len(missing) > 0 {
				return cli.NotFound("no log directory for run(s): %s", strings.Join(missing, ", "))
			}
			return nil
		},
	}
}
