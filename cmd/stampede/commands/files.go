// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/bureau-foundation/stampede/cmd/stampede/cli"
	"github.com/bureau-foundation/stampede/lib/projectfs"
)

func filesCommand() *cli.Command {
	return &cli.Command{
		Name:    "files",
		Summary: "Transfer file contents and dotfiles",
		Subcommands: []*cli.Command{
			filesFetchCommand(),
			filesUploadDotFilesCommand(),
		},
	}
}

type filesFetchParams struct {
	Connection
	Output string `json:"output" flag:"output,o" desc:"write the content to this file instead of stdout"`
}

func filesFetchCommand() *cli.Command {
	var params filesFetchParams
	const usage = "stampede files fetch <content-hash> [flags]"
	return &cli.Command{
		Name:    "fetch",
		Summary: "Fetch stored file content by hash",
		Usage:   usage,
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 || args[0] == "" {
				return cli.Validation("exactly one content hash required\n\nUsage: %s", usage)
			}
			hash := args[0]

			service, cfg, err := params.Open(logger)
			if err != nil {
				return err
			}
			defer service.Close()

			content, err := service.FetchSourceFile(ctx, hash)
			if err != nil {
				return operationError(err, cfg)
			}
			if params.Output == "" {
				_, err := io.Copy(cli.Stdout, content)
				return err
			}
			size, err := writeFile(params.Output, content)
			if err != nil {
				return cli.Internal("%w", err)
			}
			logger.Info("fetched source file", "hash", hash, "path", params.Output, "size", humanize.IBytes(uint64(size)))
			return nil
		},
	}
}

// writeFile creates path (and its parent directory) and copies content
// into it, returning the byte count.
func writeFile(path string, content io.Reader) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("creating directory for %s: %w", path, err)
	}
	file, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	size, err := io.Copy(file, content)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return size, fmt.Errorf("writing %s: %w", path, err)
	}
	return size, nil
}

type filesUploadDotFilesParams struct {
	Connection
	cli.JSONOutput
}

func filesUploadDotFilesCommand() *cli.Command {
	var params filesUploadDotFilesParams
	const usage = "stampede files upload-dotfiles <build-id> [flags]"
	return &cli.Command{
		Name:    "upload-dotfiles",
		Summary: "Propagate build-root dotfiles to a build",
		Description: `Record the dotfiles at the top of paths.build_root on a build and
upload their contents. Which files count as dotfiles is set by the
dotfiles section of the configuration.`,
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

			buildRoot, err := projectfs.NewDir(cfg.Paths.BuildRoot)
			if err != nil {
				return cli.Validation("build root: %w", err)
			}
			hashes := projectfs.NewHashCache(buildRoot)
			if err := service.UploadBuckDotFiles(ctx, id, buildRoot, hashes).Await(ctx); err != nil {
				return operationError(err, cfg)
			}
			logger.Debug("dotfiles hashed", "build", id.ID, "files", hashes.Len())

			job, err := service.GetCurrentBuildJobState(ctx, id)
			if err != nil {
				return operationError(err, cfg)
			}
			if done, err := params.EmitJSON(job.DotFiles); done {
				return err
			}
			printf("%s: %d dotfiles recorded\n", id.ID, len(job.DotFiles))
			for _, dotFile := range job.DotFiles {
				printf("  %s  %s\n", dotFile.Path, shortHash(dotFile.ContentHash))
			}
			return nil
		},
	}
}
