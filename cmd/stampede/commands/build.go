// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/bureau-foundation/stampede/cmd/stampede/cli"
	"github.com/bureau-foundation/stampede/lib/distbuild"
	"github.com/bureau-foundation/stampede/lib/frontend"
	"github.com/bureau-foundation/stampede/lib/projectfs"
	"github.com/bureau-foundation/stampede/lib/version"
)

func buildCommand() *cli.Command {
	return &cli.Command{
		Name:    "build",
		Summary: "Create, start, and inspect builds",
		Description: `Manage the lifecycle of a distributed build.

A build is created empty, receives its graph, file contents, tool
version, and dotfiles, and is then started. "submit" performs the whole
sequence from a graph manifest; the other subcommands perform one step
each.`,
		Subcommands: []*cli.Command{
			buildCreateCommand(),
			buildStartCommand(),
			buildStatusCommand(),
			buildSetVersionCommand(),
			buildSubmitCommand(),
		},
	}
}

type buildCreateParams struct {
	Connection
	cli.JSONOutput
}

func buildCreateCommand() *cli.Command {
	var params buildCreateParams
	return &cli.Command{
		Name:    "create",
		Summary: "Create an empty build",
		Usage:   "stampede build create [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := noExtraArgs(args); err != nil {
				return err
			}
			service, cfg, err := params.Open(logger)
			if err != nil {
				return err
			}
			defer service.Close()

			job, err := service.CreateBuild(ctx)
			if err != nil {
				return operationError(err, cfg)
			}
			if done, err := params.EmitJSON(job); done {
				return err
			}
			printf("%s", renderBuildJob(job))
			return nil
		},
	}
}

type buildStartParams struct {
	Connection
	cli.JSONOutput
}

func buildStartCommand() *cli.Command {
	var params buildStartParams
	const usage = "stampede build start <build-id> [flags]"
	return &cli.Command{
		Name:    "start",
		Summary: "Start a build that has been fully uploaded",
		Usage:   usage,
		Params:  func() any { return &params },
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

			job, err := service.StartBuild(ctx, id)
			if err != nil {
				return operationError(err, cfg)
			}
			if done, err := params.EmitJSON(job); done {
				return err
			}
			printf("%s", renderBuildJob(job))
			return nil
		},
	}
}

type buildStatusParams struct {
	Connection
	cli.JSONOutput
	Wait     bool          `json:"wait" flag:"wait,w" desc:"poll until the build finishes; exit 1 if it failed"`
	Interval time.Duration `json:"interval" flag:"interval" desc:"polling interval for --wait" default:"2s"`
}

func buildStatusCommand() *cli.Command {
	var params buildStatusParams
	const usage = "stampede build status <build-id> [flags]"
	return &cli.Command{
		Name:    "status",
		Summary: "Show a build's status",
		Usage:   usage,
		Examples: []cli.Example{
			{
				Description: "Block until the build succeeds or fails",
				Command:     "stampede build status stampede-1 --wait --interval 5s",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			id, rest, err := parseStampedeID(args, usage)
			if err != nil {
				return err
			}
			if err := noExtraArgs(rest); err != nil {
				return err
			}
			if params.Interval <= 0 {
				return cli.Validation("--interval must be positive, got %s", params.Interval)
			}
			service, cfg, err := params.Open(logger)
			if err != nil {
				return err
			}
			defer service.Close()

			job, err := service.GetCurrentBuildJobState(ctx, id)
			if err != nil {
				return operationError(err, cfg)
			}
			if params.Wait {
				job, err = waitForBuild(ctx, service, job, params.Interval, logger)
				if err != nil {
					return operationError(err, cfg)
				}
			}

			if done, err := params.EmitJSON(job); !done {
				printf("%s", renderBuildJob(job))
			} else if err != nil {
				return err
			}
			if params.Wait && job.Status == frontend.StatusFailed {
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
}

// waitForBuild polls until job reaches a terminal status.
func waitForBuild(ctx context.Context, service *distbuild.Service, job frontend.BuildJob, interval time.Duration, logger *slog.Logger) (frontend.BuildJob, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := job.Status
	for !job.Status.Terminal() {
		select {
		case <-ctx.Done():
			return job, ctx.Err()
		case <-ticker.C:
		}
		next, err := service.GetCurrentBuildJobState(ctx, job.StampedeID)
		if err != nil {
			return job, err
		}
		job = next
		if job.Status != last {
			logger.Info("build status changed",
				"build", job.StampedeID.ID,
				"from", last.String(),
				"to", job.Status.String(),
			)
			last = job.Status
		}
	}
	return job, nil
}

type buildSetVersionParams struct {
	Connection
	GitHash string `json:"git_hash" flag:"git-hash" desc:"announce a released tool by commit (default: identify the running binary)"`
}

func buildSetVersionCommand() *cli.Command {
	var params buildSetVersionParams
	const usage = "stampede build set-version <build-id> [flags]"
	return &cli.Command{
		Name:    "set-version",
		Summary: "Record which tool version workers must run",
		Description: `Tell the coordinator which build tool workers must run for this build.

Without --git-hash the running binary identifies itself: a clean
release build by its commit, anything else by the content hash of the
executable.`,
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

			var buckVersion frontend.BuckVersion
			if params.GitHash != "" {
				buckVersion = frontend.BuckVersion{Type: frontend.VersionGit, GitHash: params.GitHash}
			} else {
				buckVersion, err = version.BuckVersion()
				if err != nil {
					return cli.Internal("identifying tool version: %w", err)
				}
			}

			service, cfg, err := params.Open(logger)
			if err != nil {
				return err
			}
			defer service.Close()

			if err := service.SetBuckVersion(ctx, id, buckVersion); err != nil {
				return operationError(err, cfg)
			}
			printf("%s: version %s\n", id.ID, renderBuckVersion(buckVersion))
			return nil
		},
	}
}

type buildSubmitParams struct {
	Connection
	cli.JSONOutput
	NoDotFiles bool `json:"no_dotfiles" flag:"no-dotfiles" desc:"do not propagate dotfiles from the build root"`
}

func buildSubmitCommand() *cli.Command {
	var params buildSubmitParams
	const usage = "stampede build submit <manifest> [flags]"
	return &cli.Command{
		Name:    "submit",
		Summary: "Create, upload, and start a build from a graph manifest",
		Description: `Submit a build described by a graph manifest.

The manifest is JSON (comments and trailing commas allowed) naming the
cells, targets, top-level targets, and source files of the build. Files
are read from paths.build_root. Submission creates the build, then
uploads the graph, missing file contents, tool version, and dotfiles
concurrently, and starts the build once every upload has finished.`,
		Usage: usage,
		Examples: []cli.Example{
			{
				Description: "Submit and then follow the build",
				Command:     "stampede build submit graph.jsonc && stampede build status stampede-1 --wait",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("exactly one manifest path required\n\nUsage: %s", usage)
			}
			manifest, err := readManifest(args[0])
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
			buckVersion, err := version.BuckVersion()
			if err != nil {
				return cli.Internal("identifying tool version: %w", err)
			}

			submission := distbuild.Submission{State: state, Version: buckVersion}
			if !params.NoDotFiles {
				submission.Filesystem = buildRoot
				submission.Hashes = projectfs.NewHashCache(buildRoot)
			}

			job, err := service.Submit(ctx, submission)
			if err != nil {
				if job.StampedeID.ID != "" {
					logger.Error("build created but not started", "build", job.StampedeID.ID)
				}
				return operationError(err, cfg)
			}
			logger.Info("build submitted", "build", job.StampedeID.ID, "targets", len(state.TopLevelTargets))

			if done, err := params.EmitJSON(job); done {
				return err
			}
			printf("%s", renderBuildJob(job))
			return nil
		},
	}
}
