// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Stampede is the command-line client for a distributed build
// coordinator. It creates and starts builds, uploads build graphs, file
// contents, tool version and dotfiles, reads worker logs, and combines
// diagnostics reports. See "stampede --help".
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bureau-foundation/stampede/cmd/stampede/cli"
	"github.com/bureau-foundation/stampede/cmd/stampede/commands"
)

func main() {
	if err := run(); err != nil {
		// Commands that print their own result (like "build status
		// --wait" on a failed build) return an exit code without a
		// message.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return commands.Root().Execute(ctx, os.Args[1:], cli.NewCommandLogger())
}
