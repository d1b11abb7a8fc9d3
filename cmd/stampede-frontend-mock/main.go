// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Stampede-frontend-mock serves an in-memory build coordinator on a
// Unix socket. It speaks the same envelope protocol as a real
// coordinator, keeps builds, graphs, content and dotfile paths in
// memory, and forgets everything on exit. Point the stampede CLI at it
// with --socket to try commands locally. Each --fail names a request
// type that the mock rejects, for exercising client error handling.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/stampede/cmd/stampede/cli"
	"github.com/bureau-foundation/stampede/lib/frontend"
	"github.com/bureau-foundation/stampede/lib/frontend/frontendtest"
	"github.com/bureau-foundation/stampede/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		socketPath  string
		failures    []string
		verbose     bool
		showVersion bool
	)
	flagSet := pflag.NewFlagSet("stampede-frontend-mock", pflag.ContinueOnError)
	flagSet.StringVar(&socketPath, "socket", "/run/stampede/frontend.sock", "Unix socket to listen on")
	flagSet.StringSliceVar(&failures, "fail", nil, "reject every request of this type (repeatable, e.g. STORE_BUILD_GRAPH)")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if showVersion {
		fmt.Printf("stampede-frontend-mock %s\n", version.Full())
		return nil
	}
	if verbose {
		cli.LogLevel.Set(slog.LevelDebug)
	}
	logger := cli.NewCommandLogger()

	coordinator := frontendtest.New()
	if err := injectFailures(coordinator, failures); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(filepath.Dir(socketPath), 0o755); err != nil {
		return fmt.Errorf("creating socket directory: %w", err)
	}
	done, err := frontendtest.Serve(ctx, socketPath, coordinator, logger)
	if err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("shutting down")
	return <-done
}

// injectFailures makes coordinator answer every request of each named
// type with a failed response.
func injectFailures(coordinator *frontendtest.Coordinator, names []string) error {
	for _, name := range names {
		requestType, err := frontend.ParseRequestType(name)
		if err != nil {
			known := make([]string, 0, len(frontend.RequestTypes()))
			for _, candidate := range frontend.RequestTypes() {
				known = append(known, candidate.String())
			}
			return fmt.Errorf("--fail: %w (known types: %s)", err, strings.Join(known, ", "))
		}
		coordinator.Override(requestType, func(request *frontend.Request) *frontend.Response {
			return frontend.NewFailedResponse(request.Type(), "rejected by --fail "+requestType.String())
		})
	}
	return nil
}
