// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/stampede/cmd/stampede/cli"
	"github.com/bureau-foundation/stampede/lib/async"
	"github.com/bureau-foundation/stampede/lib/config"
	"github.com/bureau-foundation/stampede/lib/distbuild"
	"github.com/bureau-foundation/stampede/lib/frontend"
)

// Connection manages configuration and coordinator flags for commands
// that talk to the coordinator. Implements [cli.FlagBinder] so the
// flags keep their long-form help text.
//
// Exported so that embedded struct fields are visible to reflection in
// [cli.FlagsFromParams].
type Connection struct {
	ConfigPath string
	SocketPath string
	Workers    int
	Verbose    bool
}

// AddFlags registers --config, --socket, --workers, and --verbose.
func (c *Connection) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&c.ConfigPath, "config", "", "configuration file (default $STAMPEDE_CONFIG, built-in defaults if unset)")
	flagSet.StringVar(&c.SocketPath, "socket", "", "coordinator socket path (overrides frontend.socket_path)")
	flagSet.IntVar(&c.Workers, "workers", -1, "concurrent background tasks (overrides client.workers)")
	flagSet.BoolVarP(&c.Verbose, "verbose", "v", false, "log at debug level")
}

// LoadConfig loads the configuration file named by --config, or else by
// STAMPEDE_CONFIG, applies flag overrides, and sets the CLI log level.
// With neither set the built-in defaults are used.
func (c *Connection) LoadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case c.ConfigPath != "":
		cfg, err = config.LoadFile(c.ConfigPath)
	case os.Getenv("STAMPEDE_CONFIG") != "":
		cfg, err = config.Load()
	default:
		cfg = config.Default()
	}
	if err != nil {
		return nil, cli.Validation("loading configuration: %w", err)
	}

	if c.SocketPath != "" {
		cfg.Frontend.SocketPath = c.SocketPath
	}
	if c.Workers >= 0 {
		cfg.Client.Workers = c.Workers
	}
	if err := cfg.Validate(); err != nil {
		return nil, cli.Validation("invalid configuration: %w", err)
	}

	level, _ := cfg.LogLevel()
	if c.Verbose {
		level = slog.LevelDebug
	}
	cli.LogLevel.Set(level)
	return cfg, nil
}

// Open loads the configuration and returns a Service connected to the
// configured coordinator. The caller closes the Service.
func (c *Connection) Open(logger *slog.Logger) (*distbuild.Service, *config.Config, error) {
	cfg, err := c.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	compression, err := cfg.Compression()
	if err != nil {
		return nil, nil, cli.Validation("%w", err)
	}

	service, err := distbuild.New(distbuild.Options{
		Transport:        frontend.NewSocketTransport(cfg.Frontend.SocketPath, cfg.SocketOptions()),
		Pool:             async.NewPool(cfg.Client.Workers),
		Logger:           logger,
		GraphCompression: compression,
		DotFiles:         cfg.DotFiles,
	})
	if err != nil {
		return nil, nil, err
	}
	return service, cfg, nil
}

// operationError categorizes an error from a coordinator operation.
func operationError(err error, cfg *config.Config) error {
	if diagnosed := cli.DiagnoseSocketError(err, cfg.Frontend.SocketPath); diagnosed != nil {
		return diagnosed
	}
	var remote *frontend.RemoteOperationError
	if errors.As(err, &remote) {
		return cli.Internal("coordinator rejected %s: %w", remote.Type, err)
	}
	if errors.Is(err, frontend.ErrProtocolViolation) {
		return cli.Internal("%w", err).
			WithHint("The coordinator answered with a malformed response. This is a coordinator bug; do not retry.")
	}
	var mismatch *distbuild.IdentityMismatchError
	if errors.As(err, &mismatch) {
		return cli.Internal("%w", err).
			WithHint("The coordinator answered with another build's record. This is a coordinator bug; do not retry.")
	}
	return err
}

// parseStampedeID validates a build id argument.
func parseStampedeID(args []string, usage string) (frontend.StampedeID, []string, error) {
	if len(args) == 0 || args[0] == "" {
		return frontend.StampedeID{}, nil, cli.Validation("build id required\n\nUsage: %s", usage)
	}
	return frontend.StampedeID{ID: args[0]}, args[1:], nil
}

func noExtraArgs(args []string) error {
	if len(args) > 0 {
		return cli.Validation("unexpected argument: %s", args[0])
	}
	return nil
}

func printf(format string, args ...any) {
	fmt.Fprintf(cli.Stdout, format, args...)
}
