// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/stampede/lib/buildgraph"
	"github.com/bureau-foundation/stampede/lib/distbuild"
	"github.com/bureau-foundation/stampede/lib/frontend"
)

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// Config is the master configuration for the stampede client.
type Config struct {
	// Environment identifies the deployment type (development, staging, production).
	Environment Environment `yaml:"environment"`

	// Paths configures directory locations.
	Paths PathsConfig `yaml:"paths"`

	// Frontend configures the connection to the build coordinator.
	Frontend FrontendConfig `yaml:"frontend"`

	// Client configures local execution of client operations.
	Client ClientConfig `yaml:"client"`

	// DotFiles selects which project-root files are propagated to
	// remote workers.
	DotFiles distbuild.DotFileFilter `yaml:"dotfiles"`

	// EnvironmentOverrides contains per-environment overrides.
	// These are applied after the base config is loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Paths    *PathsConfig    `yaml:"paths,omitempty"`
	Frontend *FrontendConfig `yaml:"frontend,omitempty"`
	Client   *ClientConfig   `yaml:"client,omitempty"`
}

// PathsConfig configures directory locations.
type PathsConfig struct {
	// Root is the base directory for stampede data.
	Root string `yaml:"root"`

	// BuildRoot is the project root whose dotfiles and sources are
	// uploaded.
	BuildRoot string `yaml:"build_root"`

	// Diagnostics is where aggregated diagnostic documents are written.
	Diagnostics string `yaml:"diagnostics"`
}

// FrontendConfig configures the coordinator connection.
type FrontendConfig struct {
	// SocketPath is the Unix socket the coordinator listens on.
	// Default: /run/stampede/frontend.sock
	SocketPath string `yaml:"socket_path"`

	// DialTimeout bounds the connect phase of each request.
	DialTimeout time.Duration `yaml:"dial_timeout"`

	// ResponseTimeout bounds the wait for each response.
	ResponseTimeout time.Duration `yaml:"response_timeout"`
}

// ClientConfig configures local execution.
type ClientConfig struct {
	// Workers is the number of concurrent background tasks. Zero
	// means one per CPU.
	Workers int `yaml:"workers"`

	// GraphCompression names the compression applied to uploaded
	// build graphs: none, lz4, or zstd.
	GraphCompression string `yaml:"graph_compression"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the default configuration.
// These defaults are used as a base before loading the config file.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultRoot := filepath.Join(homeDir, ".cache", "stampede")

	return &Config{
		Environment: Development,
		Paths: PathsConfig{
			Root:        defaultRoot,
			BuildRoot:   ".",
			Diagnostics: filepath.Join(defaultRoot, "diagnostics"),
		},
		Frontend: FrontendConfig{
			SocketPath:      "/run/stampede/frontend.sock",
			DialTimeout:     frontend.DefaultDialTimeout,
			ResponseTimeout: frontend.DefaultResponseTimeout,
		},
		Client: ClientConfig{
			Workers:          0,
			GraphCompression: buildgraph.DefaultCompression.String(),
			LogLevel:         "info",
		},
		DotFiles: distbuild.DefaultDotFileFilter,
	}
}

// Load loads configuration from the STAMPEDE_CONFIG environment variable.
//
// There are no fallbacks: if STAMPEDE_CONFIG is not set, this fails.
func Load() (*Config, error) {
	configPath := os.Getenv("STAMPEDE_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("STAMPEDE_CONFIG environment variable not set; " +
			"set it to the path of your stampede.yaml config file, or use --config flag")
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
//
// Fields absent from the file keep their [Default] values.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// applyEnvironmentOverrides applies the environment-specific overrides.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
		if overrides == nil {
			overrides = &ConfigOverrides{
				Client: &ClientConfig{LogLevel: "warn"},
			}
		}
	}

	if overrides == nil {
		return
	}

	if overrides.Paths != nil {
		if overrides.Paths.Root != "" {
			c.Paths.Root = overrides.Paths.Root
		}
		if overrides.Paths.BuildRoot != "" {
			c.Paths.BuildRoot = overrides.Paths.BuildRoot
		}
		if overrides.Paths.Diagnostics != "" {
			c.Paths.Diagnostics = overrides.Paths.Diagnostics
		}
	}

	if overrides.Frontend != nil {
		if overrides.Frontend.SocketPath != "" {
			c.Frontend.SocketPath = overrides.Frontend.SocketPath
		}
		if overrides.Frontend.DialTimeout != 0 {
			c.Frontend.DialTimeout = overrides.Frontend.DialTimeout
		}
		if overrides.Frontend.ResponseTimeout != 0 {
			c.Frontend.ResponseTimeout = overrides.Frontend.ResponseTimeout
		}
	}

	if overrides.Client != nil {
		if overrides.Client.Workers != 0 {
			c.Client.Workers = overrides.Client.Workers
		}
		if overrides.Client.GraphCompression != "" {
			c.Client.GraphCompression = overrides.Client.GraphCompression
		}
		if overrides.Client.LogLevel != "" {
			c.Client.LogLevel = overrides.Client.LogLevel
		}
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"STAMPEDE_ROOT": c.Paths.Root,
		"HOME":          os.Getenv("HOME"),
	}

	c.Paths.Root = expandVars(c.Paths.Root, vars)
	vars["STAMPEDE_ROOT"] = c.Paths.Root // Update for dependent paths.

	c.Paths.BuildRoot = expandVars(c.Paths.BuildRoot, vars)
	c.Paths.Diagnostics = expandVars(c.Paths.Diagnostics, vars)
	c.Frontend.SocketPath = expandVars(c.Frontend.SocketPath, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors. All problems are
// reported together.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Paths.Root == "" {
		errs = append(errs, errors.New("paths.root is required"))
	}
	if c.Paths.BuildRoot == "" {
		errs = append(errs, errors.New("paths.build_root is required"))
	}

	if c.Frontend.SocketPath == "" {
		errs = append(errs, errors.New("frontend.socket_path is required"))
	}
	if c.Frontend.DialTimeout < 0 {
		errs = append(errs, fmt.Errorf("frontend.dial_timeout must not be negative, got %s", c.Frontend.DialTimeout))
	}
	if c.Frontend.ResponseTimeout < 0 {
		errs = append(errs, fmt.Errorf("frontend.response_timeout must not be negative, got %s", c.Frontend.ResponseTimeout))
	}

	if c.Client.Workers < 0 {
		errs = append(errs, fmt.Errorf("client.workers must not be negative, got %d", c.Client.Workers))
	}
	if _, err := c.Compression(); err != nil {
		errs = append(errs, fmt.Errorf("client.graph_compression: %w", err))
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, fmt.Errorf("client.log_level: %w", err))
	}

	if c.DotFiles.Prefix == "" {
		errs = append(errs, errors.New("dotfiles.prefix is required"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Compression returns the configured graph compression.
func (c *Config) Compression() (buildgraph.Compression, error) {
	return buildgraph.ParseCompression(c.Client.GraphCompression)
}

// LogLevel returns the configured slog level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Client.LogLevel)); err != nil {
		return 0, err
	}
	return level, nil
}

// SocketOptions returns transport options for the configured timeouts.
func (c *Config) SocketOptions() frontend.SocketOptions {
	return frontend.SocketOptions{
		DialTimeout:     c.Frontend.DialTimeout,
		ResponseTimeout: c.Frontend.ResponseTimeout,
	}
}

// EnsurePaths creates the configured data directories if they don't exist.
func (c *Config) EnsurePaths() error {
	for _, path := range []string{c.Paths.Root, c.Paths.Diagnostics} {
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
	}
	return nil
}
