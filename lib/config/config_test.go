// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/stampede/lib/buildgraph"
	"github.com/bureau-foundation/stampede/lib/distbuild"
	"github.com/bureau-foundation/stampede/lib/frontend"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "stampede.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return configPath
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Environment != Development {
		t.Errorf("expected environment=development, got %s", cfg.Environment)
	}
	if cfg.Frontend.SocketPath != "/run/stampede/frontend.sock" {
		t.Errorf("expected socket_path=/run/stampede/frontend.sock, got %s", cfg.Frontend.SocketPath)
	}
	if cfg.Frontend.DialTimeout != frontend.DefaultDialTimeout {
		t.Errorf("expected dial_timeout=%s, got %s", frontend.DefaultDialTimeout, cfg.Frontend.DialTimeout)
	}
	if cfg.DotFiles != distbuild.DefaultDotFileFilter {
		t.Errorf("expected default dotfile filter, got %+v", cfg.DotFiles)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestLoad_RequiresStampedeConfig(t *testing.T) {
	t.Setenv("STAMPEDE_CONFIG", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when STAMPEDE_CONFIG not set, got nil")
	}
	if !strings.HasPrefix(err.Error(), "STAMPEDE_CONFIG environment variable not set") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoad_WithStampedeConfig(t *testing.T) {
	t.Setenv("STAMPEDE_CONFIG", writeConfig(t, `
environment: staging
paths:
  root: /test/root
frontend:
  socket_path: /test/frontend.sock
`))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Environment != Staging {
		t.Errorf("expected environment=staging, got %s", cfg.Environment)
	}
	if cfg.Paths.Root != "/test/root" {
		t.Errorf("expected root=/test/root, got %s", cfg.Paths.Root)
	}
}

func TestLoadFile(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, `
environment: staging

paths:
  root: /custom/root
  build_root: /src/project

frontend:
  socket_path: /custom/frontend.sock
  dial_timeout: 2s
  response_timeout: 1m

client:
  workers: 3
  graph_compression: lz4
  log_level: debug

dotfiles:
  tag: bazel
`))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Paths.BuildRoot != "/src/project" {
		t.Errorf("expected build_root=/src/project, got %s", cfg.Paths.BuildRoot)
	}
	if cfg.Frontend.SocketPath != "/custom/frontend.sock" {
		t.Errorf("expected socket_path=/custom/frontend.sock, got %s", cfg.Frontend.SocketPath)
	}
	options := cfg.SocketOptions()
	if options.DialTimeout != 2*time.Second || options.ResponseTimeout != time.Minute {
		t.Errorf("socket options = %+v, want 2s/1m", options)
	}
	if cfg.Client.Workers != 3 {
		t.Errorf("expected workers=3, got %d", cfg.Client.Workers)
	}
	if compression, err := cfg.Compression(); err != nil || compression != buildgraph.CompressionLZ4 {
		t.Errorf("Compression() = %v, %v; want lz4", compression, err)
	}
	if level, err := cfg.LogLevel(); err != nil || level != slog.LevelDebug {
		t.Errorf("LogLevel() = %v, %v; want debug", level, err)
	}

	// Fields absent from the file keep their defaults.
	if cfg.DotFiles.Tag != "bazel" || cfg.DotFiles.Prefix != distbuild.DefaultDotFileFilter.Prefix {
		t.Errorf("dotfiles = %+v, want tag overridden and prefix kept", cfg.DotFiles)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); !os.IsNotExist(err) {
		t.Errorf("missing file: error = %v, want not-exist", err)
	}
	if _, err := LoadFile(writeConfig(t, "frontend: [unterminated")); err == nil {
		t.Error("malformed YAML: expected error")
	}
	if _, err := LoadFile(writeConfig(t, "frontend:\n  dial_timeout: soon\n")); err == nil {
		t.Error("malformed duration: expected error")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, `
environment: production

paths:
  root: /default/root

client:
  log_level: info

production:
  paths:
    root: /prod/root
  frontend:
    socket_path: /run/prod/frontend.sock
  client:
    workers: 16
`))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Paths.Root != "/prod/root" {
		t.Errorf("expected root=/prod/root, got %s", cfg.Paths.Root)
	}
	if cfg.Frontend.SocketPath != "/run/prod/frontend.sock" {
		t.Errorf("expected production socket, got %s", cfg.Frontend.SocketPath)
	}
	if cfg.Client.Workers != 16 {
		t.Errorf("expected workers=16, got %d", cfg.Client.Workers)
	}
	// An explicit production section replaces the built-in production
	// defaults, so the base log level stands.
	if cfg.Client.LogLevel != "info" {
		t.Errorf("expected log_level=info, got %s", cfg.Client.LogLevel)
	}
}

func TestProductionDefaults(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, "environment: production\n"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Client.LogLevel != "warn" {
		t.Errorf("expected log_level=warn in production, got %s", cfg.Client.LogLevel)
	}
}

func TestEnvVarsDoNotOverride(t *testing.T) {
	t.Setenv("STAMPEDE_ROOT", "/env/root")
	t.Setenv("STAMPEDE_ENVIRONMENT", "staging")

	cfg, err := LoadFile(writeConfig(t, `
environment: development
paths:
  root: /file/root
`))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Environment != Development {
		t.Errorf("expected environment=development from file, got %s", cfg.Environment)
	}
	if cfg.Paths.Root != "/file/root" {
		t.Errorf("expected root=/file/root from file, got %s", cfg.Paths.Root)
	}
}

func TestPathExpansion(t *testing.T) {
	t.Setenv("HOME", "/home/builder")

	cfg, err := LoadFile(writeConfig(t, `
paths:
  root: ${HOME}/stampede
  diagnostics: ${STAMPEDE_ROOT}/diag
frontend:
  socket_path: ${STAMPEDE_SOCKET_DIR:-/tmp}/frontend.sock
`))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Paths.Root != "/home/builder/stampede" {
		t.Errorf("root = %s", cfg.Paths.Root)
	}
	if cfg.Paths.Diagnostics != "/home/builder/stampede/diag" {
		t.Errorf("diagnostics = %s", cfg.Paths.Diagnostics)
	}
	if cfg.Frontend.SocketPath != "/tmp/frontend.sock" {
		t.Errorf("socket_path = %s", cfg.Frontend.SocketPath)
	}
}

func TestExpandVars(t *testing.T) {
	tests := []struct {
		input    string
		vars     map[string]string
		expected string
	}{
		{
			input:    "${HOME}/stampede",
			vars:     map[string]string{"HOME": "/home/user"},
			expected: "/home/user/stampede",
		},
		{
			input:    "${STAMPEDE_TEST_MISSING:-default}",
			vars:     map[string]string{},
			expected: "default",
		},
		{
			input:    "${PRESENT:-default}",
			vars:     map[string]string{"PRESENT": "value"},
			expected: "value",
		},
		{
			input:    "${A}/${B}",
			vars:     map[string]string{"A": "first", "B": "second"},
			expected: "first/second",
		},
		{
			input:    "no variables here",
			vars:     map[string]string{},
			expected: "no variables here",
		},
	}

	for _, tt := range tests {
		result := expandVars(tt.input, tt.vars)
		if result != tt.expected {
			t.Errorf("expandVars(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:   "valid default config",
			modify: func(c *Config) {},
		},
		{
			name:    "invalid environment",
			modify:  func(c *Config) { c.Environment = "invalid" },
			wantErr: "invalid environment",
		},
		{
			name:    "empty root path",
			modify:  func(c *Config) { c.Paths.Root = "" },
			wantErr: "paths.root",
		},
		{
			name:    "empty build root",
			modify:  func(c *Config) { c.Paths.BuildRoot = "" },
			wantErr: "paths.build_root",
		},
		{
			name:    "empty socket path",
			modify:  func(c *Config) { c.Frontend.SocketPath = "" },
			wantErr: "frontend.socket_path",
		},
		{
			name:    "negative timeout",
			modify:  func(c *Config) { c.Frontend.ResponseTimeout = -time.Second },
			wantErr: "frontend.response_timeout",
		},
		{
			name:    "negative workers",
			modify:  func(c *Config) { c.Client.Workers = -1 },
			wantErr: "client.workers",
		},
		{
			name:    "unknown compression",
			modify:  func(c *Config) { c.Client.GraphCompression = "brotli" },
			wantErr: "client.graph_compression",
		},
		{
			name:    "unknown log level",
			modify:  func(c *Config) { c.Client.LogLevel = "chatty" },
			wantErr: "client.log_level",
		},
		{
			name:    "empty dotfile prefix",
			modify:  func(c *Config) { c.DotFiles.Prefix = "" },
			wantErr: "dotfiles.prefix",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Paths.Root = ""
	cfg.Client.Workers = -2

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, field := range []string{"paths.root", "client.workers"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error %q does not mention %s", err, field)
		}
	}
}

func TestEnsurePaths(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := Default()
	cfg.Paths.Root = filepath.Join(tmpDir, "stampede")
	cfg.Paths.Diagnostics = filepath.Join(cfg.Paths.Root, "diagnostics")

	if err := cfg.EnsurePaths(); err != nil {
		t.Fatalf("EnsurePaths failed: %v", err)
	}

	for _, path := range []string{cfg.Paths.Root, cfg.Paths.Diagnostics} {
		info, err := os.Stat(path)
		if err != nil {
			t.Errorf("path %s not created: %v", path, err)
			continue
		}
		if !info.IsDir() {
			t.Errorf("path %s is not a directory", path)
		}
	}
}
