// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/stampede/lib/frontend"
	"github.com/bureau-foundation/stampede/lib/projectfs"
)

func TestFull(t *testing.T) {
	savedCommit, savedDirty := GitCommit, GitDirty
	t.Cleanup(func() { GitCommit, GitDirty = savedCommit, savedDirty })

	GitCommit, GitDirty = "abc1234", "true"
	full := Full()
	if !strings.Contains(full, "abc1234-dirty") || !strings.Contains(full, "development build") {
		t.Errorf("Full() = %q, want dirty development build", full)
	}
	if Released() {
		t.Error("dirty build reported as released")
	}

	GitDirty = "false"
	full = Full()
	if strings.Contains(full, "dirty") || !strings.Contains(full, "release build") {
		t.Errorf("Full() = %q, want clean release build", full)
	}
	if !strings.Contains(full, "go:") {
		t.Errorf("Full() = %q, want Go toolchain line", full)
	}
}

func fakeBinary(t *testing.T, content string) func() (string, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stampede")
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return func() (string, error) { return path, nil }
}

func TestBuckVersionClean(t *testing.T) {
	version, err := buckVersion("0123456789abcdef", "false", func() (string, error) {
		t.Fatal("clean build should not hash its binary")
		return "", nil
	})
	if err != nil {
		t.Fatalf("buckVersion: %v", err)
	}
	want := frontend.BuckVersion{Type: frontend.VersionGit, GitHash: "0123456789abcdef"}
	if version != want {
		t.Errorf("version = %+v, want %+v", version, want)
	}
}

func TestBuckVersionDevelopment(t *testing.T) {
	for _, test := range []struct{ name, commit, dirty string }{
		{"dirty", "0123456789abcdef", "true"},
		{"unknown commit", "unknown", "false"},
		{"empty commit", "", "false"},
	} {
		t.Run(test.name, func(t *testing.T) {
			version, err := buckVersion(test.commit, test.dirty, fakeBinary(t, "binary bytes"))
			if err != nil {
				t.Fatalf("buckVersion: %v", err)
			}
			if version.Type != frontend.VersionDevelopment || version.GitHash != "" {
				t.Fatalf("version = %+v, want development", version)
			}
			if version.DevelopmentToolchain == nil || version.DevelopmentToolchain.ContentHash != projectfs.HashBytes([]byte("binary bytes")) {
				t.Errorf("toolchain = %+v, want hash of the binary", version.DevelopmentToolchain)
			}
		})
	}
}

func TestBuckVersionErrors(t *testing.T) {
	errNoExecutable := errors.New("no executable")
	if _, err := buckVersion("unknown", "false", func() (string, error) { return "", errNoExecutable }); !errors.Is(err, errNoExecutable) {
		t.Errorf("error = %v, want wrapped executable error", err)
	}
	missing := func() (string, error) { return filepath.Join(t.TempDir(), "gone"), nil }
	if _, err := buckVersion("unknown", "false", missing); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want not-exist", err)
	}
}

func TestBuckVersionRunningBinary(t *testing.T) {
	version, err := BuckVersion()
	if err != nil {
		t.Fatalf("BuckVersion: %v", err)
	}
	if version.Type == frontend.VersionUnknown {
		t.Errorf("version type is unknown: %+v", version)
	}
}
