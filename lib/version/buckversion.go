// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"os"

	"github.com/bureau-foundation/stampede/lib/frontend"
	"github.com/bureau-foundation/stampede/lib/projectfs"
)

// BuckVersion returns the tool version identifier for the running
// binary.
func BuckVersion() (frontend.BuckVersion, error) {
	return buckVersion(GitCommit, GitDirty, os.Executable)
}

func buckVersion(commit, dirty string, executable func() (string, error)) (frontend.BuckVersion, error) {
	if released(commit, dirty) {
		return frontend.BuckVersion{Type: frontend.VersionGit, GitHash: commit}, nil
	}

	path, err := executable()
	if err != nil {
		return frontend.BuckVersion{}, fmt.Errorf("locating running binary: %w", err)
	}
	hash, err := projectfs.HashFile(path)
	if err != nil {
		return frontend.BuckVersion{}, fmt.Errorf("hashing running binary: %w", err)
	}
	return frontend.BuckVersion{
		Type:                 frontend.VersionDevelopment,
		DevelopmentToolchain: &frontend.DevelopmentToolchain{ContentHash: hash},
	}, nil
}
