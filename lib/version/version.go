// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
	"strings"
)

// Build variables, set with -ldflags:
//
//	go build -ldflags "-X github.com/bureau-foundation/stampede/lib/version.GitCommit=$(git rev-parse HEAD)"
var (
	GitCommit = "unknown"
	GitDirty  = "false"
	BuildTime = "unknown"
	Version   = "0.1.0-dev"
)

// released reports whether commit and dirty describe a build from a
// clean, known commit. Only such builds are announced to workers by
// commit hash.
func released(commit, dirty string) bool {
	return commit != "" && commit != "unknown" && dirty != "true"
}

// Released reports whether the running binary is a release build.
func Released() bool {
	return released(GitCommit, GitDirty)
}

// Full returns the multi-line version report printed by "stampede
// version".
func Full() string {
	commit := GitCommit
	if GitDirty == "true" {
		commit += "-dirty"
	}
	kind := "development"
	if Released() {
		kind = "release"
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "%s (%s build)\n", Version, kind)
	fmt.Fprintf(&builder, "  commit:   %s\n", commit)
	fmt.Fprintf(&builder, "  built:    %s\n", BuildTime)
	fmt.Fprintf(&builder, "  go:       %s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return builder.String()
}
