// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version provides build version information for Stampede
// binaries.
//
// # Build information
//
// Four package-level variables are injected at build time via
// -ldflags -X:
//
//   - [GitCommit] -- git SHA of the build
//   - [GitDirty] -- "true" if there were uncommitted changes
//   - [BuildTime] -- UTC timestamp of the build
//   - [Version] -- semantic version string (set manually for releases)
//
// These default to "unknown" / "0.1.0-dev" when not injected, which
// occurs during development builds and test runs.
//
// # Tool version for remote workers
//
// [BuckVersion] turns the build information into the identifier the
// frontend records for a build, so that workers run the same tool. A
// clean build from a known commit is identified by that commit. Anything
// else is a development build, identified by the content hash of the
// running binary.
package version
