// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for stampede packages.
//
// [SocketDir] creates a short temporary directory for Unix sockets,
// which have a 108-byte path limit that t.TempDir() can exceed.
//
// [WriteTree] lays out a project root from a map of relative paths to
// contents, for tests that enumerate dotfiles or aggregate diagnostics.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-timeout
// pattern so tests waiting on futures never hang forever.
//
// All helpers call t.Fatalf on failure rather than returning errors.
package testutil
