// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the stampede CLI.
//
// The central type is [Command], which represents a named subcommand with
// optional nested [Command.Subcommands], a flag source (either a
// [pflag.FlagSet] factory or a tagged params struct bound by
// [FlagsFromParams]), and a Run function. Commands are assembled into a
// tree in cmd/stampede/commands and dispatched via [Command.Execute],
// which handles flag parsing, subcommand routing, and structured help
// output with examples.
//
// When a user types an unknown subcommand or flag, the framework computes
// Levenshtein edit distance against all known names and suggests the
// closest match (threshold: distance <= 3). This is implemented in
// suggest.go.
//
// Errors returned by commands can be categorized with [ToolError]
// constructors ([Validation], [NotFound], [Transient], ...), and
// [DiagnoseSocketError] turns coordinator connection failures into
// errors with an actionable hint.
package cli
