// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package diagnostics merges per-source diagnostic documents into a
// single JSON array.
//
// Each input is a JSON document produced by a per-source extraction
// step. Inputs may carry // and /* */ comments and trailing commas;
// they are normalized with github.com/tidwall/jsonc before validation.
// Every input must exist and must be valid JSON. A single missing or
// malformed input fails the whole aggregation, and nothing is written.
package diagnostics
