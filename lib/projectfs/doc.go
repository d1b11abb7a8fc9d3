// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package projectfs gives the distributed build client read access to
// the project being built: listing the project root, reading files
// relative to it, and computing content hashes.
//
// Content hashes are BLAKE3 keyed hashes in the "stampede.content"
// domain, hex encoded. They are the keys the frontend's content store
// deduplicates on, so every client must compute them the same way;
// [HashBytes] is the single definition.
package projectfs
