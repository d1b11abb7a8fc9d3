// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package buildgraph holds the build graph snapshot a client hands to
// the frontend ([BuildJobState]) and its transfer encoding.
//
// A snapshot is owned by the build process that produced it and may be
// in use elsewhere while it is being uploaded. Anything that needs a
// modified version works on [BuildJobState.DeepCopy]; in particular
// [BuildJobState.StripContents] is only ever applied to a copy.
//
// The transfer encoding is a 5-byte header followed by a body:
//
//	offset 0: compression tag (0 none, 1 lz4, 2 zstd)
//	offset 1: uncompressed body length, uint32 big-endian
//	offset 5: body (deterministic CBOR of the snapshot, compressed)
//
// Compression falls back to none when it would not shrink the body.
package buildgraph
