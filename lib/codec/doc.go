// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides stampede's standard CBOR encoding configuration.
//
// CBOR is used for everything that crosses a process boundary inside
// stampede: the frontend request/response envelope on the socket
// transport, and the serialized build graph before compression. JSON is
// reserved for human-facing output (CLI --json, diagnostics documents).
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2), so the
// same build graph always serializes to the same bytes. That property is
// what lets two clients that uploaded the same graph be compared by hash.
//
// For buffer-oriented operations (graph payloads):
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For stream-oriented operations (sockets):
//
//	encoder := codec.NewEncoder(conn)
//	decoder := codec.NewDecoder(conn)
//
// Protocol types use `cbor` struct tags. Types that also appear in CLI
// --json output use `json` tags only; fxamacker/cbor falls back to them.
package codec
