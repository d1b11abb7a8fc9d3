// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package frontend defines the request/response envelope spoken between
// a stampede client and the distributed-build coordinator (the
// "frontend"), and the transports that carry it.
//
// # Envelope
//
// Every exchange is one [Request] answered by one [Response]. A request
// carries exactly one payload; its [RequestType] is derived from the
// payload's Go type, so a request can never declare one type and carry
// another:
//
//	request := frontend.NewRequest(&frontend.StartBuildRequest{StampedeID: id})
//	request.Type() // START_BUILD
//
// Responses work the same way. A successful response always carries the
// payload kind matching its type (payload-less kinds use empty structs
// such as [StoreBuildGraphResponse]); a failed response carries a type
// and an error message only. Whether the response type matches the
// request type is checked by the caller, not here: a coordinator may
// answer with the wrong kind, and the client must notice.
//
// On the wire the envelope is a CBOR map with a numeric "type" tag, an
// "ok" flag (responses only), an optional "error" message, and the
// payload as a nested value. Decoding rejects frames whose payload
// cannot be decoded as the tagged kind, and successful responses with no
// payload, as a [ProtocolViolation].
//
// # Transports
//
// [Transport] is the single synchronous request→response call the rest
// of stampede depends on. [SocketTransport] speaks the envelope over a
// Unix socket, one connection per request, and [SocketServer] is its
// counterpart for serving a [Handler]. Package frontendtest provides an
// in-memory coordinator for tests and local development.
package frontend
