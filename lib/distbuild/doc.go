// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package distbuild is the client side of the Stampede distributed
// build protocol. A [Service] creates and starts builds on the frontend
// coordinator, transfers the build graph, uploads file content to the
// coordinator's content-addressable store without re-sending what it
// already holds, propagates the build tool's version and dotfiles, and
// retrieves status, logs and source files.
//
// Every request goes through one checked call: the transport error, the
// coordinator's success flag, and the response type are all verified
// before a payload is read. Failures surface as:
//
//   - *frontend.RemoteOperationError: the coordinator reported failure
//   - frontend.ErrProtocolViolation (via errors.Is): the coordinator or
//     transport broke the protocol, including [*EmptyGraphError]
//   - [*IdentityMismatchError]: a returned build job names another build
//
// None of these are retried.
//
// Upload operations return an [async.Future] and may run concurrently
// with each other and with queries. The service imposes no ordering
// between independently issued operations; [Service.Submit] shows the
// sequencing a full build submission needs.
package distbuild
