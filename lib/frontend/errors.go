// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package frontend

import (
	"errors"
	"fmt"
)

// ErrProtocolViolation is the sentinel matched by every error that
// indicates a transport or coordinator bug rather than a transient
// failure: mismatched response types, malformed frames, and broken
// structural invariants such as unequal list lengths. Such errors are
// never retried.
var ErrProtocolViolation = errors.New("frontend protocol violation")

// ProtocolViolation describes a specific protocol violation. It
// matches ErrProtocolViolation with errors.Is.
type ProtocolViolation struct {
	// Type is the request type being processed, or RequestUnknown if
	// the frame could not be decoded far enough to tell.
	Type   RequestType
	Detail string
}

func (e *ProtocolViolation) Error() string {
	if e.Type == RequestUnknown {
		return "frontend protocol violation: " + e.Detail
	}
	return fmt.Sprintf("frontend protocol violation on %s: %s", e.Type, e.Detail)
}

func (e *ProtocolViolation) Unwrap() error { return ErrProtocolViolation }

// RemoteOperationError is returned when the coordinator answers with
// its success flag false. It carries the coordinator's message
// verbatim.
type RemoteOperationError struct {
	Type    RequestType
	Message string
}

func (e *RemoteOperationError) Error() string {
	return fmt.Sprintf("stampede request of type [%s] failed with error message [%s]", e.Type, e.Message)
}
