// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package distbuild

import (
	"fmt"

	"github.com/bureau-foundation/stampede/lib/frontend"
)

// IdentityMismatchError is returned when the coordinator answers a
// request about one build with the job record of another.
type IdentityMismatchError struct {
	Type      frontend.RequestType
	Requested frontend.StampedeID
	Returned  frontend.StampedeID
}

func (e *IdentityMismatchError) Error() string {
	return fmt.Sprintf("%s for build %q returned build job %q", e.Type, e.Requested.ID, e.Returned.ID)
}

// EmptyGraphError is returned by FetchBuildJobState when the
// coordinator answers with a zero-length graph. A stored graph is never
// empty, so this is a protocol violation.
type EmptyGraphError struct {
	StampedeID frontend.StampedeID
}

func (e *EmptyGraphError) Error() string {
	return fmt.Sprintf("coordinator returned an empty build graph for build %q", e.StampedeID.ID)
}

func (e *EmptyGraphError) Unwrap() error { return frontend.ErrProtocolViolation }
