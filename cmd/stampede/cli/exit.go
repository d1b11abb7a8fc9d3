// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ExitError makes the process exit with Code and no "error:" line.
// Commands return it when a non-zero exit is an answer rather than a
// failure, such as "build status --wait" on a build that failed; the
// command has already printed its result.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// ExitCode is checked by main to tell handled exits from errors.
func (e *ExitError) ExitCode() int {
	return e.Code
}
