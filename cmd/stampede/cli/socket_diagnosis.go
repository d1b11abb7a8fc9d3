// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"syscall"
)

// DiagnoseSocketError inspects a coordinator connection error and returns
// a categorized ToolError with an actionable hint. If the error is not a
// recognized socket failure, returns nil and the caller should use its
// own error wrapping.
func DiagnoseSocketError(err error, socketPath string) *ToolError {
	switch {
	case errors.Is(err, syscall.ENOENT):
		return NotFound("no coordinator socket at %s", socketPath).
			WithHint("Check frontend.socket_path in the config file, or pass --socket.\n" +
				"For local development, start a mock coordinator:\n" +
				"  stampede-frontend-mock --socket " + socketPath)

	case errors.Is(err, syscall.ECONNREFUSED):
		return Transient("coordinator at %s is not accepting connections", socketPath).
			WithHint("The socket file exists but nothing is listening on it. " +
				"The coordinator may be restarting; retry shortly.")

	case errors.Is(err, syscall.EACCES), errors.Is(err, syscall.EPERM):
		return Forbidden("permission denied accessing %s", socketPath).
			WithHint("Check the socket's ownership and permissions: ls -la " + socketPath)

	default:
		return nil
	}
}
