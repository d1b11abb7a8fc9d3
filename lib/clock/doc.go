// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts the wall clock so that code which stamps
// requests with the current time can be tested deterministically.
// Production code injects [Real]; tests inject [Fake].
package clock
