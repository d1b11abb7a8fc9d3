// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package async provides the small set of task primitives stampede
// composes its concurrent uploads from:
//
//   - [Submit] runs a task on a [Pool] and returns a [Future].
//   - [Then] runs a continuation on the pool once a parent future
//     succeeds; [ThenAsync] does the same for continuations that
//     themselves return a future.
//   - [JoinAll] waits for several futures and reports the first error;
//     [AllOf] is its future-returning form.
//
// A Pool bounds how many tasks execute at once. Waiting is never done
// while holding a pool slot: continuations wait for their parent, and
// AllOf waits for its inputs, on plain goroutines. A pool of size one
// therefore cannot deadlock on a chain of dependent tasks.
//
// Errors propagate unmodified from the task that produced them through
// every dependent continuation. Nothing is cancelled or rolled back
// when a sibling fails.
package async
