// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package async

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// Pool bounds the number of concurrently executing tasks. It is safe
// for concurrent use and needs no shutdown.
type Pool struct {
	slots *semaphore.Weighted
	size  int
}

// NewPool returns a pool running at most workers tasks at once. A
// non-positive count means GOMAXPROCS.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{
		slots: semaphore.NewWeighted(int64(workers)),
		size:  workers,
	}
}

// Size returns the maximum number of concurrently executing tasks.
func (p *Pool) Size() int { return p.size }

// run executes task while holding one slot. Acquisition fails only if
// ctx is done first.
func (p *Pool) run(ctx context.Context, task func() error) error {
	if err := p.slots.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.slots.Release(1)
	return task()
}
