// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package async

import (
	"context"
	"fmt"
	"runtime/debug"

	"golang.org/x/sync/errgroup"
)

// Future is the eventual result of an asynchronous task. It completes
// exactly once.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Awaitable is any future whose completion can be waited on without
// caring about its value.
type Awaitable interface {
	Await(ctx context.Context) error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func (f *Future[T]) complete(value T, err error) {
	f.value = value
	f.err = err
	close(f.done)
}

// Failed returns a future that has already failed with err.
func Failed[T any](err error) *Future[T] {
	f := newFuture[T]()
	var zero T
	f.complete(zero, err)
	return f
}

// Done is closed when the future completes.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Wait blocks until the future completes or ctx is done. A ctx error
// abandons the wait only; the task keeps running.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Await is Wait without the value.
func (f *Future[T]) Await(ctx context.Context) error {
	_, err := f.Wait(ctx)
	return err
}

// Submit runs task on pool and returns its future. ctx is passed to the
// task and bounds the wait for a pool slot.
func Submit[T any](ctx context.Context, pool *Pool, task func(ctx context.Context) (T, error)) *Future[T] {
	f := newFuture[T]()
	go func() {
		var value T
		err := pool.run(ctx, func() error {
			var taskErr error
			value, taskErr = guarded(ctx, task)
			return taskErr
		})
		f.complete(value, err)
	}()
	return f
}

// Then runs next on pool with the parent's value once parent succeeds.
// If parent fails, the returned future fails with the same error and
// next never runs.
func Then[T, U any](ctx context.Context, pool *Pool, parent *Future[T], next func(ctx context.Context, value T) (U, error)) *Future[U] {
	f := newFuture[U]()
	go func() {
		var zero U
		value, err := parent.Wait(ctx)
		if err != nil {
			f.complete(zero, err)
			return
		}
		var result U
		err = pool.run(ctx, func() error {
			var taskErr error
			result, taskErr = guarded(ctx, func(ctx context.Context) (U, error) {
				return next(ctx, value)
			})
			return taskErr
		})
		f.complete(result, err)
	}()
	return f
}

// ThenAsync is Then for continuations that start further asynchronous
// work. The returned future completes when the future produced by next
// completes. next runs on the pool; the inner future is awaited off it.
func ThenAsync[T, U any](ctx context.Context, pool *Pool, parent *Future[T], next func(ctx context.Context, value T) *Future[U]) *Future[U] {
	started := Then(ctx, pool, parent, func(ctx context.Context, value T) (*Future[U], error) {
		return next(ctx, value), nil
	})
	f := newFuture[U]()
	go func() {
		var zero U
		inner, err := started.Wait(ctx)
		if err != nil {
			f.complete(zero, err)
			return
		}
		if inner == nil {
			f.complete(zero, fmt.Errorf("async: continuation returned a nil future"))
			return
		}
		f.complete(inner.Wait(ctx))
	}()
	return f
}

// JoinAll waits for every future and returns the first error observed,
// or nil if all succeeded. It always waits for all of them (or for ctx).
func JoinAll(ctx context.Context, futures ...Awaitable) error {
	var group errgroup.Group
	for _, future := range futures {
		group.Go(func() error {
			return future.Await(ctx)
		})
	}
	return group.Wait()
}

// AllOf returns a future that completes once every input has completed,
// failing with the first error JoinAll observes.
func AllOf(ctx context.Context, futures ...Awaitable) *Future[struct{}] {
	f := newFuture[struct{}]()
	go func() {
		f.complete(struct{}{}, JoinAll(ctx, futures...))
	}()
	return f
}

// guarded converts a panicking task into an error so that one bad task
// cannot leave its future incomplete forever.
func guarded[T any](ctx context.Context, task func(ctx context.Context) (T, error)) (value T, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("async task panicked: %v\n%s", recovered, debug.Stack())
		}
	}()
	return task(ctx)
}
