// pool.go: bounded, order-preserving execution of task lists
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package xanthos

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Task is a unit of work run by a WorkerPool.
type Task[T any] func(ctx context.Context) (T, error)

// Result is the settled outcome of one task.
type Result[T any] struct {
	Value T
	Err   error
}

// OK reports whether the task succeeded.
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// WorkerPool runs task lists with at most Limit tasks in flight.
// The limit can be changed at runtime; each run uses the limit current when
// it started. A WorkerPool is stateless between runs and safe for
// concurrent use.
type WorkerPool struct {
	limit atomic.Int64
	opts  options
}

// NewWorkerPool creates a pool with the given concurrency limit.
// Returns XANTHOS_INVALID_CONCURRENCY if limit < 1.
func NewWorkerPool(limit int, opts ...Option) (*WorkerPool, error) {
	if limit < 1 {
		return nil, NewErrInvalidConcurrency(limit)
	}
	p := &WorkerPool{opts: buildOptions(opts)}
	p.limit.Store(int64(limit))
	return p, nil
}

// Limit returns the current concurrency limit.
func (p *WorkerPool) Limit() int {
	return int(p.limit.Load())
}

// SetLimit changes the concurrency limit for runs started afterwards.
func (p *WorkerPool) SetLimit(limit int) error {
	if limit < 1 {
		return NewErrInvalidConcurrency(limit)
	}
	p.limit.Store(int64(limit))
	return nil
}

// Reconfigure applies cfg.Concurrency. Implements Reconfigurable.
func (p *WorkerPool) Reconfigure(cfg Config) error {
	return p.SetLimit(cfg.Concurrency)
}

// workers returns how many workers serve a list of n tasks.
func (p *WorkerPool) workers(n int) int {
	return min(p.Limit(), n)
}

// RunTasks runs tasks with at most p.Limit() in flight and returns their
// results in input order, regardless of completion order.
//
// Each worker repeatedly claims the next unclaimed index and runs that task.
// On the first failure no further tasks are started, tasks already running
// finish, and RunTasks returns (nil, err) with the first error. If ctx ends,
// no further tasks are started and ctx.Err() is returned; running tasks are
// not interrupted. A panicking task fails with XANTHOS_PANIC_RECOVERED.
//
// An empty list completes immediately with an empty result.
func RunTasks[T any](ctx context.Context, p *WorkerPool, tasks []Task[T]) ([]T, error) {
	results := make([]T, len(tasks))
	if len(tasks) == 0 {
		return results, nil
	}

	var (
		next   atomic.Int64
		failed atomic.Bool
		g      errgroup.Group
	)

	for w := p.workers(len(tasks)); w > 0; w-- {
		g.Go(func() error {
			for !failed.Load() {
				if err := ctx.Err(); err != nil {
					failed.Store(true)
					return err
				}
				i := int(next.Add(1) - 1)
				if i >= len(tasks) {
					return nil
				}
				val, err := runTask(ctx, p, i, tasks[i])
				if err != nil {
					failed.Store(true)
					return err
				}
				results[i] = val
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// RunSettled runs every task with at most p.Limit() in flight and returns
// one Result per task in input order. A failure never stops other tasks.
// Tasks not started because ctx ended settle with ctx.Err().
func RunSettled[T any](ctx context.Context, p *WorkerPool, tasks []Task[T]) []Result[T] {
	results := make([]Result[T], len(tasks))
	if len(tasks) == 0 {
		return results
	}

	var (
		next atomic.Int64
		wg   sync.WaitGroup
	)

	for w := p.workers(len(tasks)); w > 0; w-- {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(next.Add(1) - 1)
				if i >= len(tasks) {
					return
				}
				if err := ctx.Err(); err != nil {
					results[i].Err = err
					continue
				}
				results[i].Value, results[i].Err = runTask(ctx, p, i, tasks[i])
			}
		}()
	}

	wg.Wait()
	return results
}

// runTask executes the task at index i, recovering panics and recording
// metrics.
func runTask[T any](ctx context.Context, p *WorkerPool, i int, task Task[T]) (val T, err error) {
	if task == nil {
		return val, NewErrNilFunction("WorkerPool task")
	}

	var start int64
	if p.opts.measured() {
		start = p.opts.timeSource.Now()
	}

	defer func() {
		if r := recover(); r != nil {
			var zero T
			val, err = zero, NewErrPanicRecovered("WorkerPool task", r)
		}
		if err != nil {
			p.opts.logger.Warn("pool task failed", "index", i, "error", err)
		}
		if p.opts.measured() {
			p.opts.metrics.RecordTask(p.opts.timeSource.Now()-start, err != nil)
		}
	}()

	return task(ctx)
}
