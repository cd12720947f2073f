// memoize_async.go: single-flight memoization of fallible operations
//
// This file implements AsyncMemoizer, which deduplicates concurrent calls
// for the same key into one execution, caches successful results for the
// lifetime of the memoizer and evicts failures so the next call retries.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package xanthos

import (
	"context"
	"sync"
)

// inflightCall is the single shared computation registered under a key.
//
// done is closed when the operation settles, broadcasting to every waiter
// without spawning goroutines per waiter. val and err are written before
// done is closed and never after.
type inflightCall[R any] struct {
	done chan struct{}
	val  R
	err  error
}

// AsyncMemoizer wraps a fallible operation so that:
//   - the first call for a key starts the operation and registers a pending call
//   - calls for the same key issued before it settles share its outcome
//   - a success is retained and served to every later call
//   - a failure is removed before being delivered, so the next call starts afresh
//
// Registration of the pending call happens under a mutex with no intervening
// suspension, so at most one pending call exists per key. Unrelated keys run
// fully concurrently.
type AsyncMemoizer[A any, K comparable, R any] struct {
	fn    func(context.Context, A) (R, error)
	key   KeyFunc[A, K]
	mu    sync.Mutex
	calls map[K]*inflightCall[R]
	opts  options
}

// MemoizeAsync wraps fn using StructuralKey to derive keys.
// Returns XANTHOS_NIL_FUNCTION if fn is nil.
func MemoizeAsync[A any, R any](fn func(context.Context, A) (R, error), opts ...Option) (*AsyncMemoizer[A, string, R], error) {
	return MemoizeAsyncBy[A, string, R](fn, StructuralKey[A], opts...)
}

// MemoizeAsyncBy wraps fn using a caller-supplied key function.
// Returns XANTHOS_NIL_FUNCTION if fn or key is nil.
func MemoizeAsyncBy[A any, K comparable, R any](fn func(context.Context, A) (R, error), key KeyFunc[A, K], opts ...Option) (*AsyncMemoizer[A, K, R], error) {
	if fn == nil {
		return nil, NewErrNilFunction("MemoizeAsync")
	}
	if key == nil {
		return nil, NewErrNilFunction("MemoizeAsync.key")
	}
	return &AsyncMemoizer[A, K, R]{
		fn:    fn,
		key:   key,
		calls: make(map[K]*inflightCall[R]),
		opts:  buildOptions(opts),
	}, nil
}

// Call returns the memoized outcome of fn(ctx, args).
//
// The caller that registers the pending call runs fn synchronously
// with its own ctx; the outcome is shared with every caller that joined.
// A joining caller whose ctx ends stops waiting and gets ctx.Err(), while
// the operation itself keeps running to completion.
//
// A panic in fn is converted to an XANTHOS_PANIC_RECOVERED error and
// treated like any other failure.
//
// Example:
//
//	users, _ := xanthos.MemoizeAsync(func(ctx context.Context, id int) (*User, error) {
//	    return fetchUserFromDB(ctx, id)
//	})
//	user, err := users.Call(ctx, 123)
func (m *AsyncMemoizer[A, K, R]) Call(ctx context.Context, args A) (R, error) {
	key := m.key(args)

	m.mu.Lock()
	call, found := m.calls[key]
	if !found {
		call = &inflightCall[R]{done: make(chan struct{})}
		m.calls[key] = call
	}
	m.mu.Unlock()

	if !found {
		m.opts.metrics.RecordMemo(MemoMiss)
		m.run(ctx, key, call, args)
		return call.val, call.err
	}

	// Already settled: a cached success, or a failure settled after the lookup.
	select {
	case <-call.done:
		m.opts.metrics.RecordMemo(MemoHit)
		return call.val, call.err
	default:
	}

	m.opts.metrics.RecordMemo(MemoShared)

	// If already cancelled, return immediately without entering select
	if err := ctx.Err(); err != nil {
		var zero R
		return zero, err
	}

	select {
	case <-call.done:
		return call.val, call.err
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// run executes fn for a freshly registered call and settles it.
func (m *AsyncMemoizer[A, K, R]) run(ctx context.Context, key K, call *inflightCall[R], args A) {
	func() {
		defer func() {
			if r := recover(); r != nil {
				var zero R
				call.val, call.err = zero, NewErrPanicRecovered("AsyncMemoizer.Call", r)
			}
		}()
		call.val, call.err = m.fn(ctx, args)
	}()

	if call.err != nil {
		// Remove BEFORE closing done so that no caller can observe a
		// settled failure under the key.
		m.mu.Lock()
		if m.calls[key] == call {
			delete(m.calls, key)
		}
		m.mu.Unlock()
		m.opts.logger.Debug("memoized call failed; entry evicted", "key", key, "error", call.err)
	}

	close(call.done)
}

// Len returns the number of registered keys, pending or resolved.
func (m *AsyncMemoizer[A, K, R]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Forget drops the entry for the key of args. A pending call keeps running
// and still delivers its outcome to the callers that already joined it.
func (m *AsyncMemoizer[A, K, R]) Forget(args A) {
	key := m.key(args)
	m.mu.Lock()
	delete(m.calls, key)
	m.mu.Unlock()
}

// Clear drops every entry. Pending calls behave as with Forget.
func (m *AsyncMemoizer[A, K, R]) Clear() {
	m.mu.Lock()
	m.calls = make(map[K]*inflightCall[R])
	m.mu.Unlock()
}
