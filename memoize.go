// memoize.go: synchronous memoization of pure functions
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package xanthos

import (
	"sync"
	"sync/atomic"
)

// Memoizer wraps a pure function with an unbounded cache keyed by a
// projection of its arguments. The wrapped function runs at most once per
// distinct key for the lifetime of the Memoizer, even under concurrent calls:
// callers racing on the same key wait for the first computation.
//
// Multiple arguments are passed as a single value, typically a struct.
// The cache never evicts; only use Memoizer with deterministic, side-effect
// free functions and control its lifetime.
type Memoizer[A any, K comparable, R any] struct {
	fn      func(A) R
	key     KeyFunc[A, K]
	mu      sync.Mutex
	entries map[K]*memoEntry[R]
	opts    options
}

type memoEntry[R any] struct {
	once sync.Once
	val  R
	done atomic.Bool // set once fn returned without panicking
}

// Memoize wraps fn using StructuralKey to derive keys.
// Returns XANTHOS_NIL_FUNCTION if fn is nil.
func Memoize[A any, R any](fn func(A) R, opts ...Option) (*Memoizer[A, string, R], error) {
	return MemoizeBy[A, string, R](fn, StructuralKey[A], opts...)
}

// MemoizeBy wraps fn using a caller-supplied key function.
// Returns XANTHOS_NIL_FUNCTION if fn or key is nil.
func MemoizeBy[A any, K comparable, R any](fn func(A) R, key KeyFunc[A, K], opts ...Option) (*Memoizer[A, K, R], error) {
	if fn == nil {
		return nil, NewErrNilFunction("Memoize")
	}
	if key == nil {
		return nil, NewErrNilFunction("Memoize.key")
	}
	return &Memoizer[A, K, R]{
		fn:      fn,
		key:     key,
		entries: make(map[K]*memoEntry[R]),
		opts:    buildOptions(opts),
	}, nil
}

// Call returns fn(args), computing it only if the key of args has not been
// seen before. If fn panics the entry is dropped, the panic propagates to
// this caller, and any caller waiting on the same key computes afresh.
//
// fn may call Call recursively for different keys; a recursive call for
// the key currently being computed deadlocks.
func (m *Memoizer[A, K, R]) Call(args A) R {
	key := m.key(args)
	for {
		e := m.entry(key)
		if e.done.Load() {
			m.opts.metrics.RecordMemo(MemoHit)
			return e.val
		}

		ran := false
		e.once.Do(func() {
			ran = true
			m.compute(key, e, args)
		})
		if e.done.Load() {
			if ran {
				m.opts.metrics.RecordMemo(MemoMiss)
			} else {
				m.opts.metrics.RecordMemo(MemoShared)
			}
			return e.val
		}
	}
}

// entry returns the entry for key, creating it if absent.
func (m *Memoizer[A, K, R]) entry(key K) *memoEntry[R] {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, found := m.entries[key]; found {
		return e
	}
	e := &memoEntry[R]{}
	m.entries[key] = e
	return e
}

func (m *Memoizer[A, K, R]) compute(key K, e *memoEntry[R], args A) {
	defer func() {
		if !e.done.Load() {
			m.mu.Lock()
			if m.entries[key] == e {
				delete(m.entries, key)
			}
			m.mu.Unlock()
		}
	}()
	e.val = m.fn(args)
	e.done.Store(true)
}

// Len returns the number of cached keys.
func (m *Memoizer[A, K, R]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Forget drops the cached result for the key of args.
func (m *Memoizer[A, K, R]) Forget(args A) {
	key := m.key(args)
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
}

// Clear drops every cached result.
func (m *Memoizer[A, K, R]) Clear() {
	m.mu.Lock()
	m.entries = make(map[K]*memoEntry[R])
	m.mu.Unlock()
}
