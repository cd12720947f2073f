// once.go: run-at-most-once wrapper
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package xanthos

import "sync"

// Once wraps fn so that it executes at most once. Every call, concurrent or
// later, returns the outcome of that single execution, including its error.
//
// If fn panics, the panic propagates to the caller that ran it and fn is
// considered not executed: the next call runs it again.
//
// Returns XANTHOS_NIL_FUNCTION if fn is nil.
func Once[T any](fn func() (T, error)) (func() (T, error), error) {
	if fn == nil {
		return nil, NewErrNilFunction("Once")
	}

	var (
		mu   sync.Mutex
		done bool
		val  T
		err  error
	)

	return func() (T, error) {
		mu.Lock()
		defer mu.Unlock()

		if !done {
			val, err = fn()
			done = true
		}
		return val, err
	}, nil
}
