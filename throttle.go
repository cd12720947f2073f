// throttle.go: leading+trailing rate limiting of a callback
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package xanthos

import (
	"sync"
	"time"
)

// Throttle limits invocations of a callback to at most one per window.
//
// A call arriving when the callback has not run within the last window runs
// it immediately with the call's arguments (leading edge). Otherwise the
// arguments are remembered and a single deferred invocation is armed for the
// end of the window; it runs with the most recent arguments seen by then
// (trailing edge). Calls made while the deferred invocation is armed only
// replace the remembered arguments.
//
// Leading invocations run on the calling goroutine, trailing invocations on
// the time source's timer goroutine. Throttle is safe for concurrent use.
type Throttle[A any] struct {
	fn     func(A)
	window time.Duration
	opts   options

	mu          sync.Mutex
	fired       bool  // fn has run at least once
	last        int64 // time of the last invocation, nanoseconds
	timer       Timer // armed trailing invocation, nil if none
	gen         uint64
	pendingArgs A
}

// NewThrottle wraps fn so that it runs at most once per window.
// Returns XANTHOS_NIL_FUNCTION if fn is nil and XANTHOS_INVALID_WINDOW if
// window is negative. A zero window never delays a call.
func NewThrottle[A any](fn func(A), window time.Duration, opts ...Option) (*Throttle[A], error) {
	if fn == nil {
		return nil, NewErrNilFunction("Throttle")
	}
	if window < 0 {
		return nil, NewErrInvalidWindow(window)
	}
	return &Throttle[A]{
		fn:     fn,
		window: window,
		opts:   buildOptions(opts),
	}, nil
}

// Call submits an invocation attempt with args.
func (t *Throttle[A]) Call(args A) {
	t.mu.Lock()
	now := t.opts.timeSource.Now()
	remaining := time.Duration(t.last + int64(t.window) - now)

	if !t.fired || remaining <= 0 {
		if t.timer != nil {
			t.timer.Stop()
			t.timer = nil
			t.gen++
		}
		var zero A
		t.pendingArgs = zero
		t.fired = true
		t.last = now
		t.mu.Unlock()

		t.opts.metrics.RecordThrottle(true, false)
		t.fn(args)
		return
	}

	t.pendingArgs = args
	if t.timer == nil {
		t.gen++
		gen := t.gen
		t.timer = t.opts.timeSource.AfterFunc(remaining, func() { t.fireTrailing(gen) })
		t.opts.logger.Debug("throttle trailing call armed", "delay", remaining)
	}
	t.mu.Unlock()

	t.opts.metrics.RecordThrottle(false, false)
}

// fireTrailing runs the deferred invocation armed as generation gen.
// Stale generations (stopped or superseded timers) are ignored.
func (t *Throttle[A]) fireTrailing(gen uint64) {
	t.mu.Lock()
	if t.timer == nil || t.gen != gen {
		t.mu.Unlock()
		return
	}
	t.timer = nil
	t.last = t.opts.timeSource.Now()
	args := t.pendingArgs
	var zero A
	t.pendingArgs = zero
	t.mu.Unlock()

	t.opts.logger.Debug("throttle trailing call fired")
	t.opts.metrics.RecordThrottle(true, true)
	t.fn(args)
}

// Pending reports whether a trailing invocation is armed.
func (t *Throttle[A]) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}

// Stop disarms the pending trailing invocation, discarding its arguments.
// It reports whether an invocation was discarded. The throttle stays usable.
func (t *Throttle[A]) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer == nil {
		return false
	}
	t.timer.Stop()
	t.timer = nil
	t.gen++
	var zero A
	t.pendingArgs = zero
	return true
}

// Window returns the throttle window.
func (t *Throttle[A]) Window() time.Duration {
	return t.window
}
