// retry.go: re-invocation of fallible operations with optional backoff
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package xanthos

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"
)

// RetryPolicy describes how a failed operation is retried.
type RetryPolicy struct {
	// Retries is the number of retries after the first attempt, so an
	// operation runs at most Retries+1 times. Must be >= 0.
	Retries int

	// Delay is the wait before the first retry. Zero retries immediately.
	// Must be >= 0.
	Delay time.Duration

	// Multiplier grows the delay after each retry. 0 and 1 keep the delay
	// fixed. Must be 0 or >= 1.
	Multiplier float64

	// MaxDelay caps the grown delay. 0 means no cap. Must be >= 0.
	MaxDelay time.Duration
}

// Validate checks the policy and returns the first configuration error.
func (p RetryPolicy) Validate() error {
	if p.Retries < 0 {
		return NewErrInvalidRetries(p.Retries)
	}
	if p.Delay < 0 {
		return NewErrInvalidDelay("delay", p.Delay)
	}
	if p.MaxDelay < 0 {
		return NewErrInvalidDelay("max_delay", p.MaxDelay)
	}
	if p.Multiplier < 0 || (p.Multiplier > 0 && p.Multiplier < 1) || math.IsNaN(p.Multiplier) {
		return NewErrInvalidMultiplier(p.Multiplier)
	}
	return nil
}

// Attempts returns the maximum number of times an operation runs.
func (p RetryPolicy) Attempts() int {
	return p.Retries + 1
}

// nextDelay returns the delay that follows d.
func (p RetryPolicy) nextDelay(d time.Duration) time.Duration {
	if p.Multiplier <= 1 {
		return d
	}
	next := float64(d) * p.Multiplier
	if next > float64(math.MaxInt64) {
		next = float64(math.MaxInt64)
	}
	grown := time.Duration(next)
	if p.MaxDelay > 0 && grown > p.MaxDelay {
		return p.MaxDelay
	}
	return grown
}

// PermanentError marks a failure that must not be retried.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("permanent: %v", e.Err)
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// Permanent wraps err so that a Retrier stops at the attempt that returned
// it. Permanent(nil) returns nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// Retrier re-invokes fallible operations according to a RetryPolicy.
// The policy can be replaced at runtime; each call uses the policy current
// when it started. A Retrier holds no per-call state and is safe for
// concurrent use.
type Retrier struct {
	policy atomic.Pointer[RetryPolicy]
	opts   options
}

// NewRetrier creates a Retrier for policy.
// Returns a configuration error if the policy is invalid.
func NewRetrier(policy RetryPolicy, opts ...Option) (*Retrier, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	r := &Retrier{opts: buildOptions(opts)}
	r.policy.Store(&policy)
	return r, nil
}

// Policy returns the current policy.
func (r *Retrier) Policy() RetryPolicy {
	return *r.policy.Load()
}

// SetPolicy replaces the policy for calls started afterwards.
// An invalid policy is rejected and the current one kept.
func (r *Retrier) SetPolicy(policy RetryPolicy) error {
	if err := policy.Validate(); err != nil {
		return err
	}
	r.policy.Store(&policy)
	return nil
}

// Reconfigure applies the retry settings of cfg. Implements Reconfigurable.
func (r *Retrier) Reconfigure(cfg Config) error {
	return r.SetPolicy(cfg.RetryPolicy())
}

// Run invokes fn until it succeeds or the policy is exhausted.
// See Retry for the exact semantics.
func (r *Retrier) Run(ctx context.Context, fn func(context.Context) error) error {
	_, err := Retry(ctx, r, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// Retry invokes fn, and on failure retries it up to the policy's Retries,
// waiting the policy's delay between attempts.
//
//   - On success the result is returned immediately.
//   - After the final attempt fails, its error is returned verbatim;
//     earlier failures are discarded.
//   - An error marked with Permanent is returned at once.
//   - If ctx ends between attempts, ctx.Err() is returned. The attempt in
//     progress is never interrupted.
//
// fn is assumed idempotent; no compensation is made for partial effects of
// a failed attempt. A panic in fn counts as a failed attempt with an
// XANTHOS_PANIC_RECOVERED error. A nil r returns XANTHOS_INVALID_CONFIG
// without calling fn.
func Retry[T any](ctx context.Context, r *Retrier, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if r == nil {
		return zero, NewErrInvalidConfig("Retrier", "nil Retrier")
	}
	if fn == nil {
		return zero, NewErrNilFunction("Retry")
	}

	policy := r.Policy()
	attempts := policy.Attempts()
	delay := policy.Delay

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		val, err := runAttempt(ctx, fn)
		if err == nil {
			r.opts.metrics.RecordRetry(attempt, false)
			return val, nil
		}
		r.opts.metrics.RecordRetry(attempt, true)
		lastErr = err

		if IsPermanent(err) {
			r.opts.logger.Warn("attempt failed permanently", "attempt", attempt+1, "error", err)
			return zero, err
		}
		if attempt == attempts-1 {
			break
		}

		r.opts.logger.Warn("attempt failed, retrying",
			"attempt", attempt+1, "attempts", attempts, "delay", delay, "error", err)

		if err := Sleep(ctx, r.opts.timeSource, delay); err != nil {
			return zero, err
		}
		delay = policy.nextDelay(delay)
	}

	r.opts.logger.Error("all attempts failed", "attempts", attempts, "error", lastErr)
	return zero, lastErr
}

// runAttempt calls fn once, converting a panic into an error.
func runAttempt[T any](ctx context.Context, fn func(context.Context) (T, error)) (val T, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			var zero T
			val, err = zero, NewErrPanicRecovered("Retry", rec)
		}
	}()
	return fn(ctx)
}
