// config.go: configuration for Xanthos
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package xanthos

import "time"

// Config holds toolkit-wide configuration values, typically loaded from a
// file through HotConfig. Each primitive still takes its own parameters at
// construction; Config is the shared, reloadable source for them.
type Config struct {
	// LRUCapacity is the capacity for caches built from this config.
	// Must be >= 1. Immutable for a live cache.
	LRUCapacity int

	// ThrottleWindow is the throttle window. Must be >= 0.
	// Immutable for a live throttle.
	ThrottleWindow time.Duration

	// Retries is the number of retries after the first attempt.
	// Must be >= 0.
	Retries int

	// RetryDelay is the wait between attempts. Must be >= 0.
	RetryDelay time.Duration

	// RetryMultiplier grows RetryDelay after each failed attempt.
	// 0 or 1 keeps the delay fixed; otherwise must be >= 1.
	RetryMultiplier float64

	// MaxRetryDelay caps the grown delay. 0 means no cap.
	MaxRetryDelay time.Duration

	// Concurrency is the worker pool limit. Must be >= 1.
	Concurrency int
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		LRUCapacity:    DefaultLRUCapacity,
		ThrottleWindow: DefaultThrottleWindow,
		Retries:        DefaultRetries,
		Concurrency:    DefaultConcurrency,
	}
}

// Validate checks every field and returns the first configuration error.
// Unlike a normalizing validator it never substitutes defaults: invalid
// construction parameters must fail fast.
func (c Config) Validate() error {
	if c.LRUCapacity < 1 {
		return NewErrInvalidCapacity(c.LRUCapacity)
	}
	if c.ThrottleWindow < 0 {
		return NewErrInvalidWindow(c.ThrottleWindow)
	}
	if err := c.RetryPolicy().Validate(); err != nil {
		return err
	}
	if c.Concurrency < 1 {
		return NewErrInvalidConcurrency(c.Concurrency)
	}
	return nil
}

// RetryPolicy extracts the retry settings of the config.
func (c Config) RetryPolicy() RetryPolicy {
	return RetryPolicy{
		Retries:    c.Retries,
		Delay:      c.RetryDelay,
		Multiplier: c.RetryMultiplier,
		MaxDelay:   c.MaxRetryDelay,
	}
}

// options holds the ambient dependencies shared by all primitives.
type options struct {
	logger     Logger
	timeSource TimeSource
	metrics    MetricsCollector
}

// Option configures the ambient dependencies of a primitive.
type Option func(*options)

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTimeSource sets the time source. A nil source is ignored.
func WithTimeSource(ts TimeSource) Option {
	return func(o *options) {
		if ts != nil {
			o.timeSource = ts
		}
	}
}

// WithMetricsCollector sets the metrics collector. A nil collector is ignored.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc != nil {
			o.metrics = mc
		}
	}
}

// buildOptions applies opts over the defaults:
//   - Logger: NoOpLogger{}
//   - TimeSource: SystemTimeSource()
//   - MetricsCollector: NoOpMetricsCollector{}
func buildOptions(opts []Option) options {
	o := options{
		logger:     NoOpLogger{},
		timeSource: systemTimeSource{},
		metrics:    NoOpMetricsCollector{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// measured reports whether latency measurements are worth taking.
func (o options) measured() bool {
	_, noop := o.metrics.(NoOpMetricsCollector)
	return !noop
}
