// interfaces.go: public interfaces for Xanthos
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package xanthos

import "time"

// Logger defines a minimal logging interface with zero overhead.
// Implementations should use structured logging and be allocation-free.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs.
	Debug(msg string, keyvals ...interface{})

	// Info logs an info message with optional key-value pairs.
	Info(msg string, keyvals ...interface{})

	// Warn logs a warning message with optional key-value pairs.
	Warn(msg string, keyvals ...interface{})

	// Error logs an error message with optional key-value pairs.
	Error(msg string, keyvals ...interface{})
}

// NoOpLogger is a logger that does nothing. Used as default to avoid nil checks.
type NoOpLogger struct{}

// Debug does nothing (no-op implementation).
func (NoOpLogger) Debug(msg string, keyvals ...interface{}) {}

// Info does nothing (no-op implementation).
func (NoOpLogger) Info(msg string, keyvals ...interface{}) {}

// Warn does nothing (no-op implementation).
func (NoOpLogger) Warn(msg string, keyvals ...interface{}) {}

// Error does nothing (no-op implementation).
func (NoOpLogger) Error(msg string, keyvals ...interface{}) {}

// TimeSource abstracts wall-clock time and delayed callbacks.
// Every time-dependent primitive reads time and schedules work through it,
// so tests can substitute a ManualClock.
type TimeSource interface {
	// Now returns the current time in nanoseconds since epoch.
	// This method must be very fast and allocation-free.
	Now() int64

	// AfterFunc arranges for f to be called in its own goroutine after d
	// has elapsed. The returned Timer can be used to cancel the call.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a handle to a callback scheduled with TimeSource.AfterFunc.
type Timer interface {
	// Stop prevents the callback from firing. It returns false if the
	// callback has already fired or the timer was already stopped.
	Stop() bool
}

// MemoOutcome classifies a memoized lookup.
type MemoOutcome int

const (
	// MemoMiss means the wrapped function was invoked for the key.
	MemoMiss MemoOutcome = iota

	// MemoHit means the result was served from the cache.
	MemoHit

	// MemoShared means the caller joined a computation already in flight.
	MemoShared
)

// String returns the lowercase name of the outcome.
func (o MemoOutcome) String() string {
	switch o {
	case MemoHit:
		return "hit"
	case MemoShared:
		return "shared"
	default:
		return "miss"
	}
}

// MetricsCollector defines an interface for collecting toolkit metrics.
// Implementations can send metrics to Prometheus, OpenTelemetry, StatsD or
// other monitoring systems (see the otel and prom packages).
//
// Thread-safety:
//   - All methods must be safe for concurrent use
//   - Multiple goroutines will call these methods simultaneously
type MetricsCollector interface {
	// RecordGet records an LRU Get with its latency and hit/miss result.
	RecordGet(latencyNs int64, hit bool)

	// RecordSet records an LRU Set with its latency.
	RecordSet(latencyNs int64)

	// RecordEviction records an LRU capacity eviction.
	RecordEviction()

	// RecordMemo records a memoizer lookup outcome.
	RecordMemo(outcome MemoOutcome)

	// RecordThrottle records a throttled call. fired reports whether the
	// wrapped callback was invoked; trailing reports a deferred invocation.
	RecordThrottle(fired, trailing bool)

	// RecordRetry records one attempt of a retried operation.
	// attempt is zero-based.
	RecordRetry(attempt int, failed bool)

	// RecordTask records the execution of one worker pool task.
	RecordTask(latencyNs int64, failed bool)
}

// NoOpMetricsCollector is a metrics collector that does nothing.
// Used as default to avoid nil checks and ensure zero overhead.
type NoOpMetricsCollector struct{}

// RecordGet does nothing.
func (NoOpMetricsCollector) RecordGet(latencyNs int64, hit bool) {}

// RecordSet does nothing.
func (NoOpMetricsCollector) RecordSet(latencyNs int64) {}

// RecordEviction does nothing.
func (NoOpMetricsCollector) RecordEviction() {}

// RecordMemo does nothing.
func (NoOpMetricsCollector) RecordMemo(outcome MemoOutcome) {}

// RecordThrottle does nothing.
func (NoOpMetricsCollector) RecordThrottle(fired, trailing bool) {}

// RecordRetry does nothing.
func (NoOpMetricsCollector) RecordRetry(attempt int, failed bool) {}

// RecordTask does nothing.
func (NoOpMetricsCollector) RecordTask(latencyNs int64, failed bool) {}
