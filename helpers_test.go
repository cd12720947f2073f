// helpers_test.go: shared test doubles
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package xanthos

import (
	"sync"
	"sync/atomic"
)

// countingCollector is a MetricsCollector that counts every call.
type countingCollector struct {
	gets, hits, sets, evictions atomic.Int64
	memo                        [3]atomic.Int64
	throttleFired               atomic.Int64
	throttleTrailing            atomic.Int64
	throttleDropped             atomic.Int64
	attempts, failedAttempts    atomic.Int64
	tasks, failedTasks          atomic.Int64
}

func (c *countingCollector) RecordGet(latencyNs int64, hit bool) {
	c.gets.Add(1)
	if hit {
		c.hits.Add(1)
	}
}

func (c *countingCollector) RecordSet(latencyNs int64) { c.sets.Add(1) }

func (c *countingCollector) RecordEviction() { c.evictions.Add(1) }

func (c *countingCollector) RecordMemo(outcome MemoOutcome) { c.memo[outcome].Add(1) }

func (c *countingCollector) RecordThrottle(fired, trailing bool) {
	switch {
	case fired && trailing:
		c.throttleTrailing.Add(1)
		c.throttleFired.Add(1)
	case fired:
		c.throttleFired.Add(1)
	default:
		c.throttleDropped.Add(1)
	}
}

func (c *countingCollector) RecordRetry(attempt int, failed bool) {
	c.attempts.Add(1)
	if failed {
		c.failedAttempts.Add(1)
	}
}

func (c *countingCollector) RecordTask(latencyNs int64, failed bool) {
	c.tasks.Add(1)
	if failed {
		c.failedTasks.Add(1)
	}
}

type logEntry struct {
	level   string
	msg     string
	keyvals []interface{}
}

// recordingLogger is a Logger that keeps every entry.
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) add(level, msg string, keyvals []interface{}) {
	l.mu.Lock()
	l.entries = append(l.entries, logEntry{level, msg, keyvals})
	l.mu.Unlock()
}

func (l *recordingLogger) Debug(msg string, keyvals ...interface{}) { l.add("debug", msg, keyvals) }
func (l *recordingLogger) Info(msg string, keyvals ...interface{})  { l.add("info", msg, keyvals) }
func (l *recordingLogger) Warn(msg string, keyvals ...interface{})  { l.add("warn", msg, keyvals) }
func (l *recordingLogger) Error(msg string, keyvals ...interface{}) { l.add("error", msg, keyvals) }

// count returns how many entries were logged at level with msg.
func (l *recordingLogger) count(level, msg string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.entries {
		if e.level == level && e.msg == msg {
			n++
		}
	}
	return n
}

var (
	_ MetricsCollector = (*countingCollector)(nil)
	_ Logger           = (*recordingLogger)(nil)
)
