// clock.go: time sources for Xanthos primitives
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package xanthos

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/agilira/go-timecache"
)

// systemTimeSource is the default time source.
// Now uses go-timecache for allocation-free time reads; timers are real.
type systemTimeSource struct{}

func (systemTimeSource) Now() int64 {
	return timecache.CachedTimeNano()
}

func (systemTimeSource) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemTimeSource returns the process-wide wall-clock TimeSource.
func SystemTimeSource() TimeSource {
	return systemTimeSource{}
}

// Sleep waits for d on the given time source, or until ctx is done.
// It returns ctx.Err() when the context ends first.
func Sleep(ctx context.Context, ts TimeSource, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	done := make(chan struct{})
	timer := ts.AfterFunc(d, func() { close(done) })

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	}
}

// ManualClock is a TimeSource whose time only moves when Advance is called.
// Callbacks scheduled with AfterFunc run synchronously inside Advance, in
// deadline order, after the clock lock is released.
//
// The zero value is not ready for use; create one with NewManualClock.
type ManualClock struct {
	mu     sync.Mutex
	now    int64
	seq    uint64
	timers []*manualTimer
}

type manualTimer struct {
	clock    *ManualClock
	deadline int64
	seq      uint64
	fn       func()
}

// NewManualClock creates a clock reading start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start.UnixNano()}
}

// Now returns the clock's current time in nanoseconds.
func (c *ManualClock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc schedules f to run once the clock has been advanced by d.
func (c *ManualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	t := &manualTimer{
		clock:    c,
		deadline: c.now + int64(d),
		seq:      c.seq,
		fn:       f,
	}
	c.timers = append(c.timers, t)
	return t
}

// Pending returns the number of armed timers.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// Advance moves the clock forward by d and fires every timer whose deadline
// is reached. Timers armed by a firing callback are honored if they fall due
// within the same advance.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + int64(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		t := c.nextDueLocked(target)
		if t == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		if t.deadline > c.now {
			c.now = t.deadline
		}
		c.mu.Unlock()

		t.fn()
	}
}

// nextDueLocked pops the earliest timer due at or before target.
func (c *ManualClock) nextDueLocked(target int64) *manualTimer {
	if len(c.timers) == 0 {
		return nil
	}
	sort.Slice(c.timers, func(i, j int) bool {
		if c.timers[i].deadline == c.timers[j].deadline {
			return c.timers[i].seq < c.timers[j].seq
		}
		return c.timers[i].deadline < c.timers[j].deadline
	})
	t := c.timers[0]
	if t.deadline > target {
		return nil
	}
	c.timers = c.timers[1:]
	return t
}

func (t *manualTimer) Stop() bool {
	c := t.clock
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, armed := range c.timers {
		if armed == t {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)
			return true
		}
	}
	return false
}
