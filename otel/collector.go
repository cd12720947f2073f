// collector.go: OpenTelemetry metrics collector for xanthos primitives
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package otel

import (
	"context"
	"errors"

	"github.com/agilira/xanthos"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Collector implements xanthos.MetricsCollector using OpenTelemetry.
//
// Latencies are recorded to histograms so any OTEL backend can compute
// percentiles; outcomes are recorded to counters with an attribute that
// distinguishes them.
//
// Thread-safety: Safe for concurrent use by multiple goroutines.
type Collector struct {
	getLatency  metric.Int64Histogram // LRU Get latency
	setLatency  metric.Int64Histogram // LRU Set latency
	taskLatency metric.Int64Histogram // worker pool task latency
	hits        metric.Int64Counter   // LRU hits
	misses      metric.Int64Counter   // LRU misses
	evictions   metric.Int64Counter   // LRU evictions
	memo        metric.Int64Counter   // memoizer outcomes, by "outcome"
	throttle    metric.Int64Counter   // throttle calls, by "result"
	attempts    metric.Int64Counter   // retry attempts, by "result"
	tasks       metric.Int64Counter   // pool tasks, by "result"

	// Pre-built attribute options, shared by all recordings
	memoOpts   [3]metric.AddOption
	dropped    metric.AddOption
	leading    metric.AddOption
	trailing   metric.AddOption
	succeeded  metric.AddOption
	failed     metric.AddOption
	retried    metric.AddOption
	firstTry   metric.AddOption
	taskOK     metric.RecordOption
	taskFailed metric.RecordOption
}

// Options for configuring Collector.
type Options struct {
	// MeterName is the name of the OpenTelemetry meter.
	// Default: "github.com/agilira/xanthos"
	MeterName string
}

// Option is a functional option for configuring Collector.
type Option func(*Options)

// WithMeterName sets a custom meter name.
func WithMeterName(name string) Option {
	return func(o *Options) {
		o.MeterName = name
	}
}

// NewCollector creates a new OpenTelemetry metrics collector.
//
// Returns an error if provider is nil or an instrument cannot be created.
//
// Example:
//
//	exporter, _ := prometheus.New()
//	provider := metric.NewMeterProvider(metric.WithReader(exporter))
//	collector, err := otel.NewCollector(provider)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cache, _ := xanthos.NewLRU[string, int](1000, xanthos.WithMetricsCollector(collector))
func NewCollector(provider metric.MeterProvider, opts ...Option) (*Collector, error) {
	if provider == nil {
		return nil, errors.New("meter provider cannot be nil")
	}

	options := Options{
		MeterName: "github.com/agilira/xanthos",
	}
	for _, opt := range opts {
		opt(&options)
	}

	meter := provider.Meter(options.MeterName)
	c := &Collector{}

	var err error
	histograms := []struct {
		dst  *metric.Int64Histogram
		name string
		desc string
	}{
		{&c.getLatency, "xanthos_lru_get_latency_ns", "Latency of LRU Get operations in nanoseconds"},
		{&c.setLatency, "xanthos_lru_set_latency_ns", "Latency of LRU Set operations in nanoseconds"},
		{&c.taskLatency, "xanthos_pool_task_latency_ns", "Latency of worker pool tasks in nanoseconds"},
	}
	for _, h := range histograms {
		*h.dst, err = meter.Int64Histogram(h.name, metric.WithDescription(h.desc), metric.WithUnit("ns"))
		if err != nil {
			return nil, err
		}
	}

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&c.hits, "xanthos_lru_hits_total", "Total number of LRU hits"},
		{&c.misses, "xanthos_lru_misses_total", "Total number of LRU misses"},
		{&c.evictions, "xanthos_lru_evictions_total", "Total number of LRU evictions"},
		{&c.memo, "xanthos_memo_calls_total", "Total number of memoized calls by outcome"},
		{&c.throttle, "xanthos_throttle_calls_total", "Total number of throttled calls by result"},
		{&c.attempts, "xanthos_retry_attempts_total", "Total number of retry attempts by result"},
		{&c.tasks, "xanthos_pool_tasks_total", "Total number of worker pool tasks by result"},
	}
	for _, ct := range counters {
		*ct.dst, err = meter.Int64Counter(ct.name, metric.WithDescription(ct.desc))
		if err != nil {
			return nil, err
		}
	}

	for _, o := range []xanthos.MemoOutcome{xanthos.MemoMiss, xanthos.MemoHit, xanthos.MemoShared} {
		c.memoOpts[o] = metric.WithAttributes(attribute.String("outcome", o.String()))
	}
	c.dropped = metric.WithAttributes(attribute.String("result", "dropped"))
	c.leading = metric.WithAttributes(attribute.String("result", "leading"))
	c.trailing = metric.WithAttributes(attribute.String("result", "trailing"))
	c.succeeded = metric.WithAttributes(attribute.String("result", "success"))
	c.failed = metric.WithAttributes(attribute.String("result", "failure"))
	c.firstTry = metric.WithAttributes(attribute.String("result", "success"), attribute.Bool("retried", false))
	c.retried = metric.WithAttributes(attribute.String("result", "success"), attribute.Bool("retried", true))
	c.taskOK = metric.WithAttributes(attribute.String("result", "success"))
	c.taskFailed = metric.WithAttributes(attribute.String("result", "failure"))

	return c, nil
}

// RecordGet records an LRU Get: latency histogram plus hit or miss counter.
func (c *Collector) RecordGet(latencyNs int64, hit bool) {
	ctx := context.Background()
	c.getLatency.Record(ctx, latencyNs)
	if hit {
		c.hits.Add(ctx, 1)
	} else {
		c.misses.Add(ctx, 1)
	}
}

// RecordSet records an LRU Set latency.
func (c *Collector) RecordSet(latencyNs int64) {
	c.setLatency.Record(context.Background(), latencyNs)
}

// RecordEviction records an LRU eviction.
func (c *Collector) RecordEviction() {
	c.evictions.Add(context.Background(), 1)
}

// RecordMemo records a memoized call outcome.
func (c *Collector) RecordMemo(outcome xanthos.MemoOutcome) {
	if int(outcome) < 0 || int(outcome) >= len(c.memoOpts) {
		return
	}
	c.memo.Add(context.Background(), 1, c.memoOpts[outcome])
}

// RecordThrottle records a throttled call: dropped into a pending trailing
// invocation, or run on the leading or trailing edge.
func (c *Collector) RecordThrottle(fired, trailing bool) {
	opt := c.dropped
	switch {
	case fired && trailing:
		opt = c.trailing
	case fired:
		opt = c.leading
	}
	c.throttle.Add(context.Background(), 1, opt)
}

// RecordRetry records one retry attempt. Successes carry whether they
// needed a retry.
func (c *Collector) RecordRetry(attempt int, failed bool) {
	opt := c.firstTry
	switch {
	case failed:
		opt = c.failed
	case attempt > 0:
		opt = c.retried
	}
	c.attempts.Add(context.Background(), 1, opt)
}

// RecordTask records a worker pool task.
func (c *Collector) RecordTask(latencyNs int64, failed bool) {
	ctx := context.Background()
	if failed {
		c.taskLatency.Record(ctx, latencyNs, c.taskFailed)
		c.tasks.Add(ctx, 1, c.failed)
		return
	}
	c.taskLatency.Record(ctx, latencyNs, c.taskOK)
	c.tasks.Add(ctx, 1, c.succeeded)
}

// Compile-time interface check
var _ xanthos.MetricsCollector = (*Collector)(nil)
