// collector.go: Prometheus metrics collector for xanthos primitives
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

// Package prom implements xanthos.MetricsCollector on the Prometheus client.
//
// Usage:
//
//	collector, err := prom.NewCollector(prometheus.DefaultRegisterer)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cache, _ := xanthos.NewLRU[string, []byte](10_000, xanthos.WithMetricsCollector(collector))
//	http.Handle("/metrics", promhttp.Handler())
package prom

import (
	"errors"
	"time"

	"github.com/agilira/xanthos"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultNamespace is the metric namespace used when none is configured.
const DefaultNamespace = "xanthos"

// Collector records xanthos metrics to Prometheus counters and histograms.
// Latencies are exported in seconds following Prometheus conventions.
type Collector struct {
	getLatency  prometheus.Histogram
	setLatency  prometheus.Histogram
	taskLatency *prometheus.HistogramVec
	hits        prometheus.Counter
	misses      prometheus.Counter
	evictions   prometheus.Counter
	memo        *prometheus.CounterVec
	throttle    *prometheus.CounterVec
	attempts    *prometheus.CounterVec
	tasks       *prometheus.CounterVec
}

// Options for configuring Collector.
type Options struct {
	// Namespace prefixes every metric name. Default: "xanthos".
	Namespace string

	// ConstLabels are attached to every metric, e.g. a component name.
	ConstLabels prometheus.Labels

	// Buckets for latency histograms, in seconds.
	// Default: prometheus.DefBuckets.
	Buckets []float64
}

// Option is a functional option for configuring Collector.
type Option func(*Options)

// WithNamespace sets the metric namespace.
func WithNamespace(ns string) Option {
	return func(o *Options) {
		o.Namespace = ns
	}
}

// WithConstLabels attaches constant labels to every metric.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(o *Options) {
		o.ConstLabels = labels
	}
}

// WithBuckets sets the latency histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(o *Options) {
		o.Buckets = buckets
	}
}

// NewCollector creates the metrics and registers them with reg.
// Returns an error if reg is nil or a metric is already registered.
func NewCollector(reg prometheus.Registerer, opts ...Option) (*Collector, error) {
	if reg == nil {
		return nil, errors.New("prometheus registerer cannot be nil")
	}

	options := Options{
		Namespace: DefaultNamespace,
		Buckets:   prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(&options)
	}

	ns, labels := options.Namespace, options.ConstLabels
	histogram := func(subsystem, name, help string) prometheus.HistogramOpts {
		return prometheus.HistogramOpts{
			Namespace:   ns,
			Subsystem:   subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: labels,
			Buckets:     options.Buckets,
		}
	}
	counter := func(subsystem, name, help string) prometheus.CounterOpts {
		return prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		}
	}

	c := &Collector{
		getLatency: prometheus.NewHistogram(histogram("lru", "get_duration_seconds",
			"Latency of LRU Get operations")),
		setLatency: prometheus.NewHistogram(histogram("lru", "set_duration_seconds",
			"Latency of LRU Set operations")),
		taskLatency: prometheus.NewHistogramVec(histogram("pool", "task_duration_seconds",
			"Latency of worker pool tasks"), []string{"result"}),
		hits: prometheus.NewCounter(counter("lru", "hits_total",
			"Total number of LRU hits")),
		misses: prometheus.NewCounter(counter("lru", "misses_total",
			"Total number of LRU misses")),
		evictions: prometheus.NewCounter(counter("lru", "evictions_total",
			"Total number of LRU evictions")),
		memo: prometheus.NewCounterVec(counter("memo", "calls_total",
			"Total number of memoized calls by outcome"), []string{"outcome"}),
		throttle: prometheus.NewCounterVec(counter("throttle", "calls_total",
			"Total number of throttled calls by result"), []string{"result"}),
		attempts: prometheus.NewCounterVec(counter("retry", "attempts_total",
			"Total number of retry attempts by result"), []string{"result"}),
		tasks: prometheus.NewCounterVec(counter("pool", "tasks_total",
			"Total number of worker pool tasks by result"), []string{"result"}),
	}

	for _, m := range []prometheus.Collector{
		c.getLatency, c.setLatency, c.taskLatency,
		c.hits, c.misses, c.evictions,
		c.memo, c.throttle, c.attempts, c.tasks,
	} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func seconds(latencyNs int64) float64 {
	return time.Duration(latencyNs).Seconds()
}

func result(failed bool) string {
	if failed {
		return "failure"
	}
	return "success"
}

// RecordGet records an LRU Get.
func (c *Collector) RecordGet(latencyNs int64, hit bool) {
	c.getLatency.Observe(seconds(latencyNs))
	if hit {
		c.hits.Inc()
	} else {
		c.misses.Inc()
	}
}

// RecordSet records an LRU Set.
func (c *Collector) RecordSet(latencyNs int64) {
	c.setLatency.Observe(seconds(latencyNs))
}

// RecordEviction records an LRU eviction.
func (c *Collector) RecordEviction() {
	c.evictions.Inc()
}

// RecordMemo records a memoized call outcome.
func (c *Collector) RecordMemo(outcome xanthos.MemoOutcome) {
	c.memo.WithLabelValues(outcome.String()).Inc()
}

// RecordThrottle records a throttled call.
func (c *Collector) RecordThrottle(fired, trailing bool) {
	switch {
	case fired && trailing:
		c.throttle.WithLabelValues("trailing").Inc()
	case fired:
		c.throttle.WithLabelValues("leading").Inc()
	default:
		c.throttle.WithLabelValues("dropped").Inc()
	}
}

// RecordRetry records one retry attempt.
func (c *Collector) RecordRetry(attempt int, failed bool) {
	c.attempts.WithLabelValues(result(failed)).Inc()
}

// RecordTask records a worker pool task.
func (c *Collector) RecordTask(latencyNs int64, failed bool) {
	r := result(failed)
	c.taskLatency.WithLabelValues(r).Observe(seconds(latencyNs))
	c.tasks.WithLabelValues(r).Inc()
}

var _ xanthos.MetricsCollector = (*Collector)(nil)
