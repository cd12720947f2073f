// Package otel provides OpenTelemetry integration for xanthos metrics.
//
// # Overview
//
// This package implements the xanthos.MetricsCollector interface using
// OpenTelemetry, so LRU caches, memoizers, throttles, retriers and worker
// pools can report to any OTEL-compatible backend.
//
// # Quick Start
//
//	import (
//	    "github.com/agilira/xanthos"
//	    xanthosotel "github.com/agilira/xanthos/otel"
//	    "go.opentelemetry.io/otel/sdk/metric"
//	)
//
//	provider := metric.NewMeterProvider(metric.WithReader(reader))
//	collector, err := xanthosotel.NewCollector(provider)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	pool, _ := xanthos.NewWorkerPool(8, xanthos.WithMetricsCollector(collector))
//
// # Metrics Exposed
//
// Histograms (nanoseconds):
//   - xanthos_lru_get_latency_ns
//   - xanthos_lru_set_latency_ns
//   - xanthos_pool_task_latency_ns (attribute "result")
//
// Counters:
//   - xanthos_lru_hits_total, xanthos_lru_misses_total, xanthos_lru_evictions_total
//   - xanthos_memo_calls_total (attribute "outcome": miss, hit, shared)
//   - xanthos_throttle_calls_total (attribute "result": leading, trailing, dropped)
//   - xanthos_retry_attempts_total (attribute "result": success, failure; successes carry "retried")
//   - xanthos_pool_tasks_total (attribute "result": success, failure)
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package otel
