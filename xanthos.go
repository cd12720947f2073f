// Package xanthos provides concurrency-control and caching primitives for Go.
//
// Xanthos groups the small primitives that decide when and how often work
// runs and what gets remembered: a fixed-capacity LRU cache, synchronous and
// single-flight asynchronous memoization, a leading+trailing throttle, a
// retry executor with optional backoff and a bounded worker pool that keeps
// results in input order.
//
// Example usage:
//
//	cache := xanthos.MustNewLRU[string, int](2)
//	cache.Set("a", 1)
//	value, found := cache.Get("a")
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package xanthos

import "time"

const (
	// Version of the Xanthos toolkit
	Version = "v0.1.0-dev"

	// DefaultLRUCapacity is the default capacity used by DefaultConfig
	DefaultLRUCapacity = 1_000

	// DefaultThrottleWindow is the default throttle window used by DefaultConfig
	DefaultThrottleWindow = 100 * time.Millisecond

	// DefaultRetries is the default number of retries (attempts = retries + 1)
	DefaultRetries = 3

	// DefaultConcurrency is the default worker pool concurrency limit
	DefaultConcurrency = 8
)
