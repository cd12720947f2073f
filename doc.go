// Package xanthos provides thread-safe concurrency and caching primitives
// for wrapping functions: a fixed-capacity LRU cache, synchronous and
// single-flight memoization, a leading+trailing throttle, a retry executor
// with backoff and an order-preserving bounded worker pool.
//
// # Overview
//
// Every primitive is a wrapper around a caller-supplied function and owns its
// state exclusively. Configuration errors are reported by constructors with
// structured go-errors codes; failures of the wrapped function are propagated
// to the caller unchanged.
//
// # Features
//
//   - LRU: O(1) Get/Set with exact least-recently-used eviction and GetOrLoad stampede protection
//   - Memoize: each distinct key computed once, concurrent callers wait for the first
//   - MemoizeAsync: single-flight per key, successes cached, failures evicted
//   - Throttle: at most one invocation per window, the trailing call gets the latest arguments
//   - Retry: up to Retries+1 attempts with fixed or exponential delay, Permanent errors stop early
//   - WorkerPool: at most Limit tasks in flight, results in input order
//   - Once: run-at-most-once wrapper
//   - Hot reload: retry and pool settings tuned at runtime through Argus
//   - Metrics: MetricsCollector interface with OpenTelemetry (otel) and Prometheus (prom) implementations
//
// # Quick Start
//
//	import "github.com/agilira/xanthos"
//
//	cache, err := xanthos.NewLRU[string, User](10_000)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cache.Set("user:123", User{ID: 123, Name: "Alice"})
//
//	user, err := cache.GetOrLoad("user:456", func() (User, error) {
//	    return fetchUserFromDB(456)
//	})
//
// # Memoization
//
// Memoize wraps pure functions. Arguments are passed as a single value; the
// default key is a structural serialization of that value, so equal structs
// share a cache entry:
//
//	type query struct{ Region string; Limit int }
//
//	search, _ := xanthos.Memoize(func(q query) []Result { return runQuery(q) })
//	search.Call(query{"eu", 10}) // computed
//	search.Call(query{"eu", 10}) // cached
//
// MemoizeAsync wraps fallible operations. Concurrent callers for the same key
// share one execution; a failure is delivered to every waiter and then
// forgotten, so the next call retries:
//
//	users, _ := xanthos.MemoizeAsync(func(ctx context.Context, id int) (*User, error) {
//	    return fetchUserFromDB(ctx, id)
//	})
//	user, err := users.Call(ctx, 123)
//
// Use MemoizeBy and MemoizeAsyncBy to supply a cheaper key function.
//
// # Throttling
//
//	save, _ := xanthos.NewThrottle(func(doc Document) { persist(doc) }, time.Second)
//	for doc := range edits {
//	    save.Call(doc) // runs at most once per second, the last edit always lands
//	}
//	save.Stop()
//
// # Retry
//
//	r, _ := xanthos.NewRetrier(xanthos.RetryPolicy{
//	    Retries:    3,
//	    Delay:      100 * time.Millisecond,
//	    Multiplier: 2,
//	    MaxDelay:   2 * time.Second,
//	})
//	body, err := xanthos.Retry(ctx, r, func(ctx context.Context) ([]byte, error) {
//	    return download(ctx, url)
//	})
//
// Only the last failure is returned. Wrap an error with Permanent to stop
// retrying at once. The context is honored while waiting between attempts.
//
// # Worker Pool
//
//	pool, _ := xanthos.NewWorkerPool(4)
//	pages, err := xanthos.RunTasks(ctx, pool, []xanthos.Task[Page]{
//	    func(ctx context.Context) (Page, error) { return fetch(ctx, "/a") },
//	    func(ctx context.Context) (Page, error) { return fetch(ctx, "/b") },
//	})
//
// RunTasks stops starting tasks after the first failure and returns it;
// RunSettled runs every task and returns one Result per task.
//
// # Time
//
// Primitives read time through a TimeSource. The default one uses
// go-timecache for reads and real timers for scheduling. Tests inject a
// ManualClock with WithTimeSource and drive it with Advance.
//
// # Error Handling
//
// Errors carry codes from github.com/agilira/go-errors:
//
//	_, err := xanthos.NewLRU[string, int](0)
//	if xanthos.IsConfigError(err) {
//	    fmt.Println(xanthos.GetErrorCode(err)) // XANTHOS_INVALID_CAPACITY
//	}
//
// Panics in asynchronous wrapped functions are recovered into
// XANTHOS_PANIC_RECOVERED errors. The synchronous Memoizer and Once let the
// panic propagate after discarding the in-progress entry.
//
// # Hot Reload
//
//	hc, _ := xanthos.NewHotConfig(xanthos.HotConfigOptions{
//	    ConfigPath: "xanthos.yaml",
//	}, retrier, pool)
//	_ = hc.Start()
//	defer hc.Stop()
//
// # Thread Safety
//
// All exported types are safe for concurrent use by multiple goroutines.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package xanthos
