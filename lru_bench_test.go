// lru_bench_test.go: micro-benchmarks for the LRU cache and memoizers
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package xanthos

import (
	"strconv"
	"testing"
)

func benchKeys(n int) []string {
	keys := make([]string, n)
	for i := range keys {
		keys[i] = "key:" + strconv.Itoa(i)
	}
	return keys
}

func BenchmarkLRU_Set(b *testing.B) {
	cache := MustNewLRU[string, int](1024)
	keys := benchKeys(4096)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		cache.Set(keys[i&4095], i)
	}
}

func BenchmarkLRU_GetHit(b *testing.B) {
	cache := MustNewLRU[string, int](1024)
	keys := benchKeys(1024)
	for i, k := range keys {
		cache.Set(k, i)
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		cache.Get(keys[i&1023])
	}
}

func BenchmarkLRU_GetParallel(b *testing.B) {
	cache := MustNewLRU[string, int](1024)
	keys := benchKeys(1024)
	for i, k := range keys {
		cache.Set(k, i)
	}

	b.ResetTimer()
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			cache.Get(keys[i&1023])
			i++
		}
	})
}

func BenchmarkLRU_WithMetrics(b *testing.B) {
	cache := MustNewLRU[string, int](1024, WithMetricsCollector(&countingCollector{}))
	keys := benchKeys(2048)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		k := keys[i&2047]
		if _, ok := cache.Get(k); !ok {
			cache.Set(k, i)
		}
	}
}

func BenchmarkMemoize_StructuralKey(b *testing.B) {
	type args struct {
		A, B int
	}
	add, err := Memoize(func(a args) int { return a.A + a.B })
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		add.Call(args{i & 15, 1})
	}
}

func BenchmarkMemoizeBy_IntKey(b *testing.B) {
	square, err := MemoizeBy[int, int, int](func(n int) int { return n * n }, func(n int) int { return n })
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		square.Call(i & 255)
	}
}
