package benchmarks

import (
	"testing"
)

// measureHitRatio warms c up and returns the hit ratio (0-100) of requests
// Zipf-distributed Gets.
func measureHitRatio(c CacheInterface, s float64, keySpace, requests int) float64 {
	zipf := NewZipfGenerator(s, 1.0, uint64(keySpace-1))
	for i := 0; i < keySpace/2; i++ {
		c.Set(zipf.NextString(), i)
	}

	zipf = NewZipfGenerator(s, 1.0, uint64(keySpace-1))
	hits := 0
	for i := 0; i < requests; i++ {
		if _, ok := c.Get(zipf.NextString()); ok {
			hits++
		}
	}
	return float64(hits) / float64(requests) * 100
}

// TestHitRatio_KeySpaceWithinCapacity checks that a cache larger than the key
// space serves every warmed key.
func TestHitRatio_KeySpaceWithinCapacity(t *testing.T) {
	c := NewXanthosLRU(mediumCacheSize)
	defer c.Close()

	zipf := NewZipfGenerator(1.0, 1.0, uint64(mediumKeySpace-1))
	warmed := map[string]bool{}
	for i := 0; i < mediumKeySpace; i++ {
		key := zipf.NextString()
		c.Set(key, i)
		warmed[key] = true
	}

	for key := range warmed {
		if _, ok := c.Get(key); !ok {
			t.Fatalf("key %s evicted although the cache never filled", key)
		}
	}
}

// TestHitRatioDifferentWorkloads reports hit ratios under different access patterns
func TestHitRatioDifferentWorkloads(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping workload hit ratio test in short mode")
	}

	workloads := []struct {
		name     string
		s        float64 // Zipf exponent (higher = more skewed)
		keySpace int
	}{
		{"Highly Skewed (s=1.5)", 1.5, largeKeySpace},
		{"Moderate (s=1.1)", 1.1, largeKeySpace},
		{"Less Skewed (s=1.01)", 1.01, largeKeySpace},
	}

	for _, wl := range workloads {
		t.Logf("=== Workload: %s ===", wl.name)
		for _, cf := range cacheFactories {
			c := cf.factory(smallCacheSize)
			ratio := measureHitRatio(c, wl.s, wl.keySpace, 100_000)
			t.Logf("  %s: %.2f%%", cf.name, ratio)
			c.Close()
		}
	}
}
