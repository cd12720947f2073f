// lru.go: fixed-capacity least-recently-used cache
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package xanthos

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// OnEvictFunc is called when an entry leaves an LRU through eviction,
// Remove or Clear.
type OnEvictFunc[K comparable, V any] func(key K, value V)

// LRU is a thread-safe, fixed-capacity cache with least-recently-used eviction.
// Recency is tracked by an intrusive doubly-linked list paired with a map, so
// Get, Set and eviction are O(1).
//
// An LRU must be created with NewLRU or MustNewLRU; the zero value is not ready for use.
type LRU[K comparable, V any] struct {
	capacity int
	items    map[K]*lruEntry[K, V]
	head     *lruEntry[K, V] // most recently used
	tail     *lruEntry[K, V] // least recently used
	mu       sync.RWMutex
	onEvict  OnEvictFunc[K, V]
	loads    singleflight.Group
	opts     options

	hits      atomic.Uint64
	misses    atomic.Uint64
	sets      atomic.Uint64
	removes   atomic.Uint64
	evictions atomic.Uint64
}

// lruEntry is an intrusive doubly-linked list node.
type lruEntry[K comparable, V any] struct {
	key  K
	val  V
	prev *lruEntry[K, V]
	next *lruEntry[K, V]
}

// LRUStats provides statistics about an LRU cache.
type LRUStats struct {
	// Hits is the number of Get calls that found the key
	Hits uint64

	// Misses is the number of Get calls that did not find the key
	Misses uint64

	// Sets is the number of Set calls
	Sets uint64

	// Removes is the number of successful Remove calls
	Removes uint64

	// Evictions is the number of entries evicted for capacity
	Evictions uint64

	// Size is the current number of entries
	Size int

	// Capacity is the fixed maximum number of entries
	Capacity int
}

// HitRatio returns the hit ratio as a percentage (0-100).
// Returns 0.0 if no Get operations have been performed yet.
func (s LRUStats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// NewLRU creates an LRU cache holding at most capacity entries.
// Returns XANTHOS_INVALID_CAPACITY if capacity < 1.
func NewLRU[K comparable, V any](capacity int, opts ...Option) (*LRU[K, V], error) {
	if capacity < 1 {
		return nil, NewErrInvalidCapacity(capacity)
	}

	return &LRU[K, V]{
		capacity: capacity,
		items:    make(map[K]*lruEntry[K, V], capacity),
		opts:     buildOptions(opts),
	}, nil
}

// MustNewLRU is like NewLRU but panics on an invalid capacity.
func MustNewLRU[K comparable, V any](capacity int, opts ...Option) *LRU[K, V] {
	cache, err := NewLRU[K, V](capacity, opts...)
	if err != nil {
		panic(err)
	}
	return cache
}

// Get returns the value for key and marks it most recently used.
// A miss returns the zero value and false; it is not an error.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	var start int64
	measured := c.opts.measured()
	if measured {
		start = c.opts.timeSource.Now()
	}

	c.mu.Lock()
	e, found := c.items[key]
	var val V
	if found {
		c.moveToFront(e)
		val = e.val
	}
	c.mu.Unlock()

	if found {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	if measured {
		c.opts.metrics.RecordGet(c.opts.timeSource.Now()-start, found)
	}
	return val, found
}

// Peek returns the value for key without changing its recency.
func (c *LRU[K, V]) Peek(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if e, found := c.items[key]; found {
		return e.val, true
	}
	var zero V
	return zero, false
}

// Has reports whether key is cached, without changing its recency.
func (c *LRU[K, V]) Has(key K) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, found := c.items[key]
	return found
}

// Set inserts or overwrites key and marks it most recently used.
// When the insertion pushes the cache over capacity, exactly one entry,
// the least recently used, is evicted.
func (c *LRU[K, V]) Set(key K, value V) {
	var start int64
	measured := c.opts.measured()
	if measured {
		start = c.opts.timeSource.Now()
	}

	c.mu.Lock()
	evicted, hasEvicted := c.setLocked(key, value)
	onEvict := c.onEvict
	c.mu.Unlock()

	c.sets.Add(1)
	if hasEvicted {
		c.evictions.Add(1)
		c.opts.metrics.RecordEviction()
		if onEvict != nil {
			onEvict(evicted.key, evicted.val)
		}
	}
	if measured {
		c.opts.metrics.RecordSet(c.opts.timeSource.Now() - start)
	}
}

// setLocked adds or updates key. The mutex must be held.
// Returns the evicted entry, if any.
func (c *LRU[K, V]) setLocked(key K, value V) (evicted lruEntry[K, V], ok bool) {
	if e, found := c.items[key]; found {
		e.val = value
		c.moveToFront(e)
		return evicted, false
	}

	e := &lruEntry[K, V]{key: key, val: value}
	c.pushFront(e)
	c.items[key] = e

	if len(c.items) > c.capacity {
		oldest := c.tail
		c.unlink(oldest)
		delete(c.items, oldest.key)
		return lruEntry[K, V]{key: oldest.key, val: oldest.val}, true
	}
	return evicted, false
}

// Remove deletes key from the cache and reports whether it was present.
// The eviction callback is invoked for the removed entry.
func (c *LRU[K, V]) Remove(key K) bool {
	c.mu.Lock()
	e, found := c.items[key]
	if !found {
		c.mu.Unlock()
		return false
	}
	delete(c.items, key)
	c.unlink(e)
	onEvict := c.onEvict
	c.mu.Unlock()

	c.removes.Add(1)
	if onEvict != nil {
		onEvict(e.key, e.val)
	}
	return true
}

// Len returns the current number of entries.
func (c *LRU[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Capacity returns the fixed maximum number of entries.
func (c *LRU[K, V]) Capacity() int {
	return c.capacity
}

// Keys returns all keys ordered from most to least recently used.
func (c *LRU[K, V]) Keys() []K {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]K, 0, len(c.items))
	for e := c.head; e != nil; e = e.next {
		keys = append(keys, e.key)
	}
	return keys
}

// Clear removes every entry. The eviction callback, if set, is invoked for
// each removed entry after the lock is released.
func (c *LRU[K, V]) Clear() {
	c.mu.Lock()
	onEvict := c.onEvict
	var removed []lruEntry[K, V]
	if onEvict != nil {
		removed = make([]lruEntry[K, V], 0, len(c.items))
		for e := c.head; e != nil; e = e.next {
			removed = append(removed, lruEntry[K, V]{key: e.key, val: e.val})
		}
	}
	c.items = make(map[K]*lruEntry[K, V], c.capacity)
	c.head = nil
	c.tail = nil
	c.mu.Unlock()

	for _, e := range removed {
		onEvict(e.key, e.val)
	}
}

// OnEvict sets the eviction callback.
//
// The callback runs after the internal lock is released and may be called
// concurrently from multiple goroutines. It must be safe for concurrent use.
func (c *LRU[K, V]) OnEvict(f OnEvictFunc[K, V]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEvict = f
}

// Stats returns cache statistics.
func (c *LRU[K, V]) Stats() LRUStats {
	return LRUStats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Sets:      c.sets.Load(),
		Removes:   c.removes.Load(),
		Evictions: c.evictions.Load(),
		Size:      c.Len(),
		Capacity:  c.capacity,
	}
}

// GetOrLoad returns the cached value for key, or loads, caches and returns it.
// Concurrent calls for the same missing key run loader exactly once and all
// receive its outcome. Loader errors are returned and never cached.
//
// Returns XANTHOS_NIL_FUNCTION if loader is nil and XANTHOS_PANIC_RECOVERED
// if loader panics.
func (c *LRU[K, V]) GetOrLoad(key K, loader func() (V, error)) (V, error) {
	if val, found := c.Get(key); found {
		return val, nil
	}

	var zero V
	if loader == nil {
		return zero, NewErrNilFunction("LRU.GetOrLoad")
	}

	result, err, _ := c.loads.Do(keyString(key), func() (v interface{}, err error) {
		// another flight may have filled the key just before this one started
		if val, found := c.Peek(key); found {
			return val, nil
		}

		defer func() {
			if r := recover(); r != nil {
				v, err = nil, NewErrPanicRecovered("LRU.GetOrLoad", r)
			}
		}()

		val, err := loader()
		if err != nil {
			return nil, err
		}
		c.Set(key, val)
		return val, nil
	})
	if err != nil {
		return zero, err
	}

	val, ok := result.(V)
	if !ok && result != nil {
		return zero, NewErrInternal("LRU.GetOrLoad", nil)
	}
	return val, nil
}

// moveToFront moves an entry to the front of the list.
func (c *LRU[K, V]) moveToFront(e *lruEntry[K, V]) {
	if c.head == e {
		return
	}
	c.unlink(e)
	c.pushFront(e)
}

// pushFront adds an entry to the front of the list.
func (c *LRU[K, V]) pushFront(e *lruEntry[K, V]) {
	e.prev = nil
	e.next = c.head
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

// unlink removes an entry from the list.
func (c *LRU[K, V]) unlink(e *lruEntry[K, V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
	e.prev = nil
	e.next = nil
}
