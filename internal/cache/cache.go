// Package cache provides a cost-aware LRU used for GPU-resident
// resources, where eviction must release device memory, not just
// drop a map entry.
package cache

import "sync"

// EvictFunc releases a value evicted for capacity (or removed by
// Clear). It runs with the cache lock held; implementations must not
// call back into the cache.
type EvictFunc[K comparable, V any] func(key K, value V)

// Cache is a thread-safe LRU bounded by total cost rather than entry
// count. Each entry carries a caller-supplied cost (texture bytes);
// inserting past the limit evicts least recently used entries and
// hands them to the eviction callback.
//
// Cache must not be copied after creation.
type Cache[K comparable, V any] struct {
	mu        sync.Mutex
	entries   map[K]*entry[K, V]
	order     *recencyList[K]
	totalCost int64
	costLimit int64
	onEvict   EvictFunc[K, V]
}

type entry[K comparable, V any] struct {
	value V
	cost  int64
	node  *node[K]
}

// New creates a cache bounded by costLimit. A limit of 0 means
// unbounded. onEvict may be nil.
func New[K comparable, V any](costLimit int64, onEvict EvictFunc[K, V]) *Cache[K, V] {
	return &Cache[K, V]{
		entries:   make(map[K]*entry[K, V]),
		order:     &recencyList[K]{},
		costLimit: costLimit,
		onEvict:   onEvict,
	}
}

// Get retrieves a value and marks it recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.order.moveToFront(e.node)
	return e.value, true
}

// Contains reports residency without touching recency.
func (c *Cache[K, V]) Contains(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

// Set stores a value with its cost. Replacing an entry evicts the old
// value through the callback first. An oversized entry (cost >
// limit) is still stored; it simply evicts everything else.
func (c *Cache[K, V]) Set(key K, value V, cost int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.entries[key]; ok {
		c.totalCost -= old.cost
		c.order.remove(old.node)
		delete(c.entries, key)
		if c.onEvict != nil {
			c.onEvict(key, old.value)
		}
	}

	c.entries[key] = &entry[K, V]{value: value, cost: cost, node: c.order.pushFront(key)}
	c.totalCost += cost
	c.evictOver(key)
}

// Remove deletes an entry without invoking the eviction callback; the
// caller takes ownership of the value. It reports whether the entry
// existed.
func (c *Cache[K, V]) Remove(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.totalCost -= e.cost
	c.order.remove(e.node)
	delete(c.entries, key)
	return e.value, true
}

// Clear evicts every entry through the callback.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, e := range c.entries {
		if c.onEvict != nil {
			c.onEvict(key, e.value)
		}
	}
	c.entries = make(map[K]*entry[K, V])
	c.order = &recencyList[K]{}
	c.totalCost = 0
}

// Len returns the number of resident entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Cost returns the summed cost of resident entries.
func (c *Cache[K, V]) Cost() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalCost
}

// evictOver evicts oldest-first until within the limit, sparing the
// just-inserted key. Caller holds c.mu.
func (c *Cache[K, V]) evictOver(justAdded K) {
	if c.costLimit <= 0 {
		return
	}
	for c.totalCost > c.costLimit {
		key, ok := c.order.oldest()
		if !ok || key == justAdded {
			return
		}
		e := c.entries[key]
		c.totalCost -= e.cost
		c.order.remove(e.node)
		delete(c.entries, key)
		if c.onEvict != nil {
			c.onEvict(key, e.value)
		}
	}
}

// recencyList is a doubly-linked recency order: front = most recent.
type recencyList[K any] struct {
	front, back *node[K]
}

type node[K any] struct {
	key        K
	prev, next *node[K]
}

func (l *recencyList[K]) pushFront(key K) *node[K] {
	n := &node[K]{key: key, next: l.front}
	if l.front != nil {
		l.front.prev = n
	}
	l.front = n
	if l.back == nil {
		l.back = n
	}
	return n
}

func (l *recencyList[K]) moveToFront(n *node[K]) {
	if l.front == n {
		return
	}
	l.remove(n)
	n.prev, n.next = nil, l.front
	if l.front != nil {
		l.front.prev = n
	}
	l.front = n
	if l.back == nil {
		l.back = n
	}
}

func (l *recencyList[K]) remove(n *node[K]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else if l.front == n {
		l.front = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else if l.back == n {
		l.back = n.prev
	}
}

func (l *recencyList[K]) oldest() (K, bool) {
	if l.back == nil {
		var zero K
		return zero, false
	}
	return l.back.key, true
}
