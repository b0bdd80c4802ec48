package memory

import (
	"container/list"
	"time"
)

type lruEntry[K comparable, V any] struct {
	key     K
	value   V
	touched time.Time
}

// lru is an insertion/refresh ordered map with optional size cap and TTL.
// It is not safe for concurrent use; owners guard it with their own mutex.
type lru[K comparable, V any] struct {
	items   map[K]*list.Element
	order   *list.List // oldest at front
	ttl     time.Duration
	maxSize int
	now     func() time.Time
}

func newLRU[K comparable, V any](ttl time.Duration, maxSize int) *lru[K, V] {
	return &lru[K, V]{
		items:   make(map[K]*list.Element),
		order:   list.New(),
		ttl:     ttl,
		maxSize: maxSize,
		now:     time.Now,
	}
}

// put inserts or overwrites key and moves it to the back. It returns the
// number of entries evicted to stay within maxSize.
func (c *lru[K, V]) put(key K, value V) int {
	if el, ok := c.items[key]; ok {
		e := el.Value.(*lruEntry[K, V])
		e.value = value
		e.touched = c.now()
		c.order.MoveToBack(el)
		return 0
	}
	evicted := 0
	for c.maxSize > 0 && len(c.items) >= c.maxSize {
		c.removeOldest()
		evicted++
	}
	c.items[key] = c.order.PushBack(&lruEntry[K, V]{key: key, value: value, touched: c.now()})
	return evicted
}

func (c *lru[K, V]) get(key K) (V, bool) {
	el, ok := c.items[key]
	if !ok || c.expired(el.Value.(*lruEntry[K, V])) {
		var zero V
		return zero, false
	}
	return el.Value.(*lruEntry[K, V]).value, true
}

func (c *lru[K, V]) expired(e *lruEntry[K, V]) bool {
	return c.ttl > 0 && c.now().Sub(e.touched) >= c.ttl
}

func (c *lru[K, V]) removeOldest() {
	front := c.order.Front()
	if front == nil {
		return
	}
	c.order.Remove(front)
	delete(c.items, front.Value.(*lruEntry[K, V]).key)
}

// prune drops expired entries. Entries are ordered by touch time, so the
// walk stops at the first live one.
func (c *lru[K, V]) prune() int {
	if c.ttl <= 0 {
		return 0
	}
	n := 0
	for front := c.order.Front(); front != nil; front = c.order.Front() {
		if !c.expired(front.Value.(*lruEntry[K, V])) {
			break
		}
		c.removeOldest()
		n++
	}
	return n
}

func (c *lru[K, V]) len() int { return len(c.items) }
