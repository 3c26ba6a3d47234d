// Copyright 2024 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metacache

import (
	"container/list"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// Cache is a thread-safe least-recently-used cache whose entries optionally
// expire after a fixed time-to-live.
type Cache[V any] struct {
	size int           // maximum number of entries.
	ttl  time.Duration // time-to-live of entries; <= 0 means forever.
	opts options

	mu      sync.Mutex
	entries map[string]*list.Element // key -> element in order.
	order   *list.List               // most recently used first.
	purges  uint64                   // bumped by each Purge.

	flights singleflight.Group // serializes computations per key.
}

// entry is a cached value together with the time it was stored. Entries are
// only ever stored with fully computed values.
type entry[V any] struct {
	key      string
	value    V
	inserted time.Time
}

// New returns a new Cache holding at most size entries that expire after the
// specified time-to-live. A ttl of zero or less never expires entries. New
// returns an error if size is less than one, or if registering metrics fails.
func New[V any](size int, ttl time.Duration, opts ...Option) (*Cache[V], error) {
	if size < 1 {
		return nil, errors.Errorf("invalid cache size %d, must be at least 1", size)
	}
	c := &Cache[V]{
		size: size,
		ttl:  ttl,
		opts: options{
			now: time.Now,
		},
		entries: map[string]*list.Element{},
		order:   list.New(),
	}
	for _, opt := range opts {
		opt(&c.opts)
	}
	if c.opts.registerer != nil {
		m, err := newCacheMetrics(c.opts.registerer, c.opts.name)
		if err != nil {
			return nil, errors.Wrap(err, "cannot register cache metrics")
		}
		c.opts.metrics = m
	}
	return c, nil
}

// GetOrCompute returns the value cached for the specified key, if there is a
// valid one. Otherwise, it calls compute and caches the value returned, unless
// compute fails. Errors returned from compute are passed on to the caller and
// nothing gets cached in this case.
//
// Concurrent callers for the same key share a single compute call in flight.
// A caller that joined a flight which then failed gets its own compute called
// instead of receiving the failure of another caller's compute.
func (c *Cache[V]) GetOrCompute(key string, compute func() (V, error)) (V, error) {
	if value, ok := c.get(key); ok {
		return value, nil
	}
	for {
		computed := false
		v, err, _ := c.flights.Do(key, func() (any, error) {
			computed = true
			return c.fly(key, compute)
		})
		if err != nil {
			if !computed {
				continue
			}
			var zero V
			return zero, err
		}
		value, _ := v.(V)
		return value, nil
	}
}

// fly computes the value for key and caches it, unless the cache got purged
// while computing.
func (c *Cache[V]) fly(key string, compute func() (V, error)) (any, error) {
	// Another computation for this key might have finished in between our
	// miss and our own flight taking off.
	if value, ok := c.peek(key); ok {
		return value, nil
	}
	c.mu.Lock()
	purges := c.purges
	c.mu.Unlock()
	value, err := compute()
	if err != nil {
		return nil, err
	}
	c.add(key, value, purges)
	return value, nil
}

// Len returns the number of entries currently in the cache, including expired
// ones not yet removed.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Purge removes all entries from the cache. Values still being computed while
// purging are passed on to their callers, but don't get cached.
func (c *Cache[V]) Purge() {
	c.mu.Lock()
	c.entries = map[string]*list.Element{}
	c.order.Init()
	c.purges++
	c.mu.Unlock()
	c.opts.metrics.updateSize(0)
}

// get returns the valid value cached for key, if any, marking it as recently
// used. Expired entries are removed on the go.
func (c *Cache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	el, ok := c.entries[key]
	if !ok {
		c.mu.Unlock()
		c.opts.metrics.recordMiss()
		var zero V
		return zero, false
	}
	e := el.Value.(*entry[V])
	if c.expired(e) {
		c.removeElement(el)
		size := c.order.Len()
		c.mu.Unlock()
		c.opts.metrics.recordExpiration()
		c.opts.metrics.recordMiss()
		c.opts.metrics.updateSize(size)
		if c.opts.evictFn != nil {
			c.opts.evictFn(key)
		}
		var zero V
		return zero, false
	}
	c.order.MoveToFront(el)
	c.mu.Unlock()
	c.opts.metrics.recordHit()
	return e.value, true
}

// peek returns the valid value cached for key, if any, without counting this
// as a cache hit or miss.
func (c *Cache[V]) peek(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		if e := el.Value.(*entry[V]); !c.expired(e) {
			c.order.MoveToFront(el)
			return e.value, true
		}
	}
	var zero V
	return zero, false
}

// add stores a freshly computed value, evicting the least recently used
// entries in case the cache overflows. The value is discarded if the cache got
// purged since the computation started, as indicated by purges.
func (c *Cache[V]) add(key string, value V, purges uint64) {
	var evicted []string
	c.mu.Lock()
	if c.purges != purges {
		c.mu.Unlock()
		return
	}
	now := c.opts.now()
	if el, ok := c.entries[key]; ok {
		e := el.Value.(*entry[V])
		e.value = value
		e.inserted = now
		c.order.MoveToFront(el)
	} else {
		c.entries[key] = c.order.PushFront(&entry[V]{
			key:      key,
			value:    value,
			inserted: now,
		})
		for c.order.Len() > c.size {
			oldest := c.order.Back()
			c.removeElement(oldest)
			evicted = append(evicted, oldest.Value.(*entry[V]).key)
		}
	}
	size := c.order.Len()
	c.mu.Unlock()
	c.opts.metrics.updateSize(size)
	for _, key := range evicted {
		c.opts.metrics.recordEviction()
		if c.opts.evictFn != nil {
			c.opts.evictFn(key)
		}
	}
}

// expired returns true if the specified entry has outlived the time-to-live.
func (c *Cache[V]) expired(e *entry[V]) bool {
	return c.ttl > 0 && c.opts.now().Sub(e.inserted) > c.ttl
}

// removeElement removes the entry element from both the ordering and the
// index. Must be called with the mutex held.
func (c *Cache[V]) removeElement(el *list.Element) {
	delete(c.entries, el.Value.(*entry[V]).key)
	c.order.Remove(el)
}
