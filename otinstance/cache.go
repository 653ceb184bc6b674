package otinstance

import (
	"container/list"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/npillmayer/varfont/otvar"
)

// CacheKey identifies a memoized computation: an entity (a glyph, a metric
// set, a whole instance) at one design-space location.
type CacheKey struct {
	Entity string
	Coords string // canonical form, see CanonicalCoords
}

// CanonicalCoords serializes user coordinates into a stable string form,
// tags sorted, so that equal locations always produce equal keys.
func CanonicalCoords(coords otvar.UserCoords) string {
	if len(coords) == 0 {
		return ""
	}
	tags := make([]otvar.Tag, 0, len(coords))
	for tag := range coords {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	var sb strings.Builder
	for i, tag := range tags {
		if i > 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(tag.String())
		sb.WriteByte('=')
		sb.WriteString(strconv.FormatFloat(coords[tag], 'g', -1, 64))
	}
	return sb.String()
}

// KeyFor builds a cache key for an entity at a location.
func KeyFor(entity string, coords otvar.UserCoords) CacheKey {
	return CacheKey{Entity: entity, Coords: CanonicalCoords(coords)}
}

// CacheStats is a snapshot of a cache's counters.
type CacheStats struct {
	Hits          uint64
	Misses        uint64
	Evictions     uint64
	Invalidations uint64
	Entries       int
}

type cacheEntry struct {
	key      CacheKey
	value    interface{}
	storedAt time.Time
}

// Cache memoizes computations with a fixed capacity and strict LRU
// eviction: the least recently touched entry (by Fetch or Store) goes first.
// A non-zero TTL makes stale entries count as misses on access; nothing is
// swept proactively. Cache is not safe for concurrent use, see
// ThreadSafeCache.
type Cache struct {
	capacity int
	ttl      time.Duration
	entries  map[CacheKey]*list.Element
	order    *list.List // front is most recently used
	stats    CacheStats
	now      func() time.Time // replaceable in tests
}

// NewCache creates a cache with the given capacity. A ttl of zero disables
// expiry.
func NewCache(capacity int, ttl time.Duration) *Cache {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache{
		capacity: capacity,
		ttl:      ttl,
		entries:  make(map[CacheKey]*list.Element),
		order:    list.New(),
		now:      time.Now,
	}
}

// Fetch returns the memoized value for key, calling compute on a miss and
// storing its result. Expired entries count as misses and are recomputed.
// A compute error is returned as is and nothing is stored.
func (c *Cache) Fetch(key CacheKey, compute func() (interface{}, error)) (interface{}, error) {
	if v, ok := c.lookup(key); ok {
		return v, nil
	}
	v, err := compute()
	if err != nil {
		return nil, err
	}
	c.Store(key, v)
	return v, nil
}

// Lookup returns the memoized value without computing anything.
func (c *Cache) Lookup(key CacheKey) (interface{}, bool) {
	return c.lookup(key)
}

func (c *Cache) lookup(key CacheKey) (interface{}, bool) {
	el, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	entry := el.Value.(*cacheEntry)
	if c.ttl > 0 && c.now().Sub(entry.storedAt) > c.ttl {
		c.remove(el)
		c.stats.Misses++
		return nil, false
	}
	c.order.MoveToFront(el)
	c.stats.Hits++
	return entry.value, true
}

// Store inserts or replaces the value for key, evicting the least recently
// used entry if the cache is full.
func (c *Cache) Store(key CacheKey, value interface{}) {
	if el, ok := c.entries[key]; ok {
		entry := el.Value.(*cacheEntry)
		entry.value = value
		entry.storedAt = c.now()
		c.order.MoveToFront(el)
		return
	}
	if len(c.entries) >= c.capacity {
		if back := c.order.Back(); back != nil {
			c.remove(back)
			c.stats.Evictions++
		}
	}
	el := c.order.PushFront(&cacheEntry{key: key, value: value, storedAt: c.now()})
	c.entries[key] = el
}

// Invalidate drops the entry for key, if present.
func (c *Cache) Invalidate(key CacheKey) {
	if el, ok := c.entries[key]; ok {
		c.remove(el)
		c.stats.Invalidations++
	}
}

// InvalidateMatching drops every entry whose key matches the predicate and
// returns how many were dropped.
func (c *Cache) InvalidateMatching(match func(CacheKey) bool) int {
	dropped := 0
	for key, el := range c.entries {
		if match(key) {
			c.remove(el)
			c.stats.Invalidations++
			dropped++
		}
	}
	return dropped
}

// Clear drops all entries. Counters survive.
func (c *Cache) Clear() {
	c.entries = make(map[CacheKey]*list.Element)
	c.order.Init()
}

// Stats returns a counter snapshot.
func (c *Cache) Stats() CacheStats {
	s := c.stats
	s.Entries = len(c.entries)
	return s
}

func (c *Cache) remove(el *list.Element) {
	entry := el.Value.(*cacheEntry)
	delete(c.entries, entry.key)
	c.order.Remove(el)
}

// ThreadSafeCache guards a Cache with one mutex. Memoized computations are
// short, so correctness wins over fine-grained locking. The compute callback
// of Fetch runs outside the lock; two goroutines missing on the same key may
// both compute, with the later Store winning.
type ThreadSafeCache struct {
	mu    sync.Mutex
	cache *Cache
}

// NewThreadSafeCache creates a mutex-guarded cache.
func NewThreadSafeCache(capacity int, ttl time.Duration) *ThreadSafeCache {
	return &ThreadSafeCache{cache: NewCache(capacity, ttl)}
}

// Fetch is Cache.Fetch with the compute callback running unlocked.
func (c *ThreadSafeCache) Fetch(key CacheKey, compute func() (interface{}, error)) (interface{}, error) {
	c.mu.Lock()
	v, ok := c.cache.lookup(key)
	c.mu.Unlock()
	if ok {
		return v, nil
	}
	v, err := compute()
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.cache.Store(key, v)
	c.mu.Unlock()
	return v, nil
}

// Lookup returns the memoized value without computing anything.
func (c *ThreadSafeCache) Lookup(key CacheKey) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.lookup(key)
}

// Store inserts or replaces the value for key.
func (c *ThreadSafeCache) Store(key CacheKey, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Store(key, value)
}

// Invalidate drops the entry for key.
func (c *ThreadSafeCache) Invalidate(key CacheKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Invalidate(key)
}

// InvalidateMatching drops matching entries and returns the count.
func (c *ThreadSafeCache) InvalidateMatching(match func(CacheKey) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.InvalidateMatching(match)
}

// Clear drops all entries.
func (c *ThreadSafeCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Clear()
}

// Stats returns a counter snapshot.
func (c *ThreadSafeCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Stats()
}
