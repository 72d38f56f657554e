package formation

import (
	"container/list"

	"github.com/okian/gridiron/internal/domain/field"
	"github.com/okian/gridiron/internal/domain/model"
)

const defaultCacheSize = 8

// Resolved is a cached alignment together with its numbering.
type Resolved struct {
	Alignment Alignment
	Numbering Numbering
	// Known is false when the requested formation was unknown and the
	// fallback was used.
	Known bool
}

type cacheKey struct {
	formation model.Formation
	hash      field.Hash
}

type cacheEntry struct {
	key cacheKey
	val Resolved
}

// Cache is a bounded LRU of resolved alignments keyed by (formation, hash).
// A session owns one cache; it is not safe for concurrent use.
type Cache struct {
	capacity int
	ll       *list.List
	items    map[cacheKey]*list.Element

	hits, misses uint64
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithCapacity bounds the number of cached entries.
func WithCapacity(n int) CacheOption {
	return func(c *Cache) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// NewCache creates an empty cache.
func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{capacity: defaultCacheSize}
	for _, opt := range opts {
		opt(c)
	}
	c.ll = list.New()
	c.items = make(map[cacheKey]*list.Element, c.capacity)
	return c
}

// Resolve returns the alignment and numbering for (f, h), computing and
// caching them on a miss. Returned values are copies; callers may mutate them.
func (c *Cache) Resolve(f model.Formation, h field.Hash) Resolved {
	k := cacheKey{formation: f, hash: h}
	if el, ok := c.items[k]; ok {
		c.hits++
		c.ll.MoveToFront(el)
		return copyResolved(el.Value.(*cacheEntry).val)
	}
	c.misses++

	a, known := Align(f, h)
	r := Resolved{Alignment: a, Numbering: Number(a), Known: known}
	el := c.ll.PushFront(&cacheEntry{key: k, val: r})
	c.items[k] = el
	if c.ll.Len() > c.capacity {
		c.evictOldest()
	}
	return copyResolved(r)
}

func (c *Cache) evictOldest() {
	el := c.ll.Back()
	if el == nil {
		return
	}
	c.ll.Remove(el)
	delete(c.items, el.Value.(*cacheEntry).key)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int { return c.ll.Len() }

// Stats returns hit and miss counts.
func (c *Cache) Stats() (hits, misses uint64) { return c.hits, c.misses }

func copyResolved(r Resolved) Resolved {
	r.Alignment = r.Alignment.Clone()
	r.Numbering.Left = append([]model.ReceiverID(nil), r.Numbering.Left...)
	r.Numbering.Right = append([]model.ReceiverID(nil), r.Numbering.Right...)
	r.Numbering.Backfield = append([]model.ReceiverID(nil), r.Numbering.Backfield...)
	return r
}
