package bangumi

import (
	"container/list"
	"context"
	"sync"
	"time"
)

const (
	// DefaultCacheTTL is how long a search page stays cached
	DefaultCacheTTL = 5 * time.Minute
	// DefaultCacheSize bounds the number of cached pages
	DefaultCacheSize = 256
)

// searchCache memoizes search pages for a fixed time after insertion.
// Entries expire lazily on read; the least recently used entry is dropped
// once the cache holds more than size pages.
type searchCache struct {
	ttl       time.Duration
	size      int
	clock     Clock
	evictList *list.List
	items     map[string]*list.Element
	mu        sync.Mutex
}

// cacheEntry is stored in the cache
type cacheEntry struct {
	key       string
	page      *Page
	createdAt time.Time
}

// newSearchCache creates a cache; ttl <= 0 disables caching
func newSearchCache(ttl time.Duration, size int, clock Clock) *searchCache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &searchCache{
		ttl:       ttl,
		size:      size,
		clock:     clock,
		evictList: list.New(),
		items:     make(map[string]*list.Element),
	}
}

// Get returns an unexpired page
func (c *searchCache) Get(key string) (*Page, bool) {
	if c.ttl <= 0 {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	node, ok := c.items[key]
	if !ok {
		return nil, false
	}

	ent := node.Value.(*cacheEntry)
	if !c.clock.Now().Before(ent.createdAt.Add(c.ttl)) {
		c.removeElement(node)
		return nil, false
	}

	c.evictList.MoveToFront(node)
	return ent.page, true
}

// Put stores page under key. An existing entry is left untouched:
// cached pages are immutable until they expire.
func (c *searchCache) Put(key string, page *Page) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if node, ok := c.items[key]; ok {
		ent := node.Value.(*cacheEntry)
		if now.Before(ent.createdAt.Add(c.ttl)) {
			return
		}
		c.removeElement(node)
	}

	node := c.evictList.PushFront(&cacheEntry{key: key, page: page, createdAt: now})
	c.items[key] = node

	for c.evictList.Len() > c.size {
		c.removeElement(c.evictList.Back())
	}
}

// GetOrFetch returns the cached page for key or calls fetch. Failed
// fetches are not cached. Concurrent misses on one key may each fetch.
func (c *searchCache) GetOrFetch(ctx context.Context, key string, fetch func(context.Context) (*Page, error)) (*Page, bool, error) {
	if page, ok := c.Get(key); ok {
		return page, true, nil
	}

	page, err := fetch(ctx)
	if err != nil {
		return nil, false, err
	}

	c.Put(key, page)
	return page, false, nil
}

// Len returns the number of stored entries, expired ones included
func (c *searchCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.evictList.Len()
}

func (c *searchCache) removeElement(node *list.Element) {
	if node == nil {
		return
	}
	c.evictList.Remove(node)
	delete(c.items, node.Value.(*cacheEntry).key)
}
