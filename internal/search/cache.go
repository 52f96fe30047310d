package search

import (
	"container/list"
	"sync"

	"github.com/hyperjump/katalog/internal/models"
)

// ParseCache is an LRU cache of parsed queries keyed by the raw query text.
// Values are cloned on the way in and out so callers cannot alter entries.
type ParseCache struct {
	capacity int
	cache    map[string]*list.Element
	lru      *list.List
	mu       sync.Mutex
}

type cacheEntry struct {
	key   string
	value *models.ParsedQuery
}

// NewParseCache creates a new cache with the given capacity.
func NewParseCache(capacity int) *ParseCache {
	return &ParseCache{
		capacity: capacity,
		cache:    make(map[string]*list.Element),
		lru:      list.New(),
	}
}

// Get returns the cached parse for key if present.
func (c *ParseCache) Get(key string) (*models.ParsedQuery, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.cache[key]; ok {
		c.lru.MoveToFront(elem)
		return elem.Value.(*cacheEntry).value.Clone(), true
	}
	return nil, false
}

// Set stores the parse for key, evicting the oldest entry if at capacity.
func (c *ParseCache) Set(key string, value *models.ParsedQuery) {
	if c.capacity <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.cache[key]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*cacheEntry).value = value.Clone()
		return
	}

	elem := c.lru.PushFront(&cacheEntry{key: key, value: value.Clone()})
	c.cache[key] = elem

	if c.lru.Len() > c.capacity {
		if oldest := c.lru.Back(); oldest != nil {
			c.lru.Remove(oldest)
			delete(c.cache, oldest.Value.(*cacheEntry).key)
		}
	}
}

// Len returns the number of cached entries.
func (c *ParseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
