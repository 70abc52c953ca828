package cache

import (
	"sync"

	"github.com/temoto/robotstxt"
)

// MemoryCache is an in-memory implementation of the Cache interface.
// The cache lives for the process lifetime; rules are never re-fetched
// within a run.
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string]*robotstxt.RobotsData
	seen map[string]struct{}
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		data: make(map[string]*robotstxt.RobotsData),
		seen: make(map[string]struct{}),
	}
}

// Get returns the cached rules and whether the origin has been resolved.
// A resolved origin with nil rules means "allow everything".
func (c *MemoryCache) Get(origin string) (*robotstxt.RobotsData, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, resolved := c.seen[origin]
	return c.data[origin], resolved
}

func (c *MemoryCache) Put(origin string, data *robotstxt.RobotsData) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seen[origin] = struct{}{}
	c.data[origin] = data
}

// Size returns the number of resolved origins. Test helper.
func (c *MemoryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.seen)
}
