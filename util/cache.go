package util

import "sync"

// Cache is a data store of the latest published values
type Cache struct {
	mu  sync.RWMutex
	val map[string]Param
}

// NewCache creates cache
func NewCache() *Cache {
	return &Cache{
		val: make(map[string]Param),
	}
}

// Run adds input channel's values to cache
func (c *Cache) Run(in <-chan Param) {
	for p := range in {
		c.Add(p.UniqueID(), p)
	}
}

// State provides a structured copy of the cached values
func (c *Cache) State() map[string]Param {
	c.mu.RLock()
	defer c.mu.RUnlock()

	res := make(map[string]Param, len(c.val))
	for k, v := range c.val {
		res[k] = v
	}

	return res
}

// All provides a copy of the cached values
func (c *Cache) All() []Param {
	c.mu.RLock()
	defer c.mu.RUnlock()

	res := make([]Param, 0, len(c.val))
	for _, v := range c.val {
		res = append(res, v)
	}

	return res
}

// Add entry to cache
func (c *Cache) Add(key string, param Param) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.val[key] = param
}
