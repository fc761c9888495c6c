package muse

import (
	"reflect"
	"sync"
)

// Cache is the two-level mapping of spec §3: resource kind to identity to
// response. A Cache created by Execute lives for that one call; a Cache
// passed in Options is shared by every run that receives it. A run reads it
// at inject time and writes to it once between evaluator levels. Entries are write-once: Merge
// never overwrites a key that is already present.
type Cache struct {
	mu      sync.RWMutex
	entries map[reflect.Type]map[interface{}]interface{}
}

// NewCache returns an empty cache, ready to be passed in Options or built
// on as a run's results accumulate.
func NewCache() *Cache {
	return &Cache{entries: make(map[reflect.Type]map[interface{}]interface{})}
}

// Lookup reports whether a response for (kind, id) is already cached.
func (c *Cache) Lookup(kind reflect.Type, id interface{}) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	byID, ok := c.entries[kind]
	if !ok {
		return nil, false
	}
	v, ok := byID[id]
	return v, ok
}

// Merge writes a fresh batch of responses for a single kind into the
// cache. It is only ever called by the evaluator between levels, after the
// frontier for that kind has been dispatched and resolved; per the
// write-once invariant, keys that already exist are left untouched rather
// than overwritten.
func (c *Cache) Merge(kind reflect.Type, responses map[interface{}]interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	byID, ok := c.entries[kind]
	if !ok {
		byID = make(map[interface{}]interface{}, len(responses))
		c.entries[kind] = byID
	}
	for id, resp := range responses {
		if _, exists := byID[id]; exists {
			continue
		}
		byID[id] = resp
	}
}

// Len reports the total number of cached responses across all kinds.
// Intended for tests and diagnostics, not hot-path use.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, byID := range c.entries {
		n += len(byID)
	}
	return n
}
