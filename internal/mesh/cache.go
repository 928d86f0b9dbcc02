package mesh

import (
	"fmt"
	"sync"
)

// Cache loads each mesh source once and shares it between instances.
// Safe for concurrent use. Meshes returned from it must not be modified.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*cacheEntry
}

type cacheEntry struct {
	mesh *Mesh
	err  error
}

func NewCache() *Cache {
	return &Cache{items: make(map[string]*cacheEntry)}
}

// Get resolves src as a builtin name or a PLY path. param is passed to
// Builtin and ignored for files. Load errors are cached too.
func (c *Cache) Get(src string, param int) (*Mesh, error) {
	key := src
	if IsBuiltin(src) {
		key = fmt.Sprintf("%s#%d", src, param)
	}

	c.mu.RLock()
	if e, ok := c.items[key]; ok {
		c.mu.RUnlock()
		return e.mesh, e.err
	}
	c.mu.RUnlock()

	var m *Mesh
	var err error
	if IsBuiltin(src) {
		m, err = Builtin(src, param)
	} else {
		m, err = LoadPLY(src)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.items[key]; ok {
		return e.mesh, e.err
	}
	c.items[key] = &cacheEntry{mesh: m, err: err}
	return m, err
}

// Len returns the number of cached sources.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
