package util

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/ariebrainware/clinic-reservation/slot"
	"github.com/patrickmn/go-cache"
)

const registryKey = "registry"

// RegistryLoader builds a fresh registry, usually from the item table.
type RegistryLoader func() (*slot.Registry, error)

// ItemCache keeps the built treatment-item registry in memory. A ttl of zero
// keeps it until Invalidate is called.
type ItemCache struct {
	mu    sync.Mutex
	store *cache.Cache
	load  RegistryLoader
	gen   atomic.Uint64 // bumped by Invalidate
}

// NewItemCache returns a cache that fills itself through load.
func NewItemCache(ttl time.Duration, load RegistryLoader) *ItemCache {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &ItemCache{store: cache.New(ttl, 10*time.Minute), load: load}
}

// Registry returns the cached registry, loading it on a miss.
func (c *ItemCache) Registry() (*slot.Registry, error) {
	if v, ok := c.store.Get(registryKey); ok {
		return v.(*slot.Registry), nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.store.Get(registryKey); ok {
		return v.(*slot.Registry), nil
	}
	gen := c.gen.Load()
	reg, err := c.load()
	if err != nil {
		return nil, err
	}
	// an Invalidate during the load means reg may predate the change
	if c.gen.Load() == gen {
		c.store.Set(registryKey, reg, cache.DefaultExpiration)
	}
	return reg, nil
}

// Invalidate drops the cached registry; the next read reloads it. A load
// already in flight is not cached.
func (c *ItemCache) Invalidate() {
	c.gen.Add(1)
	c.store.Delete(registryKey)
}
