package loader

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// DatasetLoader produces a fresh dataset
type DatasetLoader interface {
	Load(ctx context.Context) (*Dataset, error)
}

// Cache memoizes a single dataset for the lifetime of the process.
// Invalidate is the only way to force a reload; failed loads are not cached.
type Cache struct {
	loader DatasetLoader

	mu    sync.RWMutex
	data  *Dataset
	gen   uint64
	group singleflight.Group
}

// NewCache wraps a loader
func NewCache(loader DatasetLoader) *Cache {
	return &Cache{loader: loader}
}

// Get returns the cached dataset, loading it on first use.
// Concurrent callers of the same generation share one in-flight load, which
// runs detached from any single caller's cancellation.
func (c *Cache) Get(ctx context.Context) (*Dataset, error) {
	c.mu.RLock()
	data, gen := c.data, c.gen
	c.mu.RUnlock()
	if data != nil {
		return data, nil
	}

	// keyed by generation so a load started before Invalidate is never joined after it
	v, err, _ := c.group.Do(strconv.FormatUint(gen, 10), func() (interface{}, error) {
		c.mu.RLock()
		cached := c.data
		c.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		loaded, err := c.loader.Load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		// an Invalidate during the load discards its result
		if c.gen == gen {
			c.data = loaded
		}
		c.mu.Unlock()
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Dataset), nil
}

// Invalidate drops the cached dataset so the next Get reloads it
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.data = nil
	c.gen++
	c.mu.Unlock()
}

// Loaded reports whether a dataset is currently cached
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data != nil
}
