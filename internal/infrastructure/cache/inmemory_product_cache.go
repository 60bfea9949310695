package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/omorfo/backend/internal/domain/catalog"
)

// entry holds a cached product with its expiration
type entry struct {
	product   catalog.Product
	expiresAt time.Time
}

// InMemoryProductCache implements ProductCache using an in-memory map.
// Suitable for single-instance deployments and testing.
type InMemoryProductCache struct {
	mu        sync.RWMutex
	entries   map[uuid.UUID]entry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryProductCache creates an in-memory product cache.
// It starts a background goroutine to clean up expired entries.
func NewInMemoryProductCache() *InMemoryProductCache {
	c := &InMemoryProductCache{
		entries:  make(map[uuid.UUID]entry),
		stopChan: make(chan struct{}),
	}

	c.wg.Add(1)
	go c.cleanupLoop()

	return c
}

// Get returns the cached product or ErrCacheMiss
func (c *InMemoryProductCache) Get(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.entries[id]
	if !exists || time.Now().After(e.expiresAt) {
		return nil, ErrCacheMiss
	}

	product := e.product
	return &product, nil
}

// Set stores a product with the given TTL
func (c *InMemoryProductCache) Set(ctx context.Context, product *catalog.Product, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[product.ID] = entry{
		product:   *product,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Invalidate drops a product from the cache
func (c *InMemoryProductCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, id)
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (c *InMemoryProductCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

// Size returns the number of entries in the cache (for testing/monitoring)
func (c *InMemoryProductCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *InMemoryProductCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *InMemoryProductCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for id, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, id)
		}
	}
}

// Ensure InMemoryProductCache implements ProductCache
var _ ProductCache = (*InMemoryProductCache)(nil)
