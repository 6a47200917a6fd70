package services

import (
	"context"
	"sync"
	"time"

	"github.com/LovationAdmin/storefinder-api/models"
)

// CategoryCache stores product-name categorizations. Put appends; Get returns
// the most recent entry for a key. Delete is only used by the admin purge.
type CategoryCache interface {
	Get(ctx context.Context, normalizedName string) (*models.CategoryCacheEntry, bool, error)
	Put(ctx context.Context, entry models.CategoryCacheEntry) error
	Delete(ctx context.Context, normalizedName string) error
}

// MemoryCategoryCache is the process-local backend used when no database or
// Redis is configured.
type MemoryCategoryCache struct {
	mu      sync.RWMutex
	entries map[string]models.CategoryCacheEntry
}

func NewMemoryCategoryCache() *MemoryCategoryCache {
	return &MemoryCategoryCache{entries: make(map[string]models.CategoryCacheEntry)}
}

func (c *MemoryCategoryCache) Get(_ context.Context, normalizedName string) (*models.CategoryCacheEntry, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[normalizedName]
	if !ok {
		return nil, false, nil
	}
	entry.Categories = append([]string{}, entry.Categories...)
	return &entry, true, nil
}

func (c *MemoryCategoryCache) Put(_ context.Context, entry models.CategoryCacheEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	entry.Categories = append([]string{}, entry.Categories...)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[entry.ProductNameNormalized] = entry
	return nil
}

func (c *MemoryCategoryCache) Delete(_ context.Context, normalizedName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, normalizedName)
	return nil
}
