package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/LovationAdmin/storefinder-api/models"
)

const redisCategoryKeyPrefix = "category-cache:"

// RedisCategoryCache keeps one JSON document per product name, no expiry.
type RedisCategoryCache struct {
	client *redis.Client
}

func NewRedisCategoryCache(client *redis.Client) *RedisCategoryCache {
	return &RedisCategoryCache{client: client}
}

func (c *RedisCategoryCache) Get(ctx context.Context, normalizedName string) (*models.CategoryCacheEntry, bool, error) {
	raw, err := c.client.Get(ctx, redisCategoryKeyPrefix+normalizedName).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read category cache: %w", err)
	}

	var entry models.CategoryCacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false, fmt.Errorf("corrupt category cache entry %q: %w", normalizedName, err)
	}
	return &entry, true, nil
}

func (c *RedisCategoryCache) Put(ctx context.Context, entry models.CategoryCacheEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	if err := c.client.Set(ctx, redisCategoryKeyPrefix+entry.ProductNameNormalized, raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to write category cache: %w", err)
	}
	return nil
}

func (c *RedisCategoryCache) Delete(ctx context.Context, normalizedName string) error {
	if err := c.client.Del(ctx, redisCategoryKeyPrefix+normalizedName).Err(); err != nil {
		return fmt.Errorf("failed to purge category cache: %w", err)
	}
	return nil
}
