package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/LovationAdmin/storefinder-api/models"
)

// PostgresCategoryCache persists categorizations in product_category_cache.
// Rows are only ever inserted; the newest row for a name wins.
type PostgresCategoryCache struct {
	db *sql.DB
}

func NewPostgresCategoryCache(db *sql.DB) *PostgresCategoryCache {
	return &PostgresCategoryCache{db: db}
}

func (c *PostgresCategoryCache) Get(ctx context.Context, normalizedName string) (*models.CategoryCacheEntry, bool, error) {
	var entry models.CategoryCacheEntry
	var source string

	err := c.db.QueryRowContext(ctx,
		`SELECT product_name_normalized, categories, source, created_at
		 FROM product_category_cache
		 WHERE product_name_normalized = $1
		 ORDER BY created_at DESC, id DESC LIMIT 1`,
		normalizedName,
	).Scan(&entry.ProductNameNormalized, pq.Array(&entry.Categories), &source, &entry.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read category cache: %w", err)
	}

	entry.Source = models.CategorySource(source)
	return &entry, true, nil
}

func (c *PostgresCategoryCache) Put(ctx context.Context, entry models.CategoryCacheEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO product_category_cache (product_name_normalized, categories, source, created_at)
		 VALUES ($1, $2, $3, $4)`,
		entry.ProductNameNormalized, pq.Array(entry.Categories), string(entry.Source), entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to write category cache: %w", err)
	}
	return nil
}

func (c *PostgresCategoryCache) Delete(ctx context.Context, normalizedName string) error {
	_, err := c.db.ExecContext(ctx,
		`DELETE FROM product_category_cache WHERE product_name_normalized = $1`,
		normalizedName,
	)
	if err != nil {
		return fmt.Errorf("failed to purge category cache: %w", err)
	}
	return nil
}
