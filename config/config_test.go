package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DATABASE_URL", "REDIS_URL", "CATEGORY_CACHE_BACKEND", "FETCHER_TIMEOUT_SECONDS", "AI_DEDUP_ENABLED", "FRONTEND_URL"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "memory", cfg.CategoryCacheBackend)
	assert.Equal(t, 15*time.Second, cfg.FetcherTimeout)
	assert.Equal(t, time.Second, cfg.GeocoderInterval)
	assert.False(t, cfg.AIDedupEnabled)
	assert.Empty(t, cfg.FrontendURL)
}

func TestLoadPicksCacheBackend(t *testing.T) {
	t.Setenv("CATEGORY_CACHE_BACKEND", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	assert.Equal(t, "redis", Load().CategoryCacheBackend)

	t.Setenv("DATABASE_URL", "postgres://localhost/storefinder")
	assert.Equal(t, "postgres", Load().CategoryCacheBackend)

	t.Setenv("CATEGORY_CACHE_BACKEND", " Memory ")
	assert.Equal(t, "memory", Load().CategoryCacheBackend)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FETCHER_TIMEOUT_SECONDS", "3")
	t.Setenv("AI_DEDUP_ENABLED", "true")
	t.Setenv("GOOGLE_MAPS_API_KEY", "  abc  ")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "not-a-number")

	cfg := Load()

	assert.Equal(t, 3*time.Second, cfg.FetcherTimeout)
	assert.True(t, cfg.AIDedupEnabled)
	assert.Equal(t, "abc", cfg.GoogleMapsAPIKey)
	assert.Equal(t, 100, cfg.RateLimitPerMinute)
}
