package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config gathers every environment setting the API reads at startup.
type Config struct {
	Port        string
	FrontendURL string

	DatabaseURL          string
	RedisURL             string
	CategoryCacheBackend string // postgres|redis|memory

	AnthropicAPIKey  string
	OpenAIAPIKey     string
	PerplexityAPIKey string
	GoogleMapsAPIKey string
	SerpAPIKey       string

	NominatimURL      string
	OverpassURL       string
	GeocoderUserAgent string
	GeocoderInterval  time.Duration

	FetcherTimeout    time.Duration
	DefaultRadius     int
	DefaultMaxResults int
	AIDedupEnabled    bool

	AdminJWTSecret     string
	RateLimitPerMinute int
}

// Load reads the environment. godotenv is applied by main before this runs.
func Load() *Config {
	cfg := &Config{
		Port:                 getEnv("PORT", "8080"),
		FrontendURL:          getEnv("FRONTEND_URL", ""),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		RedisURL:             os.Getenv("REDIS_URL"),
		CategoryCacheBackend: strings.ToLower(strings.TrimSpace(os.Getenv("CATEGORY_CACHE_BACKEND"))),

		// Trim spaces to avoid 401s from copy-pasted keys
		AnthropicAPIKey:  strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")),
		OpenAIAPIKey:     strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		PerplexityAPIKey: strings.TrimSpace(os.Getenv("PERPLEXITY_API_KEY")),
		GoogleMapsAPIKey: strings.TrimSpace(os.Getenv("GOOGLE_MAPS_API_KEY")),
		SerpAPIKey:       strings.TrimSpace(os.Getenv("SERPAPI_API_KEY")),

		NominatimURL:      getEnv("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
		OverpassURL:       getEnv("OVERPASS_URL", "https://overpass-api.de/api/interpreter"),
		GeocoderUserAgent: getEnv("GEOCODER_USER_AGENT", "storefinder-api/1.0"),
		GeocoderInterval:  time.Duration(getEnvInt("GEOCODER_MIN_INTERVAL_MS", 1000)) * time.Millisecond,

		FetcherTimeout:    time.Duration(getEnvInt("FETCHER_TIMEOUT_SECONDS", 15)) * time.Second,
		DefaultRadius:     getEnvInt("DEFAULT_RADIUS_METERS", 5000),
		DefaultMaxResults: getEnvInt("DEFAULT_MAX_RESULTS", 50),
		AIDedupEnabled:    getEnvBool("AI_DEDUP_ENABLED", false),

		AdminJWTSecret:     os.Getenv("ADMIN_JWT_SECRET"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 100),
	}

	if cfg.CategoryCacheBackend == "" {
		switch {
		case cfg.DatabaseURL != "":
			cfg.CategoryCacheBackend = "postgres"
		case cfg.RedisURL != "":
			cfg.CategoryCacheBackend = "redis"
		default:
			cfg.CategoryCacheBackend = "memory"
		}
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return defaultValue
	}
	return value
}
