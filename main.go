package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/LovationAdmin/storefinder-api/config"
	"github.com/LovationAdmin/storefinder-api/handlers"
	"github.com/LovationAdmin/storefinder-api/models"
	"github.com/LovationAdmin/storefinder-api/routes"
	"github.com/LovationAdmin/storefinder-api/services"
	"github.com/LovationAdmin/storefinder-api/utils"
)

const version = "1.0.0"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	utils.LogStartup("storefinder-api", version, cfg.Port)
	if utils.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	cache, db, redisClient := buildCategoryCache(cfg)
	if db != nil {
		defer db.Close()
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// AI clients. Missing keys are tolerated: each consumer falls back.
	claude := services.NewClaudeAIService(cfg.AnthropicAPIKey)
	perplexity := services.NewPerplexityClient(cfg.PerplexityAPIKey)
	categorizer := services.NewAICategorizer(services.NewOpenAIEmbedder(cfg.OpenAIAPIKey), services.CategoryTable)

	strategy := services.NewCategoryStrategyService(cache, categorizer)
	geocoder := services.NewGeocoderService(cfg.NominatimURL, cfg.GeocoderUserAgent, cfg.GeocoderInterval)
	aiDedup := services.NewAIDeduplicator(claude)

	overpass := services.NewOverpassFetcher(cfg.OverpassURL)
	shopping := services.NewGoogleShoppingFetcher(cfg.SerpAPIKey)
	web := services.NewAICrawlFetcher(perplexity, models.SourceWebSearch)
	fetchers := []services.StoreFetcher{
		overpass,
		services.NewGoogleMapsFetcher(cfg.GoogleMapsAPIKey),
		web,
		services.NewAICrawlFetcher(claude, models.SourceAICrawl),
		shopping,
	}

	hub := handlers.NewProgressHub()
	aggregator := services.NewAggregator(geocoder, strategy, fetchers, services.AggregatorConfig{
		FetcherTimeout:    cfg.FetcherTimeout,
		DefaultRadius:     cfg.DefaultRadius,
		DefaultMaxResults: cfg.DefaultMaxResults,
	}).WithNotifier(hub)
	if cfg.AIDedupEnabled {
		aggregator.WithAIDedup(aiDedup)
		log.Println("🤖 AI dedup enabled in search pipeline")
	}

	router := routes.NewRouter(routes.Handlers{
		Category: handlers.NewCategoryStrategyHandler(strategy),
		Stores: &handlers.StoresHandler{
			Nearby:        overpass,
			Shopping:      shopping,
			Web:           web,
			AIDedup:       aiDedup,
			Places:        services.NewPlacesService(cfg.GoogleMapsAPIKey),
			Timeout:       cfg.FetcherTimeout,
			DefaultRadius: cfg.DefaultRadius,
		},
		Search:   handlers.NewSearchHandler(aggregator),
		Progress: hub,
		Admin:    handlers.NewAdminCacheHandler(cache),
	}, routes.RouterConfig{
		Version:            version,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		AdminJWTSecret:     cfg.AdminJWTSecret,
		FrontendURL:        cfg.FrontendURL,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("🚀 Server starting on port %s...", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-ctx.Done()
	log.Println("🛑 Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Forced shutdown: %v", err)
	}

	strategy.WaitForCacheWrites()
	if err := hub.Close(); err != nil {
		log.Printf("⚠️ Websocket hub close: %v", err)
	}
	log.Println("👋 Bye")
}

// buildCategoryCache picks the cache backend from config. A configured
// backend that cannot be reached is fatal.
func buildCategoryCache(cfg *config.Config) (services.CategoryCache, *sql.DB, *redis.Client) {
	switch cfg.CategoryCacheBackend {
	case "postgres":
		db, err := config.InitDB(cfg.DatabaseURL)
		if err != nil {
			log.Fatal("Failed to connect to database:", err)
		}
		log.Println("✅ Database connected successfully")

		if err := config.RunMigrations(db); err != nil {
			log.Fatal("Failed to run migrations:", err)
		}
		return services.NewPostgresCategoryCache(db), db, nil

	case "redis":
		client, err := config.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatal("Failed to connect to redis:", err)
		}
		log.Println("✅ Redis connected successfully")
		return services.NewRedisCategoryCache(client), nil, client

	default:
		log.Println("ℹ️  Using in-memory category cache")
		return services.NewMemoryCategoryCache(), nil, nil
	}
}
