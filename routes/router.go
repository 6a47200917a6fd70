package routes

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/LovationAdmin/storefinder-api/handlers"
	"github.com/LovationAdmin/storefinder-api/middleware"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Category *handlers.CategoryStrategyHandler
	Stores   *handlers.StoresHandler
	Search   *handlers.SearchHandler
	Progress *handlers.ProgressHub
	Admin    *handlers.AdminCacheHandler
}

type RouterConfig struct {
	Version            string
	RateLimitPerMinute int
	AdminJWTSecret     string
	// FrontendURL restricts CORS to one origin; empty allows every origin
	FrontendURL string
}

// NewRouter builds the engine: permissive CORS, request log, rate limit,
// then the /api/v1 routes.
func NewRouter(h Handlers, cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if cfg.FrontendURL != "" {
		corsConfig.AllowOrigins = []string{cfg.FrontendURL}
		log.Printf("🌍 CORS: Allowing origin %s", cfg.FrontendURL)
	} else {
		corsConfig.AllowAllOrigins = true
		log.Println("🌍 CORS: Allowing all origins")
	}
	router.Use(cors.New(corsConfig))
	router.Use(middleware.RequestLogger())

	if cfg.RateLimitPerMinute > 0 {
		router.Use(middleware.RateLimiter(cfg.RateLimitPerMinute, time.Minute))
	}

	v1 := router.Group("/api/v1")
	{
		SetupCategoryRoutes(v1, h.Category)
		SetupStoreRoutes(v1, h.Stores)
		SetupSearchRoutes(v1, h.Search, h.Progress)
		SetupAdminRoutes(v1, h.Admin, cfg.AdminJWTSecret)
	}

	SetupHealthRoute(router, cfg.Version)
	return router
}
