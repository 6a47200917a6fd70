package routes

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/LovationAdmin/storefinder-api/handlers"
	"github.com/LovationAdmin/storefinder-api/middleware"
)

// SetupCategoryRoutes sets up the category strategy endpoint.
func SetupCategoryRoutes(rg *gin.RouterGroup, h *handlers.CategoryStrategyHandler) {
	rg.POST("/category-strategy", h.Generate)
}

// SetupStoreRoutes sets up the per-source fetch, dedup and location endpoints.
func SetupStoreRoutes(rg *gin.RouterGroup, h *handlers.StoresHandler) {
	rg.POST("/stores/nearby", h.NearbyStores)
	rg.POST("/stores/shopping", h.ShoppingSearch)
	rg.POST("/stores/web", h.WebSearch)
	rg.POST("/stores/dedupe", h.Dedupe)
	rg.POST("/stores/dedupe/ai", h.DedupeAI)
	rg.POST("/stores/verify", h.VerifyStore)

	rg.POST("/locations/autocomplete", h.Autocomplete)
}

// SetupSearchRoutes sets up the full pipeline and its progress websocket.
func SetupSearchRoutes(rg *gin.RouterGroup, h *handlers.SearchHandler, hub *handlers.ProgressHub) {
	rg.POST("/search", h.Search)
	if hub != nil {
		rg.GET("/ws/searches/:id", hub.HandleWS)
	}
}

// SetupAdminRoutes sets up the JWT protected cache maintenance endpoints.
func SetupAdminRoutes(rg *gin.RouterGroup, h *handlers.AdminCacheHandler, jwtSecret string) {
	admin := rg.Group("/admin")
	admin.Use(middleware.AdminAuth(jwtSecret))
	{
		admin.GET("/category-cache/:name", h.GetEntry)
		admin.DELETE("/category-cache/:name", h.DeleteEntry)
	}
}

// SetupHealthRoute is mounted outside /api/v1.
func SetupHealthRoute(router *gin.Engine, version string) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"version": version,
			"time":    time.Now().Format(time.RFC3339),
		})
	})
}
