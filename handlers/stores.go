package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/LovationAdmin/storefinder-api/models"
	"github.com/LovationAdmin/storefinder-api/services"
	"github.com/LovationAdmin/storefinder-api/utils"
)

// LocationService is the Places surface used by the location endpoints.
type LocationService interface {
	Autocomplete(ctx context.Context, input string) ([]models.Prediction, error)
	Verify(ctx context.Context, req models.VerificationRequest) (models.VerificationResponse, error)
}

// StoresHandler exposes each fetcher and dedup policy on its own.
type StoresHandler struct {
	Nearby   services.StoreFetcher
	Shopping services.StoreFetcher
	Web      services.StoreFetcher
	AIDedup  services.StoreDeduplicator
	Places   LocationService

	Timeout       time.Duration
	DefaultRadius int
}

func (h *StoresHandler) fetchContext(c *gin.Context) (context.Context, context.CancelFunc) {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return context.WithTimeout(c.Request.Context(), timeout)
}

func (h *StoresHandler) NearbyStores(c *gin.Context) {
	var req models.NearbyStoresRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if req.UserLat == nil || req.UserLng == nil || !utils.ValidLatLng(*req.UserLat, *req.UserLng) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userLat and userLng are required"})
		return
	}
	if len(req.Categories) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "categories are required"})
		return
	}

	radius := req.Radius
	if radius <= 0 {
		radius = h.DefaultRadius
	}

	ctx, cancel := h.fetchContext(c)
	defer cancel()

	stores, err := h.Nearby.Search(ctx, services.SearchParams{
		Lat:          *req.UserLat,
		Lng:          *req.UserLng,
		RadiusMeters: radius,
		Categories:   req.Categories,
		Limit:        req.MaxResults,
	})
	if err != nil {
		log.Printf("[Stores] ❌ Nearby search failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch nearby stores"})
		return
	}

	c.JSON(http.StatusOK, models.StoresResponse{Stores: stores, TotalResults: len(stores)})
}

func (h *StoresHandler) ShoppingSearch(c *gin.Context) {
	var req models.ShoppingSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	ctx, cancel := h.fetchContext(c)
	defer cancel()

	stores, err := h.Shopping.Search(ctx, services.SearchParams{Query: req.Query, Limit: req.Limit})
	if err != nil {
		log.Printf("[Stores] ❌ Shopping search failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch shopping results"})
		return
	}

	c.JSON(http.StatusOK, models.StoresResponse{Stores: stores, TotalResults: len(stores)})
}

func (h *StoresHandler) WebSearch(c *gin.Context) {
	var req models.WebSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if strings.TrimSpace(req.ProductName) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "productName is required"})
		return
	}

	ctx, cancel := h.fetchContext(c)
	defer cancel()

	stores, err := h.Web.Search(ctx, services.SearchParams{ProductName: req.ProductName, Location: req.Location})
	if err != nil {
		log.Printf("[Stores] ❌ Web search failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search the web"})
		return
	}

	c.JSON(http.StatusOK, models.StoresResponse{Stores: stores, TotalResults: len(stores)})
}

func (h *StoresHandler) Dedupe(c *gin.Context) {
	var req models.DedupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if req.Stores == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stores are required"})
		return
	}

	out := services.DedupeByIdentity(req.Stores, req.MaxResults)
	c.JSON(http.StatusOK, models.DedupResponse{
		DeduplicatedStores: out,
		Summary:            services.DedupSummaryFor(req.Stores, out),
	})
}

// DedupeAI never fails because of the model: a bad reply returns the input.
func (h *StoresHandler) DedupeAI(c *gin.Context) {
	var req models.DedupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if req.Stores == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stores are required"})
		return
	}

	out, groups, err := h.AIDedup.Dedupe(c.Request.Context(), req.Stores)
	if err != nil {
		log.Printf("[Stores] ⚠️  AI dedup fell back to input: %v", err)
	}
	if groups == nil {
		groups = []models.DuplicateGroup{}
	}

	c.JSON(http.StatusOK, models.AIDedupResponse{DeduplicatedStores: out, Groups: groups})
}

func (h *StoresHandler) Autocomplete(c *gin.Context) {
	var req models.AutocompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if strings.TrimSpace(req.Input) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "input is required"})
		return
	}

	predictions, err := h.Places.Autocomplete(c.Request.Context(), req.Input)
	if err != nil {
		log.Printf("[Places] ❌ Autocomplete failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to autocomplete location"})
		return
	}

	c.JSON(http.StatusOK, models.AutocompleteResponse{Predictions: predictions})
}

func (h *StoresHandler) VerifyStore(c *gin.Context) {
	var req models.VerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if strings.TrimSpace(req.StoreName) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "storeName is required"})
		return
	}

	resp, err := h.Places.Verify(c.Request.Context(), req)
	if err != nil {
		log.Printf("[Places] ❌ Verification failed for '%s': %v", req.StoreName, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify store"})
		return
	}

	c.JSON(http.StatusOK, resp)
}
