package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/LovationAdmin/storefinder-api/models"
	"github.com/LovationAdmin/storefinder-api/services"
	"github.com/LovationAdmin/storefinder-api/utils"
)

// StoreSearcher runs the full pipeline.
type StoreSearcher interface {
	Search(ctx context.Context, req models.SearchRequest) (models.SearchResponse, error)
}

type SearchHandler struct {
	Searcher StoreSearcher
}

func NewSearchHandler(searcher StoreSearcher) *SearchHandler {
	return &SearchHandler{Searcher: searcher}
}

func (h *SearchHandler) Search(c *gin.Context) {
	var req models.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if strings.TrimSpace(req.ProductName) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "productName is required"})
		return
	}
	if strings.TrimSpace(req.Location) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location is required"})
		return
	}

	resp, err := h.Searcher.Search(c.Request.Context(), req)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, resp)
	case errors.Is(err, services.ErrLocationNotFound):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid Location"})
	case errors.Is(err, services.ErrNoCategories):
		resp.Stores = []models.Store{}
		resp.TotalResults = 0
		resp.Message = services.ErrNoCategories.Error()
		c.JSON(http.StatusOK, resp)
	default:
		utils.SafeError("[Search] ❌ %q in %q: %v", req.ProductName, req.Location, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
	}
}
