package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/LovationAdmin/storefinder-api/models"
	"github.com/LovationAdmin/storefinder-api/services"
)

type CategoryStrategyHandler struct {
	Service *services.CategoryStrategyService
}

func NewCategoryStrategyHandler(service *services.CategoryStrategyService) *CategoryStrategyHandler {
	return &CategoryStrategyHandler{Service: service}
}

// Generate maps a product name to catalog category tags.
func (h *CategoryStrategyHandler) Generate(c *gin.Context) {
	var req models.CategoryStrategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if strings.TrimSpace(req.ProductName) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "productName is required"})
		return
	}

	strategy := h.Service.GenerateCategories(c.Request.Context(), req.ProductName, req.Location)
	log.Printf("[CategoryStrategy] '%s' -> %v (%s)", req.ProductName, strategy.Tags, strategy.Source)

	c.JSON(http.StatusOK, models.CategoryStrategyResponse{
		ProductName: req.ProductName,
		SearchTerms: strategy.Tags,
		Source:      strategy.Source,
	})
}
