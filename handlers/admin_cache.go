package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LovationAdmin/storefinder-api/services"
)

// AdminCacheHandler inspects and purges category cache entries. Entries never
// expire on their own, so a purge is how a wrong mapping gets fixed.
type AdminCacheHandler struct {
	Cache services.CategoryCache
}

func NewAdminCacheHandler(cache services.CategoryCache) *AdminCacheHandler {
	return &AdminCacheHandler{Cache: cache}
}

func (h *AdminCacheHandler) GetEntry(c *gin.Context) {
	name := services.NormalizeProductName(c.Param("name"))

	entry, ok, err := h.Cache.Get(c.Request.Context(), name)
	if err != nil {
		log.Printf("[Admin] ❌ Cache read failed for '%s': %v", name, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read cache"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
		return
	}

	c.JSON(http.StatusOK, entry)
}

func (h *AdminCacheHandler) DeleteEntry(c *gin.Context) {
	name := services.NormalizeProductName(c.Param("name"))

	if err := h.Cache.Delete(c.Request.Context(), name); err != nil {
		log.Printf("[Admin] ❌ Cache purge failed for '%s': %v", name, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to purge cache"})
		return
	}

	log.Printf("[Admin] 🧹 Purged category cache for '%s' (by %s)", name, c.GetString("adminSubject"))
	c.JSON(http.StatusOK, gin.H{"deleted": name})
}
