package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kitsunedns/kitsunedns/internal/api/models"
	"github.com/kitsunedns/kitsunedns/internal/cache"
)

// CacheStats godoc
// @Summary Response cache counters
// @Description Returns entry count, capacity, and hit/miss/eviction counters
// @Tags cache
// @Produce json
// @Success 200 {object} models.CacheStatsResponse
// @Security ApiKeyAuth
// @Router /cache [get]
func (h *Handler) CacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, cacheStatsResponse(h.c.Cache.Snapshot()))
}

// FlushCache godoc
// @Summary Flush the response cache
// @Description Drops every cached response and reports how many were removed
// @Tags cache
// @Produce json
// @Success 200 {object} models.CacheFlushResponse
// @Security ApiKeyAuth
// @Router /cache [delete]
func (h *Handler) FlushCache(c *gin.Context) {
	flushed := h.c.Cache.Len()
	h.c.Cache.Flush()

	h.logDebug("response cache flushed", "entries", flushed)
	c.JSON(http.StatusOK, models.CacheFlushResponse{Flushed: flushed})
}

func cacheStatsResponse(s cache.Stats) models.CacheStatsResponse {
	hitRate := 0.0
	if lookups := s.Hits + s.Misses; lookups > 0 {
		hitRate = float64(s.Hits) / float64(lookups)
	}
	return models.CacheStatsResponse{
		Entries:     s.Entries,
		MaxEntries:  s.MaxEntries,
		Hits:        s.Hits,
		Misses:      s.Misses,
		Evictions:   s.Evictions,
		Expirations: s.Expirations,
		HitRate:     hitRate,
	}
}
