package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kitsunedns/kitsunedns/internal/api/models"
)

// Health godoc
// @Summary Health check
// @Description Returns ok when the server and its record database are reachable
// @Tags system
// @Produce json
// @Success 200 {object} models.StatusResponse
// @Failure 503 {object} models.StatusResponse
// @Router /health [get]
func (h *Handler) Health(c *gin.Context) {
	if h.c.DB == nil || h.c.DB.Health() != nil {
		c.JSON(http.StatusServiceUnavailable, models.StatusResponse{Status: "degraded"})
		return
	}
	c.JSON(http.StatusOK, models.StatusResponse{Status: "ok"})
}
