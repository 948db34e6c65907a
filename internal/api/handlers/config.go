package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kitsunedns/kitsunedns/internal/api/models"
)

// GetConfig godoc
// @Summary Current configuration
// @Description Returns the running configuration. The API key is never echoed back.
// @Tags config
// @Produce json
// @Success 200 {object} models.ConfigResponse
// @Security ApiKeyAuth
// @Router /config [get]
func (h *Handler) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, models.ConfigResponse{
		Server:    h.cfg.Server,
		Resolver:  h.cfg.Resolver,
		Cache:     h.cfg.Cache,
		Zones:     h.cfg.Zones,
		Database:  h.cfg.Database,
		Logging:   h.cfg.Logging,
		RateLimit: h.cfg.RateLimit,
		API: models.APIConfigResponse{
			Enabled: h.cfg.API.Enabled,
			Host:    h.cfg.API.Host,
			Port:    h.cfg.API.Port,
		},
	})
}

// PutConfig godoc
// @Summary Update configuration
// @Description Configuration is file-based; runtime updates are not supported
// @Tags config
// @Accept json
// @Produce json
// @Failure 501 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /config [put]
func (h *Handler) PutConfig(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, models.ErrorResponse{
		Error: "configuration is file-based; edit the config file and restart",
	})
}
