package api

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/kitsunedns/kitsunedns/internal/api/handlers"
	"github.com/kitsunedns/kitsunedns/internal/api/middleware"
	"github.com/kitsunedns/kitsunedns/internal/config"

	_ "github.com/kitsunedns/kitsunedns/internal/api/docs" // swagger docs
)

// RegisterRoutes wires every endpoint onto the router.
func RegisterRoutes(r *gin.Engine, h *handlers.Handler, cfg config.Config) {
	// Swagger UI at /swagger/*
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")

	// Optional API key protection.
	if cfg.API.APIKey != "" {
		api.Use(middleware.RequireAPIKey(cfg.API.APIKey))
	}

	api.GET("/health", h.Health)
	api.GET("/stats", h.Stats)

	api.GET("/config", h.GetConfig)
	api.PUT("/config", h.PutConfig)

	api.GET("/records", h.ListRecords)
	api.POST("/records", h.CreateRecord)
	api.DELETE("/records/:id", h.DeleteRecord)

	api.GET("/cache", h.CacheStats)
	api.DELETE("/cache", h.FlushCache)

	api.GET("/zones", h.ListZones)
	api.GET("/zones/:origin", h.GetZone)
}
