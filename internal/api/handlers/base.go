// Package handlers implements the REST API endpoint handlers for KitsuneDNS.
//
// REST API Endpoints:
//
// System:
//   - GET /api/v1/health - Health check (verifies the record database)
//   - GET /api/v1/stats - Server statistics (runtime, host, DNS counters, cache)
//   - GET /api/v1/config - Current configuration (API key redacted)
//   - PUT /api/v1/config - Not supported; configuration is file-based
//
// Records (persisted authoritative records):
//   - GET /api/v1/records - List persisted records, optionally ?name= filtered
//   - POST /api/v1/records - Create or update a record (database + live store)
//   - DELETE /api/v1/records/:id - Delete a record by ID
//
// Cache:
//   - GET /api/v1/cache - Response cache counters
//   - DELETE /api/v1/cache - Flush the response cache
//
// Zones (file-loaded, read-only at runtime):
//   - GET /api/v1/zones - List loaded zones
//   - GET /api/v1/zones/:origin - Zone details with all records
//
// Authentication:
//
// When an API key is configured every endpoint requires the X-API-Key
// header. Without a configured key the API is open; keep it bound to
// localhost or a trusted network in that case.
//
// @title KitsuneDNS Management API
// @version 1.0
// @description REST API for inspecting and managing a running KitsuneDNS server.
//
// @host localhost:8053
// @BasePath /api/v1
//
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
package handlers

import (
	"log/slog"
	"time"

	"github.com/kitsunedns/kitsunedns/internal/config"
	"github.com/kitsunedns/kitsunedns/internal/server"
)

// Handler contains dependencies for API handlers. The components come from
// server.Bootstrap and are shared with the DNS serving path; nothing here
// is mutated after construction except through the store and database.
type Handler struct {
	cfg       config.Config
	c         *server.Components
	logger    *slog.Logger
	startTime time.Time
}

// New creates a Handler over the bootstrapped components.
func New(cfg config.Config, c *server.Components, logger *slog.Logger) *Handler {
	return &Handler{
		cfg:       cfg,
		c:         c,
		logger:    logger,
		startTime: time.Now(),
	}
}

func (h *Handler) logWarn(msg string, args ...any) {
	if h.logger != nil {
		h.logger.Warn(msg, args...)
	}
}

func (h *Handler) logDebug(msg string, args ...any) {
	if h.logger != nil {
		h.logger.Debug(msg, args...)
	}
}
