// Package api provides the REST management API for KitsuneDNS.
// It exposes endpoints for health checks, statistics, record management,
// cache control, and zone inspection via a Gin-based HTTP server, plus an
// embedded status page at the root.
//
// Security note: do not expose the API to untrusted networks without
// configuring an API key.
package api

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kitsunedns/kitsunedns/internal/api/handlers"
	"github.com/kitsunedns/kitsunedns/internal/api/middleware"
	"github.com/kitsunedns/kitsunedns/internal/config"
	"github.com/kitsunedns/kitsunedns/internal/server"
)

// Server is the management REST API server. It reads the same components
// the DNS serving path runs on, so counters and records reflect live state.
type Server struct {
	cfg        config.Config
	logger     *slog.Logger
	engine     *gin.Engine
	httpServer *http.Server
}

// New builds the API server over bootstrapped components. Panics when
// components are nil; a nil logger disables request logging.
func New(cfg config.Config, c *server.Components, logger *slog.Logger) *Server {
	if c == nil {
		panic("api.New: components are nil")
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.SlogRequestLogger(logger))

	h := handlers.New(cfg, c, logger)
	RegisterRoutes(engine, h, cfg)
	mountStatusPage(engine)

	addr := net.JoinHostPort(cfg.API.Host, strconv.Itoa(cfg.API.Port))
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &Server{cfg: cfg, logger: logger, engine: engine, httpServer: httpServer}
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	if s.httpServer == nil {
		return ""
	}
	return s.httpServer.Addr
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// ListenAndServe blocks serving requests until Shutdown or failure.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
