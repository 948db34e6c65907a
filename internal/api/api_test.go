// Package api_test provides behavior tests for the API package.
package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitsunedns/kitsunedns/internal/api"
	"github.com/kitsunedns/kitsunedns/internal/api/models"
	"github.com/kitsunedns/kitsunedns/internal/cache"
	"github.com/kitsunedns/kitsunedns/internal/config"
	"github.com/kitsunedns/kitsunedns/internal/database"
	"github.com/kitsunedns/kitsunedns/internal/server"
	"github.com/kitsunedns/kitsunedns/internal/store"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.API.Host = "127.0.0.1"
	cfg.API.Port = 8053
	return cfg
}

func testComponents(t *testing.T) *server.Components {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &server.Components{
		Store: store.New(),
		Cache: cache.New(64, time.Minute),
		DB:    db,
		Stats: server.NewStats(),
	}
}

func newTestServer(t *testing.T, cfg config.Config) *api.Server {
	t.Helper()
	return api.New(cfg, testComponents(t), nil)
}

func performRequest(r http.Handler, method, path string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ============================================================================
// Server Creation Tests
// ============================================================================

func TestNew_CreatesServer(t *testing.T) {
	srv := newTestServer(t, testConfig())

	assert.NotNil(t, srv)
}

func TestNew_PanicsOnNilComponents(t *testing.T) {
	assert.Panics(t, func() {
		api.New(testConfig(), nil, nil)
	})
}

func TestServer_Addr(t *testing.T) {
	cfg := testConfig()
	cfg.API.Host = "0.0.0.0"
	cfg.API.Port = 9090

	srv := newTestServer(t, cfg)

	assert.Equal(t, "0.0.0.0:9090", srv.Addr())
}

func TestServer_Engine(t *testing.T) {
	srv := newTestServer(t, testConfig())

	assert.NotNil(t, srv.Engine())
}

// ============================================================================
// Routes Tests
// ============================================================================

func TestRoutes_HealthEndpoint(t *testing.T) {
	srv := newTestServer(t, testConfig())

	w := performRequest(srv.Engine(), http.MethodGet, "/api/v1/health", "")

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.StatusResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
}

func TestRoutes_StatsEndpoint(t *testing.T) {
	srv := newTestServer(t, testConfig())

	w := performRequest(srv.Engine(), http.MethodGet, "/api/v1/stats", "")

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.StatsResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Uptime)
	assert.Positive(t, resp.NumCPU)
	assert.Equal(t, 64, resp.Cache.MaxEntries)
}

func TestRoutes_ConfigEndpoint(t *testing.T) {
	cfg := testConfig()
	cfg.API.APIKey = ""
	srv := newTestServer(t, cfg)

	w := performRequest(srv.Engine(), http.MethodGet, "/api/v1/config", "")

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoutes_PutConfig_NotImplemented(t *testing.T) {
	srv := newTestServer(t, testConfig())

	w := performRequest(srv.Engine(), http.MethodPut, "/api/v1/config", `{}`)

	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestRoutes_NotFound(t *testing.T) {
	srv := newTestServer(t, testConfig())

	w := performRequest(srv.Engine(), http.MethodGet, "/api/v1/nonexistent", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ============================================================================
// API Key Protection Tests
// ============================================================================

func TestRoutes_WithAPIKey_ValidKey(t *testing.T) {
	cfg := testConfig()
	cfg.API.APIKey = "secret-key"
	srv := newTestServer(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-API-Key", "secret-key")
	w := httptest.NewRecorder()

	srv.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoutes_WithAPIKey_InvalidKey(t *testing.T) {
	cfg := testConfig()
	cfg.API.APIKey = "secret-key"
	srv := newTestServer(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-API-Key", "wrong-key")
	w := httptest.NewRecorder()

	srv.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoutes_WithAPIKey_MissingKey(t *testing.T) {
	cfg := testConfig()
	cfg.API.APIKey = "secret-key"
	srv := newTestServer(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	// No X-API-Key header
	w := httptest.NewRecorder()

	srv.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoutes_NoAPIKey_NoAuth(t *testing.T) {
	cfg := testConfig()
	cfg.API.APIKey = "" // No API key configured
	srv := newTestServer(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()

	srv.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

// ============================================================================
// Server Lifecycle Tests
// ============================================================================

func TestServer_Shutdown(t *testing.T) {
	cfg := testConfig()
	cfg.API.Port = 0 // Let the OS pick a port
	srv := newTestServer(t, cfg)

	// Shutdown should not error even if never started
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := srv.Shutdown(ctx)
	assert.NoError(t, err)
}

// ============================================================================
// Swagger and Status Page Tests
// ============================================================================

func TestRoutes_SwaggerEndpoint(t *testing.T) {
	srv := newTestServer(t, testConfig())

	w := performRequest(srv.Engine(), http.MethodGet, "/swagger/index.html", "")

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoutes_StatusPage(t *testing.T) {
	srv := newTestServer(t, testConfig())

	w := performRequest(srv.Engine(), http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "KitsuneDNS")
}

// The status page is public; only /api/v1 sits behind the key.
func TestRoutes_StatusPageBypassesAPIKey(t *testing.T) {
	cfg := testConfig()
	cfg.API.APIKey = "secret-key"
	srv := newTestServer(t, cfg)

	w := performRequest(srv.Engine(), http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, w.Code)
}
