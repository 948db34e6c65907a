package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitsunedns/kitsunedns/internal/api/handlers"
	"github.com/kitsunedns/kitsunedns/internal/api/models"
	"github.com/kitsunedns/kitsunedns/internal/config"
	"github.com/kitsunedns/kitsunedns/internal/logging"
)

func TestGetConfig_Success(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 5353
	h := handlers.New(cfg, newTestComponents(t), logging.Discard())

	router := gin.New()
	router.GET("/config", h.GetConfig)

	w := performRequest(router, http.MethodGet, "/config", "")

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.ConfigResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", resp.Server.Host)
	assert.Equal(t, 5353, resp.Server.Port)
	assert.Equal(t, cfg.Resolver.Upstreams, resp.Resolver.Upstreams)
}

func TestGetConfig_NeverEchoesAPIKey(t *testing.T) {
	cfg := config.Default()
	cfg.API.APIKey = "super-secret-key"
	h := handlers.New(cfg, newTestComponents(t), logging.Discard())

	router := gin.New()
	router.GET("/config", h.GetConfig)

	w := performRequest(router, http.MethodGet, "/config", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "super-secret-key")
	assert.NotContains(t, w.Body.String(), "api_key")
}

func TestPutConfig_NotImplemented(t *testing.T) {
	h, _ := newTestHandler(t)

	router := gin.New()
	router.PUT("/config", h.PutConfig)

	w := performRequest(router, http.MethodPut, "/config", `{}`)

	assert.Equal(t, http.StatusNotImplemented, w.Code)
}
