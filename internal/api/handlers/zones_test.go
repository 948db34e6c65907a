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
	"github.com/kitsunedns/kitsunedns/internal/dns"
	"github.com/kitsunedns/kitsunedns/internal/zone"
)

func zonesRouter(h *handlers.Handler) *gin.Engine {
	router := gin.New()
	router.GET("/zones", h.ListZones)
	router.GET("/zones/:origin", h.GetZone)
	return router
}

func newZonesHandler(t *testing.T) *handlers.Handler {
	t.Helper()
	h, c := newTestHandler(t)
	c.Zones = []zone.Zone{
		{
			Origin:     "example.com",
			File:       "example.zone",
			DefaultTTL: 3600,
			Records: []dns.ResourceRecord{
				must(dns.NewNS("example.com", 3600, "ns1.example.com")),
				must(dns.NewA("ns1.example.com", 3600, "192.0.2.53")),
				must(dns.NewA("www.example.com", 300, "192.0.2.10")),
			},
		},
		{
			Origin:     "internal",
			File:       "internal.zone",
			DefaultTTL: 60,
			Records: []dns.ResourceRecord{
				must(dns.NewA("api.internal", 60, "10.0.0.5")),
			},
		},
	}
	return h
}

func TestListZones(t *testing.T) {
	h := newZonesHandler(t)

	w := performRequest(zonesRouter(h), http.MethodGet, "/zones", "")

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.ZoneListResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Count)
	require.Len(t, resp.Zones, 2)
	assert.Equal(t, "example.com", resp.Zones[0].Origin)
	assert.Equal(t, "example.zone", resp.Zones[0].File)
	assert.Equal(t, 3, resp.Zones[0].RecordCount)
}

func TestListZones_NoneLoaded(t *testing.T) {
	h, _ := newTestHandler(t)

	w := performRequest(zonesRouter(h), http.MethodGet, "/zones", "")

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.ZoneListResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Zero(t, resp.Count)
}

func TestGetZone(t *testing.T) {
	h := newZonesHandler(t)

	w := performRequest(zonesRouter(h), http.MethodGet, "/zones/example.com", "")

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.ZoneDetailResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "example.com", resp.Origin)
	assert.Equal(t, uint32(3600), resp.DefaultTTL)
	require.Len(t, resp.Records, 3)
	assert.Equal(t, "NS", resp.Records[0].Type)
	assert.Equal(t, "ns1.example.com", resp.Records[0].RData)
	assert.Equal(t, "192.0.2.10", resp.Records[2].RData)
}

func TestGetZone_OriginSpellings(t *testing.T) {
	h := newZonesHandler(t)
	router := zonesRouter(h)

	// Trailing dot and case differences all land on the same zone.
	for _, origin := range []string{"example.com", "example.com.", "EXAMPLE.COM"} {
		w := performRequest(router, http.MethodGet, "/zones/"+origin, "")
		assert.Equal(t, http.StatusOK, w.Code, "origin spelling %q", origin)
	}
}

func TestGetZone_NotFound(t *testing.T) {
	h := newZonesHandler(t)

	w := performRequest(zonesRouter(h), http.MethodGet, "/zones/missing.example", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}
