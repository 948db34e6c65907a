package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kitsunedns/kitsunedns/internal/api/models"
	"github.com/kitsunedns/kitsunedns/internal/dns"
	"github.com/kitsunedns/kitsunedns/internal/zone"
)

// ListZones godoc
// @Summary List loaded zones
// @Description Returns a summary of every zone file loaded at startup
// @Tags zones
// @Produce json
// @Success 200 {object} models.ZoneListResponse
// @Security ApiKeyAuth
// @Router /zones [get]
func (h *Handler) ListZones(c *gin.Context) {
	summaries := make([]models.ZoneSummary, 0, len(h.c.Zones))
	for _, z := range h.c.Zones {
		summaries = append(summaries, models.ZoneSummary{
			Origin:      z.Origin,
			File:        z.File,
			RecordCount: len(z.Records),
		})
	}

	c.JSON(http.StatusOK, models.ZoneListResponse{
		Zones: summaries,
		Count: len(summaries),
	})
}

// GetZone godoc
// @Summary Get zone details
// @Description Returns every record of a loaded zone; the origin matches with or without a trailing dot
// @Tags zones
// @Produce json
// @Param origin path string true "Zone origin"
// @Success 200 {object} models.ZoneDetailResponse
// @Failure 404 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /zones/{origin} [get]
func (h *Handler) GetZone(c *gin.Context) {
	origin := dns.NormalizeName(c.Param("origin"))

	for i := range h.c.Zones {
		if h.c.Zones[i].Origin == origin {
			c.JSON(http.StatusOK, zoneDetailResponse(&h.c.Zones[i]))
			return
		}
	}

	c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "zone not found: " + origin})
}

func zoneDetailResponse(z *zone.Zone) models.ZoneDetailResponse {
	records := make([]models.ZoneRecord, 0, len(z.Records))
	for _, rec := range z.Records {
		records = append(records, models.ZoneRecord{
			Name:  rec.Name,
			Type:  rec.Type.String(),
			Class: rec.Class.String(),
			TTL:   rec.TTL,
			RData: rec.Text(),
		})
	}
	return models.ZoneDetailResponse{
		Origin:     z.Origin,
		File:       z.File,
		DefaultTTL: z.DefaultTTL,
		Records:    records,
	}
}
