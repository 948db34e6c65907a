package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/kitsunedns/kitsunedns/internal/api/models"
)

// topDomainsInStats bounds the top_domains list in the stats response.
const topDomainsInStats = 10

// Stats godoc
// @Summary Server statistics
// @Description Returns process runtime figures, host figures, DNS serving counters, and cache counters
// @Tags system
// @Produce json
// @Success 200 {object} models.StatsResponse
// @Security ApiKeyAuth
// @Router /stats [get]
func (h *Handler) Stats(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	uptime := time.Since(h.startTime)

	resp := models.StatsResponse{
		Uptime:        uptime.Round(time.Second).String(),
		UptimeSeconds: int64(uptime.Seconds()),
		StartTime:     h.startTime,
		GoRoutines:    runtime.NumGoroutine(),
		MemoryAllocMB: float64(m.Alloc) / 1024 / 1024,
		NumCPU:        runtime.NumCPU(),
		System:        h.systemStats(),
		DNS:           h.c.Stats.Snapshot(topDomainsInStats),
		Cache:         cacheStatsResponse(h.c.Cache.Snapshot()),
	}

	c.JSON(http.StatusOK, resp)
}

// systemStats probes host-level figures. Any probe failure drops the whole
// section from the response rather than reporting partial numbers.
func (h *Handler) systemStats() *models.SystemStatsResponse {
	vm, err := mem.VirtualMemory()
	if err != nil {
		h.logDebug("memory probe failed", "error", err)
		return nil
	}

	bootUptime, err := host.Uptime()
	if err != nil {
		h.logDebug("host uptime probe failed", "error", err)
		return nil
	}

	// Interval 0 measures against the previous call instead of blocking.
	percents, err := cpu.Percent(0, false)
	if err != nil || len(percents) == 0 {
		h.logDebug("cpu probe failed", "error", err)
		return nil
	}

	return &models.SystemStatsResponse{
		CPUPercent:        percents[0],
		MemoryUsedMB:      float64(vm.Used) / 1024 / 1024,
		MemoryTotalMB:     float64(vm.Total) / 1024 / 1024,
		MemoryUsedPercent: vm.UsedPercent,
		HostUptimeSeconds: bootUptime,
	}
}
