package models

import (
	"time"

	"github.com/kitsunedns/kitsunedns/internal/server"
)

// StatsResponse is the GET /stats body: process runtime figures, host
// figures when they can be probed, and the DNS serving counters.
type StatsResponse struct {
	Uptime        string    `json:"uptime"`
	UptimeSeconds int64     `json:"uptime_seconds"`
	StartTime     time.Time `json:"start_time"`
	GoRoutines    int       `json:"goroutines"`
	MemoryAllocMB float64   `json:"memory_alloc_mb"`
	NumCPU        int       `json:"num_cpu"`

	System *SystemStatsResponse `json:"system,omitempty"`
	DNS    server.StatsSnapshot `json:"dns"`
	Cache  CacheStatsResponse   `json:"cache"`
}

// SystemStatsResponse contains host-level figures. Omitted from the
// response when the platform probes fail.
type SystemStatsResponse struct {
	CPUPercent        float64 `json:"cpu_percent"`
	MemoryUsedMB      float64 `json:"memory_used_mb"`
	MemoryTotalMB     float64 `json:"memory_total_mb"`
	MemoryUsedPercent float64 `json:"memory_used_percent"`
	HostUptimeSeconds uint64  `json:"host_uptime_seconds"`
}

// CacheStatsResponse contains response cache counters.
type CacheStatsResponse struct {
	Entries     int     `json:"entries"`
	MaxEntries  int     `json:"max_entries"`
	Hits        uint64  `json:"hits"`
	Misses      uint64  `json:"misses"`
	Evictions   uint64  `json:"evictions"`
	Expirations uint64  `json:"expirations"`
	HitRate     float64 `json:"hit_rate"`
}

// CacheFlushResponse reports how many entries a flush removed.
type CacheFlushResponse struct {
	Flushed int `json:"flushed"`
}
