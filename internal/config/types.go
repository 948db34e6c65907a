package config

import "time"

// ServerConfig contains DNS listener settings.
type ServerConfig struct {
	Host           string `json:"host"`
	Port           int    `json:"port"`
	MaxConcurrency int    `json:"max_concurrency"` // concurrent in-flight queries
}

// ResolverConfig controls the resolution ladder past the authoritative store.
type ResolverConfig struct {
	RecursionEnabled bool     `json:"recursion_enabled"`
	Mode             string   `json:"mode"` // "forward" or "iterate"
	Upstreams        []string `json:"upstreams"`

	UpstreamTimeoutRaw string        `json:"upstream_timeout"` // e.g. "5s"
	UpstreamTimeout    time.Duration `json:"-"`

	MaxRecursionDepth int `json:"max_recursion_depth"`
}

// CacheConfig controls the response cache.
type CacheConfig struct {
	MaxEntries        int    `json:"max_entries"`
	DefaultTTLSeconds int    `json:"default_ttl_seconds"`
	SweepIntervalRaw  string `json:"sweep_interval"` // e.g. "60s"

	SweepInterval time.Duration `json:"-"`
}

// ZoneConfig points the startup loader at zone file sources.
type ZoneConfig struct {
	Directory string   `json:"directory,omitempty"` // every *.zone file in it
	Files     []string `json:"files,omitempty"`     // explicit zone files
}

// DatabaseConfig contains record persistence settings.
type DatabaseConfig struct {
	Path string `json:"path"` // sqlite database file
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level            string            `json:"level"`
	Structured       bool              `json:"structured"`
	StructuredFormat string            `json:"structured_format"`
	IncludePID       bool              `json:"include_pid"`
	ExtraFields      map[string]string `json:"extra_fields,omitempty"`
}

// RateLimitConfig controls admission rate limiting.
type RateLimitConfig struct {
	// GlobalQPS is the server-wide queries per second limit (0 = disabled).
	GlobalQPS float64 `json:"global_qps"`
	// GlobalBurst is the global bucket size.
	GlobalBurst int `json:"global_burst"`
	// IPQPS is the per-client-IP limit (0 = disabled).
	IPQPS float64 `json:"ip_qps"`
	// IPBurst is the per-IP bucket size.
	IPBurst int `json:"ip_burst"`
	// CleanupSeconds is how often stale per-IP entries are dropped.
	CleanupSeconds float64 `json:"cleanup_seconds"`
	// MaxIPEntries caps the number of tracked client IPs.
	MaxIPEntries int `json:"max_ip_entries"`
}

// APIConfig contains management API settings.
//
// APIKey is a secret; the config endpoint must never echo it back.
type APIConfig struct {
	Enabled bool   `json:"enabled"`
	Host    string `json:"host"`
	Port    int    `json:"port"`
	APIKey  string `json:"api_key,omitempty"`
}

// Config is the root configuration structure.
type Config struct {
	Server    ServerConfig    `json:"server"`
	Resolver  ResolverConfig  `json:"resolver"`
	Cache     CacheConfig     `json:"cache"`
	Zones     ZoneConfig      `json:"zones"`
	Database  DatabaseConfig  `json:"database"`
	Logging   LoggingConfig   `json:"logging"`
	RateLimit RateLimitConfig `json:"rate_limit"`
	API       APIConfig       `json:"api"`
}
