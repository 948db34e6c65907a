package models

import "github.com/kitsunedns/kitsunedns/internal/config"

// APIConfigResponse is a redacted version of APIConfig (no api_key exposed).
type APIConfigResponse struct {
	Enabled bool   `json:"enabled"`
	Host    string `json:"host"`
	Port    int    `json:"port"`
}

// ConfigResponse is the API response for GET /config.
type ConfigResponse struct {
	Server    config.ServerConfig    `json:"server"`
	Resolver  config.ResolverConfig  `json:"resolver"`
	Cache     config.CacheConfig     `json:"cache"`
	Zones     config.ZoneConfig      `json:"zones"`
	Database  config.DatabaseConfig  `json:"database"`
	Logging   config.LoggingConfig   `json:"logging"`
	RateLimit config.RateLimitConfig `json:"rate_limit"`
	API       APIConfigResponse      `json:"api"`
}
