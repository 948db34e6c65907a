// Package config loads and validates the server configuration.
//
// Configuration lives in a single JSON file. Load starts from Default and
// lets the file override, so absent keys keep their defaults and a missing
// file yields a fully usable configuration. The resolution core receives
// plain values from here and never reads files or environment itself.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"
)

// DefaultFileName is the config file looked for in the working directory
// when neither the -config flag nor the environment names one.
const DefaultFileName = "kitsunedns.json"

// EnvVar names the environment variable consulted by ResolveConfigPath.
const EnvVar = "KITSUNEDNS_CONFIG"

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           53,
			MaxConcurrency: 512,
		},
		Resolver: ResolverConfig{
			RecursionEnabled:   true,
			Mode:               "forward",
			Upstreams:          []string{"8.8.8.8", "8.8.4.4"},
			UpstreamTimeoutRaw: "5s",
			MaxRecursionDepth:  10,
		},
		Cache: CacheConfig{
			MaxEntries:        1000,
			DefaultTTLSeconds: 300,
			SweepIntervalRaw:  "60s",
		},
		Database: DatabaseConfig{
			Path: "kitsunedns.db",
		},
		Logging: LoggingConfig{
			Level:            "INFO",
			StructuredFormat: "json",
			ExtraFields:      map[string]string{},
		},
		RateLimit: RateLimitConfig{
			GlobalQPS:      100000,
			GlobalBurst:    100000,
			IPQPS:          3000,
			IPBurst:        6000,
			CleanupSeconds: 60,
			MaxIPEntries:   65536,
		},
		API: APIConfig{
			Enabled: true,
			Host:    "0.0.0.0",
			Port:    8053,
		},
	}
}

// ResolveConfigPath picks the config file path: the explicit flag value wins,
// then the environment variable, then the default name in the working
// directory.
func ResolveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(EnvVar); env != "" {
		return env
	}
	return DefaultFileName
}

// Load reads the configuration file at path over the defaults and validates
// the result. A missing file is not an error; the defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// fall through to validation with defaults
	case err != nil:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks and normalizes the configuration in place.
func (cfg *Config) Validate() error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return errors.New("server.port must be 1..65535")
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.MaxConcurrency <= 0 {
		cfg.Server.MaxConcurrency = 512
	}

	cfg.Resolver.Mode = strings.ToLower(strings.TrimSpace(cfg.Resolver.Mode))
	if cfg.Resolver.Mode == "" {
		cfg.Resolver.Mode = "forward"
	}
	if cfg.Resolver.Mode != "forward" && cfg.Resolver.Mode != "iterate" {
		return fmt.Errorf("resolver.mode must be \"forward\" or \"iterate\", got %q", cfg.Resolver.Mode)
	}
	if len(cfg.Resolver.Upstreams) == 0 {
		cfg.Resolver.Upstreams = []string{"8.8.8.8", "8.8.4.4"}
	}
	timeout, err := parseDuration(cfg.Resolver.UpstreamTimeoutRaw, 5*time.Second)
	if err != nil {
		return fmt.Errorf("resolver.upstream_timeout: %w", err)
	}
	cfg.Resolver.UpstreamTimeout = timeout
	if cfg.Resolver.MaxRecursionDepth <= 0 {
		cfg.Resolver.MaxRecursionDepth = 10
	}

	if cfg.Cache.MaxEntries <= 0 {
		cfg.Cache.MaxEntries = 1000
	}
	if cfg.Cache.DefaultTTLSeconds <= 0 {
		cfg.Cache.DefaultTTLSeconds = 300
	}
	sweep, err := parseDuration(cfg.Cache.SweepIntervalRaw, time.Minute)
	if err != nil {
		return fmt.Errorf("cache.sweep_interval: %w", err)
	}
	cfg.Cache.SweepInterval = sweep

	if cfg.Database.Path == "" {
		cfg.Database.Path = "kitsunedns.db"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "INFO"
	}
	cfg.Logging.Level = strings.ToUpper(cfg.Logging.Level)
	if cfg.Logging.StructuredFormat == "" {
		cfg.Logging.StructuredFormat = "json"
	}
	if cfg.Logging.ExtraFields == nil {
		cfg.Logging.ExtraFields = map[string]string{}
	}

	if cfg.RateLimit.GlobalBurst <= 0 {
		cfg.RateLimit.GlobalBurst = 100000
	}
	if cfg.RateLimit.IPBurst <= 0 {
		cfg.RateLimit.IPBurst = 6000
	}
	if cfg.RateLimit.CleanupSeconds <= 0 {
		cfg.RateLimit.CleanupSeconds = 60
	}
	if cfg.RateLimit.MaxIPEntries <= 0 {
		cfg.RateLimit.MaxIPEntries = 65536
	}

	if cfg.API.Host == "" {
		cfg.API.Host = "0.0.0.0"
	}
	if cfg.API.Enabled {
		if cfg.API.Port <= 0 || cfg.API.Port > 65535 {
			return errors.New("api.port must be 1..65535")
		}
	}

	return nil
}

// parseDuration parses a duration string, treating empty as the fallback.
func parseDuration(raw string, fallback time.Duration) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", raw)
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %q", raw)
	}
	return d, nil
}
