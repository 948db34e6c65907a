package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/kitsunedns/kitsunedns/internal/cache"
	"github.com/kitsunedns/kitsunedns/internal/config"
	"github.com/kitsunedns/kitsunedns/internal/database"
	"github.com/kitsunedns/kitsunedns/internal/resolver"
	"github.com/kitsunedns/kitsunedns/internal/store"
	"github.com/kitsunedns/kitsunedns/internal/zone"
)

// stopTimeout bounds the graceful drain of in-flight queries on shutdown.
const stopTimeout = 5 * time.Second

// Components are the long-lived pieces shared between the DNS serving path
// and the management API: built once by Bootstrap, handed to both.
type Components struct {
	Store *store.Store
	Cache *cache.MessageCache
	DB    *database.DB
	Zones []zone.Zone
	Stats *Stats
}

// Close releases what Bootstrap opened.
func (c *Components) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// Bootstrap opens the record database (applying pending migrations), loads
// persisted and zone-file records into a fresh authoritative store, and
// builds the response cache and stats collector.
//
// Database records load first, zone files second; the store keeps both.
func Bootstrap(cfg config.Config, logger *slog.Logger) (*Components, error) {
	if logger == nil {
		logger = slog.Default()
	}

	st := store.New()

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	persisted, err := db.AllResourceRecords()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load persisted records: %w", err)
	}
	for _, rec := range persisted {
		st.Add(rec)
	}

	zones, err := zone.LoadAll(cfg.Zones.Directory, cfg.Zones.Files)
	if err != nil {
		db.Close()
		return nil, err
	}
	zoneRecords := 0
	zoneValues := make([]zone.Zone, len(zones))
	for i, z := range zones {
		for _, rec := range z.Records {
			st.Add(rec)
		}
		zoneRecords += len(z.Records)
		zoneValues[i] = *z
		logger.Info("zone loaded",
			slog.String("origin", z.Origin),
			slog.String("file", z.File),
			slog.Int("records", len(z.Records)))
	}

	logger.Info("authoritative store loaded",
		slog.Int("database_records", len(persisted)),
		slog.Int("zone_records", zoneRecords))

	defaultTTL := time.Duration(cfg.Cache.DefaultTTLSeconds) * time.Second
	return &Components{
		Store: st,
		Cache: cache.New(cfg.Cache.MaxEntries, defaultTTL),
		DB:    db,
		Zones: zoneValues,
		Stats: NewStats(),
	}, nil
}

// Runner orchestrates DNS server startup and shutdown.
type Runner struct {
	logger *slog.Logger
}

// NewRunner creates a runner. A nil logger falls back to slog.Default.
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{logger: logger}
}

// Run serves DNS on the bootstrapped components until SIGINT or SIGTERM.
func (r *Runner) Run(cfg config.Config, c *Components) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return r.RunWithContext(ctx, cfg, c)
}

// RunWithContext builds the serving chain on top of the bootstrapped
// components and blocks until ctx is cancelled or the server fails.
//
// Two long-lived goroutines run underneath: the UDP accept loop and the
// cache sweeper. The UDP server spawns one goroutine per accepted query
// and drains them during Stop.
func (r *Runner) RunWithContext(ctx context.Context, cfg config.Config, c *Components) error {
	ctx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	go c.Cache.RunSweeper(ctx, cfg.Cache.SweepInterval)

	res := resolver.New(c.Store, c.Cache, resolver.Options{
		RecursionEnabled: cfg.Resolver.RecursionEnabled,
		Mode:             resolver.Mode(cfg.Resolver.Mode),
		Upstreams:        cfg.Resolver.Upstreams,
		UpstreamTimeout:  cfg.Resolver.UpstreamTimeout,
		MaxDepth:         cfg.Resolver.MaxRecursionDepth,
	}, r.logger)

	handler := &QueryHandler{
		Logger:   r.logger,
		Resolver: res,
		Stats:    c.Stats,
		Timeout:  QueryTimeout(cfg.Resolver.UpstreamTimeout, len(cfg.Resolver.Upstreams)),
	}

	udp := &UDPServer{
		Logger:         r.logger,
		Handler:        handler,
		Limiter:        NewRateLimiter(cfg.RateLimit),
		Stats:          c.Stats,
		MaxConcurrency: cfg.Server.MaxConcurrency,
	}

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	r.logger.Info("dns listening",
		slog.String("addr", addr),
		slog.Bool("recursion", cfg.Resolver.RecursionEnabled),
		slog.String("mode", cfg.Resolver.Mode),
		slog.Any("upstreams", cfg.Resolver.Upstreams),
		slog.Duration("query_timeout", handler.Timeout))

	errCh := make(chan error, 1)
	go func() { errCh <- udp.Run(ctx, addr) }()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			cancelRun()
			return err
		}
	}

	return udp.Stop(stopTimeout)
}
