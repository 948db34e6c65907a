package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kitsunedns/kitsunedns/internal/api"
	"github.com/kitsunedns/kitsunedns/internal/config"
	"github.com/kitsunedns/kitsunedns/internal/logging"
	"github.com/kitsunedns/kitsunedns/internal/server"
)

// apiStopTimeout bounds the drain of in-flight API requests once the DNS
// side has stopped.
const apiStopTimeout = 5 * time.Second

func main() {
	var (
		configPath = flag.String("config", "", "Path to JSON configuration file (or set KITSUNEDNS_CONFIG)")
		host       = flag.String("host", "", "Override DNS bind host")
		port       = flag.Int("port", 0, "Override DNS bind port")
		noAPI      = flag.Bool("no-api", false, "Disable the management API")
		jsonLogs   = flag.Bool("json-logs", false, "Enable JSON structured logging")
		debug      = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	cfg, err := config.Load(config.ResolveConfigPath(*configPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *noAPI {
		cfg.API.Enabled = false
	}
	if *jsonLogs {
		cfg.Logging.Structured = true
		cfg.Logging.StructuredFormat = "json"
	}
	if *debug {
		cfg.Logging.Level = "DEBUG"
	}

	logger := logging.Configure(logging.Config{
		Level:            cfg.Logging.Level,
		Structured:       cfg.Logging.Structured,
		StructuredFormat: cfg.Logging.StructuredFormat,
		IncludePID:       cfg.Logging.IncludePID,
		ExtraFields:      cfg.Logging.ExtraFields,
	})
	logger.Info("KitsuneDNS starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Resolver.Mode,
		"api", cfg.API.Enabled,
	)
	logger.Info("rate limits",
		"global_qps", cfg.RateLimit.GlobalQPS,
		"global_burst", cfg.RateLimit.GlobalBurst,
		"ip_qps", cfg.RateLimit.IPQPS,
		"ip_burst", cfg.RateLimit.IPBurst,
	)

	c, err := server.Bootstrap(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var apiSrv *api.Server
	if cfg.API.Enabled {
		apiSrv = api.New(cfg, c, logger)
		logger.Info("management api listening", "addr", apiSrv.Addr())
		go func() {
			if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("management api failed", "error", err)
			}
		}()
	}

	runErr := server.NewRunner(logger).RunWithContext(ctx, cfg, c)

	if apiSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), apiStopTimeout)
		if err := apiSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("management api shutdown", "error", err)
		}
		cancel()
	}
	if err := c.Close(); err != nil {
		logger.Warn("closing components", "error", err)
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "server exited with error: %v\n", runErr)
		os.Exit(1)
	}
}
