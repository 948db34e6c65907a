// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

type Config struct {
	Level            string
	Structured       bool
	StructuredFormat string
	IncludePID       bool
	ExtraFields      map[string]string
}

// Configure builds a slog.Logger per cfg, installs it as the default, and
// returns it. Output always goes to stderr so DNS traffic on stdout pipes
// stays clean for tooling.
func Configure(cfg Config) *slog.Logger {
	level := parseLevel(cfg.Level)
	out := io.Writer(os.Stderr)

	attrs := make([]slog.Attr, 0, len(cfg.ExtraFields)+1)
	for k, v := range cfg.ExtraFields {
		attrs = append(attrs, slog.String(k, v))
	}
	if cfg.IncludePID {
		attrs = append(attrs, slog.Int("pid", os.Getpid()))
	}

	var handler slog.Handler
	if cfg.Structured && strings.ToLower(cfg.StructuredFormat) == "json" {
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	}

	if len(attrs) > 0 {
		handler = handler.WithAttrs(attrs)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// Discard returns a logger that drops everything. Tests hand this to
// components that demand a logger.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func parseLevel(s string) slog.Level {
	s = strings.ToUpper(strings.TrimSpace(s))
	switch s {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
