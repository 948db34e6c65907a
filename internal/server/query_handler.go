// Package server implements the UDP DNS front end: admission control,
// request parsing, resolution with a per-request budget, and response
// delivery, plus the runner that wires the serving stack together.
package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/kitsunedns/kitsunedns/internal/dns"
	"github.com/kitsunedns/kitsunedns/internal/resolver"
)

// DefaultQueryTimeout bounds a single request when no budget was derived
// from configuration.
const DefaultQueryTimeout = 5 * time.Second

// QueryTimeout derives the per-request budget from the upstream timeout and
// the upstream count. Failover may try every upstream sequentially, each
// with its own timeout, so the request budget must outlive the whole ladder
// plus a little scheduling slack.
func QueryTimeout(upstreamTimeout time.Duration, upstreamCount int) time.Duration {
	if upstreamTimeout <= 0 {
		return DefaultQueryTimeout
	}
	if upstreamCount < 1 {
		upstreamCount = 1
	}
	return upstreamTimeout*time.Duration(upstreamCount) + time.Second
}

// QueryHandler turns one raw datagram into one response, or into silence.
//
// Malformed datagrams are counted and dropped without a reply. Answering
// garbage tells a scanner the port is live and makes the server a
// reflector; a well-formed query, by contrast, always gets a response,
// with SERVFAIL standing in when resolution fails or times out.
type QueryHandler struct {
	Logger   *slog.Logger
	Resolver *resolver.Resolver
	Stats    *Stats

	// Timeout is the per-request resolution budget, normally derived via
	// QueryTimeout. Zero falls back to DefaultQueryTimeout.
	Timeout time.Duration
}

// Handle processes one datagram and returns the wire-format response.
// A nil return means no response is sent.
func (h *QueryHandler) Handle(ctx context.Context, clientAddr string, payload []byte) []byte {
	start := time.Now()
	h.Stats.RecordQuery()

	req, err := dns.ParseRequestBounded(payload)
	if err != nil {
		h.Stats.RecordMalformed()
		h.Logger.Debug("dropped malformed datagram",
			slog.String("client", clientAddr),
			slog.Int("bytes", len(payload)),
			slog.String("error", err.Error()))
		return nil
	}

	h.logRequest(ctx, req, clientAddr)

	res := h.resolve(ctx, req)

	out, err := res.Response.Marshal()
	if err != nil {
		h.Logger.Error("marshal response",
			slog.String("client", clientAddr),
			slog.String("error", err.Error()))
		res = resolver.Result{
			Response: dns.BuildErrorResponse(req, dns.RCodeServFail),
			Source:   resolver.SourceLocal,
		}
		out, err = res.Response.Marshal()
		if err != nil {
			return nil
		}
	}

	if len(out) > maxUDPResponseBytes {
		out, err = truncatedResponse(res.Response)
		if err != nil {
			h.Logger.Error("truncate response",
				slog.String("client", clientAddr),
				slog.String("error", err.Error()))
			return nil
		}
	}

	q, _ := req.Question()
	h.Stats.RecordResponse(q, res.Response.RCode(), res.Source, time.Since(start))
	return out
}

// resolve runs the request through the resolver under the per-request
// budget. The resolver is context-aware end to end, so the deadline rides
// down on ctx instead of through a watchdog goroutine.
func (h *QueryHandler) resolve(ctx context.Context, req dns.Message) resolver.Result {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := h.Resolver.Resolve(ctx, req)
	if err != nil {
		return resolver.Result{
			Response: dns.BuildErrorResponse(req, dns.RCodeServFail),
			Source:   resolver.SourceLocal,
		}
	}
	return res
}

// logRequest logs query details at debug level. The Enabled check keeps the
// question formatting off the hot path when debug logging is off.
func (h *QueryHandler) logRequest(ctx context.Context, req dns.Message, clientAddr string) {
	if !h.Logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	q, ok := req.Question()
	if !ok {
		return
	}
	h.Logger.Debug("query received",
		slog.String("client", clientAddr),
		slog.String("name", q.Name),
		slog.String("type", q.Type.String()),
		slog.Uint64("id", uint64(req.Header.ID)))
}
