package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"sync"
	"time"

	"github.com/kitsunedns/kitsunedns/internal/dns"
	"github.com/kitsunedns/kitsunedns/internal/pool"
)

const (
	// readTimeout bounds each socket read so the accept loop notices
	// context cancellation within a second.
	readTimeout = 1 * time.Second

	// DefaultMaxConcurrency caps in-flight queries when the config does not.
	DefaultMaxConcurrency = 512

	// DefaultReadBufferBytes is the kernel receive buffer requested for the
	// listening socket. Query bursts beyond the service rate queue in the
	// kernel instead of being lost.
	DefaultReadBufferBytes = 1 << 20
)

// UDPServer serves DNS queries over a single UDP socket.
//
// One goroutine reads datagrams; each accepted query is handled on its own
// goroutine, admitted through a semaphore so a flood cannot spawn unbounded
// handlers. Over-capacity and over-rate-limit queries are dropped and
// counted, never queued.
type UDPServer struct {
	Logger  *slog.Logger
	Handler *QueryHandler
	Limiter *RateLimiter
	Stats   *Stats

	// MaxConcurrency caps in-flight handler goroutines.
	// Zero means DefaultMaxConcurrency.
	MaxConcurrency int

	// ReadBufferBytes is the SO_RCVBUF size requested for the socket.
	// Zero means DefaultReadBufferBytes.
	ReadBufferBytes int

	conn    *net.UDPConn
	wg      sync.WaitGroup
	sem     chan struct{}
	buffers *pool.Pool[[]byte]
}

// Run listens on addr and serves until ctx is cancelled or the socket
// fails. It always returns nil after a clean shutdown.
func (s *UDPServer) Run(ctx context.Context, addr string) error {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return fmt.Errorf("resolve udp address %s: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return fmt.Errorf("listen udp %s: %w", addr, err)
	}
	return s.RunOnConn(ctx, conn)
}

// RunOnConn serves on an already bound socket. Tests use it to bind an
// ephemeral port before starting the loop.
func (s *UDPServer) RunOnConn(ctx context.Context, conn *net.UDPConn) error {
	s.conn = conn
	s.sem = make(chan struct{}, s.maxConcurrency())
	s.buffers = pool.New(func() []byte {
		return make([]byte, dns.MaxIncomingDNSMessageSize)
	})
	s.configureReadBuffer()

	s.Logger.Info("udp server listening",
		slog.String("addr", conn.LocalAddr().String()),
		slog.Int("max_concurrency", s.maxConcurrency()))

	for {
		if ctx.Err() != nil {
			s.Logger.Info("udp server stopping")
			return nil
		}

		payload, remote, err := s.receive()
		if err != nil {
			if isTimeout(err) {
				continue
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.Logger.Error("udp read failed", slog.String("error", err.Error()))
			continue
		}
		if len(payload) == 0 {
			continue
		}

		if !s.Limiter.Allow(clientAddr(remote)) {
			s.Stats.RecordDrop()
			continue
		}

		select {
		case s.sem <- struct{}{}:
		default:
			s.Stats.RecordDrop()
			s.Logger.Warn("query dropped, server at capacity",
				slog.String("client", remote.String()))
			continue
		}

		s.wg.Add(1)
		go s.serveOne(ctx, payload, remote)
	}
}

// Stop closes the socket and waits up to timeout for in-flight handlers.
func (s *UDPServer) Stop(timeout time.Duration) error {
	if s.conn != nil {
		if err := s.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.Logger.Warn("close udp socket", slog.String("error", err.Error()))
		}
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("udp shutdown timed out after %s with queries in flight", timeout)
	}
}

// receive reads one datagram into a pooled buffer and copies it out. The
// copy is what lets the buffer go back to the pool before the handler
// goroutine finishes with the payload.
func (s *UDPServer) receive() ([]byte, *net.UDPAddr, error) {
	if err := s.conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
		return nil, nil, err
	}

	buf := s.buffers.Get()
	defer s.buffers.Put(buf)

	n, remote, err := s.conn.ReadFromUDP(buf)
	if err != nil {
		return nil, nil, err
	}

	payload := make([]byte, n)
	copy(payload, buf[:n])
	return payload, remote, nil
}

// serveOne handles a single query on its own goroutine.
func (s *UDPServer) serveOne(ctx context.Context, payload []byte, remote *net.UDPAddr) {
	defer s.wg.Done()
	defer func() { <-s.sem }()

	resp := s.Handler.Handle(ctx, remote.String(), payload)
	if len(resp) == 0 {
		return
	}
	if _, err := s.conn.WriteToUDP(resp, remote); err != nil {
		s.Logger.Error("udp write failed",
			slog.String("client", remote.String()),
			slog.String("error", err.Error()))
	}
}

// configureReadBuffer asks the kernel for a larger socket receive buffer
// and logs what was actually granted. The grant is capped by the system
// limit (net.core.rmem_max on Linux), so the readback tells operators when
// the request fell short.
func (s *UDPServer) configureReadBuffer() {
	requested := s.ReadBufferBytes
	if requested <= 0 {
		requested = DefaultReadBufferBytes
	}

	if err := s.conn.SetReadBuffer(requested); err != nil {
		s.Logger.Warn("set udp receive buffer",
			slog.Int("requested_bytes", requested),
			slog.String("error", err.Error()))
		return
	}

	granted, err := socketReceiveBuffer(s.conn)
	if err != nil {
		s.Logger.Debug("read back udp receive buffer",
			slog.String("error", err.Error()))
		return
	}
	s.Logger.Info("udp receive buffer configured",
		slog.Int("requested_bytes", requested),
		slog.Int("granted_bytes", granted))
}

func (s *UDPServer) maxConcurrency() int {
	if s.MaxConcurrency > 0 {
		return s.MaxConcurrency
	}
	return DefaultMaxConcurrency
}

// clientAddr extracts the client IP for rate limiting. Unmap folds
// IPv4-mapped IPv6 addresses onto plain IPv4 so a dual-stack listener
// charges both forms to the same bucket.
func clientAddr(remote *net.UDPAddr) netip.Addr {
	return remote.AddrPort().Addr().Unmap()
}

func isTimeout(err error) bool {
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}
