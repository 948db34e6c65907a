package resolver

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"slices"
	"time"

	"github.com/kitsunedns/kitsunedns/internal/dns"
)

// queryServers asks each server in order until one produces a usable
// response. The question is marshaled once; each attempt patches a fresh
// transaction ID into the same bytes. Timeouts and transport errors advance
// to the next server; only full exhaustion surfaces an error.
func (r *Resolver) queryServers(ctx context.Context, servers []string, q dns.Question) (dns.Message, error) {
	wire, err := dns.BuildQuery(0, q.Name, q.Type, q.Class, true).Marshal()
	if err != nil {
		return dns.Message{}, fmt.Errorf("build upstream query: %w", err)
	}

	var lastErr error
	for _, server := range servers {
		if err := ctx.Err(); err != nil {
			return dns.Message{}, err
		}

		resp, err := r.queryOne(ctx, server, q, wire)
		if err != nil {
			lastErr = err
			r.log.Debug("upstream attempt failed",
				slog.String("server", server),
				slog.String("error", err.Error()))
			continue
		}
		return resp, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("%w: no upstream servers configured", ErrUpstreamUnreachable)
	}
	return dns.Message{}, lastErr
}

// queryOne runs a single exchange with one server: fresh transaction ID,
// recursion desired, same-ID response awaited within the upstream timeout.
func (r *Resolver) queryOne(ctx context.Context, server string, q dns.Question, wire []byte) (dns.Message, error) {
	id := newTransactionID()
	if err := dns.PatchTransactionID(wire, id); err != nil {
		return dns.Message{}, err
	}

	resp, err := r.exchange(ctx, server, wire, id)
	if err != nil {
		return dns.Message{}, err
	}

	// The response must answer the question we asked. Anything else is
	// unusable, whoever sent it.
	respQ, ok := resp.Question()
	if !ok || !respQ.Equal(q) {
		return dns.Message{}, fmt.Errorf("%w: %s answered a different question", ErrUpstreamUnreachable, server)
	}
	return resp, nil
}

// exchange sends one query datagram and reads until a response with the
// matching transaction ID arrives or the deadline passes. Datagrams with a
// foreign ID are ignored, not errors.
func (r *Resolver) exchange(ctx context.Context, server string, query []byte, id uint16) (dns.Message, error) {
	d := net.Dialer{}
	conn, err := d.DialContext(ctx, "udp", server)
	if err != nil {
		return dns.Message{}, fmt.Errorf("%w: %s: %v", ErrUpstreamUnreachable, server, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(r.opts.UpstreamTimeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	_ = conn.SetDeadline(deadline)

	if _, err := conn.Write(query); err != nil {
		return dns.Message{}, fmt.Errorf("%w: %s: %v", ErrUpstreamUnreachable, server, err)
	}

	buf := r.buffers.Get()
	defer r.buffers.Put(buf)

	for {
		n, err := conn.Read(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				return dns.Message{}, fmt.Errorf("%w: %s", ErrUpstreamTimeout, server)
			}
			return dns.Message{}, fmt.Errorf("%w: %s: %v", ErrUpstreamUnreachable, server, err)
		}
		if n < dns.HeaderSize || binary.BigEndian.Uint16(buf[:2]) != id {
			continue
		}

		resp, err := dns.ParseMessage(buf[:n])
		if err != nil {
			return dns.Message{}, fmt.Errorf("%w: %s sent an unparseable response: %v", ErrUpstreamUnreachable, server, err)
		}
		return resp, nil
	}
}

// iterate follows referrals itself. The first query goes to the configured
// upstreams; every referral hop after that costs one unit of the depth
// budget, including address sub-resolution for glueless referrals.
func (r *Resolver) iterate(ctx context.Context, q dns.Question) (dns.Message, error) {
	budget := r.opts.MaxDepth

	resp, err := r.queryServers(ctx, r.opts.Upstreams, q)
	if err != nil {
		return dns.Message{}, err
	}

	for isReferral(resp) {
		if budget <= 0 {
			return dns.Message{}, fmt.Errorf("%w: referral chain for %s longer than %d hops",
				ErrRecursionLimit, q.Name, r.opts.MaxDepth)
		}
		budget--

		next := r.nextServers(ctx, resp, &budget)
		if len(next) == 0 {
			// Nowhere further to go. Hand back what the last server
			// said rather than inventing an answer.
			return resp, nil
		}

		resp, err = r.queryServers(ctx, next, q)
		if err != nil {
			return dns.Message{}, err
		}
	}
	return resp, nil
}

// isReferral reports whether a response delegates instead of answering:
// NOERROR, empty answer section, NS records in the authority section.
func isReferral(msg dns.Message) bool {
	if msg.RCode() != dns.RCodeNoError || len(msg.Answers) > 0 {
		return false
	}
	for _, rr := range msg.Authorities {
		if rr.Type == dns.TypeNS {
			return true
		}
	}
	return false
}

// nextServers extracts the servers a referral points at. Glue addresses in
// the additional section are used directly; a glueless referral triggers a
// sub-resolution of one nameserver's address, charged against the shared
// depth budget.
func (r *Resolver) nextServers(ctx context.Context, resp dns.Message, budget *int) []string {
	var targets []string
	for _, rr := range resp.Authorities {
		if rr.Type != dns.TypeNS {
			continue
		}
		if target, ok := rr.TargetName(); ok {
			targets = append(targets, dns.NormalizeName(target))
		}
	}
	if len(targets) == 0 {
		return nil
	}

	var servers []string
	for _, rr := range resp.Additionals {
		if rr.Type != dns.TypeA && rr.Type != dns.TypeAAAA {
			continue
		}
		if !slices.Contains(targets, dns.NormalizeName(rr.Name)) {
			continue
		}
		if addr, ok := netip.AddrFromSlice(rr.Data); ok {
			servers = append(servers, net.JoinHostPort(addr.String(), r.referralPort))
		}
	}
	if len(servers) > 0 {
		return servers
	}

	return r.resolveNameserver(ctx, targets[0], budget)
}

// resolveNameserver finds addresses for a glueless referral target: the
// authoritative store first, then one depth-charged exchange against the
// configured upstreams. Referrals inside the sub-resolution are not
// followed; the budget keeps the whole walk finite.
func (r *Resolver) resolveNameserver(ctx context.Context, target string, budget *int) []string {
	if addrs := addressesOf(r.store.Lookup(target, dns.TypeA, dns.ClassIN), r.referralPort); len(addrs) > 0 {
		return addrs
	}

	if *budget <= 0 {
		return nil
	}
	*budget--

	resp, err := r.queryServers(ctx, r.opts.Upstreams, dns.Question{
		Name:  target,
		Type:  dns.TypeA,
		Class: dns.ClassIN,
	})
	if err != nil {
		r.log.Debug("nameserver address lookup failed",
			slog.String("target", target),
			slog.String("error", err.Error()))
		return nil
	}
	return addressesOf(resp.Answers, r.referralPort)
}

// addressesOf converts A/AAAA records to host:port strings for dialing.
func addressesOf(records []dns.ResourceRecord, port string) []string {
	var servers []string
	for _, rr := range records {
		if rr.Type != dns.TypeA && rr.Type != dns.TypeAAAA {
			continue
		}
		if addr, ok := netip.AddrFromSlice(rr.Data); ok {
			servers = append(servers, net.JoinHostPort(addr.String(), port))
		}
	}
	return servers
}

// ensurePort appends the default DNS port to addresses that lack one.
func ensurePort(addr string) string {
	if _, _, err := net.SplitHostPort(addr); err == nil {
		return addr
	}
	return net.JoinHostPort(addr, "53")
}
