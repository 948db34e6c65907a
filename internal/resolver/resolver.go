// Package resolver implements the per-query resolution state machine.
//
// Every query walks the same ladder:
//
//  1. Authoritative store. A hit is answered immediately with AA set and is
//     never cached.
//  2. Response cache. A hit is returned with TTLs already aged by the cache.
//  3. Recursion gate. Recursion disabled means SERVFAIL, nothing else.
//  4. Upstream exchange with failover, in forward or iterate mode.
//
// The resolver never hangs a client: every path ends in a response message,
// with SERVFAIL standing in for anything the ladder could not answer.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/kitsunedns/kitsunedns/internal/cache"
	"github.com/kitsunedns/kitsunedns/internal/dns"
	"github.com/kitsunedns/kitsunedns/internal/pool"
	"github.com/kitsunedns/kitsunedns/internal/store"
)

// Default configuration values.
const (
	DefaultUpstreamTimeout = 5 * time.Second
	DefaultMaxDepth        = 10
)

// Resolution failure sentinels. They stay internal to the resolution ladder;
// clients only ever see the SERVFAIL they collapse into.
var (
	ErrUpstreamTimeout     = errors.New("upstream timed out")
	ErrUpstreamUnreachable = errors.New("upstream unreachable")
	ErrRecursionLimit      = errors.New("recursion depth exceeded")
)

// Mode selects how queries the store cannot answer leave the server.
type Mode string

const (
	// ModeForward sends the question to recursive upstreams and trusts
	// them to do the walking.
	ModeForward Mode = "forward"

	// ModeIterate follows referrals itself, hop by hop, within the depth
	// budget.
	ModeIterate Mode = "iterate"
)

// Answer sources, reported alongside each response for the stats layer.
const (
	SourceAuthoritative = "authoritative"
	SourceCache         = "cache"
	SourceUpstream      = "upstream"
	SourceLocal         = "local"
)

// Result is a resolved response plus where it came from.
type Result struct {
	Response dns.Message
	Source   string
}

// Options configures a Resolver. Zero values fall back to defaults in New.
type Options struct {
	RecursionEnabled bool
	Mode             Mode
	Upstreams        []string // host or host:port; bare hosts get :53
	UpstreamTimeout  time.Duration
	MaxDepth         int
}

// Resolver answers DNS questions from the authoritative store, the response
// cache, and configured upstream servers, in that order.
type Resolver struct {
	store   *store.Store
	cache   *cache.MessageCache
	opts    Options
	log     *slog.Logger
	buffers *pool.Pool[[]byte]

	// referralPort is the port referral glue addresses are dialed on.
	// Always 53 outside of tests.
	referralPort string
}

// New creates a Resolver. Upstream addresses without an explicit port get
// port 53. Missing option values fall back to defaults.
func New(st *store.Store, ca *cache.MessageCache, opts Options, logger *slog.Logger) *Resolver {
	if opts.Mode == "" {
		opts.Mode = ModeForward
	}
	if opts.UpstreamTimeout <= 0 {
		opts.UpstreamTimeout = DefaultUpstreamTimeout
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	for i, up := range opts.Upstreams {
		opts.Upstreams[i] = ensurePort(up)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		store: st,
		cache: ca,
		opts:  opts,
		log:   logger,
		buffers: pool.New(func() []byte {
			return make([]byte, dns.MaxIncomingDNSMessageSize)
		}),
		referralPort: "53",
	}
}

// Resolve answers one well-formed query. It returns a complete response for
// every input carrying a question; errors surface only for requests with no
// question section, which the server never forwards here.
func (r *Resolver) Resolve(ctx context.Context, req dns.Message) (Result, error) {
	q, ok := req.Question()
	if !ok {
		return Result{}, fmt.Errorf("%w: request has no question", dns.ErrMalformedMessage)
	}

	if resp, ok := r.answerFromStore(req, q); ok {
		return Result{Response: resp, Source: SourceAuthoritative}, nil
	}

	key := cache.QuestionKey(q)
	if msg, ok := r.cache.Get(key); ok {
		msg.Header.ID = req.Header.ID
		return Result{Response: msg, Source: SourceCache}, nil
	}

	if !r.opts.RecursionEnabled {
		return Result{Response: dns.BuildErrorResponse(req, dns.RCodeServFail), Source: SourceLocal}, nil
	}

	resp, err := r.recurse(ctx, q)
	if err != nil {
		r.log.Warn("resolution failed",
			slog.String("question", q.String()),
			slog.String("error", err.Error()))
		return Result{Response: dns.BuildErrorResponse(req, dns.RCodeServFail), Source: SourceLocal}, nil
	}

	r.cache.Put(key, resp, 0)
	resp.Header.ID = req.Header.ID
	return Result{Response: resp, Source: SourceUpstream}, nil
}

// answerFromStore builds an authoritative response when the store holds
// records for the question. CNAME chasing and ANY fan-out happen inside the
// store lookup.
func (r *Resolver) answerFromStore(req dns.Message, q dns.Question) (dns.Message, bool) {
	answers := r.store.Lookup(q.Name, q.Type, q.Class)
	if len(answers) == 0 {
		return dns.Message{}, false
	}

	return dns.Message{
		Header: dns.Header{
			ID:    req.Header.ID,
			Flags: r.authoritativeFlags(req.Header.Flags),
		},
		Questions:   []dns.Question{q},
		Answers:     answers,
		Additionals: r.glueFor(answers),
	}, true
}

// authoritativeFlags sets QR and AA, echoes the client's RD, and advertises
// RA when recursion is on.
func (r *Resolver) authoritativeFlags(reqFlags uint16) uint16 {
	flags := dns.QRFlag | dns.AAFlag
	flags |= reqFlags & dns.RDFlag
	if r.opts.RecursionEnabled {
		flags |= dns.RAFlag
	}
	return flags
}

// glueFor collects A/AAAA records for names the answers point at (NS
// hosts, MX exchanges, CNAME and SRV targets) so clients can follow them
// without a second round trip.
func (r *Resolver) glueFor(answers []dns.ResourceRecord) []dns.ResourceRecord {
	var glue []dns.ResourceRecord
	seen := map[string]bool{}

	for _, rec := range answers {
		target, ok := rec.TargetName()
		if !ok {
			continue
		}
		name := dns.NormalizeName(target)
		if seen[name] {
			continue
		}
		seen[name] = true

		glue = append(glue, r.store.Lookup(name, dns.TypeA, dns.ClassIN)...)
		glue = append(glue, r.store.Lookup(name, dns.TypeAAAA, dns.ClassIN)...)
	}
	return glue
}

// recurse runs the configured post-cache strategy.
func (r *Resolver) recurse(ctx context.Context, q dns.Question) (dns.Message, error) {
	if r.opts.Mode == ModeIterate {
		return r.iterate(ctx, q)
	}
	return r.queryServers(ctx, r.opts.Upstreams, q)
}

// newTransactionID draws a fresh ID for one upstream exchange.
func newTransactionID() uint16 {
	return uint16(rand.Uint32())
}
