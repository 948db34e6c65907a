package server

import (
	"net/netip"
	"sync"
	"time"

	"github.com/kitsunedns/kitsunedns/internal/config"
)

// Admission control happens before parsing, so a flood costs one map lookup
// per datagram instead of a parse and a resolution.
//
// Two token buckets gate each query in order:
//   - Global: server-wide query rate
//   - Per-IP: one bucket per client address
//
// A rate or burst of zero (or less) disables that tier. Over-limit queries
// are dropped without a reply; a reply would make the server a reflection
// amplifier for spoofed sources.

// defaultCleanupInterval is how often stale per-IP buckets are swept when
// the config does not say.
const defaultCleanupInterval = time.Minute

// defaultMaxIPEntries caps the per-IP bucket table when the config does not.
const defaultMaxIPEntries = 65536

// RateLimiter applies the global and per-IP admission gates.
// A nil *RateLimiter allows everything.
type RateLimiter struct {
	global *tokenBucket
	perIP  *ipBuckets
}

// NewRateLimiter builds a limiter from config. Zero-valued tiers are
// disabled rather than blocking everything.
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	cleanup := time.Duration(cfg.CleanupSeconds * float64(time.Second))
	if cleanup <= 0 {
		cleanup = defaultCleanupInterval
	}
	maxEntries := cfg.MaxIPEntries
	if maxEntries <= 0 {
		maxEntries = defaultMaxIPEntries
	}
	return &RateLimiter{
		global: &tokenBucket{rate: cfg.GlobalQPS, burst: float64(cfg.GlobalBurst)},
		perIP: &ipBuckets{
			rate:         cfg.IPQPS,
			burst:        float64(cfg.IPBurst),
			cleanupEvery: cleanup,
			maxEntries:   maxEntries,
			states:       make(map[netip.Addr]bucketState),
		},
	}
}

// Allow reports whether a query from addr may proceed. The global bucket is
// checked first; a global deny never charges the client's own bucket.
func (r *RateLimiter) Allow(addr netip.Addr) bool {
	if r == nil {
		return true
	}
	now := time.Now()
	if !r.global.allow(now) {
		return false
	}
	return r.perIP.allow(addr, now)
}

// tokenBucket is a single mutex-guarded bucket. Tokens replenish
// continuously at rate per second up to burst; each query consumes one.
type tokenBucket struct {
	rate  float64
	burst float64

	mu     sync.Mutex
	tokens float64
	last   time.Time
}

func (b *tokenBucket) allow(now time.Time) bool {
	if b.rate <= 0 || b.burst <= 0 {
		return true
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.last.IsZero() {
		b.tokens = b.burst - 1
		b.last = now
		return true
	}

	elapsed := now.Sub(b.last).Seconds()
	b.last = now
	b.tokens = min(b.burst, b.tokens+elapsed*b.rate)
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// ipBuckets tracks one token bucket per client address.
//
// The table is bounded by maxEntries. When a previously unseen address
// arrives at capacity, stale entries are swept first; if the table is still
// full the query is denied, because growing without bound under a spoofed
// source flood is exactly what the cap exists to prevent.
type ipBuckets struct {
	rate         float64
	burst        float64
	cleanupEvery time.Duration
	maxEntries   int

	mu          sync.Mutex
	lastCleanup time.Time
	states      map[netip.Addr]bucketState
}

type bucketState struct {
	tokens float64
	last   time.Time
}

func (p *ipBuckets) allow(addr netip.Addr, now time.Time) bool {
	if p.rate <= 0 || p.burst <= 0 {
		return true
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if now.Sub(p.lastCleanup) >= p.cleanupEvery {
		p.cleanupLocked(now)
	}

	st, ok := p.states[addr]
	if !ok {
		if len(p.states) >= p.maxEntries {
			p.cleanupLocked(now)
			if len(p.states) >= p.maxEntries {
				return false
			}
		}
		p.states[addr] = bucketState{tokens: p.burst - 1, last: now}
		return true
	}

	elapsed := now.Sub(st.last).Seconds()
	st.last = now
	st.tokens = min(p.burst, st.tokens+elapsed*p.rate)
	if st.tokens < 1 {
		p.states[addr] = st
		return false
	}
	st.tokens--
	p.states[addr] = st
	return true
}

// cleanupLocked drops buckets idle for at least one cleanup interval. An
// idle bucket is full again by definition, so dropping it loses nothing.
func (p *ipBuckets) cleanupLocked(now time.Time) {
	for addr, st := range p.states {
		if now.Sub(st.last) >= p.cleanupEvery {
			delete(p.states, addr)
		}
	}
	p.lastCleanup = now
}
