package server

import (
	"cmp"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kitsunedns/kitsunedns/internal/dns"
)

// maxTrackedDomains caps the per-domain counter map. A random-subdomain
// flood stops being tracked individually once the cap is reached; the
// aggregate counters still see every query.
const maxTrackedDomains = 10000

// Stats collects serving counters. All methods are safe for concurrent use.
//
// Hot-path counters are atomics. The labeled breakdowns (per source, per
// query type, per domain) sit behind a mutex and are touched once per
// response, after the reply bytes are already built.
type Stats struct {
	started time.Time

	queries        atomic.Uint64
	responses      atomic.Uint64
	malformed      atomic.Uint64
	dropped        atomic.Uint64
	servfail       atomic.Uint64
	nxdomain       atomic.Uint64
	latencyTotalNs atomic.Uint64

	mu       sync.Mutex
	bySource map[string]uint64
	byType   map[string]uint64
	byDomain map[string]uint64
}

// NewStats creates a statistics collector. Uptime and QPS are measured from
// this call.
func NewStats() *Stats {
	return &Stats{
		started:  time.Now(),
		bySource: make(map[string]uint64),
		byType:   make(map[string]uint64),
		byDomain: make(map[string]uint64),
	}
}

// RecordQuery records one received datagram, before parsing.
func (s *Stats) RecordQuery() {
	s.queries.Add(1)
}

// RecordMalformed records a datagram that failed parsing or validation and
// was dropped without a reply.
func (s *Stats) RecordMalformed() {
	s.malformed.Add(1)
}

// RecordDrop records a query dropped before handling, by the rate limiter
// or because the server was at capacity.
func (s *Stats) RecordDrop() {
	s.dropped.Add(1)
}

// RecordResponse records one completed response: its outcome, where the
// answer came from, and how long resolution took.
func (s *Stats) RecordResponse(q dns.Question, rcode dns.RCode, source string, latency time.Duration) {
	s.responses.Add(1)
	switch rcode {
	case dns.RCodeServFail:
		s.servfail.Add(1)
	case dns.RCodeNXDomain:
		s.nxdomain.Add(1)
	}
	if latency > 0 {
		s.latencyTotalNs.Add(uint64(latency.Nanoseconds()))
	}

	name := dns.NormalizeName(q.Name)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.bySource[source]++
	s.byType[q.Type.String()]++
	if _, tracked := s.byDomain[name]; tracked || len(s.byDomain) < maxTrackedDomains {
		s.byDomain[name]++
	}
}

// DomainCount is one entry of the top-queried-domains list.
type DomainCount struct {
	Name  string `json:"name"`
	Count uint64 `json:"count"`
}

// StatsSnapshot is a point-in-time view of the serving counters.
type StatsSnapshot struct {
	UptimeSeconds float64 `json:"uptime_seconds"`

	Queries   uint64 `json:"queries_received"`
	Responses uint64 `json:"responses_sent"`
	Malformed uint64 `json:"malformed_dropped"`
	Dropped   uint64 `json:"rate_limited_dropped"`
	ServFail  uint64 `json:"servfail_responses"`
	NXDomain  uint64 `json:"nxdomain_responses"`

	QPS          float64 `json:"queries_per_second"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`

	BySource   map[string]uint64 `json:"by_source"`
	ByType     map[string]uint64 `json:"by_type"`
	TopDomains []DomainCount     `json:"top_domains"`
}

// Snapshot returns the current statistics with the top n queried domains.
// n <= 0 selects a default of 10.
func (s *Stats) Snapshot(n int) StatsSnapshot {
	if n <= 0 {
		n = 10
	}

	queries := s.queries.Load()
	responses := s.responses.Load()
	latencyNs := s.latencyTotalNs.Load()

	uptime := time.Since(s.started).Seconds()
	qps := 0.0
	if uptime > 0 {
		qps = float64(queries) / uptime
	}
	avgLatencyMs := 0.0
	if responses > 0 {
		avgLatencyMs = float64(latencyNs) / float64(responses) / 1e6
	}

	s.mu.Lock()
	bySource := maps.Clone(s.bySource)
	byType := maps.Clone(s.byType)
	top := topDomainsLocked(s.byDomain, n)
	s.mu.Unlock()

	return StatsSnapshot{
		UptimeSeconds: uptime,
		Queries:       queries,
		Responses:     responses,
		Malformed:     s.malformed.Load(),
		Dropped:       s.dropped.Load(),
		ServFail:      s.servfail.Load(),
		NXDomain:      s.nxdomain.Load(),
		QPS:           qps,
		AvgLatencyMs:  avgLatencyMs,
		BySource:      bySource,
		ByType:        byType,
		TopDomains:    top,
	}
}

// topDomainsLocked extracts the n most queried domains, highest count
// first, ties broken by name so the order is stable.
func topDomainsLocked(byDomain map[string]uint64, n int) []DomainCount {
	all := make([]DomainCount, 0, len(byDomain))
	for name, count := range byDomain {
		all = append(all, DomainCount{Name: name, Count: count})
	}
	slices.SortFunc(all, func(a, b DomainCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	if len(all) > n {
		all = all[:n]
	}
	return all
}
