package server

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitsunedns/kitsunedns/internal/dns"
	"github.com/kitsunedns/kitsunedns/internal/resolver"
)

func question(name string, rtype dns.RecordType) dns.Question {
	return dns.Question{Name: name, Type: rtype, Class: dns.ClassIN}
}

func recordNoError(s *Stats, name string) {
	s.RecordResponse(question(name, dns.TypeA), dns.RCodeNoError, resolver.SourceCache, time.Millisecond)
}

func TestStatsCounters(t *testing.T) {
	s := NewStats()

	s.RecordQuery()
	s.RecordQuery()
	s.RecordQuery()
	s.RecordMalformed()
	s.RecordDrop()
	s.RecordResponse(question("example.com", dns.TypeA), dns.RCodeNoError, resolver.SourceAuthoritative, 2*time.Millisecond)
	s.RecordResponse(question("missing.example.com", dns.TypeA), dns.RCodeNXDomain, resolver.SourceUpstream, 4*time.Millisecond)

	snap := s.Snapshot(10)
	assert.Equal(t, uint64(3), snap.Queries)
	assert.Equal(t, uint64(2), snap.Responses)
	assert.Equal(t, uint64(1), snap.Malformed)
	assert.Equal(t, uint64(1), snap.Dropped)
	assert.Equal(t, uint64(0), snap.ServFail)
	assert.Equal(t, uint64(1), snap.NXDomain)
	assert.Equal(t, uint64(1), snap.BySource[resolver.SourceAuthoritative])
	assert.Equal(t, uint64(1), snap.BySource[resolver.SourceUpstream])
	assert.Equal(t, uint64(2), snap.ByType["A"])
	assert.InDelta(t, 3.0, snap.AvgLatencyMs, 0.01)
}

func TestStatsUptimeAndQPS(t *testing.T) {
	s := NewStats()
	s.RecordQuery()

	time.Sleep(20 * time.Millisecond)

	snap := s.Snapshot(10)
	assert.Positive(t, snap.UptimeSeconds)
	assert.Positive(t, snap.QPS)
}

func TestStatsServFail(t *testing.T) {
	s := NewStats()
	s.RecordResponse(question("example.com", dns.TypeA), dns.RCodeServFail, resolver.SourceLocal, time.Millisecond)

	snap := s.Snapshot(10)
	assert.Equal(t, uint64(1), snap.ServFail)
	assert.Equal(t, uint64(1), snap.BySource[resolver.SourceLocal])
}

func TestStatsTopDomains(t *testing.T) {
	s := NewStats()
	for range 3 {
		recordNoError(s, "a.example.com")
	}
	for range 5 {
		recordNoError(s, "b.example.com")
	}
	recordNoError(s, "c.example.com")

	top := s.Snapshot(2).TopDomains
	require.Len(t, top, 2)
	assert.Equal(t, DomainCount{Name: "b.example.com", Count: 5}, top[0])
	assert.Equal(t, DomainCount{Name: "a.example.com", Count: 3}, top[1])
}

func TestStatsTopDomainsTieBreaksByName(t *testing.T) {
	s := NewStats()
	recordNoError(s, "zeta.example.com")
	recordNoError(s, "alpha.example.com")

	top := s.Snapshot(10).TopDomains
	require.Len(t, top, 2)
	assert.Equal(t, "alpha.example.com", top[0].Name)
	assert.Equal(t, "zeta.example.com", top[1].Name)
}

func TestStatsDomainNamesNormalized(t *testing.T) {
	s := NewStats()
	recordNoError(s, "EXAMPLE.com.")
	recordNoError(s, "example.com")

	top := s.Snapshot(10).TopDomains
	require.Len(t, top, 1)
	assert.Equal(t, DomainCount{Name: "example.com", Count: 2}, top[0])
}

func TestStatsSnapshotDefaultTopN(t *testing.T) {
	s := NewStats()
	for i := range 30 {
		recordNoError(s, fmt.Sprintf("host%02d.example.com", i))
	}
	assert.Len(t, s.Snapshot(0).TopDomains, 10)
}

func TestStatsConcurrentUse(t *testing.T) {
	s := NewStats()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 1000 {
				s.RecordQuery()
				recordNoError(s, "example.com")
			}
		}()
	}
	wg.Wait()

	snap := s.Snapshot(10)
	assert.Equal(t, uint64(8000), snap.Queries)
	assert.Equal(t, uint64(8000), snap.Responses)
	assert.Equal(t, uint64(8000), snap.ByType["A"])
	require.Len(t, snap.TopDomains, 1)
	assert.Equal(t, uint64(8000), snap.TopDomains[0].Count)
}
