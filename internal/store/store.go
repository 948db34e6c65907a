// Package store holds the authoritative record set: answers served directly,
// before the cache and upstream resolution are ever consulted.
package store

import (
	"bytes"
	"slices"
	"strings"
	"sync"

	"github.com/kitsunedns/kitsunedns/internal/dns"
)

// maxChaseDepth bounds CNAME chains during lookup so a cycle between
// records cannot recurse forever.
const maxChaseDepth = 8

type key struct {
	name  string
	rtype dns.RecordType
}

// Store maps (normalized name, type) to resource records. The resolver only
// reads during serving; mutation happens on the load path (zone files, the
// record database) and through the management API.
type Store struct {
	mu      sync.RWMutex
	records map[key][]dns.ResourceRecord
}

// New returns an empty store.
func New() *Store {
	return &Store{records: make(map[key][]dns.ResourceRecord)}
}

// Add inserts a record. Exact duplicates (same class and rdata) are dropped.
func (s *Store) Add(rec dns.ResourceRecord) {
	k := key{name: dns.NormalizeName(rec.Name), rtype: rec.Type}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.records[k] {
		if existing.Class == rec.Class && bytes.Equal(existing.Data, rec.Data) {
			return
		}
	}
	s.records[k] = append(s.records[k], rec)
}

// Remove deletes records under (name, rtype). When data is non-nil only the
// record with exactly that rdata goes; otherwise the whole set does.
// Reports whether anything was removed.
func (s *Store) Remove(name string, rtype dns.RecordType, data []byte) bool {
	k := key{name: dns.NormalizeName(name), rtype: rtype}

	s.mu.Lock()
	defer s.mu.Unlock()
	recs, ok := s.records[k]
	if !ok {
		return false
	}
	if data == nil {
		delete(s.records, k)
		return true
	}

	kept := recs[:0]
	removed := false
	for _, r := range recs {
		if bytes.Equal(r.Data, data) {
			removed = true
			continue
		}
		kept = append(kept, r)
	}
	if len(kept) == 0 {
		delete(s.records, k)
	} else {
		s.records[k] = kept
	}
	return removed
}

// Lookup returns the authoritative records answering (name, qtype, qclass).
// An empty result means the store has nothing useful and the resolver moves
// on to its cache and upstream steps.
//
// ANY returns every record held for the name. When qtype has no direct
// records but a CNAME exists at the name, the CNAME is returned followed by
// the chased target's records of the requested type, bounded by
// maxChaseDepth hops.
func (s *Store) Lookup(name string, qtype dns.RecordType, qclass dns.RecordClass) []dns.ResourceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookupLocked(dns.NormalizeName(name), qtype, qclass, 0)
}

func (s *Store) lookupLocked(name string, qtype dns.RecordType, qclass dns.RecordClass, depth int) []dns.ResourceRecord {
	if qtype == dns.TypeANY {
		var out []dns.ResourceRecord
		for k, recs := range s.records {
			if k.name == name {
				out = append(out, filterClass(recs, qclass)...)
			}
		}
		sortRecords(out)
		return out
	}

	if direct := filterClass(s.records[key{name, qtype}], qclass); len(direct) > 0 {
		return direct
	}

	// No direct match: follow a CNAME at this name if one exists.
	if qtype == dns.TypeCNAME || depth >= maxChaseDepth {
		return nil
	}
	cnames := filterClass(s.records[key{name, dns.TypeCNAME}], qclass)
	if len(cnames) == 0 {
		return nil
	}

	out := []dns.ResourceRecord{cnames[0]}
	if target, ok := cnames[0].TargetName(); ok {
		if target = dns.NormalizeName(target); target != name {
			out = append(out, s.lookupLocked(target, qtype, qclass, depth+1)...)
		}
	}
	return out
}

// RemoveName deletes every record held for the name across all types and
// returns the number of records removed.
func (s *Store) RemoveName(name string) int {
	normalized := dns.NormalizeName(name)

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for k, recs := range s.records {
		if k.name == normalized {
			removed += len(recs)
			delete(s.records, k)
		}
	}
	return removed
}

// Contains reports whether any record type exists for the name.
func (s *Store) Contains(name string) bool {
	normalized := dns.NormalizeName(name)

	s.mu.RLock()
	defer s.mu.RUnlock()
	for k := range s.records {
		if k.name == normalized {
			return true
		}
	}
	return false
}

// All returns every record in deterministic order (name, then type, then rdata).
func (s *Store) All() []dns.ResourceRecord {
	s.mu.RLock()
	out := make([]dns.ResourceRecord, 0, s.lenLocked())
	for _, recs := range s.records {
		out = append(out, recs...)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b dns.ResourceRecord) int {
		if c := strings.Compare(dns.NormalizeName(a.Name), dns.NormalizeName(b.Name)); c != 0 {
			return c
		}
		if a.Type != b.Type {
			return int(a.Type) - int(b.Type)
		}
		return bytes.Compare(a.Data, b.Data)
	})
	return out
}

// Len returns the total number of records held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lenLocked()
}

func (s *Store) lenLocked() int {
	n := 0
	for _, recs := range s.records {
		n += len(recs)
	}
	return n
}

func filterClass(recs []dns.ResourceRecord, qclass dns.RecordClass) []dns.ResourceRecord {
	if qclass == dns.ClassANY {
		return slices.Clone(recs)
	}
	var out []dns.ResourceRecord
	for _, r := range recs {
		if r.Class == qclass {
			out = append(out, r)
		}
	}
	return out
}

func sortRecords(recs []dns.ResourceRecord) {
	slices.SortFunc(recs, func(a, b dns.ResourceRecord) int {
		if a.Type != b.Type {
			return int(a.Type) - int(b.Type)
		}
		return bytes.Compare(a.Data, b.Data)
	})
}
