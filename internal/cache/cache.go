// Package cache implements the TTL-aware response cache consulted between
// the authoritative store and upstream resolution.
package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/kitsunedns/kitsunedns/internal/dns"
	"github.com/kitsunedns/kitsunedns/internal/helpers"
)

// Key identifies a cached response. Name is normalized so lookups are
// case-insensitive; type and class match exactly.
type Key struct {
	Name  string
	Type  dns.RecordType
	Class dns.RecordClass
}

// NewKey builds a cache key from raw question fields.
func NewKey(name string, rtype dns.RecordType, rclass dns.RecordClass) Key {
	return Key{Name: dns.NormalizeName(name), Type: rtype, Class: rclass}
}

// QuestionKey builds a cache key from a question section entry.
func QuestionKey(q dns.Question) Key {
	return NewKey(q.Name, q.Type, q.Class)
}

// entry holds a cached message with its expiry and position in the
// insertion-order list.
type entry struct {
	msg       dns.Message
	expiresAt time.Time
	elem      *list.Element
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Entries     int
	MaxEntries  int
	Hits        uint64
	Misses      uint64
	Evictions   uint64
	Expirations uint64
}

// MessageCache is a thread-safe, bounded DNS response cache.
//
// Entries expire after a TTL derived from the message they hold (or an
// explicit override). Eviction at capacity prefers an already-expired entry
// and otherwise removes the oldest by insertion order; reads never refresh
// an entry's position. A background sweeper clears expired entries so they
// do not linger between lookups.
type MessageCache struct {
	mu sync.Mutex

	defaultTTL time.Duration // entry lifetime when a message has no records
	maxEntries int
	order      *list.List // insertion order: front = oldest
	data       map[Key]*entry
	now        func() time.Time

	hits        uint64
	misses      uint64
	evictions   uint64
	expirations uint64
}

// New creates a cache holding at most maxEntries responses. defaultTTL
// applies to messages carrying no records (a rare but legal upstream answer).
func New(maxEntries int, defaultTTL time.Duration) *MessageCache {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	return &MessageCache{
		defaultTTL: defaultTTL,
		maxEntries: maxEntries,
		order:      list.New(),
		data:       map[Key]*entry{},
		now:        time.Now,
	}
}

// Put stores a copy of msg under key. When ttl <= 0 the entry lives for the
// smallest TTL across all of the message's records, clamped to at least one
// second; a message with no records gets the cache's default TTL.
// Overwriting an existing key refreshes its insertion position.
func (c *MessageCache) Put(key Key, msg dns.Message, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.deriveTTL(msg)
	}
	stored := msg.Clone()

	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()

	if existing := c.data[key]; existing != nil {
		existing.msg = stored
		existing.expiresAt = now.Add(ttl)
		c.order.MoveToBack(existing.elem)
		return
	}

	if len(c.data) >= c.maxEntries {
		c.evictLocked(now)
	}

	e := &entry{msg: stored, expiresAt: now.Add(ttl)}
	e.elem = c.order.PushBack(key)
	c.data[key] = e
}

// Get returns a copy of the cached response with every record's TTL
// rewritten to the smaller of its original value and the whole seconds
// remaining before expiry. Expired entries are removed on sight. A miss is
// (zero Message, false), never an error.
func (c *MessageCache) Get(key Key) (dns.Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()

	e := c.data[key]
	if e == nil {
		c.misses++
		return dns.Message{}, false
	}
	if !e.expiresAt.After(now) {
		c.removeLocked(key, e)
		c.expirations++
		c.misses++
		return dns.Message{}, false
	}

	c.hits++
	out := e.msg.Clone()
	remaining := helpers.ClampInt64ToUint32(int64(e.expiresAt.Sub(now) / time.Second))
	rewriteTTLs(&out, remaining)
	return out, true
}

// deriveTTL computes the entry lifetime from the message's records.
func (c *MessageCache) deriveTTL(msg dns.Message) time.Duration {
	minTTL, ok := msg.MinTTL()
	if !ok {
		return c.defaultTTL
	}
	if minTTL < 1 {
		minTTL = 1
	}
	return time.Duration(minTTL) * time.Second
}

// rewriteTTLs caps every record's TTL at the remaining entry lifetime.
func rewriteTTLs(msg *dns.Message, remaining uint32) {
	for _, section := range [][]dns.ResourceRecord{msg.Answers, msg.Authorities, msg.Additionals} {
		for i := range section {
			section[i].TTL = min(section[i].TTL, remaining)
		}
	}
}

// evictLocked frees one slot: the first expired entry found in insertion
// order, otherwise the oldest entry.
func (c *MessageCache) evictLocked(now time.Time) {
	for el := c.order.Front(); el != nil; el = el.Next() {
		k := el.Value.(Key)
		if e := c.data[k]; e != nil && !e.expiresAt.After(now) {
			c.removeLocked(k, e)
			c.expirations++
			return
		}
	}

	front := c.order.Front()
	if front == nil {
		return
	}
	k := front.Value.(Key)
	if e := c.data[k]; e != nil {
		c.removeLocked(k, e)
		c.evictions++
	}
}

func (c *MessageCache) removeLocked(k Key, e *entry) {
	c.order.Remove(e.elem)
	delete(c.data, k)
}

// RunSweeper removes expired entries every interval until ctx is done.
// Run it on its own goroutine.
func (c *MessageCache) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

// sweep removes every expired entry and reports how many went.
func (c *MessageCache) sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()

	removed := 0
	var next *list.Element
	for el := c.order.Front(); el != nil; el = next {
		next = el.Next()
		k := el.Value.(Key)
		if e := c.data[k]; e != nil && !e.expiresAt.After(now) {
			c.removeLocked(k, e)
			c.expirations++
			removed++
		}
	}
	return removed
}

// Flush drops every entry. Counters survive; the management API exposes
// both.
func (c *MessageCache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.data = map[Key]*entry{}
}

// Len returns the number of entries currently held, expired or not.
func (c *MessageCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// Snapshot returns current counters.
func (c *MessageCache) Snapshot() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Entries:     len(c.data),
		MaxEntries:  c.maxEntries,
		Hits:        c.hits,
		Misses:      c.misses,
		Evictions:   c.evictions,
		Expirations: c.expirations,
	}
}
