package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitsunedns/kitsunedns/internal/dns"
)

// fakeClock lets tests move time forward without sleeping.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.t = f.t.Add(d)
}

func newTestCache(maxEntries int, defaultTTL time.Duration) (*MessageCache, *fakeClock) {
	c := New(maxEntries, defaultTTL)
	clk := newFakeClock()
	c.now = clk.Now
	return c, clk
}

// responseFor builds a single-answer response for name with the given TTL.
func responseFor(t *testing.T, name string, ttl uint32) dns.Message {
	t.Helper()
	rec, err := dns.NewA(name, ttl, "192.0.2.1")
	require.NoError(t, err)
	return dns.Message{
		Header: dns.Header{ID: 42, Flags: dns.QRFlag, QDCount: 1, ANCount: 1},
		Questions: []dns.Question{
			{Name: name, Type: dns.TypeA, Class: dns.ClassIN},
		},
		Answers: []dns.ResourceRecord{rec},
	}
}

func keyFor(name string) Key {
	return NewKey(name, dns.TypeA, dns.ClassIN)
}

// ===== key normalization =====

func TestNewKey_NormalizesName(t *testing.T) {
	assert.Equal(t, NewKey("example.com", dns.TypeA, dns.ClassIN), NewKey("EXAMPLE.COM.", dns.TypeA, dns.ClassIN))
	assert.NotEqual(t, NewKey("example.com", dns.TypeA, dns.ClassIN), NewKey("example.com", dns.TypeAAAA, dns.ClassIN))
}

func TestQuestionKey(t *testing.T) {
	q := dns.Question{Name: "Example.COM.", Type: dns.TypeMX, Class: dns.ClassIN}
	assert.Equal(t, Key{Name: "example.com", Type: dns.TypeMX, Class: dns.ClassIN}, QuestionKey(q))
}

// ===== basic get/put =====

func TestCache_PutAndGet(t *testing.T) {
	c, _ := newTestCache(10, time.Minute)

	msg := responseFor(t, "example.com", 300)
	c.Put(keyFor("example.com"), msg, 0)

	got, ok := c.Get(keyFor("example.com"))
	require.True(t, ok)
	require.Len(t, got.Answers, 1)
	assert.Equal(t, "example.com", got.Answers[0].Name)
	assert.Equal(t, uint32(300), got.Answers[0].TTL)
}

func TestCache_MissReturnsFalse(t *testing.T) {
	c, _ := newTestCache(10, time.Minute)

	got, ok := c.Get(keyFor("absent.example.com"))
	assert.False(t, ok)
	assert.Empty(t, got.Answers)

	stats := c.Snapshot()
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, uint64(0), stats.Hits)
}

func TestCache_KeyLookupIsCaseInsensitive(t *testing.T) {
	c, _ := newTestCache(10, time.Minute)

	c.Put(NewKey("WWW.Example.COM.", dns.TypeA, dns.ClassIN), responseFor(t, "www.example.com", 60), 0)

	_, ok := c.Get(NewKey("www.example.com", dns.TypeA, dns.ClassIN))
	assert.True(t, ok)
}

// ===== TTL behavior =====

func TestCache_EntryExpiresAfterRecordTTL(t *testing.T) {
	c, clk := newTestCache(10, time.Minute)

	c.Put(keyFor("example.com"), responseFor(t, "example.com", 60), 0)

	got, ok := c.Get(keyFor("example.com"))
	require.True(t, ok)
	assert.LessOrEqual(t, got.Answers[0].TTL, uint32(60))

	clk.Advance(61 * time.Second)

	_, ok = c.Get(keyFor("example.com"))
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCache_GetRewritesTTLToRemainingLifetime(t *testing.T) {
	c, clk := newTestCache(10, time.Minute)

	c.Put(keyFor("example.com"), responseFor(t, "example.com", 60), 0)
	clk.Advance(45 * time.Second)

	got, ok := c.Get(keyFor("example.com"))
	require.True(t, ok)
	assert.Equal(t, uint32(15), got.Answers[0].TTL)
}

func TestCache_RewrittenTTLNeverExceedsOriginal(t *testing.T) {
	c, clk := newTestCache(10, time.Minute)

	// Entry lifetime is the minimum across sections, so the longer-lived
	// answer keeps its own TTL until the remaining time drops below it.
	short, err := dns.NewA("example.com", 10, "192.0.2.1")
	require.NoError(t, err)
	long, err := dns.NewA("example.com", 3600, "192.0.2.2")
	require.NoError(t, err)
	msg := dns.Message{
		Header:  dns.Header{ID: 1, Flags: dns.QRFlag, ANCount: 2},
		Answers: []dns.ResourceRecord{short, long},
	}

	c.Put(keyFor("example.com"), msg, 0)
	clk.Advance(4 * time.Second)

	got, ok := c.Get(keyFor("example.com"))
	require.True(t, ok)
	assert.Equal(t, uint32(6), got.Answers[0].TTL)
	assert.Equal(t, uint32(6), got.Answers[1].TTL)
}

func TestCache_LifetimeDerivedFromMinAcrossSections(t *testing.T) {
	c, clk := newTestCache(10, time.Minute)

	answer, err := dns.NewA("example.com", 300, "192.0.2.1")
	require.NoError(t, err)
	authority, err := dns.NewNS("example.com", 30, "ns1.example.com")
	require.NoError(t, err)
	msg := dns.Message{
		Header:      dns.Header{ID: 1, Flags: dns.QRFlag, ANCount: 1, NSCount: 1},
		Answers:     []dns.ResourceRecord{answer},
		Authorities: []dns.ResourceRecord{authority},
	}

	c.Put(keyFor("example.com"), msg, 0)

	clk.Advance(29 * time.Second)
	_, ok := c.Get(keyFor("example.com"))
	assert.True(t, ok)

	clk.Advance(2 * time.Second)
	_, ok = c.Get(keyFor("example.com"))
	assert.False(t, ok)
}

func TestCache_EmptyMessageUsesDefaultTTL(t *testing.T) {
	c, clk := newTestCache(10, 30*time.Second)

	msg := dns.Message{Header: dns.Header{ID: 1, Flags: dns.QRFlag}}
	c.Put(keyFor("empty.example.com"), msg, 0)

	clk.Advance(29 * time.Second)
	_, ok := c.Get(keyFor("empty.example.com"))
	assert.True(t, ok)

	clk.Advance(2 * time.Second)
	_, ok = c.Get(keyFor("empty.example.com"))
	assert.False(t, ok)
}

func TestCache_ZeroTTLRecordLivesOneSecond(t *testing.T) {
	c, clk := newTestCache(10, time.Minute)

	c.Put(keyFor("example.com"), responseFor(t, "example.com", 0), 0)

	_, ok := c.Get(keyFor("example.com"))
	assert.True(t, ok)

	clk.Advance(2 * time.Second)
	_, ok = c.Get(keyFor("example.com"))
	assert.False(t, ok)
}

func TestCache_ExplicitTTLOverridesRecords(t *testing.T) {
	c, clk := newTestCache(10, time.Minute)

	c.Put(keyFor("example.com"), responseFor(t, "example.com", 3600), 5*time.Second)

	clk.Advance(6 * time.Second)
	_, ok := c.Get(keyFor("example.com"))
	assert.False(t, ok)
}

// ===== eviction =====

func TestCache_EvictsOldestInsertionWhenFull(t *testing.T) {
	c, _ := newTestCache(3, time.Minute)

	c.Put(keyFor("a.example.com"), responseFor(t, "a.example.com", 300), 0)
	c.Put(keyFor("b.example.com"), responseFor(t, "b.example.com", 300), 0)
	c.Put(keyFor("c.example.com"), responseFor(t, "c.example.com", 300), 0)
	c.Put(keyFor("d.example.com"), responseFor(t, "d.example.com", 300), 0)

	_, ok := c.Get(keyFor("a.example.com"))
	assert.False(t, ok)
	for _, name := range []string{"b.example.com", "c.example.com", "d.example.com"} {
		_, ok := c.Get(keyFor(name))
		assert.True(t, ok, name)
	}
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, uint64(1), c.Snapshot().Evictions)
}

func TestCache_PrefersExpiredEntryOverOldest(t *testing.T) {
	c, clk := newTestCache(3, time.Minute)

	c.Put(keyFor("a.example.com"), responseFor(t, "a.example.com", 300), 0)
	c.Put(keyFor("b.example.com"), responseFor(t, "b.example.com", 5), 0)
	c.Put(keyFor("c.example.com"), responseFor(t, "c.example.com", 300), 0)

	clk.Advance(10 * time.Second)
	c.Put(keyFor("d.example.com"), responseFor(t, "d.example.com", 300), 0)

	// The expired middle entry went, not the oldest live one.
	_, ok := c.Get(keyFor("b.example.com"))
	assert.False(t, ok)
	_, ok = c.Get(keyFor("a.example.com"))
	assert.True(t, ok)
	assert.Equal(t, uint64(0), c.Snapshot().Evictions)
}

func TestCache_GetDoesNotRefreshInsertionOrder(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)

	c.Put(keyFor("a.example.com"), responseFor(t, "a.example.com", 300), 0)
	c.Put(keyFor("b.example.com"), responseFor(t, "b.example.com", 300), 0)

	// Reading the oldest entry does not save it from eviction.
	_, ok := c.Get(keyFor("a.example.com"))
	require.True(t, ok)

	c.Put(keyFor("c.example.com"), responseFor(t, "c.example.com", 300), 0)

	_, ok = c.Get(keyFor("a.example.com"))
	assert.False(t, ok)
	_, ok = c.Get(keyFor("b.example.com"))
	assert.True(t, ok)
}

func TestCache_OverwriteRefreshesInsertionOrder(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)

	c.Put(keyFor("a.example.com"), responseFor(t, "a.example.com", 300), 0)
	c.Put(keyFor("b.example.com"), responseFor(t, "b.example.com", 300), 0)
	c.Put(keyFor("a.example.com"), responseFor(t, "a.example.com", 600), 0)

	c.Put(keyFor("c.example.com"), responseFor(t, "c.example.com", 300), 0)

	_, ok := c.Get(keyFor("b.example.com"))
	assert.False(t, ok)
	_, ok = c.Get(keyFor("a.example.com"))
	assert.True(t, ok)
}

func TestCache_SingleEntryCapacity(t *testing.T) {
	c, _ := newTestCache(0, time.Minute)

	c.Put(keyFor("a.example.com"), responseFor(t, "a.example.com", 300), 0)
	c.Put(keyFor("b.example.com"), responseFor(t, "b.example.com", 300), 0)

	assert.Equal(t, 1, c.Len())
	_, ok := c.Get(keyFor("b.example.com"))
	assert.True(t, ok)
}

// ===== isolation =====

func TestCache_ReturnedMessageIsACopy(t *testing.T) {
	c, _ := newTestCache(10, time.Minute)

	c.Put(keyFor("example.com"), responseFor(t, "example.com", 300), 0)

	first, ok := c.Get(keyFor("example.com"))
	require.True(t, ok)
	first.Answers[0].TTL = 1
	first.Answers[0].Name = "tampered.example.com"
	first.Header.ID = 9999

	second, ok := c.Get(keyFor("example.com"))
	require.True(t, ok)
	assert.Equal(t, "example.com", second.Answers[0].Name)
	assert.Equal(t, uint32(300), second.Answers[0].TTL)
	assert.Equal(t, uint16(42), second.Header.ID)
}

func TestCache_StoredMessageIsACopy(t *testing.T) {
	c, _ := newTestCache(10, time.Minute)

	msg := responseFor(t, "example.com", 300)
	c.Put(keyFor("example.com"), msg, 0)
	msg.Answers[0].Name = "tampered.example.com"

	got, ok := c.Get(keyFor("example.com"))
	require.True(t, ok)
	assert.Equal(t, "example.com", got.Answers[0].Name)
}

// ===== sweeping and maintenance =====

func TestCache_SweepRemovesOnlyExpired(t *testing.T) {
	c, clk := newTestCache(10, time.Minute)

	c.Put(keyFor("short.example.com"), responseFor(t, "short.example.com", 5), 0)
	c.Put(keyFor("long.example.com"), responseFor(t, "long.example.com", 300), 0)

	clk.Advance(10 * time.Second)
	removed := c.sweep()

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, c.Len())
	_, ok := c.Get(keyFor("long.example.com"))
	assert.True(t, ok)
}

func TestCache_RunSweeperRemovesExpiredEntries(t *testing.T) {
	c := New(10, time.Minute)

	c.Put(keyFor("short.example.com"), responseFor(t, "short.example.com", 300), 10*time.Millisecond)

	go c.RunSweeper(t.Context(), 20*time.Millisecond)

	assert.Eventually(t, func() bool {
		return c.Len() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCache_Flush(t *testing.T) {
	c, _ := newTestCache(10, time.Minute)

	c.Put(keyFor("a.example.com"), responseFor(t, "a.example.com", 300), 0)
	c.Put(keyFor("b.example.com"), responseFor(t, "b.example.com", 300), 0)
	require.Equal(t, 2, c.Len())

	c.Flush()

	assert.Equal(t, 0, c.Len())
	_, ok := c.Get(keyFor("a.example.com"))
	assert.False(t, ok)
}

func TestCache_SnapshotCounters(t *testing.T) {
	c, clk := newTestCache(10, time.Minute)

	c.Put(keyFor("a.example.com"), responseFor(t, "a.example.com", 5), 0)
	c.Get(keyFor("a.example.com"))    // hit
	c.Get(keyFor("miss.example.com")) // miss

	clk.Advance(10 * time.Second)
	c.Get(keyFor("a.example.com")) // expired: counts a miss and an expiration

	stats := c.Snapshot()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(2), stats.Misses)
	assert.Equal(t, uint64(1), stats.Expirations)
	assert.Equal(t, 0, stats.Entries)
	assert.Equal(t, 10, stats.MaxEntries)
}
