package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()
	c, err := New("", ttl)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestKey_SensitiveToEveryParameter(t *testing.T) {
	base := Key("github.com/acme/widget", "investors", "market")

	assert.Equal(t, base, Key("github.com/acme/widget", "investors", "market"))
	assert.NotEqual(t, base, Key("github.com/acme/widget", "investors", "marke"))
	assert.NotEqual(t, base, Key("github.com/acme/widget", "Investors", "market"))
	assert.NotEqual(t, base, Key("investors", "github.com/acme/widget", "market"))
	assert.Len(t, base, 64)
}

func TestCache_RoundTrip(t *testing.T) {
	c := newTestCache(t, time.Hour)
	ctx := context.Background()

	key := Key("repo", "audience")
	require.NoError(t, c.Put(ctx, key, `{"market_size":"$5B"}`))

	got, ok := c.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, `{"market_size":"$5B"}`, got)
}

func TestCache_MissForUnknownKey(t *testing.T) {
	c := newTestCache(t, time.Hour)

	_, ok := c.Get(context.Background(), Key("never", "stored"))
	assert.False(t, ok)
}

func TestCache_PutReplacesExistingValue(t *testing.T) {
	c := newTestCache(t, time.Hour)
	ctx := context.Background()
	key := Key("repo")

	require.NoError(t, c.Put(ctx, key, "old"))
	require.NoError(t, c.Put(ctx, key, "new"))

	got, ok := c.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, "new", got)

	stats, err := c.CacheStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalEntries)
}

func TestCache_ExpiredEntryIsMissAndDeleted(t *testing.T) {
	// Given an entry written an hour ago with a one-minute TTL
	c := newTestCache(t, time.Minute)
	ctx := context.Background()
	key := Key("repo")

	writeTime := time.Now().Add(-time.Hour)
	c.now = func() time.Time { return writeTime }
	require.NoError(t, c.Put(ctx, key, "stale"))
	c.now = time.Now

	// When reading it back after expiry
	_, ok := c.Get(ctx, key)

	// Then the read misses and the entry is gone
	assert.False(t, ok)
	stats, err := c.CacheStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalEntries)
}

func TestCache_SweepExpiredCountsRemovals(t *testing.T) {
	c := newTestCache(t, time.Minute)
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	c.now = func() time.Time { return past }
	require.NoError(t, c.Put(ctx, Key("a"), "1"))
	require.NoError(t, c.Put(ctx, Key("b"), "2"))
	c.now = time.Now
	require.NoError(t, c.Put(ctx, Key("c"), "3"))

	stats, err := c.CacheStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{TotalEntries: 3, ExpiredEntries: 2, ValidEntries: 1}, stats)

	removed, err := c.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	stats, err = c.CacheStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{TotalEntries: 1, ExpiredEntries: 0, ValidEntries: 1}, stats)
}

func TestCache_EmptyStats(t *testing.T) {
	c := newTestCache(t, time.Hour)

	stats, err := c.CacheStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)
}

func TestCache_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()
	key := Key("repo")

	c, err := New(path, time.Hour)
	require.NoError(t, err)
	require.NoError(t, c.Put(ctx, key, "durable"))
	require.NoError(t, c.Close())

	c2, err := New(path, time.Hour)
	require.NoError(t, err)
	defer func() { _ = c2.Close() }()

	got, ok := c2.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, "durable", got)
}

func TestCache_DeleteAbsentKeyIsNoOp(t *testing.T) {
	c := newTestCache(t, time.Hour)
	assert.NoError(t, c.Delete(context.Background(), Key("absent")))
}
