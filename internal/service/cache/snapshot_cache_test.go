package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FolioPulse/internal/domain/models"
)

func TestRequestKeyCanonicalization(t *testing.T) {
	a := RequestKey([]string{"Bitcoin", "ethereum"}, "USD")
	b := RequestKey([]string{"ethereum", "bitcoin", "bitcoin"}, "usd")
	assert.Equal(t, a, b)
	assert.Equal(t, "snapshots:bitcoin,ethereum:usd", a)
}

func TestRequestKeyFlagsOrderIndependent(t *testing.T) {
	a := RequestKey([]string{"bitcoin"}, "usd", "charts", "Markets")
	b := RequestKey([]string{"bitcoin"}, "usd", "markets", "charts")
	assert.Equal(t, a, b)
}

func TestRequestKeyDistinguishesCurrencies(t *testing.T) {
	assert.NotEqual(t,
		RequestKey([]string{"bitcoin"}, "usd"),
		RequestKey([]string{"bitcoin"}, "eur"))
}

func canonicalSnap(asset string, price float64) models.CanonicalSnapshot {
	return models.CanonicalSnapshot{AssetID: asset, Price: price, Consistency: 1}
}

func TestGetMissesStrictlyAfterTTL(t *testing.T) {
	c := NewSnapshotCache(nil)
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	ctx := context.Background()
	c.Put(ctx, "k", []models.CanonicalSnapshot{canonicalSnap("bitcoin", 100)}, nil, time.Minute)

	_, _, ok := c.Get(ctx, "k")
	require.True(t, ok)

	// exactly at ttl is still a hit; strictly after is a miss
	now = now.Add(time.Minute)
	_, _, ok = c.Get(ctx, "k")
	assert.True(t, ok)

	now = now.Add(time.Nanosecond)
	_, _, ok = c.Get(ctx, "k")
	assert.False(t, ok)

	// expired entry was purged, not just hidden
	c.mu.RLock()
	_, present := c.m["k"]
	c.mu.RUnlock()
	assert.False(t, present)
}

func TestPutOverwrites(t *testing.T) {
	c := NewSnapshotCache(nil)
	ctx := context.Background()
	c.Put(ctx, "k", []models.CanonicalSnapshot{canonicalSnap("bitcoin", 100)}, nil, time.Minute)
	c.Put(ctx, "k", []models.CanonicalSnapshot{canonicalSnap("bitcoin", 200)}, nil, time.Minute)

	snaps, _, ok := c.Get(ctx, "k")
	require.True(t, ok)
	require.Len(t, snaps, 1)
	assert.Equal(t, 200.0, snaps[0].Price)
}

func TestGetReturnsStoredOmissions(t *testing.T) {
	c := NewSnapshotCache(nil)
	ctx := context.Background()
	omissions := []models.Omission{{AssetID: "ethereum", Reason: "no data from any source"}}
	c.Put(ctx, "k", []models.CanonicalSnapshot{canonicalSnap("bitcoin", 100)}, omissions, time.Minute)

	snaps, got, ok := c.Get(ctx, "k")
	require.True(t, ok)
	require.Len(t, snaps, 1)
	assert.Equal(t, omissions, got)
}

func TestInvalidate(t *testing.T) {
	c := NewSnapshotCache(nil)
	ctx := context.Background()
	c.Put(ctx, "k", []models.CanonicalSnapshot{canonicalSnap("bitcoin", 100)}, nil, time.Minute)
	c.Invalidate(ctx, "k")
	_, _, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestLastGoodSurvivesExpiry(t *testing.T) {
	c := NewSnapshotCache(nil)
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	ctx := context.Background()
	c.Put(ctx, "k", []models.CanonicalSnapshot{canonicalSnap("bitcoin", 100), canonicalSnap("ethereum", 10)}, nil, time.Minute)

	now = now.Add(time.Hour)
	_, _, ok := c.Get(ctx, "k")
	require.False(t, ok)

	stale := c.LastGood([]string{"bitcoin", "ethereum", "solana"})
	require.Len(t, stale, 2)
	assert.Equal(t, "bitcoin", stale[0].AssetID)
}
