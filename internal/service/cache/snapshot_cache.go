package cache

import (
	"context"
	"sync"
	"time"

	"FolioPulse/internal/domain/models"
	pkgcache "FolioPulse/pkg/cache"
)

type entry struct {
	snaps     []models.CanonicalSnapshot
	omissions []models.Omission
	insertAt  time.Time
	ttl       time.Duration
}

// cachedSet is the L2 value. Omissions travel with the snapshots so a cache
// hit reproduces the original run's metadata instead of silently shrinking
// the result.
type cachedSet struct {
	Snapshots []models.CanonicalSnapshot `json:"snapshots"`
	Omissions []models.Omission          `json:"omissions,omitempty"`
}

func (e entry) expired(now time.Time) bool {
	return e.ttl > 0 && now.After(e.insertAt.Add(e.ttl))
}

// SnapshotCache stores canonical snapshots keyed by canonicalized request
// signature. Expired entries are evicted lazily on access. An optional L2
// (Redis) layer is written through best-effort so snapshots survive
// restarts; L2 failures never fail the pipeline.
type SnapshotCache struct {
	mu       sync.RWMutex
	m        map[string]entry
	lastGood map[string]models.CanonicalSnapshot // per-asset latest, for stale fallback
	l2       pkgcache.Service
	now      func() time.Time
}

// NewSnapshotCache creates a snapshot cache. l2 may be nil.
func NewSnapshotCache(l2 pkgcache.Service) *SnapshotCache {
	return &SnapshotCache{
		m:        make(map[string]entry),
		lastGood: make(map[string]models.CanonicalSnapshot),
		l2:       l2,
		now:      time.Now,
	}
}

// l2Key bounds the Redis key length; large asset lists would otherwise
// produce arbitrarily long keys.
func l2Key(key string) string {
	if len(key) <= 64 {
		return key
	}
	return pkgcache.GenerateKey("snapshots", pkgcache.HashKey(key))
}

// Get returns the cached snapshots for key together with the omissions
// recorded when the entry was produced. A read strictly after insertion+ttl
// is a miss and purges the entry.
func (c *SnapshotCache) Get(ctx context.Context, key string) ([]models.CanonicalSnapshot, []models.Omission, bool) {
	now := c.now()
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if ok {
		if !e.expired(now) {
			return e.snaps, e.omissions, true
		}
		c.mu.Lock()
		// re-check under write lock; a concurrent Put may have refreshed it
		if e2, ok2 := c.m[key]; ok2 && e2.expired(c.now()) {
			delete(c.m, key)
		}
		c.mu.Unlock()
	}

	if c.l2 != nil {
		var set cachedSet
		if err := c.l2.Get(ctx, l2Key(key), &set); err == nil && len(set.Snapshots) > 0 {
			return set.Snapshots, set.Omissions, true
		}
	}
	return nil, nil, false
}

// Put overwrites the entry for key; there is no partial merge.
func (c *SnapshotCache) Put(ctx context.Context, key string, snaps []models.CanonicalSnapshot, omissions []models.Omission, ttl time.Duration) {
	c.mu.Lock()
	c.m[key] = entry{snaps: snaps, omissions: omissions, insertAt: c.now(), ttl: ttl}
	for _, s := range snaps {
		c.lastGood[s.AssetID] = s
	}
	c.mu.Unlock()

	if c.l2 != nil {
		_ = c.l2.Set(ctx, l2Key(key), cachedSet{Snapshots: snaps, Omissions: omissions}, ttl)
	}
}

// Invalidate removes the entry for key from both layers.
func (c *SnapshotCache) Invalidate(ctx context.Context, key string) {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
	if c.l2 != nil {
		_ = c.l2.Delete(ctx, l2Key(key))
	}
}

// LastGood returns the most recent canonical snapshots ever cached for the
// given assets, regardless of TTL. Used as a stale fallback when every
// upstream is unavailable.
func (c *SnapshotCache) LastGood(assetIDs []string) []models.CanonicalSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.CanonicalSnapshot, 0, len(assetIDs))
	for _, id := range assetIDs {
		if s, ok := c.lastGood[id]; ok {
			out = append(out, s)
		}
	}
	return out
}
