package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FolioPulse/internal/domain/models"
	domrepo "FolioPulse/internal/domain/repository"
	"FolioPulse/internal/service/cache"
	"FolioPulse/internal/services/reconcile"
	"FolioPulse/pkg/logger"
)

type fakeAdapter struct {
	source string
	snaps  []models.MarketSnapshot
	err    error
	calls  atomic.Int64
}

func (f *fakeAdapter) Source() string { return f.source }

func (f *fakeAdapter) FetchSnapshots(_ context.Context, _ []string, _ string) ([]models.MarketSnapshot, error) {
	f.calls.Add(1)
	return f.snaps, f.err
}

func (f *fakeAdapter) Healthy(context.Context) bool { return f.err == nil }

type noopMetrics struct{}

func (noopMetrics) RecordFetch(string, string)        {}
func (noopMetrics) RecordCache(string)                {}
func (noopMetrics) RecordRateLimited(string)          {}
func (noopMetrics) RecordConsistency(string, float64) {}
func (noopMetrics) RecordLatency(string, float64)     {}
func (noopMetrics) RecordError(string)                {}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return log
}

func newAggregator(t *testing.T, ttl time.Duration, adapters ...domrepo.SourceAdapter) *Aggregator {
	t.Helper()
	return NewAggregator(
		adapters,
		cache.NewSnapshotCache(nil),
		reconcile.New(1.0),
		nil,
		noopMetrics{},
		testLogger(t),
		ttl, time.Second, 2*time.Second,
	)
}

func marketSnap(source, asset string, price float64) models.MarketSnapshot {
	return models.MarketSnapshot{AssetID: asset, Price: price, Source: source}
}

func TestAggregateReconcilesAcrossSources(t *testing.T) {
	a := &fakeAdapter{source: "a", snaps: []models.MarketSnapshot{marketSnap("a", "bitcoin", 100)}}
	b := &fakeAdapter{source: "b", snaps: []models.MarketSnapshot{marketSnap("b", "bitcoin", 102)}}
	agg := newAggregator(t, time.Minute, a, b)

	out, err := agg.Aggregate(context.Background(), []string{"bitcoin"}, "usd")
	require.NoError(t, err)
	require.Len(t, out.Snapshots, 1)
	assert.Equal(t, 101.0, out.Snapshots[0].Price)
	assert.Equal(t, 1.0, out.Snapshots[0].Consistency)
	assert.False(t, out.Stale)
}

func TestAggregateSecondCallHitsCache(t *testing.T) {
	a := &fakeAdapter{source: "a", snaps: []models.MarketSnapshot{marketSnap("a", "bitcoin", 100)}}
	agg := newAggregator(t, time.Minute, a)

	_, err := agg.Aggregate(context.Background(), []string{"bitcoin"}, "usd")
	require.NoError(t, err)
	// order and casing differences must hit the same entry
	_, err = agg.Aggregate(context.Background(), []string{"Bitcoin"}, "USD")
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.calls.Load())
}

func TestAggregateOmitsMissingAsset(t *testing.T) {
	a := &fakeAdapter{source: "a", snaps: []models.MarketSnapshot{marketSnap("a", "bitcoin", 100)}}
	agg := newAggregator(t, time.Minute, a)

	out, err := agg.Aggregate(context.Background(), []string{"bitcoin", "ethereum"}, "usd")
	require.NoError(t, err)
	require.Len(t, out.Snapshots, 1)
	require.Len(t, out.Omissions, 1)
	assert.Equal(t, "ethereum", out.Omissions[0].AssetID)
}

func TestAggregateCacheHitKeepsOmissions(t *testing.T) {
	a := &fakeAdapter{source: "a", snaps: []models.MarketSnapshot{marketSnap("a", "bitcoin", 100)}}
	agg := newAggregator(t, time.Minute, a)

	first, err := agg.Aggregate(context.Background(), []string{"bitcoin", "ethereum"}, "usd")
	require.NoError(t, err)
	require.Len(t, first.Omissions, 1)

	// the cached entry must carry the dropped asset, not shrink silently
	second, err := agg.Aggregate(context.Background(), []string{"bitcoin", "ethereum"}, "usd")
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.calls.Load())
	require.Len(t, second.Snapshots, 1)
	require.Len(t, second.Omissions, 1)
	assert.Equal(t, "ethereum", second.Omissions[0].AssetID)
}

func TestAggregateReportsConflictingSources(t *testing.T) {
	a := &fakeAdapter{source: "a", snaps: []models.MarketSnapshot{marketSnap("a", "bitcoin", 100)}}
	b := &fakeAdapter{source: "b", snaps: []models.MarketSnapshot{marketSnap("b", "bitcoin", 110)}}
	agg := newAggregator(t, time.Minute, a, b)

	_, err := agg.Aggregate(context.Background(), []string{"bitcoin"}, "usd")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrAggregationFailed))
}

func TestAggregateConflictingAssetOmittedWithReason(t *testing.T) {
	a := &fakeAdapter{source: "a", snaps: []models.MarketSnapshot{
		marketSnap("a", "bitcoin", 100),
		marketSnap("a", "ethereum", 10),
	}}
	b := &fakeAdapter{source: "b", snaps: []models.MarketSnapshot{
		marketSnap("b", "bitcoin", 100.5),
		marketSnap("b", "ethereum", 12),
	}}
	agg := newAggregator(t, time.Minute, a, b)

	out, err := agg.Aggregate(context.Background(), []string{"bitcoin", "ethereum"}, "usd")
	require.NoError(t, err)
	require.Len(t, out.Snapshots, 1)
	assert.Equal(t, "bitcoin", out.Snapshots[0].AssetID)
	require.Len(t, out.Omissions, 1)
	assert.Equal(t, "ethereum", out.Omissions[0].AssetID)
	assert.Equal(t, "sources disagree beyond tolerance", out.Omissions[0].Reason)
}

func TestAggregateTotalFailureWithoutFallback(t *testing.T) {
	a := &fakeAdapter{source: "a", err: models.ErrUpstreamUnavailable}
	agg := newAggregator(t, time.Minute, a)

	_, err := agg.Aggregate(context.Background(), []string{"bitcoin"}, "usd")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrAggregationFailed))
}

func TestAggregateServesStaleAfterTotalFailure(t *testing.T) {
	a := &fakeAdapter{source: "a", snaps: []models.MarketSnapshot{marketSnap("a", "bitcoin", 100)}}
	agg := newAggregator(t, 5*time.Millisecond, a)

	_, err := agg.Aggregate(context.Background(), []string{"bitcoin"}, "usd")
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	a.err = models.ErrUpstreamUnavailable
	a.snaps = nil

	out, err := agg.Aggregate(context.Background(), []string{"bitcoin"}, "usd")
	require.NoError(t, err)
	assert.True(t, out.Stale)
	require.Len(t, out.Snapshots, 1)
	assert.Equal(t, 100.0, out.Snapshots[0].Price)
}

func TestAggregateRejectsEmptyRequest(t *testing.T) {
	agg := newAggregator(t, time.Minute, &fakeAdapter{source: "a"})
	_, err := agg.Aggregate(context.Background(), nil, "usd")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidConfiguration))
}
