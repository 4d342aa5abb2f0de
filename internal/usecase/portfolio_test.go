package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FolioPulse/internal/domain/models"
	"FolioPulse/internal/services/allocation"
	"FolioPulse/internal/services/analytics"
)

func newPortfolio(t *testing.T, adapter *fakeAdapter, defaultSectors []string) *Portfolio {
	t.Helper()
	agg := newAggregator(t, time.Minute, adapter)
	return NewPortfolio(agg, analytics.New(), allocation.New(), nil, nil, testLogger(t), defaultSectors)
}

func TestAllocateRejectsBadProfileBeforeFetch(t *testing.T) {
	adapter := &fakeAdapter{source: "a"}
	p := newPortfolio(t, adapter, nil)

	_, err := p.Allocate(context.Background(), &models.AllocateRequest{
		AssetIDs:    []string{"bitcoin"},
		Currency:    "usd",
		RiskProfile: "aggressive",
		MaxAssets:   5,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidConfiguration))
	assert.Zero(t, adapter.calls.Load(), "invalid configuration must not reach the network")
}

func TestAllocateRejectsEmptyUniverse(t *testing.T) {
	adapter := &fakeAdapter{source: "a"}
	p := newPortfolio(t, adapter, nil)

	_, err := p.Allocate(context.Background(), &models.AllocateRequest{
		Currency:    "usd",
		RiskProfile: "medium",
		MaxAssets:   5,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidConfiguration))
	assert.Zero(t, adapter.calls.Load())
}

func TestAllocateEndToEnd(t *testing.T) {
	adapter := &fakeAdapter{source: "a", snaps: []models.MarketSnapshot{
		{AssetID: "bitcoin", Price: 50000, MarketCap: 800e9, Change24h: 1.5, Sector: "layer1", Source: "a"},
		{AssetID: "ethereum", Price: 3000, MarketCap: 300e9, Change24h: 2.0, Sector: "layer1", Source: "a"},
		{AssetID: "uniswap", Price: 8, MarketCap: 5e9, Change24h: -1.0, Sector: "defi", Source: "a"},
	}}
	p := newPortfolio(t, adapter, nil)

	res, err := p.Allocate(context.Background(), &models.AllocateRequest{
		AssetIDs:    []string{"bitcoin", "ethereum", "uniswap"},
		Currency:    "usd",
		RiskProfile: "medium",
		Sectors:     []string{"defi", "layer1"},
		MaxAssets:   5,
	})
	require.NoError(t, err)

	assert.Equal(t, 100, res.Weights.Sum())
	assert.LessOrEqual(t, len(res.Breakdown), 5)
	assert.Equal(t, models.RiskMedium, res.RiskProfile)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 3, res.Analytics.AssetCount)
	assert.False(t, res.Stale)
}

func TestAllocateCarriesOmissions(t *testing.T) {
	adapter := &fakeAdapter{source: "a", snaps: []models.MarketSnapshot{
		{AssetID: "bitcoin", Price: 50000, MarketCap: 800e9, Sector: "layer1", Source: "a"},
	}}
	p := newPortfolio(t, adapter, nil)

	res, err := p.Allocate(context.Background(), &models.AllocateRequest{
		AssetIDs:    []string{"bitcoin", "ethereum"},
		Currency:    "usd",
		RiskProfile: "low",
		MaxAssets:   5,
	})
	require.NoError(t, err)
	require.Len(t, res.Omissions, 1)
	assert.Equal(t, "ethereum", res.Omissions[0].AssetID)
	assert.Equal(t, 100, res.Weights.Sum())
}

func TestAllocateUniverseFromSectors(t *testing.T) {
	adapter := &fakeAdapter{source: "a", snaps: []models.MarketSnapshot{
		{AssetID: "uniswap", Price: 8, MarketCap: 5e9, Sector: "defi", Source: "a"},
		{AssetID: "aave", Price: 90, MarketCap: 2e9, Sector: "defi", Source: "a"},
	}}
	p := newPortfolio(t, adapter, nil)

	res, err := p.Allocate(context.Background(), &models.AllocateRequest{
		Currency:    "usd",
		RiskProfile: "high",
		Sectors:     []string{"defi"},
		MaxAssets:   5,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), adapter.calls.Load())
	for _, row := range res.Breakdown {
		assert.Equal(t, "defi", row.Sector)
	}
}

func TestAllocateUnknownSector(t *testing.T) {
	p := newPortfolio(t, &fakeAdapter{source: "a"}, nil)
	_, err := p.Allocate(context.Background(), &models.AllocateRequest{
		Currency:    "usd",
		RiskProfile: "medium",
		Sectors:     []string{"web4"},
		MaxAssets:   5,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidConfiguration))
}
