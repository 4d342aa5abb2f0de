package coingecko

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FolioPulse/internal/domain/models"
)

func TestNormalizeSimple(t *testing.T) {
	now := time.Now().UTC()
	row := map[string]float64{
		"usd":            50000,
		"usd_market_cap": 1e12,
		"usd_24h_vol":    3e10,
		"usd_24h_change": -2.5,
	}
	snap, err := normalizeSimple("coingecko-simple", "bitcoin", "USD", row, now)
	require.NoError(t, err)
	assert.Equal(t, "bitcoin", snap.AssetID)
	assert.Equal(t, 50000.0, snap.Price)
	assert.Equal(t, 1e12, snap.MarketCap)
	assert.Equal(t, -2.5, snap.Change24h)
	assert.Equal(t, "coingecko-simple", snap.Source)
}

func TestNormalizeSimpleMissingPrice(t *testing.T) {
	_, err := normalizeSimple("coingecko-simple", "bitcoin", "usd", map[string]float64{"eur": 42000}, time.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrSchemaMismatch))
}

func TestNormalizeMarket(t *testing.T) {
	price := 3200.5
	cap := 4e11
	rec := marketRecord{ID: "ethereum", Symbol: "eth", CurrentPrice: &price, MarketCap: &cap}
	snap, err := normalizeMarket("coingecko-enhanced", rec, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "ETH", snap.Symbol)
	assert.Equal(t, 3200.5, snap.Price)
	assert.Equal(t, 4e11, snap.MarketCap)
}

func TestNormalizeMarketMissingFields(t *testing.T) {
	_, err := normalizeMarket("coingecko-enhanced", marketRecord{ID: "ethereum"}, time.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrSchemaMismatch))
}

func TestChartPriceSeries(t *testing.T) {
	c := chartResponse{Prices: [][]float64{{1700000000000, 100}, {1700000060000, 101}, {1700000120000}}}
	assert.Equal(t, []float64{100, 101}, c.priceSeries())
}

func TestSectorCatalog(t *testing.T) {
	assert.Equal(t, "layer1", SectorFor("Bitcoin"))
	assert.Equal(t, "defi", SectorFor("uniswap"))
	assert.Empty(t, SectorFor("unlisted-token"))
	assert.NotEmpty(t, SectorAssets("meme"))
	assert.Len(t, Sectors(), 8)
}
