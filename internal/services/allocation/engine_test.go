package allocation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FolioPulse/internal/domain/models"
)

func asset(id, sector string, marketCap float64) models.CanonicalSnapshot {
	return models.CanonicalSnapshot{AssetID: id, Sector: sector, MarketCap: marketCap, Price: 1, Consistency: 1}
}

func TestWeightsPerProfile(t *testing.T) {
	tests := []struct {
		profile models.RiskProfile
		want    models.TierWeights
	}{
		{models.RiskLow, models.TierWeights{LargeCap: 60, MidCap: 30, SmallCap: 10}},
		{models.RiskMedium, models.TierWeights{LargeCap: 40, MidCap: 40, SmallCap: 20}},
		{models.RiskHigh, models.TierWeights{LargeCap: 20, MidCap: 40, SmallCap: 40}},
	}
	for _, tt := range tests {
		w, err := Weights(tt.profile)
		require.NoError(t, err)
		assert.Equal(t, tt.want, w)
		assert.Equal(t, 100, w.Sum())
	}
}

func TestWeightsUnrecognizedProfile(t *testing.T) {
	_, err := Weights("aggressive")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidConfiguration))
}

func TestAllocateInvalidMaxAssets(t *testing.T) {
	_, err := New().Allocate(models.RiskMedium, models.AnalyticsResult{}, nil, nil, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidConfiguration))
}

func TestAllocateSectorFilterAndCap(t *testing.T) {
	var snaps []models.CanonicalSnapshot
	for i := 0; i < 5; i++ {
		snaps = append(snaps, asset(fmt.Sprintf("defi-%d", i), "defi", float64(20-i)*1e9))
	}
	for i := 0; i < 3; i++ {
		snaps = append(snaps, asset(fmt.Sprintf("l1-%d", i), "layer1", float64(8-i)*1e9))
	}
	snaps = append(snaps, asset("meme-0", "meme", 50e9))

	res, err := New().Allocate(models.RiskMedium, models.AnalyticsResult{}, snaps, []string{"defi", "layer1"}, 5)
	require.NoError(t, err)

	assert.Equal(t, 100, res.Weights.Sum())
	assert.LessOrEqual(t, len(res.Breakdown), 5)
	for _, row := range res.Breakdown {
		assert.NotEqual(t, "meme", row.Sector)
	}
}

func TestAllocateFewerAssetsThanMax(t *testing.T) {
	snaps := []models.CanonicalSnapshot{asset("bitcoin", "layer1", 800e9), asset("ethereum", "layer1", 300e9)}
	res, err := New().Allocate(models.RiskLow, models.AnalyticsResult{}, snaps, nil, 10)
	require.NoError(t, err)
	assert.Len(t, res.Breakdown, 2)
	assert.Equal(t, 100, res.Weights.Sum())
}

func TestAllocateWeightsUnchangedByAnalytics(t *testing.T) {
	snaps := []models.CanonicalSnapshot{asset("bitcoin", "layer1", 800e9)}
	bullish, err := New().Allocate(models.RiskMedium, models.AnalyticsResult{Mood: models.MoodBullish, Sentiment: 0.9}, snaps, nil, 5)
	require.NoError(t, err)
	bearish, err := New().Allocate(models.RiskMedium, models.AnalyticsResult{Mood: models.MoodBearish, Sentiment: -0.9}, snaps, nil, 5)
	require.NoError(t, err)

	assert.Equal(t, bullish.Weights, bearish.Weights)
	assert.NotEqual(t, bullish.Timing.Recommendation, bearish.Timing.Recommendation)
}

func TestBasisPointsSumExactly(t *testing.T) {
	for _, profile := range []models.RiskProfile{models.RiskLow, models.RiskMedium, models.RiskHigh} {
		w, err := Weights(profile)
		require.NoError(t, err)
		bp := BasisPoints(w)
		assert.Equal(t, 10000, bp.LargeCap+bp.MidCap+bp.SmallCap)
	}
}

func TestBreakdownTierWeightSplit(t *testing.T) {
	snaps := []models.CanonicalSnapshot{
		asset("a", "layer1", 50e9),
		asset("b", "layer1", 20e9),
		asset("c", "defi", 5e9),
	}
	res, err := New().Allocate(models.RiskMedium, models.AnalyticsResult{}, snaps, nil, 5)
	require.NoError(t, err)

	var largeTotal, midTotal float64
	for _, row := range res.Breakdown {
		switch row.Tier {
		case models.TierLargeCap:
			largeTotal += row.Weight
		case models.TierMidCap:
			midTotal += row.Weight
		}
	}
	assert.InDelta(t, 40.0, largeTotal, 1e-9)
	assert.InDelta(t, 40.0, midTotal, 1e-9)
}
