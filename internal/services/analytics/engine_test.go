package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"FolioPulse/internal/domain/models"
)

func canonical(price, marketCap, change float64) models.CanonicalSnapshot {
	return models.CanonicalSnapshot{Price: price, MarketCap: marketCap, Change24h: change, Consistency: 1.0}
}

func TestAnalyzeEmptySet(t *testing.T) {
	res := New().Analyze(nil)
	assert.Equal(t, 0, res.AssetCount)
	assert.Equal(t, models.MoodNeutral, res.Mood)
	assert.Equal(t, 0.0, res.Sentiment)
	assert.Equal(t, 0.0, res.Diversification)
}

func TestSentimentClippedAndThresholded(t *testing.T) {
	tests := []struct {
		name      string
		changes   []float64
		sentiment float64
		mood      models.MarketMood
	}{
		{"strong rally clips at 1", []float64{25, 35}, 1.0, models.MoodBullish},
		{"crash clips at -1", []float64{-40, -60}, -1.0, models.MoodBearish},
		{"mild gain is bullish", []float64{3, 3}, 0.3, models.MoodBullish},
		{"mild loss is bearish", []float64{-3, -3}, -0.3, models.MoodBearish},
		{"flat is neutral", []float64{1, -1}, 0.0, models.MoodNeutral},
		{"boundary is neutral", []float64{2, 2}, 0.2, models.MoodNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snaps := make([]models.CanonicalSnapshot, len(tt.changes))
			for i, c := range tt.changes {
				snaps[i] = canonical(100, 5e9, c)
			}
			res := New().Analyze(snaps)
			assert.InDelta(t, tt.sentiment, res.Sentiment, 1e-9)
			assert.Equal(t, tt.mood, res.Mood)
		})
	}
}

func TestPriceBuckets(t *testing.T) {
	res := New().Analyze([]models.CanonicalSnapshot{
		canonical(0.5, 1e9, 0),
		canonical(1, 1e9, 0),
		canonical(9.99, 1e9, 0),
		canonical(42, 1e9, 0),
		canonical(50000, 1e9, 0),
	})
	counts := map[string]int{}
	for _, b := range res.PriceBuckets {
		counts[b.Label] = b.Count
	}
	assert.Equal(t, 1, counts["under_1"])
	assert.Equal(t, 2, counts["1_to_10"])
	assert.Equal(t, 1, counts["10_to_100"])
	assert.Equal(t, 1, counts["over_100"])
}

func TestDiversification(t *testing.T) {
	even := New().Analyze([]models.CanonicalSnapshot{
		canonical(1, 50e9, 0), // large
		canonical(1, 5e9, 0),  // mid
		canonical(1, 0.5e9, 0),
	})
	assert.InDelta(t, 1.0, even.Diversification, 1e-9)

	single := New().Analyze([]models.CanonicalSnapshot{
		canonical(1, 50e9, 0),
		canonical(1, 60e9, 0),
	})
	assert.Equal(t, 0.0, single.Diversification)
	assert.True(t, even.Diversification > single.Diversification)
}

func TestGlobalSummary(t *testing.T) {
	res := New().Analyze([]models.CanonicalSnapshot{
		canonical(1, 10e9, 2.5),
		canonical(1, 5e9, -1.0),
		canonical(1, 1e9, 0),
	})
	assert.Equal(t, 16e9, res.Global.TotalMarketCap)
	assert.Equal(t, 1, res.Global.Advancers)
	assert.Equal(t, 1, res.Global.Decliners)
}

func TestAnalyzeReproducible(t *testing.T) {
	in := []models.CanonicalSnapshot{canonical(10, 2e9, 1.5), canonical(200, 40e9, -0.5)}
	assert.Equal(t, New().Analyze(in), New().Analyze(in))
}
