package analytics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"FolioPulse/internal/domain/models"
)

// Sentiment normalization and mood thresholds.
const (
	sentimentScale   = 10.0 // divisor applied to the mean 24h change
	bullishThreshold = 0.2
	bearishThreshold = -0.2
)

// priceBucketBounds are the fixed histogram boundaries by canonical price.
// A zero high bound means unbounded.
var priceBucketBounds = []struct {
	label string
	low   float64
	high  float64
}{
	{"under_1", 0, 1},
	{"1_to_10", 1, 10},
	{"10_to_100", 10, 100},
	{"over_100", 100, 0},
}

// Engine derives market analytics from a canonical snapshot set. Every
// output is a pure function of the input set so identical inputs always
// reproduce identical results.
type Engine struct{}

// New creates an analytics engine.
func New() *Engine { return &Engine{} }

// Analyze computes sentiment, mood, price-bucket histogram, tier counts,
// diversification and the global summary for the given snapshot set.
func (e *Engine) Analyze(snaps []models.CanonicalSnapshot) models.AnalyticsResult {
	res := models.AnalyticsResult{
		AssetCount:   len(snaps),
		Mood:         models.MoodNeutral,
		PriceBuckets: bucketize(snaps),
		TierCounts:   tierCounts(snaps),
	}
	if len(snaps) == 0 {
		return res
	}

	changes := make([]float64, len(snaps))
	for i, s := range snaps {
		changes[i] = s.Change24h
		res.Global.TotalMarketCap += s.MarketCap
		res.Global.TotalVolume24h += s.Volume24h
		switch {
		case s.Change24h > 0:
			res.Global.Advancers++
		case s.Change24h < 0:
			res.Global.Decliners++
		}
	}

	res.Sentiment = clip(stat.Mean(changes, nil)/sentimentScale, -1, 1)
	switch {
	case res.Sentiment > bullishThreshold:
		res.Mood = models.MoodBullish
	case res.Sentiment < bearishThreshold:
		res.Mood = models.MoodBearish
	}

	res.Confidence = meanConsistency(snaps)
	res.Diversification = diversification(res.TierCounts, len(snaps))
	return res
}

func bucketize(snaps []models.CanonicalSnapshot) []models.PriceBucket {
	out := make([]models.PriceBucket, len(priceBucketBounds))
	for i, b := range priceBucketBounds {
		out[i] = models.PriceBucket{Label: b.label, Low: b.low, High: b.high}
	}
	for _, s := range snaps {
		for i, b := range priceBucketBounds {
			if s.Price >= b.low && (b.high == 0 || s.Price < b.high) {
				out[i].Count++
				break
			}
		}
	}
	return out
}

func tierCounts(snaps []models.CanonicalSnapshot) map[models.MarketCapTier]int {
	counts := map[models.MarketCapTier]int{
		models.TierLargeCap: 0,
		models.TierMidCap:   0,
		models.TierSmallCap: 0,
	}
	for _, s := range snaps {
		counts[s.Tier()]++
	}
	return counts
}

// diversification is the Shannon entropy of the tier distribution,
// normalized to [0,1]. A set evenly spread across the three tiers scores 1,
// a single-tier set scores 0.
func diversification(counts map[models.MarketCapTier]int, total int) float64 {
	if total == 0 {
		return 0
	}
	var entropy float64
	for _, n := range counts {
		if n == 0 {
			continue
		}
		p := float64(n) / float64(total)
		entropy -= p * math.Log(p)
	}
	max := math.Log(float64(len(counts)))
	if max == 0 {
		return 0
	}
	return clip(entropy/max, 0, 1)
}

func meanConsistency(snaps []models.CanonicalSnapshot) float64 {
	scores := make([]float64, len(snaps))
	for i, s := range snaps {
		scores[i] = s.Consistency
	}
	return stat.Mean(scores, nil)
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
