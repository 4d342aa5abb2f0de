package models

// MarketMood labels the aggregate sentiment score.
type MarketMood string

const (
	MoodBullish MarketMood = "bullish"
	MoodBearish MarketMood = "bearish"
	MoodNeutral MarketMood = "neutral"
)

// PriceBucket is one bin of the fixed price histogram.
type PriceBucket struct {
	Label string  `json:"label"`
	Low   float64 `json:"low"`
	High  float64 `json:"high"` // 0 means unbounded
	Count int     `json:"count"`
}

// GlobalSummary aggregates the canonical set the way the upstream's global
// endpoint would: totals plus advancers/decliners.
type GlobalSummary struct {
	TotalMarketCap float64 `json:"total_market_cap"`
	TotalVolume24h float64 `json:"total_volume_24h"`
	Advancers      int     `json:"advancers"`
	Decliners      int     `json:"decliners"`
}

// AnalyticsResult is derived from a set of canonical snapshots. It is a pure
// function of that set: identical inputs produce identical results.
type AnalyticsResult struct {
	Sentiment       float64               `json:"sentiment"` // [-1, 1]
	Mood            MarketMood            `json:"mood"`
	Confidence      float64               `json:"confidence"` // mean consistency of the input set
	PriceBuckets    []PriceBucket         `json:"price_buckets"`
	Diversification float64               `json:"diversification"` // [0, 1]
	TierCounts      map[MarketCapTier]int `json:"tier_counts"`
	Global          GlobalSummary         `json:"global"`
	AssetCount      int                   `json:"asset_count"`
}
