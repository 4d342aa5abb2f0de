package models

import "time"

// MarketSnapshot is one source's normalized reading of an asset at a point
// in time. Immutable once created; one instance per (asset, source, fetch).
type MarketSnapshot struct {
	AssetID    string    `json:"asset_id"`
	Symbol     string    `json:"symbol,omitempty"`
	Price      float64   `json:"price"`
	MarketCap  float64   `json:"market_cap"`
	Volume24h  float64   `json:"volume_24h"`
	Change24h  float64   `json:"change_24h"`
	Sector     string    `json:"sector,omitempty"`
	Source     string    `json:"source"`
	FetchedAt  time.Time `json:"fetched_at"`
	Trend      string    `json:"trend,omitempty"`      // enhanced source only: "upward"/"downward"
	Volatility float64   `json:"volatility,omitempty"` // enhanced source only: relative 30d volatility
}

// CanonicalSnapshot is the reconciled value for one asset after
// cross-validation. Consistency 1.0 means every contributing source agreed
// within tolerance.
type CanonicalSnapshot struct {
	AssetID      string    `json:"asset_id"`
	Symbol       string    `json:"symbol,omitempty"`
	Price        float64   `json:"price"`
	MarketCap    float64   `json:"market_cap"`
	Volume24h    float64   `json:"volume_24h"`
	Change24h    float64   `json:"change_24h"`
	Sector       string    `json:"sector,omitempty"`
	Consistency  float64   `json:"consistency"`
	Sources      []string  `json:"sources"`
	Excluded     []string  `json:"excluded_sources,omitempty"`
	ReconciledAt time.Time `json:"reconciled_at"`
}

// MarketCapTier buckets assets by market capitalization for allocation.
type MarketCapTier string

const (
	TierLargeCap MarketCapTier = "large_cap"
	TierMidCap   MarketCapTier = "mid_cap"
	TierSmallCap MarketCapTier = "small_cap"
)

// Tier cut-offs in the quote currency.
const (
	LargeCapFloor = 10_000_000_000
	MidCapFloor   = 1_000_000_000
)

// Tier classifies a canonical snapshot into a market-cap tier.
func (s CanonicalSnapshot) Tier() MarketCapTier {
	switch {
	case s.MarketCap >= LargeCapFloor:
		return TierLargeCap
	case s.MarketCap >= MidCapFloor:
		return TierMidCap
	default:
		return TierSmallCap
	}
}
