package models

// RiskProfile selects the base tier split of an allocation.
type RiskProfile string

const (
	RiskLow    RiskProfile = "low"
	RiskMedium RiskProfile = "medium"
	RiskHigh   RiskProfile = "high"
)

// Valid reports whether the profile is one of the recognized values.
func (r RiskProfile) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// TierWeights holds integer percentage weights per market-cap tier.
// Large + Mid + Small is always exactly 100.
type TierWeights struct {
	LargeCap int `json:"large_cap"`
	MidCap   int `json:"mid_cap"`
	SmallCap int `json:"small_cap"`
}

// Sum returns the total percentage weight.
func (w TierWeights) Sum() int { return w.LargeCap + w.MidCap + w.SmallCap }

// AssetAllocation is one row of the per-asset breakdown.
type AssetAllocation struct {
	AssetID string        `json:"asset_id"`
	Symbol  string        `json:"symbol,omitempty"`
	Sector  string        `json:"sector,omitempty"`
	Tier    MarketCapTier `json:"tier"`
	Price   float64       `json:"price"`
	Weight  float64       `json:"weight"` // percentage share within the result
}

// MarketTiming is an advisory field only; it never changes tier weights.
type MarketTiming struct {
	Recommendation string  `json:"recommendation"` // favorable / cautious / neutral
	Action         string  `json:"action"`
	Confidence     float64 `json:"confidence"`
}

// AllocationResult is the pipeline's final output. Tier weights come from the
// fixed risk table alone so allocation is reproducible; analytics feed only
// the advisory fields.
type AllocationResult struct {
	RunID        string            `json:"run_id"`
	RiskProfile  RiskProfile       `json:"risk_profile"`
	Sectors      []string          `json:"sectors"`
	Weights      TierWeights       `json:"weights"`
	Breakdown    []AssetAllocation `json:"breakdown,omitempty"`
	Timing       MarketTiming      `json:"timing"`
	Tips         []string          `json:"tips,omitempty"`
	Analytics    AnalyticsResult   `json:"analytics"`
	Omissions    []Omission        `json:"omissions,omitempty"`
	SourceErrors map[string]string `json:"source_errors,omitempty"` // adapter source -> failure
	Stale        bool              `json:"stale,omitempty"`         // served from cache after total upstream failure
}

// TierBasisPoints expresses tier weights in basis points (1% = 100 bp).
// The three values always sum to exactly 10000.
type TierBasisPoints struct {
	LargeCap int `json:"large_cap_bp"`
	MidCap   int `json:"mid_cap_bp"`
	SmallCap int `json:"small_cap_bp"`
}

// Omission records an asset dropped from the result and why.
type Omission struct {
	AssetID string `json:"asset_id"`
	Reason  string `json:"reason"`
}
