package allocation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"FolioPulse/internal/domain/models"
)

// riskTable is the deterministic base split per risk profile
// (large/mid/small percent). Analytics never alter these numbers.
var riskTable = map[models.RiskProfile]models.TierWeights{
	models.RiskLow:    {LargeCap: 60, MidCap: 30, SmallCap: 10},
	models.RiskMedium: {LargeCap: 40, MidCap: 40, SmallCap: 20},
	models.RiskHigh:   {LargeCap: 20, MidCap: 40, SmallCap: 40},
}

// Engine maps a risk profile plus analytics onto a concrete allocation.
type Engine struct{}

// New creates an allocation engine.
func New() *Engine { return &Engine{} }

// Weights returns the base tier split for a profile.
func Weights(profile models.RiskProfile) (models.TierWeights, error) {
	w, ok := riskTable[profile]
	if !ok {
		return models.TierWeights{}, fmt.Errorf("%w: unrecognized risk profile %q", models.ErrInvalidConfiguration, profile)
	}
	return w, nil
}

// Allocate builds the allocation result. The sector filter restricts the
// asset universe before tier assignment; at most maxAssets rows appear in
// the breakdown while tier percentages still sum to 100. Analytics populate
// advisory fields only.
func (e *Engine) Allocate(profile models.RiskProfile, analytics models.AnalyticsResult, snaps []models.CanonicalSnapshot, sectors []string, maxAssets int) (models.AllocationResult, error) {
	weights, err := Weights(profile)
	if err != nil {
		return models.AllocationResult{}, err
	}
	if maxAssets <= 0 {
		return models.AllocationResult{}, fmt.Errorf("%w: max_assets must be positive, got %d", models.ErrInvalidConfiguration, maxAssets)
	}

	universe := filterSectors(snaps, sectors)
	breakdown := buildBreakdown(universe, weights, maxAssets)

	return models.AllocationResult{
		RunID:       uuid.NewString(),
		RiskProfile: profile,
		Sectors:     sectors,
		Weights:     weights,
		Breakdown:   breakdown,
		Timing:      timing(analytics),
		Tips:        tips(analytics, weights),
		Analytics:   analytics,
	}, nil
}

// BasisPoints converts percentage weights to basis points summing exactly
// to 10000, assigning any rounding remainder to the largest tier.
func BasisPoints(w models.TierWeights) models.TierBasisPoints {
	bp := models.TierBasisPoints{
		LargeCap: w.LargeCap * 100,
		MidCap:   w.MidCap * 100,
		SmallCap: w.SmallCap * 100,
	}
	remainder := 10000 - bp.LargeCap - bp.MidCap - bp.SmallCap
	if remainder != 0 {
		switch {
		case bp.LargeCap >= bp.MidCap && bp.LargeCap >= bp.SmallCap:
			bp.LargeCap += remainder
		case bp.MidCap >= bp.SmallCap:
			bp.MidCap += remainder
		default:
			bp.SmallCap += remainder
		}
	}
	return bp
}

func filterSectors(snaps []models.CanonicalSnapshot, sectors []string) []models.CanonicalSnapshot {
	if len(sectors) == 0 {
		return snaps
	}
	allowed := make(map[string]struct{}, len(sectors))
	for _, s := range sectors {
		allowed[strings.ToLower(s)] = struct{}{}
	}
	out := make([]models.CanonicalSnapshot, 0, len(snaps))
	for _, s := range snaps {
		if _, ok := allowed[strings.ToLower(s.Sector)]; ok {
			out = append(out, s)
		}
	}
	return out
}

// buildBreakdown selects up to maxAssets assets, largest market cap first,
// and splits each tier's weight evenly across that tier's selected assets.
func buildBreakdown(universe []models.CanonicalSnapshot, weights models.TierWeights, maxAssets int) []models.AssetAllocation {
	selected := make([]models.CanonicalSnapshot, len(universe))
	copy(selected, universe)
	sort.Slice(selected, func(i, j int) bool {
		if selected[i].MarketCap != selected[j].MarketCap {
			return selected[i].MarketCap > selected[j].MarketCap
		}
		return selected[i].AssetID < selected[j].AssetID
	})
	if len(selected) > maxAssets {
		selected = selected[:maxAssets]
	}

	perTier := map[models.MarketCapTier]int{}
	for _, s := range selected {
		perTier[s.Tier()]++
	}
	tierPct := map[models.MarketCapTier]int{
		models.TierLargeCap: weights.LargeCap,
		models.TierMidCap:   weights.MidCap,
		models.TierSmallCap: weights.SmallCap,
	}

	out := make([]models.AssetAllocation, 0, len(selected))
	for _, s := range selected {
		row := models.AssetAllocation{
			AssetID: s.AssetID,
			Symbol:  s.Symbol,
			Sector:  s.Sector,
			Tier:    s.Tier(),
			Price:   s.Price,
		}
		if n := perTier[row.Tier]; n > 0 {
			row.Weight = float64(tierPct[row.Tier]) / float64(n)
		}
		out = append(out, row)
	}
	return out
}

func timing(a models.AnalyticsResult) models.MarketTiming {
	t := models.MarketTiming{Confidence: a.Confidence}
	switch a.Mood {
	case models.MoodBullish:
		t.Recommendation = "favorable"
		t.Action = "markets are trending up; staged entries remain reasonable"
	case models.MoodBearish:
		t.Recommendation = "cautious"
		t.Action = "markets are trending down; consider waiting or averaging in slowly"
	default:
		t.Recommendation = "neutral"
		t.Action = "no strong directional signal; dollar-cost averaging applies"
	}
	return t
}

func tips(a models.AnalyticsResult, w models.TierWeights) []string {
	var out []string
	if a.Diversification < 0.5 && a.AssetCount > 1 {
		out = append(out, "asset set is concentrated in one market-cap tier; consider adding assets from other tiers")
	}
	if w.SmallCap >= 40 {
		out = append(out, "small-cap heavy split carries outsized drawdown risk")
	}
	if a.Confidence < 0.75 && a.AssetCount > 0 {
		out = append(out, "source agreement was below normal for this run; prices may be less reliable")
	}
	return out
}
