package reconcile

import (
	"fmt"
	"math"
	"sort"
	"time"

	"FolioPulse/internal/domain/models"
)

// DefaultTolerancePct is the maximum relative deviation from the median
// price, in percent, for a source to count as agreeing.
const DefaultTolerancePct = 1.0

// Validator reconciles per-source snapshots for one asset into a canonical
// value with a consistency score. Pure; safe for concurrent use.
type Validator struct {
	tolerance float64 // fraction, e.g. 0.01
}

// New creates a validator. tolerancePct <= 0 selects the default.
func New(tolerancePct float64) *Validator {
	if tolerancePct <= 0 {
		tolerancePct = DefaultTolerancePct
	}
	return &Validator{tolerance: tolerancePct / 100}
}

// Reconcile resolves the snapshots for one asset. A single snapshot becomes
// canonical unverified with score 0.5. With multiple snapshots the median
// price anchors agreement: if every source is within tolerance of it the
// score is 1.0, otherwise the canonical value is recomputed from the
// agreeing subset, the score is the agreeing fraction, and the excluded
// sources are recorded rather than merged in. When no source agrees with
// the anchor the snapshots are conflicting and the asset is rejected with
// ErrSourcesDisagree.
func (v *Validator) Reconcile(assetID string, snaps []models.MarketSnapshot) (models.CanonicalSnapshot, error) {
	if len(snaps) == 0 {
		return models.CanonicalSnapshot{}, fmt.Errorf("%w: no snapshots for %s", models.ErrDataUnavailable, assetID)
	}

	if len(snaps) == 1 {
		s := snaps[0]
		return models.CanonicalSnapshot{
			AssetID:      assetID,
			Symbol:       s.Symbol,
			Price:        s.Price,
			MarketCap:    s.MarketCap,
			Volume24h:    s.Volume24h,
			Change24h:    s.Change24h,
			Sector:       s.Sector,
			Consistency:  0.5,
			Sources:      []string{s.Source},
			ReconciledAt: time.Now().UTC(),
		}, nil
	}

	anchor := medianPrice(snaps)
	agreeing := make([]models.MarketSnapshot, 0, len(snaps))
	var excluded []string
	for _, s := range snaps {
		if anchor > 0 && math.Abs(s.Price-anchor)/anchor <= v.tolerance {
			agreeing = append(agreeing, s)
		} else {
			excluded = append(excluded, s.Source)
		}
	}
	if len(agreeing) == 0 {
		if anchor <= 0 {
			// every source reported a non-positive price
			return models.CanonicalSnapshot{}, fmt.Errorf("%w: no usable price for %s", models.ErrDataUnavailable, assetID)
		}
		// Even snapshot count with a midpoint anchor no source is within
		// tolerance of. There is no majority to trust, so the asset is
		// reported as conflicting rather than averaged.
		return models.CanonicalSnapshot{}, fmt.Errorf("%w: %d sources for %s", models.ErrSourcesDisagree, len(snaps), assetID)
	}

	score := float64(len(agreeing)) / float64(len(snaps))
	sources := make([]string, 0, len(agreeing))
	for _, s := range agreeing {
		sources = append(sources, s.Source)
	}

	out := models.CanonicalSnapshot{
		AssetID:      assetID,
		Price:        medianPrice(agreeing),
		MarketCap:    medianOf(agreeing, func(s models.MarketSnapshot) float64 { return s.MarketCap }),
		Volume24h:    medianOf(agreeing, func(s models.MarketSnapshot) float64 { return s.Volume24h }),
		Change24h:    medianOf(agreeing, func(s models.MarketSnapshot) float64 { return s.Change24h }),
		Consistency:  score,
		Sources:      sources,
		Excluded:     excluded,
		ReconciledAt: time.Now().UTC(),
	}
	for _, s := range agreeing {
		if out.Symbol == "" {
			out.Symbol = s.Symbol
		}
		if out.Sector == "" {
			out.Sector = s.Sector
		}
	}
	return out, nil
}

func medianPrice(snaps []models.MarketSnapshot) float64 {
	return medianOf(snaps, func(s models.MarketSnapshot) float64 { return s.Price })
}

func medianOf(snaps []models.MarketSnapshot, f func(models.MarketSnapshot) float64) float64 {
	vals := make([]float64, len(snaps))
	for i, s := range snaps {
		vals[i] = f(s)
	}
	sort.Float64s(vals)
	n := len(vals)
	if n%2 == 1 {
		return vals[n/2]
	}
	return (vals[n/2-1] + vals[n/2]) / 2
}
