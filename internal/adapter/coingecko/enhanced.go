package coingecko

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"FolioPulse/internal/domain/models"
	"FolioPulse/internal/services/features"
	"FolioPulse/pkg/logger"
)

const (
	sourceEnhanced = "coingecko-enhanced"
	chartDays      = 30
)

// EnhancedAdapter merges the markets listing with a per-asset historical
// chart into one richer snapshot carrying trend direction and relative
// volatility. Chart calls are best-effort; a failed chart degrades the
// snapshot instead of failing the fetch.
type EnhancedAdapter struct {
	client *Client
	log    *logger.Logger
}

// NewEnhancedAdapter creates the multi-endpoint adapter.
func NewEnhancedAdapter(client *Client, log *logger.Logger) *EnhancedAdapter {
	return &EnhancedAdapter{client: client, log: log}
}

// Source returns the adapter's source id.
func (a *EnhancedAdapter) Source() string { return sourceEnhanced }

// FetchSnapshots retrieves the markets rows for the given assets and
// decorates each with chart-derived features.
func (a *EnhancedAdapter) FetchSnapshots(ctx context.Context, assetIDs []string, currency string) ([]models.MarketSnapshot, error) {
	var recs []marketRecord
	err := a.client.GetJSON(ctx, a.Source(), "/coins/markets", map[string][]string{
		"ids":         {strings.Join(assetIDs, ",")},
		"vs_currency": {strings.ToLower(currency)},
		"order":       {"market_cap_desc"},
		"per_page":    {strconv.Itoa(len(assetIDs))},
		"page":        {"1"},
	}, &recs)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%w: no requested asset present in markets response", models.ErrUpstreamUnavailable)
	}

	now := time.Now().UTC()
	out := make([]models.MarketSnapshot, 0, len(recs))
	for _, rec := range recs {
		snap, err := normalizeMarket(a.Source(), rec, now)
		if err != nil {
			return nil, err
		}
		snap.Sector = SectorFor(snap.AssetID)

		if prices, err := a.fetchChart(ctx, snap.AssetID, currency); err != nil {
			a.log.Debug("chart fetch failed, emitting snapshot without chart features",
				logger.String("asset", snap.AssetID), logger.Error(err))
		} else {
			snap.Trend = features.TrendDirection(prices)
			snap.Volatility = features.RelativeVolatility(prices)
		}
		out = append(out, snap)
	}
	return out, nil
}

func (a *EnhancedAdapter) fetchChart(ctx context.Context, assetID, currency string) ([]float64, error) {
	var chart chartResponse
	err := a.client.GetJSON(ctx, a.Source(), "/coins/"+assetID+"/market_chart", map[string][]string{
		"vs_currency": {strings.ToLower(currency)},
		"days":        {strconv.Itoa(chartDays)},
	}, &chart)
	if err != nil {
		return nil, err
	}
	return chart.priceSeries(), nil
}

// Healthy reports whether the upstream answers its ping endpoint.
func (a *EnhancedAdapter) Healthy(ctx context.Context) bool {
	return a.client.Ping(ctx, a.Source())
}
