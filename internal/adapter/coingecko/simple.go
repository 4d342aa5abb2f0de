package coingecko

import (
	"context"
	"fmt"
	"strings"
	"time"

	"FolioPulse/internal/domain/models"
	"FolioPulse/pkg/logger"
)

const sourceSimple = "coingecko-simple"

// SimpleAdapter fetches from the minimal price endpoint. Lowest latency,
// fewest fields.
type SimpleAdapter struct {
	client *Client
	log    *logger.Logger
}

// NewSimpleAdapter creates the minimal-endpoint adapter.
func NewSimpleAdapter(client *Client, log *logger.Logger) *SimpleAdapter {
	return &SimpleAdapter{client: client, log: log}
}

// Source returns the adapter's source id.
func (a *SimpleAdapter) Source() string { return sourceSimple }

// FetchSnapshots retrieves price, market cap, volume and 24h change for the
// given assets in one upstream call. Assets missing from the response are
// dropped; a whole-response normalization failure is reported as a schema
// mismatch so the caller treats this adapter as unavailable.
func (a *SimpleAdapter) FetchSnapshots(ctx context.Context, assetIDs []string, currency string) ([]models.MarketSnapshot, error) {
	var resp simplePriceResponse
	err := a.client.GetJSON(ctx, a.Source(), "/simple/price", map[string][]string{
		"ids":                 {strings.Join(assetIDs, ",")},
		"vs_currencies":       {strings.ToLower(currency)},
		"include_market_cap":  {"true"},
		"include_24hr_vol":    {"true"},
		"include_24hr_change": {"true"},
	}, &resp)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	out := make([]models.MarketSnapshot, 0, len(assetIDs))
	for _, id := range assetIDs {
		row, ok := resp[id]
		if !ok {
			a.log.Debug("asset absent from simple price response", logger.String("asset", id))
			continue
		}
		snap, err := normalizeSimple(a.Source(), id, currency, row, now)
		if err != nil {
			return nil, err
		}
		snap.Sector = SectorFor(id)
		out = append(out, snap)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no requested asset present in response", models.ErrUpstreamUnavailable)
	}
	return out, nil
}

// Healthy reports whether the upstream answers its ping endpoint.
func (a *SimpleAdapter) Healthy(ctx context.Context) bool {
	return a.client.Ping(ctx, a.Source())
}
