package coingecko

import (
	"fmt"
	"strings"
	"time"

	"FolioPulse/internal/domain/models"
)

// simplePriceResponse is the /simple/price payload: asset id to a flat map
// of "{currency}", "{currency}_market_cap", "{currency}_24h_vol",
// "{currency}_24h_change" entries.
type simplePriceResponse map[string]map[string]float64

// marketRecord is one row of /coins/markets.
type marketRecord struct {
	ID                       string   `json:"id"`
	Symbol                   string   `json:"symbol"`
	Name                     string   `json:"name"`
	CurrentPrice             *float64 `json:"current_price"`
	MarketCap                *float64 `json:"market_cap"`
	TotalVolume              *float64 `json:"total_volume"`
	PriceChangePercentage24h *float64 `json:"price_change_percentage_24h"`
}

// chartResponse is the /coins/{id}/market_chart payload. Each point is a
// [timestamp_ms, value] pair.
type chartResponse struct {
	Prices [][]float64 `json:"prices"`
}

func (c chartResponse) priceSeries() []float64 {
	out := make([]float64, 0, len(c.Prices))
	for _, p := range c.Prices {
		if len(p) == 2 {
			out = append(out, p[1])
		}
	}
	return out
}

// normalizeSimple converts one asset's /simple/price row into a snapshot.
// A row missing its price field cannot be normalized.
func normalizeSimple(source, assetID, currency string, row map[string]float64, at time.Time) (models.MarketSnapshot, error) {
	cur := strings.ToLower(currency)
	price, ok := row[cur]
	if !ok {
		return models.MarketSnapshot{}, fmt.Errorf("%w: %s has no %s price field", models.ErrSchemaMismatch, assetID, cur)
	}
	return models.MarketSnapshot{
		AssetID:   assetID,
		Price:     price,
		MarketCap: row[cur+"_market_cap"],
		Volume24h: row[cur+"_24h_vol"],
		Change24h: row[cur+"_24h_change"],
		Source:    source,
		FetchedAt: at,
	}, nil
}

// normalizeMarket converts one /coins/markets row into a snapshot.
func normalizeMarket(source string, rec marketRecord, at time.Time) (models.MarketSnapshot, error) {
	if rec.ID == "" || rec.CurrentPrice == nil {
		return models.MarketSnapshot{}, fmt.Errorf("%w: market row for %q lacks id or price", models.ErrSchemaMismatch, rec.ID)
	}
	s := models.MarketSnapshot{
		AssetID:   rec.ID,
		Symbol:    strings.ToUpper(rec.Symbol),
		Price:     *rec.CurrentPrice,
		Source:    source,
		FetchedAt: at,
	}
	if rec.MarketCap != nil {
		s.MarketCap = *rec.MarketCap
	}
	if rec.TotalVolume != nil {
		s.Volume24h = *rec.TotalVolume
	}
	if rec.PriceChangePercentage24h != nil {
		s.Change24h = *rec.PriceChangePercentage24h
	}
	return s, nil
}
