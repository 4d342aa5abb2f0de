package features

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Trend labels derived from a historical price chart.
const (
	TrendUpward   = "upward"
	TrendDownward = "downward"
	TrendFlat     = "flat"
)

// LogReturns computes log returns from a chart price series. Non-positive
// prices break the series and are skipped.
func LogReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		p0, p1 := prices[i-1], prices[i]
		if p0 <= 0 || p1 <= 0 {
			continue
		}
		out = append(out, math.Log(p1/p0))
	}
	return out
}

// RelativeVolatility is the standard deviation of log returns over the
// series, as a dimensionless dispersion measure. Returns 0 when the series
// is too short to estimate.
func RelativeVolatility(prices []float64) float64 {
	rets := LogReturns(prices)
	if len(rets) < 2 {
		return 0
	}
	return stat.StdDev(rets, nil)
}

// TrendDirection compares the means of the first and last thirds of the
// series. Differences under half a percent of the early mean count as flat.
func TrendDirection(prices []float64) string {
	if len(prices) < 3 {
		return TrendFlat
	}
	third := len(prices) / 3
	early := stat.Mean(prices[:third], nil)
	late := stat.Mean(prices[len(prices)-third:], nil)
	if early <= 0 {
		return TrendFlat
	}
	switch {
	case late > early*1.005:
		return TrendUpward
	case late < early*0.995:
		return TrendDownward
	default:
		return TrendFlat
	}
}
