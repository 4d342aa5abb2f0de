package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogReturnsSkipsNonPositive(t *testing.T) {
	assert.Nil(t, LogReturns([]float64{100}))
	assert.Len(t, LogReturns([]float64{100, 110, 105}), 2)
	assert.Len(t, LogReturns([]float64{100, 0, 105}), 0)
}

func TestRelativeVolatility(t *testing.T) {
	assert.Equal(t, 0.0, RelativeVolatility([]float64{100, 101}))

	flat := RelativeVolatility([]float64{100, 100, 100, 100})
	choppy := RelativeVolatility([]float64{100, 120, 90, 130})
	assert.Equal(t, 0.0, flat)
	assert.Greater(t, choppy, flat)
}

func TestTrendDirection(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		want   string
	}{
		{"too short", []float64{100, 101}, TrendFlat},
		{"upward", []float64{100, 101, 102, 108, 109, 110}, TrendUpward},
		{"downward", []float64{110, 109, 108, 102, 101, 100}, TrendDownward},
		{"flat", []float64{100, 100.1, 99.9, 100, 100.1, 99.9}, TrendFlat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TrendDirection(tt.prices))
		})
	}
}
