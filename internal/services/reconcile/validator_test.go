package reconcile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FolioPulse/internal/domain/models"
)

func snap(source string, price float64) models.MarketSnapshot {
	return models.MarketSnapshot{AssetID: "bitcoin", Price: price, Source: source}
}

func TestReconcileNoSnapshots(t *testing.T) {
	v := New(1.0)
	_, err := v.Reconcile("bitcoin", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrDataUnavailable))
}

func TestReconcileSingleSourceIsUnverified(t *testing.T) {
	v := New(1.0)
	got, err := v.Reconcile("bitcoin", []models.MarketSnapshot{snap("a", 50000)})
	require.NoError(t, err)
	assert.Equal(t, 0.5, got.Consistency)
	assert.Equal(t, 50000.0, got.Price)
	assert.Equal(t, []string{"a"}, got.Sources)
	assert.Empty(t, got.Excluded)
}

func TestReconcileTwoAgreeingSources(t *testing.T) {
	v := New(1.0)
	got, err := v.Reconcile("bitcoin", []models.MarketSnapshot{
		snap("a", 100),
		snap("b", 102),
	})
	require.NoError(t, err)
	assert.Equal(t, 101.0, got.Price)
	assert.Equal(t, 1.0, got.Consistency)
	assert.ElementsMatch(t, []string{"a", "b"}, got.Sources)
	assert.Empty(t, got.Excluded)
}

func TestReconcileExcludesOutlier(t *testing.T) {
	v := New(1.0)
	got, err := v.Reconcile("bitcoin", []models.MarketSnapshot{
		snap("a", 100),
		snap("b", 100.5),
		snap("c", 130),
	})
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, got.Consistency, 1e-9)
	assert.Equal(t, []string{"c"}, got.Excluded)
	assert.InDelta(t, 100.25, got.Price, 1e-9)
	assert.ElementsMatch(t, []string{"a", "b"}, got.Sources)
}

func TestReconcileDeterministic(t *testing.T) {
	v := New(1.0)
	in := []models.MarketSnapshot{snap("a", 99.8), snap("b", 100.2), snap("c", 100)}
	first, err := v.Reconcile("bitcoin", in)
	require.NoError(t, err)
	second, err := v.Reconcile("bitcoin", in)
	require.NoError(t, err)
	assert.Equal(t, first.Price, second.Price)
	assert.Equal(t, first.Consistency, second.Consistency)
	assert.Equal(t, first.Sources, second.Sources)
}

func TestReconcileEvenSplitDisagreement(t *testing.T) {
	v := New(1.0)
	// Two positive prices beyond tolerance of their midpoint: data exists
	// but conflicts, which is not the same as having no data.
	_, err := v.Reconcile("bitcoin", []models.MarketSnapshot{snap("a", 100), snap("b", 110)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrSourcesDisagree))
	assert.False(t, errors.Is(err, models.ErrDataUnavailable))
}

func TestReconcileAllNonPositivePrices(t *testing.T) {
	v := New(1.0)
	_, err := v.Reconcile("bitcoin", []models.MarketSnapshot{snap("a", 0), snap("b", 0)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrDataUnavailable))
}
