package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FolioPulse/internal/domain/models"
)

func TestStoreAllocationRejectsBadBasisPointTotal(t *testing.T) {
	s := &ClickHouseAllocationStore{}
	err := s.StoreAllocation(context.Background(), &models.AllocationResult{RunID: "r1"}, models.TierBasisPoints{
		LargeCap: 4000,
		MidCap:   4000,
		SmallCap: 1000,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "10000")
}
