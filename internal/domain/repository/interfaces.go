package repository

import (
	"context"
	"time"

	"FolioPulse/internal/domain/models"
)

// SourceAdapter fetches and normalizes raw data from one upstream source.
// Implementations respect the rate limiter for their own source id and
// return explicit errors rather than empty snapshots, so the reconciler can
// distinguish "no data" from "zero value".
type SourceAdapter interface {
	Source() string
	FetchSnapshots(ctx context.Context, assetIDs []string, currency string) ([]models.MarketSnapshot, error)
	Healthy(ctx context.Context) bool
}

// Publisher emits canonical snapshots and allocation events for downstream
// consumers. Optional; a nil publisher disables the concern.
type Publisher interface {
	PublishSnapshots(ctx context.Context, snaps []models.CanonicalSnapshot) error
	PublishAllocation(ctx context.Context, res *models.AllocationResult) error
	Close() error
}

// AllocationStore persists allocation history. Tier weights are stored in
// basis points; implementations must reject totals that are not 10000.
type AllocationStore interface {
	Init(ctx context.Context) error
	StoreAllocation(ctx context.Context, res *models.AllocationResult, bp models.TierBasisPoints) error
	StoreSnapshots(ctx context.Context, snaps []models.CanonicalSnapshot) error
	History(ctx context.Context, profile models.RiskProfile, from, to time.Time, limit int) ([]*models.AllocationResult, error)
	Health(ctx context.Context) error
	Close() error
}

// Metrics records operational measurements for the pipeline.
type Metrics interface {
	RecordFetch(source, result string)
	RecordCache(event string)
	RecordRateLimited(source string)
	RecordConsistency(assetID string, score float64)
	RecordLatency(op string, seconds float64)
	RecordError(op string)
}
