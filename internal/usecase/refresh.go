package usecase

import (
	"context"
	"time"

	domrepo "FolioPulse/internal/domain/repository"
	"FolioPulse/pkg/logger"
)

// Refresher warms the snapshot cache for a fixed asset set on a schedule,
// so interactive requests mostly hit warm data. Snapshot history is written
// through to the store when one is configured.
type Refresher struct {
	aggregator *Aggregator
	store      domrepo.AllocationStore
	log        *logger.Logger

	assetIDs []string
	currency string
}

// NewRefresher wires the scheduled refresh job. store may be nil.
func NewRefresher(aggregator *Aggregator, store domrepo.AllocationStore, log *logger.Logger, assetIDs []string, currency string) *Refresher {
	return &Refresher{
		aggregator: aggregator,
		store:      store,
		log:        log,
		assetIDs:   assetIDs,
		currency:   currency,
	}
}

// Run executes one refresh cycle. Failures are logged, never fatal; the next
// scheduled run simply tries again.
func (r *Refresher) Run(ctx context.Context) {
	if len(r.assetIDs) == 0 {
		return
	}
	start := time.Now()
	out, err := r.aggregator.Aggregate(ctx, r.assetIDs, r.currency)
	if err != nil {
		r.log.Warn("scheduled refresh failed", logger.Error(err))
		return
	}
	if r.store != nil && !out.Stale {
		if err := r.store.StoreSnapshots(ctx, out.Snapshots); err != nil {
			r.log.Warn("snapshot history write failed", logger.Error(err))
		}
	}
	r.log.Info("scheduled refresh complete",
		logger.Int("assets", len(out.Snapshots)),
		logger.Int("omissions", len(out.Omissions)),
		logger.Duration("took_ms", time.Since(start)))
}
