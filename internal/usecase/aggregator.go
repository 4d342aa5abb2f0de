package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"FolioPulse/internal/domain/models"
	domrepo "FolioPulse/internal/domain/repository"
	"FolioPulse/internal/service/cache"
	"FolioPulse/internal/services/reconcile"
	"FolioPulse/pkg/logger"
)

// AggregateOutput is the joined result of one aggregation cycle.
type AggregateOutput struct {
	Snapshots    []models.CanonicalSnapshot
	Omissions    []models.Omission
	SourceErrors map[string]string // adapter source -> failure, for result metadata
	Stale        bool              // served from last-good data after total upstream failure
}

// Aggregator runs the fetch/reconcile pipeline: cache lookup, concurrent
// adapter fan-out under a shared deadline, cross-source reconciliation, and
// cache write-back. All shared state lives in the injected cache and rate
// limiter; the aggregator itself holds no request state.
type Aggregator struct {
	adapters  []domrepo.SourceAdapter
	cache     *cache.SnapshotCache
	validator *reconcile.Validator
	publisher domrepo.Publisher
	metrics   domrepo.Metrics
	log       *logger.Logger

	snapshotTTL time.Duration
	callTimeout time.Duration // per adapter call
	deadline    time.Duration // whole fan-out
}

// NewAggregator wires the pipeline. publisher may be nil.
func NewAggregator(
	adapters []domrepo.SourceAdapter,
	snapCache *cache.SnapshotCache,
	validator *reconcile.Validator,
	publisher domrepo.Publisher,
	metrics domrepo.Metrics,
	log *logger.Logger,
	snapshotTTL, callTimeout, deadline time.Duration,
) *Aggregator {
	return &Aggregator{
		adapters:    adapters,
		cache:       snapCache,
		validator:   validator,
		publisher:   publisher,
		metrics:     metrics,
		log:         log,
		snapshotTTL: snapshotTTL,
		callTimeout: callTimeout,
		deadline:    deadline,
	}
}

type fetchResult struct {
	source string
	snaps  []models.MarketSnapshot
	err    error
}

// Aggregate produces canonical snapshots for the requested assets. Per-asset
// and per-adapter failures are absorbed into omissions; only producing zero
// canonical snapshots with no stale fallback is a hard failure.
func (a *Aggregator) Aggregate(ctx context.Context, assetIDs []string, currency string) (*AggregateOutput, error) {
	start := time.Now()
	defer func() { a.metrics.RecordLatency("aggregate", time.Since(start).Seconds()) }()

	ids := normalizeIDs(assetIDs)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no asset ids requested", models.ErrInvalidConfiguration)
	}
	currency = strings.ToLower(currency)

	key := cache.RequestKey(ids, currency)
	if snaps, omissions, ok := a.cache.Get(ctx, key); ok {
		a.metrics.RecordCache("hit")
		return &AggregateOutput{Snapshots: snaps, Omissions: omissions}, nil
	}
	a.metrics.RecordCache("miss")

	bySource, srcErrs := a.fanOut(ctx, ids, currency)
	byAsset := groupByAsset(bySource)

	out := &AggregateOutput{SourceErrors: srcErrs}
	for _, id := range ids {
		canonical, err := a.validator.Reconcile(id, byAsset[id])
		if err != nil {
			out.Omissions = append(out.Omissions, models.Omission{AssetID: id, Reason: omissionReason(err)})
			continue
		}
		a.metrics.RecordConsistency(id, canonical.Consistency)
		out.Snapshots = append(out.Snapshots, canonical)
	}

	if len(out.Snapshots) == 0 {
		if stale := a.cache.LastGood(ids); len(stale) > 0 {
			a.metrics.RecordCache("stale")
			a.log.Warn("every upstream failed, serving last-good snapshots",
				logger.Int("assets", len(stale)))
			out.Snapshots = stale
			out.Stale = true
			return out, nil
		}
		return nil, fmt.Errorf("%w: no canonical snapshot for any of %d requested assets",
			models.ErrAggregationFailed, len(ids))
	}

	a.cache.Put(ctx, key, out.Snapshots, out.Omissions, a.snapshotTTL)
	if a.publisher != nil {
		if err := a.publisher.PublishSnapshots(ctx, out.Snapshots); err != nil {
			a.log.Warn("snapshot publish failed", logger.Error(err))
		}
	}
	return out, nil
}

// fanOut runs one fetch task per adapter under the overall deadline.
// Results arriving after the deadline are discarded, not awaited.
func (a *Aggregator) fanOut(ctx context.Context, ids []string, currency string) (map[string][]models.MarketSnapshot, map[string]string) {
	deadlineCtx, cancel := context.WithTimeout(ctx, a.deadline)
	defer cancel()

	results := make(chan fetchResult, len(a.adapters))
	for _, ad := range a.adapters {
		go func(ad domrepo.SourceAdapter) {
			callCtx, cancelCall := context.WithTimeout(deadlineCtx, a.callTimeout)
			defer cancelCall()
			snaps, err := ad.FetchSnapshots(callCtx, ids, currency)
			results <- fetchResult{source: ad.Source(), snaps: snaps, err: err}
		}(ad)
	}

	bySource := make(map[string][]models.MarketSnapshot, len(a.adapters))
	srcErrs := make(map[string]string)
	for range a.adapters {
		select {
		case r := <-results:
			if r.err != nil {
				a.log.Warn("adapter fetch failed",
					logger.String("source", r.source), logger.Error(r.err))
				srcErrs[r.source] = r.err.Error()
				continue
			}
			bySource[r.source] = r.snaps
		case <-deadlineCtx.Done():
			a.log.Warn("fan-out deadline reached, proceeding with partial results",
				logger.Int("sources", len(bySource)))
			return bySource, srcErrs
		}
	}
	return bySource, srcErrs
}

// SourceHealth reports per-adapter health.
func (a *Aggregator) SourceHealth(ctx context.Context) map[string]bool {
	out := make(map[string]bool, len(a.adapters))
	for _, ad := range a.adapters {
		out[ad.Source()] = ad.Healthy(ctx)
	}
	return out
}

func groupByAsset(bySource map[string][]models.MarketSnapshot) map[string][]models.MarketSnapshot {
	byAsset := make(map[string][]models.MarketSnapshot)
	for _, snaps := range bySource {
		for _, s := range snaps {
			byAsset[s.AssetID] = append(byAsset[s.AssetID], s)
		}
	}
	return byAsset
}

func normalizeIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.ToLower(strings.TrimSpace(id))
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func omissionReason(err error) string {
	switch {
	case errors.Is(err, models.ErrDataUnavailable):
		return "no data from any source"
	case errors.Is(err, models.ErrSourcesDisagree):
		return "sources disagree beyond tolerance"
	case models.IsRateLimited(err):
		return "rate limited"
	default:
		return err.Error()
	}
}
