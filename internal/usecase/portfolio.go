package usecase

import (
	"context"
	"fmt"
	"time"

	"FolioPulse/internal/adapter/coingecko"
	"FolioPulse/internal/domain/models"
	domrepo "FolioPulse/internal/domain/repository"
	"FolioPulse/internal/services/allocation"
	"FolioPulse/internal/services/analytics"
	"FolioPulse/pkg/logger"
)

// Portfolio orchestrates a full allocation run: resolve the asset universe,
// aggregate canonical snapshots, derive analytics, and map the risk profile
// onto tier weights. Invalid configuration is rejected before any network
// call is made.
type Portfolio struct {
	aggregator *Aggregator
	analytics  *analytics.Engine
	allocator  *allocation.Engine
	store      domrepo.AllocationStore
	publisher  domrepo.Publisher
	log        *logger.Logger

	defaultSectors []string
}

// NewPortfolio wires the allocation usecase. store and publisher may be nil.
func NewPortfolio(
	aggregator *Aggregator,
	analyticsEngine *analytics.Engine,
	allocator *allocation.Engine,
	store domrepo.AllocationStore,
	publisher domrepo.Publisher,
	log *logger.Logger,
	defaultSectors []string,
) *Portfolio {
	return &Portfolio{
		aggregator:     aggregator,
		analytics:      analyticsEngine,
		allocator:      allocator,
		store:          store,
		publisher:      publisher,
		log:            log,
		defaultSectors: defaultSectors,
	}
}

// Allocate runs the pipeline for one request.
func (p *Portfolio) Allocate(ctx context.Context, req *models.AllocateRequest) (*models.AllocationResult, error) {
	profile := models.RiskProfile(req.RiskProfile)
	if !profile.Valid() {
		return nil, fmt.Errorf("%w: unrecognized risk profile %q", models.ErrInvalidConfiguration, req.RiskProfile)
	}
	if req.MaxAssets < 1 {
		return nil, fmt.Errorf("%w: max_assets must be positive, got %d", models.ErrInvalidConfiguration, req.MaxAssets)
	}

	ids, sectors, err := p.resolveUniverse(req.AssetIDs, req.Sectors)
	if err != nil {
		return nil, err
	}

	agg, err := p.aggregator.Aggregate(ctx, ids, req.Currency)
	if err != nil {
		return nil, err
	}

	analyticsResult := p.analytics.Analyze(agg.Snapshots)
	result, err := p.allocator.Allocate(profile, analyticsResult, agg.Snapshots, sectors, req.MaxAssets)
	if err != nil {
		return nil, err
	}
	result.Omissions = agg.Omissions
	result.SourceErrors = agg.SourceErrors
	result.Stale = agg.Stale

	p.persist(ctx, &result)
	return &result, nil
}

// MarketAnalytics aggregates and analyzes without producing an allocation.
func (p *Portfolio) MarketAnalytics(ctx context.Context, req *models.AnalyticsRequest) (*models.AnalyticsResult, []models.Omission, error) {
	ids, _, err := p.resolveUniverse(req.AssetIDs, nil)
	if err != nil {
		return nil, nil, err
	}
	agg, err := p.aggregator.Aggregate(ctx, ids, req.Currency)
	if err != nil {
		return nil, nil, err
	}
	res := p.analytics.Analyze(agg.Snapshots)
	return &res, agg.Omissions, nil
}

// History returns stored allocation runs for a profile within a time range.
func (p *Portfolio) History(ctx context.Context, profile models.RiskProfile, from, to time.Time, limit int) ([]*models.AllocationResult, error) {
	if p.store == nil {
		return nil, fmt.Errorf("%w: allocation history storage is disabled", models.ErrInvalidConfiguration)
	}
	if !profile.Valid() {
		return nil, fmt.Errorf("%w: unrecognized risk profile %q", models.ErrInvalidConfiguration, profile)
	}
	return p.store.History(ctx, profile, from, to, limit)
}

// resolveUniverse decides which assets to fetch: explicit ids win, then the
// sector catalog for the requested sectors, then the default sectors.
func (p *Portfolio) resolveUniverse(assetIDs, sectors []string) ([]string, []string, error) {
	if len(assetIDs) > 0 {
		return assetIDs, sectors, nil
	}
	if len(sectors) == 0 {
		sectors = p.defaultSectors
	}
	if len(sectors) == 0 {
		return nil, nil, fmt.Errorf("%w: no asset ids and no sectors requested, and no default sectors configured", models.ErrInvalidConfiguration)
	}
	var ids []string
	for _, sector := range sectors {
		members := coingecko.SectorAssets(sector)
		if len(members) == 0 {
			return nil, nil, fmt.Errorf("%w: unknown sector %q", models.ErrInvalidConfiguration, sector)
		}
		ids = append(ids, members...)
	}
	return ids, sectors, nil
}

func (p *Portfolio) persist(ctx context.Context, result *models.AllocationResult) {
	if p.store != nil {
		bp := allocation.BasisPoints(result.Weights)
		if err := p.store.StoreAllocation(ctx, result, bp); err != nil {
			p.log.Warn("allocation store write failed", logger.Error(err))
		}
	}
	if p.publisher != nil {
		if err := p.publisher.PublishAllocation(ctx, result); err != nil {
			p.log.Warn("allocation publish failed", logger.Error(err))
		}
	}
}
