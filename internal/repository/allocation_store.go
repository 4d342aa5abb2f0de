package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"FolioPulse/internal/domain/models"
	"FolioPulse/internal/domain/repository"
)

const (
	allocationsTable = "allocation_runs"
	snapshotsTable   = "snapshot_history"
)

var allocationSchema = []string{
	`CREATE TABLE IF NOT EXISTS ` + allocationsTable + ` (
		run_id String,
		ts DateTime,
		risk_profile LowCardinality(String),
		sectors String,
		large_cap_bp Int32,
		mid_cap_bp Int32,
		small_cap_bp Int32,
		sentiment Float64,
		mood LowCardinality(String),
		diversification Float64,
		stale UInt8,
		payload String
	) ENGINE = MergeTree() ORDER BY (risk_profile, ts)`,
	`CREATE TABLE IF NOT EXISTS ` + snapshotsTable + ` (
		asset_id String,
		ts DateTime,
		price Float64,
		market_cap Float64,
		volume_24h Float64,
		change_24h Float64,
		consistency Float64,
		sources String
	) ENGINE = MergeTree() ORDER BY (asset_id, ts)`,
}

// ClickHouseAllocationStore persists allocation runs and snapshot history.
// Tier weights are stored in basis points; totals other than 10000 are
// rejected before touching the database.
type ClickHouseAllocationStore struct {
	db *sql.DB
}

// NewClickHouseAllocationStore creates the ClickHouse-backed store.
func NewClickHouseAllocationStore(db *sql.DB) repository.AllocationStore {
	return &ClickHouseAllocationStore{db: db}
}

func (s *ClickHouseAllocationStore) Init(ctx context.Context) error {
	for _, stmt := range allocationSchema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseAllocationStore) StoreAllocation(ctx context.Context, res *models.AllocationResult, bp models.TierBasisPoints) error {
	if total := bp.LargeCap + bp.MidCap + bp.SmallCap; total != 10000 {
		return fmt.Errorf("tier basis points must total 10000, got %d", total)
	}
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal allocation: %w", err)
	}

	q := fmt.Sprintf(`INSERT INTO %s
		(run_id, ts, risk_profile, sectors, large_cap_bp, mid_cap_bp, small_cap_bp, sentiment, mood, diversification, stale, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, allocationsTable)
	stale := uint8(0)
	if res.Stale {
		stale = 1
	}
	_, err = s.db.ExecContext(ctx, q,
		res.RunID,
		time.Now().UTC(),
		string(res.RiskProfile),
		strings.Join(res.Sectors, ","),
		int32(bp.LargeCap),
		int32(bp.MidCap),
		int32(bp.SmallCap),
		res.Analytics.Sentiment,
		string(res.Analytics.Mood),
		res.Analytics.Diversification,
		stale,
		string(payload),
	)
	return err
}

func (s *ClickHouseAllocationStore) StoreSnapshots(ctx context.Context, snaps []models.CanonicalSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}
	values := make([]string, 0, len(snaps))
	args := make([]interface{}, 0, len(snaps)*8)
	for _, snap := range snaps {
		if snap.AssetID == "" {
			continue
		}
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			snap.AssetID,
			snap.ReconciledAt,
			snap.Price,
			snap.MarketCap,
			snap.Volume24h,
			snap.Change24h,
			snap.Consistency,
			strings.Join(snap.Sources, ","),
		)
	}
	if len(values) == 0 {
		return nil
	}
	q := fmt.Sprintf("INSERT INTO %s (asset_id, ts, price, market_cap, volume_24h, change_24h, consistency, sources) VALUES %s",
		snapshotsTable, strings.Join(values, ","))
	_, err := s.db.ExecContext(ctx, q, args...)
	return err
}

func (s *ClickHouseAllocationStore) History(ctx context.Context, profile models.RiskProfile, from, to time.Time, limit int) ([]*models.AllocationResult, error) {
	q := fmt.Sprintf("SELECT payload FROM %s WHERE risk_profile = ? AND ts >= ? AND ts <= ? ORDER BY ts DESC LIMIT ?", allocationsTable)
	rows, err := s.db.QueryContext(ctx, q, string(profile), from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.AllocationResult
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var res models.AllocationResult
		if err := json.Unmarshal([]byte(payload), &res); err != nil {
			return nil, fmt.Errorf("unmarshal stored allocation: %w", err)
		}
		out = append(out, &res)
	}
	return out, rows.Err()
}

func (s *ClickHouseAllocationStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseAllocationStore) Close() error {
	return nil // Managed by pkg
}
