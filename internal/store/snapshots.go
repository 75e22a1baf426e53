package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/stationledger/marketdata/internal/model"
)

// InsertSnapshots writes a chunk of snapshot rows in one batch. Rows are
// immutable once written; duplicates from a retried chunk are ignored.
func (s *Store) InsertSnapshots(ctx context.Context, snapshots []model.Snapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, snap := range snapshots {
		orders, err := json.Marshal(snap.Orders)
		if err != nil {
			return fmt.Errorf("marshal snapshot orders: %w", err)
		}
		batch.Queue(`
			INSERT INTO snapshots (baseline_id, station_id, region_id, type_id, is_buy_order, observed_at, order_count, best_price, orders)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (baseline_id, type_id, is_buy_order) DO NOTHING
		`, snap.BaselineID, snap.StationID, snap.RegionID, snap.TypeID, snap.IsBuyOrder,
			snap.ObservedAt, snap.OrderCount, snap.BestPrice, orders)
	}

	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	for range snapshots {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert snapshots: %w", err)
		}
	}

	return nil
}

// SnapshotOrders loads the recorded order lists for one type at one
// baseline generation, split by side. Either side may be empty when the
// type had no snapshot on that side.
func (s *Store) SnapshotOrders(ctx context.Context, baselineID uuid.UUID, typeID int32) (sell, buy []model.Order, err error) {
	rows, err := s.db.Query(ctx, `
		SELECT is_buy_order, orders
		FROM snapshots
		WHERE baseline_id = $1 AND type_id = $2
	`, baselineID, typeID)
	if err != nil {
		return nil, nil, fmt.Errorf("snapshot orders: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var isBuy bool
		var raw []byte
		if err := rows.Scan(&isBuy, &raw); err != nil {
			return nil, nil, fmt.Errorf("scan snapshot orders: %w", err)
		}
		var orders []model.Order
		if err := json.Unmarshal(raw, &orders); err != nil {
			return nil, nil, fmt.Errorf("unmarshal snapshot orders: %w", err)
		}
		if isBuy {
			buy = orders
		} else {
			sell = orders
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("snapshot orders: %w", err)
	}

	return sell, buy, nil
}

// SnapshotSummary is a per-(type, side) digest of one stored snapshot.
type SnapshotSummary struct {
	TypeID     int32     `json:"type_id"`
	IsBuyOrder bool      `json:"is_buy_order"`
	OrderCount int       `json:"order_count"`
	BestPrice  float64   `json:"best_price"`
	ObservedAt time.Time `json:"observed_at"`
}

// SnapshotSummaries lists the per-type digests of one baseline generation.
func (s *Store) SnapshotSummaries(ctx context.Context, baselineID uuid.UUID) ([]SnapshotSummary, error) {
	rows, err := s.db.Query(ctx, `
		SELECT type_id, is_buy_order, order_count, best_price, observed_at
		FROM snapshots
		WHERE baseline_id = $1
		ORDER BY type_id, is_buy_order
	`, baselineID)
	if err != nil {
		return nil, fmt.Errorf("snapshot summaries: %w", err)
	}
	defer rows.Close()

	var summaries []SnapshotSummary
	for rows.Next() {
		var sum SnapshotSummary
		if err := rows.Scan(&sum.TypeID, &sum.IsBuyOrder, &sum.OrderCount, &sum.BestPrice, &sum.ObservedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot summary: %w", err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("snapshot summaries: %w", err)
	}

	return summaries, nil
}

// SaveRegionTypes records the enumerated type scope of one run for auditing.
func (s *Store) SaveRegionTypes(ctx context.Context, snap model.RegionTypesSnapshot) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO region_type_snapshots (baseline_id, region_id, observed_at, type_ids)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (baseline_id) DO NOTHING
	`, snap.BaselineID, snap.RegionID, snap.ObservedAt, snap.TypeIDs)
	if err != nil {
		return fmt.Errorf("save region types: %w", err)
	}
	return nil
}
