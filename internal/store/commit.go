package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/stationledger/marketdata/internal/diff"
	"github.com/stationledger/marketdata/internal/model"
)

// CommitInput is everything a successful run publishes at once.
type CommitInput struct {
	Baseline   model.Baseline
	Aggregates map[model.AggregateKey]diff.Bucket
	TypeCount  int
	FinishedAt time.Time
}

// CommitRun publishes the effect of one successful run in a single
// transaction: merge the run's aggregate deltas into daily_aggregates,
// advance the station's baseline pointer, and finalize the run record.
// If the transaction fails or times out, none of it becomes visible and
// the previous baseline stays authoritative, so a retried run diffs from
// the same prior state and cannot double-count.
func (s *Store) CommitRun(ctx context.Context, in CommitInput) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin commit: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := mergeAggregates(ctx, tx, in.Aggregates); err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO baselines (station_id, region_id, baseline_id, observed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (station_id) DO UPDATE SET
			region_id   = EXCLUDED.region_id,
			baseline_id = EXCLUDED.baseline_id,
			observed_at = EXCLUDED.observed_at
	`, in.Baseline.StationID, in.Baseline.RegionID, in.Baseline.BaselineID, in.Baseline.ObservedAt)
	if err != nil {
		return fmt.Errorf("advance baseline: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE runs
		SET finished_at = $2, ok = TRUE, type_count = $3
		WHERE baseline_id = $1
	`, in.Baseline.BaselineID, in.FinishedAt, in.TypeCount)
	if err != nil {
		return fmt.Errorf("finalize run: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}

	return nil
}

// mergeAggregates folds the run's buckets into daily_aggregates: amounts,
// order counts and ISK values add, high takes the max, low the min, and
// avg is recomputed from the merged totals.
func mergeAggregates(ctx context.Context, tx pgx.Tx, buckets map[model.AggregateKey]diff.Bucket) error {
	if len(buckets) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for key, b := range buckets {
		date, err := time.Parse(model.ScanDateLayout, key.ScanDate)
		if err != nil {
			return fmt.Errorf("parse scan date %q: %w", key.ScanDate, err)
		}
		row := NewAggregate(key, b)

		batch.Queue(`
			INSERT INTO daily_aggregates (scan_date, station_id, type_id, is_buy_order, has_gone, amount, order_num, isk_value, high, low, avg)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (scan_date, station_id, type_id, is_buy_order, has_gone) DO UPDATE SET
				amount    = daily_aggregates.amount + EXCLUDED.amount,
				order_num = daily_aggregates.order_num + EXCLUDED.order_num,
				isk_value = daily_aggregates.isk_value + EXCLUDED.isk_value,
				high      = GREATEST(daily_aggregates.high, EXCLUDED.high),
				low       = LEAST(daily_aggregates.low, EXCLUDED.low),
				avg       = CASE
					WHEN daily_aggregates.amount + EXCLUDED.amount > 0
					THEN (daily_aggregates.isk_value + EXCLUDED.isk_value) / (daily_aggregates.amount + EXCLUDED.amount)
					ELSE 0
				END
		`, date, key.StationID, key.TypeID, key.IsBuyOrder, key.HasGone,
			row.Amount, row.OrderNum, row.ISKValue, row.High, row.Low, row.Avg)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for range buckets {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("merge aggregates: %w", err)
		}
	}

	return results.Close()
}
