package store

import (
	"context"
	"fmt"
	"time"

	"github.com/stationledger/marketdata/internal/model"
)

// AggregatesByDate lists all aggregate rows for one station and scan date.
// Callers that want a single number should prefer the has_gone=false rows,
// the confirmed lower bound; has_gone=true is the generous upper bound.
func (s *Store) AggregatesByDate(ctx context.Context, stationID int64, scanDate string) ([]model.DailyAggregate, error) {
	date, err := time.Parse(model.ScanDateLayout, scanDate)
	if err != nil {
		return nil, fmt.Errorf("parse scan date %q: %w", scanDate, err)
	}

	rows, err := s.db.Query(ctx, `
		SELECT scan_date, station_id, type_id, is_buy_order, has_gone, amount, order_num, isk_value, high, low, avg
		FROM daily_aggregates
		WHERE station_id = $1 AND scan_date = $2
		ORDER BY type_id, is_buy_order, has_gone
	`, stationID, date)
	if err != nil {
		return nil, fmt.Errorf("aggregates by date: %w", err)
	}
	defer rows.Close()

	var aggregates []model.DailyAggregate
	for rows.Next() {
		var agg model.DailyAggregate
		var d time.Time
		if err := rows.Scan(&d, &agg.StationID, &agg.TypeID, &agg.IsBuyOrder, &agg.HasGone,
			&agg.Amount, &agg.OrderNum, &agg.ISKValue, &agg.High, &agg.Low, &agg.Avg); err != nil {
			return nil, fmt.Errorf("scan aggregate: %w", err)
		}
		agg.ScanDate = d.Format(model.ScanDateLayout)
		aggregates = append(aggregates, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("aggregates by date: %w", err)
	}

	return aggregates, nil
}
