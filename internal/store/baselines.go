package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/stationledger/marketdata/internal/model"
)

// LatestBaseline returns the station's current baseline pointer, or nil
// when the station has never completed a run.
func (s *Store) LatestBaseline(ctx context.Context, stationID int64) (*model.Baseline, error) {
	var b model.Baseline
	err := s.db.QueryRow(ctx, `
		SELECT station_id, region_id, baseline_id, observed_at
		FROM baselines
		WHERE station_id = $1
	`, stationID).Scan(&b.StationID, &b.RegionID, &b.BaselineID, &b.ObservedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest baseline: %w", err)
	}
	return &b, nil
}
