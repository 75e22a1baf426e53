package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/stationledger/marketdata/internal/model"
)

// CreateRun records the start of a collection pass. It is called before
// any network I/O so that failures are observable from the first moment.
func (s *Store) CreateRun(ctx context.Context, run model.Run) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO runs (baseline_id, station_id, region_id, started_at)
		VALUES ($1, $2, $3, $4)
	`, run.BaselineID, run.StationID, run.RegionID, run.StartedAt)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

// FailRun finalizes a run as failed with the given message. Success
// finalization happens inside CommitRun instead.
func (s *Store) FailRun(ctx context.Context, baselineID uuid.UUID, finishedAt time.Time, message string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE runs
		SET finished_at = $2, ok = FALSE, error_message = $3
		WHERE baseline_id = $1 AND finished_at IS NULL
	`, baselineID, finishedAt, message)
	if err != nil {
		return fmt.Errorf("fail run: %w", err)
	}
	return nil
}

// LastRun returns the most recently started run for a station, or nil
// when none exists.
func (s *Store) LastRun(ctx context.Context, stationID int64) (*model.Run, error) {
	var run model.Run
	err := s.db.QueryRow(ctx, `
		SELECT baseline_id, station_id, region_id, started_at, finished_at, ok, type_count, COALESCE(error_message, '')
		FROM runs
		WHERE station_id = $1
		ORDER BY started_at DESC
		LIMIT 1
	`, stationID).Scan(
		&run.BaselineID, &run.StationID, &run.RegionID, &run.StartedAt,
		&run.FinishedAt, &run.OK, &run.TypeCount, &run.ErrorMessage,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last run: %w", err)
	}
	return &run, nil
}
