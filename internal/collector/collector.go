package collector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/stationledger/marketdata/internal/config"
	"github.com/stationledger/marketdata/internal/diff"
	"github.com/stationledger/marketdata/internal/esi"
	"github.com/stationledger/marketdata/internal/model"
	"github.com/stationledger/marketdata/internal/store"
)

// Store is the persistence surface a collection pass needs.
// *store.Store satisfies it.
type Store interface {
	CreateRun(ctx context.Context, run model.Run) error
	FailRun(ctx context.Context, baselineID uuid.UUID, finishedAt time.Time, message string) error
	LatestBaseline(ctx context.Context, stationID int64) (*model.Baseline, error)
	SaveRegionTypes(ctx context.Context, snap model.RegionTypesSnapshot) error
	InsertSnapshots(ctx context.Context, snapshots []model.Snapshot) error
	SnapshotOrders(ctx context.Context, baselineID uuid.UUID, typeID int32) (sell, buy []model.Order, err error)
	CommitRun(ctx context.Context, in store.CommitInput) error
}

// RunSummary describes one completed collection pass.
type RunSummary struct {
	BaselineID    uuid.UUID     `json:"baseline_id"`
	TypeCount     int           `json:"type_count"`
	AggregateKeys int           `json:"aggregate_keys"`
	HadBaseline   bool          `json:"had_baseline"`
	Duration      time.Duration `json:"duration"`
}

// Collector runs full collection passes for a single station.
type Collector struct {
	cfg    config.StationConfig
	client *esi.Client
	store  Store
	logger *slog.Logger
}

func New(cfg config.StationConfig, client *esi.Client, st Store, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{
		cfg:    cfg,
		client: client,
		store:  st,
		logger: logger.With("component", "collector", "station_id", cfg.StationID),
	}
}

// CollectStationOnce performs a single collection pass. The run row is
// created before any upstream I/O, so an interrupted pass is always
// visible as unfinished. On error the run is marked failed and the
// previous baseline stays authoritative.
func (c *Collector) CollectStationOnce(ctx context.Context) (*RunSummary, error) {
	baselineID := uuid.New()
	run := model.Run{
		BaselineID: baselineID,
		StationID:  c.cfg.StationID,
		RegionID:   c.cfg.RegionID,
		StartedAt:  time.Now().UTC(),
	}
	if err := c.store.CreateRun(ctx, run); err != nil {
		return nil, store.FriendlyError(fmt.Errorf("create run: %w", err))
	}

	summary, err := c.collect(ctx, baselineID)
	if err != nil {
		err = store.FriendlyError(err)
		failCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if failErr := c.store.FailRun(failCtx, baselineID, time.Now().UTC(), err.Error()); failErr != nil {
			c.logger.Error("failed to record run failure", "baseline_id", baselineID, "error", failErr)
		}
		return nil, err
	}
	return summary, nil
}

func (c *Collector) collect(ctx context.Context, baselineID uuid.UUID) (*RunSummary, error) {
	start := time.Now()

	prev, err := c.store.LatestBaseline(ctx, c.cfg.StationID)
	if err != nil {
		return nil, fmt.Errorf("load latest baseline: %w", err)
	}

	typeIDs, err := c.client.RegionTypes(ctx, c.cfg.RegionID, c.cfg.ForceRefresh)
	if err != nil {
		return nil, fmt.Errorf("enumerate region types: %w", err)
	}
	observedAt := time.Now().UTC()
	if err := c.store.SaveRegionTypes(ctx, model.RegionTypesSnapshot{
		RegionID:   c.cfg.RegionID,
		BaselineID: baselineID,
		ObservedAt: observedAt,
		TypeIDs:    typeIDs,
	}); err != nil {
		return nil, fmt.Errorf("save region types: %w", err)
	}
	c.logger.Info("region types enumerated", "region_id", c.cfg.RegionID, "types", len(typeIDs))

	scanDate := observedAt.Format(model.ScanDateLayout)
	acc := diff.NewAccumulator()
	buf := newSnapshotBuffer(c.store, c.cfg.SnapshotChunkSize)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Concurrency)
	for _, typeID := range typeIDs {
		typeID := typeID
		g.Go(func() error {
			return c.collectType(gctx, baselineID, observedAt, scanDate, typeID, prev, acc, buf)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// All per-type tasks have joined; drain the remainder before the commit.
	if err := buf.Flush(ctx); err != nil {
		return nil, err
	}

	aggregates := acc.Buckets()
	commitCtx, cancel := context.WithTimeout(ctx, c.cfg.CommitTimeout)
	defer cancel()
	if err := c.store.CommitRun(commitCtx, store.CommitInput{
		Baseline: model.Baseline{
			StationID:  c.cfg.StationID,
			RegionID:   c.cfg.RegionID,
			BaselineID: baselineID,
			ObservedAt: observedAt,
		},
		Aggregates: aggregates,
		TypeCount:  len(typeIDs),
		FinishedAt: time.Now().UTC(),
	}); err != nil {
		return nil, fmt.Errorf("commit run: %w", err)
	}

	summary := &RunSummary{
		BaselineID:    baselineID,
		TypeCount:     len(typeIDs),
		AggregateKeys: len(aggregates),
		HadBaseline:   prev != nil,
		Duration:      time.Since(start),
	}
	c.logger.Info("collection pass complete",
		"baseline_id", baselineID,
		"types", summary.TypeCount,
		"aggregate_keys", summary.AggregateKeys,
		"had_baseline", summary.HadBaseline,
		"duration", summary.Duration)
	return summary, nil
}

func (c *Collector) collectType(ctx context.Context, baselineID uuid.UUID, observedAt time.Time, scanDate string, typeID int32, prev *model.Baseline, acc *diff.Accumulator, buf *snapshotBuffer) error {
	sell, buy, err := c.fetchTypeOrders(ctx, typeID)
	if err != nil {
		return fmt.Errorf("fetch orders for type %d: %w", typeID, err)
	}

	// First pass for a station has no baseline to diff against; it only
	// seeds snapshots.
	if prev != nil {
		prevSell, prevBuy, err := c.store.SnapshotOrders(ctx, prev.BaselineID, typeID)
		if err != nil {
			return fmt.Errorf("load previous snapshot for type %d: %w", typeID, err)
		}
		trades := diff.Orders(prevSell, sell, prev.ObservedAt, observedAt, c.cfg.ExpiryWindow)
		acc.Record(scanDate, c.cfg.StationID, typeID, false, trades)
		trades = diff.Orders(prevBuy, buy, prev.ObservedAt, observedAt, c.cfg.ExpiryWindow)
		acc.Record(scanDate, c.cfg.StationID, typeID, true, trades)
	}

	if err := buf.Add(ctx, model.NewSnapshot(c.cfg.StationID, c.cfg.RegionID, baselineID, observedAt, typeID, false, sell)); err != nil {
		return err
	}
	return buf.Add(ctx, model.NewSnapshot(c.cfg.StationID, c.cfg.RegionID, baselineID, observedAt, typeID, true, buy))
}
