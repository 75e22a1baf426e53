package model

import (
	"time"

	"github.com/google/uuid"
)

// ScanDateLayout is the wire format for daily aggregate dates.
const ScanDateLayout = "2006-01-02"

// -----------------------------------------------------------------------------
// Upstream Types
// -----------------------------------------------------------------------------

// Order is a single live market order as observed in one snapshot.
// Orders are immutable as observed; a later snapshot may show the same
// OrderID with a reduced VolumeRemain, or the id may be absent entirely.
type Order struct {
	OrderID      int64     `json:"order_id"`
	TypeID       int32     `json:"type_id"`
	LocationID   int64     `json:"location_id"`
	IsBuyOrder   bool      `json:"is_buy_order"`
	Price        float64   `json:"price"`
	VolumeRemain int64     `json:"volume_remain"`
	VolumeTotal  int64     `json:"volume_total"`
	MinVolume    int64     `json:"min_volume"`
	Issued       time.Time `json:"issued"`
	Duration     int32     `json:"duration"` // days
	Range        string    `json:"range"`
}

// ExpiresAt returns the natural expiry time of the order.
// The zero time is returned when issued or duration is missing,
// in which case expiry cannot be judged.
func (o Order) ExpiresAt() time.Time {
	if o.Issued.IsZero() || o.Duration <= 0 {
		return time.Time{}
	}
	return o.Issued.Add(time.Duration(o.Duration) * 24 * time.Hour)
}

// -----------------------------------------------------------------------------
// Snapshot Generation Types
// -----------------------------------------------------------------------------

// Snapshot is the full set of live orders for one (station, type, side)
// at one baseline generation. Written once, never mutated, only superseded
// by a later generation.
type Snapshot struct {
	StationID  int64     `json:"station_id"`
	RegionID   int32     `json:"region_id"`
	BaselineID uuid.UUID `json:"baseline_id"`
	ObservedAt time.Time `json:"observed_at"`
	TypeID     int32     `json:"type_id"`
	IsBuyOrder bool      `json:"is_buy_order"`
	OrderCount int       `json:"order_count"`
	BestPrice  float64   `json:"best_price"`
	Orders     []Order   `json:"orders"`
}

// NewSnapshot builds a Snapshot from a list of same-side orders,
// deriving the order count and best price. Best price is the lowest
// ask for sell orders and the highest bid for buy orders; zero when
// the book side is empty.
func NewSnapshot(stationID int64, regionID int32, baselineID uuid.UUID, observedAt time.Time, typeID int32, isBuy bool, orders []Order) Snapshot {
	best := 0.0
	for i, o := range orders {
		if i == 0 {
			best = o.Price
			continue
		}
		if isBuy && o.Price > best {
			best = o.Price
		}
		if !isBuy && o.Price < best {
			best = o.Price
		}
	}
	return Snapshot{
		StationID:  stationID,
		RegionID:   regionID,
		BaselineID: baselineID,
		ObservedAt: observedAt,
		TypeID:     typeID,
		IsBuyOrder: isBuy,
		OrderCount: len(orders),
		BestPrice:  best,
		Orders:     orders,
	}
}

// Baseline is the per-station pointer naming the most recent fully
// committed snapshot generation. The pointer only ever references a
// generation whose aggregate merge has completed.
type Baseline struct {
	StationID  int64     `json:"station_id"`
	RegionID   int32     `json:"region_id"`
	BaselineID uuid.UUID `json:"baseline_id"`
	ObservedAt time.Time `json:"observed_at"`
}

// RegionTypesSnapshot records the enumerated type scope of one run.
type RegionTypesSnapshot struct {
	RegionID   int32     `json:"region_id"`
	BaselineID uuid.UUID `json:"baseline_id"`
	ObservedAt time.Time `json:"observed_at"`
	TypeIDs    []int32   `json:"type_ids"`
}

// -----------------------------------------------------------------------------
// Aggregate Types
// -----------------------------------------------------------------------------

// AggregateKey identifies one daily aggregate bucket.
//
// HasGone=false holds only confirmed trades (still-present orders whose
// remaining volume shrank) and is the conservative lower bound. HasGone=true
// additionally counts volume attributed to orders that disappeared without a
// plausible expiry, and is the generous upper bound.
type AggregateKey struct {
	ScanDate   string `json:"scan_date"`
	StationID  int64  `json:"station_id"`
	TypeID     int32  `json:"type_id"`
	IsBuyOrder bool   `json:"is_buy_order"`
	HasGone    bool   `json:"has_gone"`
}

// DailyAggregate is a rolling accumulator row. Merged on every successful
// run that touches its key; never decremented.
type DailyAggregate struct {
	ScanDate   string  `json:"scan_date"`
	StationID  int64   `json:"station_id"`
	TypeID     int32   `json:"type_id"`
	IsBuyOrder bool    `json:"is_buy_order"`
	HasGone    bool    `json:"has_gone"`
	Amount     int64   `json:"amount"`
	OrderNum   int64   `json:"order_num"`
	ISKValue   float64 `json:"isk_value"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
	Avg        float64 `json:"avg"`
}

// Key returns the aggregate's bucket key.
func (d DailyAggregate) Key() AggregateKey {
	return AggregateKey{
		ScanDate:   d.ScanDate,
		StationID:  d.StationID,
		TypeID:     d.TypeID,
		IsBuyOrder: d.IsBuyOrder,
		HasGone:    d.HasGone,
	}
}

// -----------------------------------------------------------------------------
// Run Tracking Types
// -----------------------------------------------------------------------------

// Run records one end-to-end invocation of the collection pipeline.
// Created at the start of every invocation, finalized exactly once.
type Run struct {
	BaselineID   uuid.UUID  `json:"baseline_id"`
	StationID    int64      `json:"station_id"`
	RegionID     int32      `json:"region_id"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	OK           *bool      `json:"ok,omitempty"`
	TypeCount    int        `json:"type_count"`
	ErrorMessage string     `json:"error_message,omitempty"`
}
