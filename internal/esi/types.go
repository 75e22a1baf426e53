package esi

import (
	"math"
	"time"

	"github.com/stationledger/marketdata/internal/model"
)

// Order type filter values for the region orders endpoint.
const (
	OrderTypeAll  = "all"
	OrderTypeSell = "sell"
	OrderTypeBuy  = "buy"
)

// apiOrder is one order as returned by GET /markets/{region_id}/orders/.
type apiOrder struct {
	OrderID      int64   `json:"order_id"`
	TypeID       int32   `json:"type_id"`
	LocationID   int64   `json:"location_id"`
	IsBuyOrder   bool    `json:"is_buy_order"`
	Price        float64 `json:"price"`
	VolumeRemain int64   `json:"volume_remain"`
	VolumeTotal  int64   `json:"volume_total"`
	MinVolume    int64   `json:"min_volume"`
	Issued       string  `json:"issued"`
	Duration     int32   `json:"duration"`
	Range        string  `json:"range"`
}

// toModel validates and converts an upstream order to the fixed-shape
// domain record. Malformed entries return false and are skipped at the
// boundary rather than propagated into the diff engine.
func (a apiOrder) toModel() (model.Order, bool) {
	if a.OrderID <= 0 || a.TypeID <= 0 || a.LocationID <= 0 {
		return model.Order{}, false
	}
	if a.VolumeRemain < 0 || a.VolumeTotal < 0 {
		return model.Order{}, false
	}
	if math.IsNaN(a.Price) || math.IsInf(a.Price, 0) || a.Price < 0 {
		return model.Order{}, false
	}

	var issued time.Time
	if a.Issued != "" {
		t, err := time.Parse(time.RFC3339, a.Issued)
		if err != nil {
			return model.Order{}, false
		}
		issued = t
	}

	return model.Order{
		OrderID:      a.OrderID,
		TypeID:       a.TypeID,
		LocationID:   a.LocationID,
		IsBuyOrder:   a.IsBuyOrder,
		Price:        a.Price,
		VolumeRemain: a.VolumeRemain,
		VolumeTotal:  a.VolumeTotal,
		MinVolume:    a.MinVolume,
		Issued:       issued,
		Duration:     a.Duration,
		Range:        a.Range,
	}, true
}

// HistoryDay is one day of regional market history from
// GET /markets/{region_id}/history/. ESI aggregates these independently
// of our snapshot inference, which makes them a validation reference.
type HistoryDay struct {
	Date       string  `json:"date"`
	Average    float64 `json:"average"`
	Highest    float64 `json:"highest"`
	Lowest     float64 `json:"lowest"`
	OrderCount int64   `json:"order_count"`
	Volume     int64   `json:"volume"`
}
