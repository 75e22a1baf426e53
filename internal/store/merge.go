package store

import (
	"github.com/stationledger/marketdata/internal/diff"
	"github.com/stationledger/marketdata/internal/model"
)

// NewAggregate converts one run bucket into a daily aggregate row.
func NewAggregate(key model.AggregateKey, b diff.Bucket) model.DailyAggregate {
	row := model.DailyAggregate{
		ScanDate:   key.ScanDate,
		StationID:  key.StationID,
		TypeID:     key.TypeID,
		IsBuyOrder: key.IsBuyOrder,
		HasGone:    key.HasGone,
		Amount:     b.Amount,
		OrderNum:   b.OrderNum,
		ISKValue:   b.ISKValue,
		High:       b.High,
		Low:        b.Low,
	}
	if row.Amount > 0 {
		row.Avg = row.ISKValue / float64(row.Amount)
	}
	return row
}

// MergeAggregate folds a run bucket into an existing daily aggregate row:
// amount, order count and ISK value add, high takes the max, low the min,
// and avg is recomputed from the merged totals. The ON CONFLICT upsert in
// mergeAggregates mirrors this arithmetic.
func MergeAggregate(row model.DailyAggregate, b diff.Bucket) model.DailyAggregate {
	row.Amount += b.Amount
	row.OrderNum += b.OrderNum
	row.ISKValue += b.ISKValue
	if b.High > row.High {
		row.High = b.High
	}
	if b.Low < row.Low {
		row.Low = b.Low
	}
	if row.Amount > 0 {
		row.Avg = row.ISKValue / float64(row.Amount)
	} else {
		row.Avg = 0
	}
	return row
}
