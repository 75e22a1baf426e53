package diff

import (
	"sync"

	"github.com/stationledger/marketdata/internal/model"
)

// Bucket is the in-memory value of one daily aggregate key during a run.
type Bucket struct {
	Amount   int64
	OrderNum int64
	ISKValue float64
	High     float64
	Low      float64
}

// Accumulator folds per-type trade inferences into daily aggregate
// buckets. It is safe for concurrent use: many per-type diff tasks record
// into the same accumulator. The map is local to one run and merged into
// persistent rows only at commit time.
type Accumulator struct {
	mu      sync.Mutex
	buckets map[model.AggregateKey]*Bucket
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		buckets: make(map[model.AggregateKey]*Bucket),
	}
}

// Record folds the trades inferred for one (type, side) pair into the
// aggregate buckets. Confirmed trades contribute to both the lower-bound
// (hasGone=false) and upper-bound (hasGone=true) buckets; unconfirmed
// disappearances contribute to the upper bound only.
func (a *Accumulator) Record(scanDate string, stationID int64, typeID int32, isBuy bool, trades []Trade) {
	if len(trades) == 0 {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	for _, t := range trades {
		if t.Amount <= 0 {
			continue
		}

		upper := model.AggregateKey{
			ScanDate:   scanDate,
			StationID:  stationID,
			TypeID:     typeID,
			IsBuyOrder: isBuy,
			HasGone:    true,
		}
		a.addLocked(upper, t.Amount, t.Price)

		if t.Confirmed {
			lower := upper
			lower.HasGone = false
			a.addLocked(lower, t.Amount, t.Price)
		}
	}
}

// addLocked applies one contribution. Caller holds the mutex.
func (a *Accumulator) addLocked(key model.AggregateKey, amount int64, price float64) {
	b, ok := a.buckets[key]
	if !ok {
		b = &Bucket{High: price, Low: price}
		a.buckets[key] = b
	}

	b.Amount += amount
	b.OrderNum++
	b.ISKValue += price * float64(amount)
	if price > b.High {
		b.High = price
	}
	if price < b.Low {
		b.Low = price
	}
}

// Len returns the number of distinct aggregate keys touched so far.
func (a *Accumulator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.buckets)
}

// Buckets returns a copy of the accumulated buckets for merging.
func (a *Accumulator) Buckets() map[model.AggregateKey]Bucket {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make(map[model.AggregateKey]Bucket, len(a.buckets))
	for k, b := range a.buckets {
		out[k] = *b
	}
	return out
}
