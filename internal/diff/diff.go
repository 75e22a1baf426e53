package diff

import (
	"math"
	"time"

	"github.com/stationledger/marketdata/internal/model"
)

// Trade is one inferred trade event for a (type, side) pair.
// Confirmed trades are backed by a matched order whose volume shrank;
// unconfirmed trades come from orders that disappeared without a
// plausible expiry and bound the estimate from above only.
type Trade struct {
	Amount    int64
	Price     float64
	Confirmed bool
}

// Orders diffs the previous and current snapshot of one (type, side)
// order book and returns the inferred trades. Zero and negative volume
// deltas are never reported.
func Orders(prev, curr []model.Order, prevObserved, currObserved time.Time, window time.Duration) []Trade {
	if len(prev) == 0 {
		return nil
	}

	currByID := make(map[int64]model.Order, len(curr))
	for _, o := range curr {
		currByID[o.OrderID] = o
	}

	var trades []Trade
	for _, p := range prev {
		if math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
			continue
		}

		c, ok := currByID[p.OrderID]
		if ok {
			// Matched order: a volume decrease is a confirmed trade at
			// the previous price.
			delta := p.VolumeRemain - c.VolumeRemain
			if delta <= 0 {
				continue
			}
			trades = append(trades, Trade{Amount: delta, Price: p.Price, Confirmed: true})
			continue
		}

		// Disappeared order: filled, cancelled, or expired. Only count it
		// when expiry is implausible, and then only as an upper bound.
		if LikelyExpired(p, prevObserved, currObserved, window) {
			continue
		}
		if p.VolumeRemain <= 0 {
			continue
		}
		trades = append(trades, Trade{Amount: p.VolumeRemain, Price: p.Price, Confirmed: false})
	}

	return trades
}

// LikelyExpired reports whether a disappeared order's lifetime window
// plausibly ended by natural expiry. The expiry instant is tested against
// [prevObserved-window, currObserved+window], inclusive on both ends; the
// window absorbs snapshot timing jitter and upstream clock skew.
//
// Orders with a missing issued time or duration are inconclusive and
// treated as likely expired so they contribute nothing.
func LikelyExpired(o model.Order, prevObserved, currObserved time.Time, window time.Duration) bool {
	expiresAt := o.ExpiresAt()
	if expiresAt.IsZero() {
		return true
	}

	lo := prevObserved.Add(-window)
	hi := currObserved.Add(window)
	return !expiresAt.Before(lo) && !expiresAt.After(hi)
}
