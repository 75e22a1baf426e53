package diff

import (
	"sync"
	"testing"

	"github.com/stationledger/marketdata/internal/model"
)

const (
	testDate    = "2025-03-01"
	testStation = int64(60003760)
)

func key(hasGone bool) model.AggregateKey {
	return model.AggregateKey{
		ScanDate:   testDate,
		StationID:  testStation,
		TypeID:     34,
		IsBuyOrder: false,
		HasGone:    hasGone,
	}
}

func TestAccumulator_ConfirmedFeedsBothBuckets(t *testing.T) {
	acc := NewAccumulator()
	acc.Record(testDate, testStation, 34, false, []Trade{
		{Amount: 40, Price: 50, Confirmed: true},
	})

	buckets := acc.Buckets()

	lower, ok := buckets[key(false)]
	if !ok {
		t.Fatal("lower-bound bucket missing")
	}
	upper, ok := buckets[key(true)]
	if !ok {
		t.Fatal("upper-bound bucket missing")
	}

	for name, b := range map[string]Bucket{"lower": lower, "upper": upper} {
		if b.Amount != 40 {
			t.Errorf("%s Amount = %d, want 40", name, b.Amount)
		}
		if b.OrderNum != 1 {
			t.Errorf("%s OrderNum = %d, want 1", name, b.OrderNum)
		}
		if b.ISKValue != 2000 {
			t.Errorf("%s ISKValue = %v, want 2000", name, b.ISKValue)
		}
		if b.High != 50 || b.Low != 50 {
			t.Errorf("%s High/Low = %v/%v, want 50/50", name, b.High, b.Low)
		}
	}
}

func TestAccumulator_UnconfirmedFeedsUpperOnly(t *testing.T) {
	acc := NewAccumulator()
	acc.Record(testDate, testStation, 34, false, []Trade{
		{Amount: 75, Price: 42, Confirmed: false},
	})

	buckets := acc.Buckets()

	if _, ok := buckets[key(false)]; ok {
		t.Error("unconfirmed trade must not touch the lower-bound bucket")
	}
	upper, ok := buckets[key(true)]
	if !ok {
		t.Fatal("upper-bound bucket missing")
	}
	if upper.Amount != 75 {
		t.Errorf("upper Amount = %d, want 75", upper.Amount)
	}
}

func TestAccumulator_BoundOrdering(t *testing.T) {
	acc := NewAccumulator()
	acc.Record(testDate, testStation, 34, false, []Trade{
		{Amount: 40, Price: 50, Confirmed: true},
		{Amount: 75, Price: 42, Confirmed: false},
		{Amount: 10, Price: 55, Confirmed: true},
	})

	buckets := acc.Buckets()
	lower := buckets[key(false)]
	upper := buckets[key(true)]

	if lower.Amount > upper.Amount {
		t.Errorf("lower bound %d exceeds upper bound %d", lower.Amount, upper.Amount)
	}
	if lower.Amount != 50 {
		t.Errorf("lower Amount = %d, want 50", lower.Amount)
	}
	if upper.Amount != 125 {
		t.Errorf("upper Amount = %d, want 125", upper.Amount)
	}
	if upper.High != 55 || upper.Low != 42 {
		t.Errorf("upper High/Low = %v/%v, want 55/42", upper.High, upper.Low)
	}
}

func TestAccumulator_SkipsNonPositiveAmounts(t *testing.T) {
	acc := NewAccumulator()
	acc.Record(testDate, testStation, 34, false, []Trade{
		{Amount: 0, Price: 50, Confirmed: true},
		{Amount: -10, Price: 50, Confirmed: true},
	})

	if acc.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after non-positive amounts", acc.Len())
	}
}

func TestAccumulator_ConcurrentRecord(t *testing.T) {
	acc := NewAccumulator()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(typeID int32) {
			defer wg.Done()
			acc.Record(testDate, testStation, typeID, false, []Trade{
				{Amount: 1, Price: 10, Confirmed: true},
			})
		}(int32(i%5 + 1))
	}
	wg.Wait()

	buckets := acc.Buckets()
	var total int64
	for k, b := range buckets {
		if !k.HasGone {
			total += b.Amount
		}
	}
	if total != 50 {
		t.Errorf("total confirmed amount = %d, want 50", total)
	}
}

func TestAccumulator_BucketsReturnsCopy(t *testing.T) {
	acc := NewAccumulator()
	acc.Record(testDate, testStation, 34, false, []Trade{
		{Amount: 5, Price: 10, Confirmed: true},
	})

	first := acc.Buckets()
	b := first[key(false)]
	b.Amount = 999
	first[key(false)] = b

	second := acc.Buckets()
	if second[key(false)].Amount != 5 {
		t.Errorf("Buckets() shares state with caller; Amount = %d, want 5", second[key(false)].Amount)
	}
}
