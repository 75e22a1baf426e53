package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/stationledger/marketdata/internal/collector"
	"github.com/stationledger/marketdata/internal/config"
	"github.com/stationledger/marketdata/internal/esi"
	"github.com/stationledger/marketdata/internal/model"
	"github.com/stationledger/marketdata/internal/store"
)

type fakeReader struct {
	baseline   *model.Baseline
	lastRun    *model.Run
	summaries  []store.SnapshotSummary
	aggregates []model.DailyAggregate
	err        error
}

func (f *fakeReader) LatestBaseline(context.Context, int64) (*model.Baseline, error) {
	return f.baseline, f.err
}

func (f *fakeReader) LastRun(context.Context, int64) (*model.Run, error) {
	return f.lastRun, f.err
}

func (f *fakeReader) SnapshotSummaries(context.Context, uuid.UUID) ([]store.SnapshotSummary, error) {
	return f.summaries, f.err
}

func (f *fakeReader) AggregatesByDate(context.Context, int64, string) ([]model.DailyAggregate, error) {
	return f.aggregates, f.err
}

type fakeTrigger struct {
	summary *collector.RunSummary
	err     error
	busy    bool
}

func (f *fakeTrigger) TriggerOnce(context.Context) (*collector.RunSummary, error) {
	return f.summary, f.err
}

func (f *fakeTrigger) Busy() bool { return f.busy }

type fakeHistory struct {
	days map[int32][]esi.HistoryDay
	errs map[int32]error
}

func (f *fakeHistory) TypeHistory(_ context.Context, _ int32, typeID int32) ([]esi.HistoryDay, error) {
	if err := f.errs[typeID]; err != nil {
		return nil, err
	}
	return f.days[typeID], nil
}

func testStation() config.StationConfig {
	return config.StationConfig{
		RegionID:        10000002,
		StationID:       60003760,
		CollectInterval: 15 * time.Minute,
	}
}

func doRequest(t *testing.T, s *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestStatusReportsBaselineAndRun(t *testing.T) {
	baselineID := uuid.New()
	reader := &fakeReader{
		baseline: &model.Baseline{
			StationID:  60003760,
			RegionID:   10000002,
			BaselineID: baselineID,
			ObservedAt: time.Now().UTC(),
		},
	}
	s := NewServer(testStation(), reader, &fakeTrigger{busy: true}, &fakeHistory{}, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var body struct {
		Collecting bool `json:"collecting"`
		Baseline   *struct {
			BaselineID uuid.UUID `json:"baseline_id"`
		} `json:"baseline"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !body.Collecting {
		t.Error("collecting should be true")
	}
	if body.Baseline == nil || body.Baseline.BaselineID != baselineID {
		t.Error("baseline missing from status")
	}
}

func TestCollectConflictWhileRunning(t *testing.T) {
	s := NewServer(testStation(), &fakeReader{}, &fakeTrigger{err: collector.ErrRunInProgress}, &fakeHistory{}, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/collect")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestCollectReturnsSummary(t *testing.T) {
	trigger := &fakeTrigger{summary: &collector.RunSummary{TypeCount: 12, HadBaseline: true}}
	s := NewServer(testStation(), &fakeReader{}, trigger, &fakeHistory{}, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/collect")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var summary collector.RunSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if summary.TypeCount != 12 || !summary.HadBaseline {
		t.Errorf("summary = %+v", summary)
	}
}

func TestSnapshotsWithoutBaseline(t *testing.T) {
	s := NewServer(testStation(), &fakeReader{}, &fakeTrigger{}, &fakeHistory{}, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/snapshots")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestSnapshotsFilterByType(t *testing.T) {
	reader := &fakeReader{
		baseline: &model.Baseline{BaselineID: uuid.New()},
		summaries: []store.SnapshotSummary{
			{TypeID: 34, OrderCount: 5},
			{TypeID: 35, OrderCount: 2},
		},
	}
	s := NewServer(testStation(), reader, &fakeTrigger{}, &fakeHistory{}, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/snapshots?type_id=35")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Snapshots []store.SnapshotSummary `json:"snapshots"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(body.Snapshots) != 1 || body.Snapshots[0].TypeID != 35 {
		t.Errorf("snapshots = %+v, want type 35 only", body.Snapshots)
	}
}

func TestAggregatesDefaultHidesUpperBound(t *testing.T) {
	reader := &fakeReader{
		aggregates: []model.DailyAggregate{
			{ScanDate: "2026-08-29", TypeID: 34, HasGone: false, Amount: 40},
			{ScanDate: "2026-08-29", TypeID: 34, HasGone: true, Amount: 90},
		},
	}
	s := NewServer(testStation(), reader, &fakeTrigger{}, &fakeHistory{}, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/aggregates?date=2026-08-29")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var body struct {
		Aggregates []model.DailyAggregate `json:"aggregates"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(body.Aggregates) != 1 || body.Aggregates[0].HasGone {
		t.Errorf("aggregates = %+v, want confirmed bucket only", body.Aggregates)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/aggregates?date=2026-08-29&include_gone=true")
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(body.Aggregates) != 2 {
		t.Errorf("got %d aggregates with include_gone, want 2", len(body.Aggregates))
	}
}

func TestAggregatesRequiresValidDate(t *testing.T) {
	s := NewServer(testStation(), &fakeReader{}, &fakeTrigger{}, &fakeHistory{}, nil)

	for _, target := range []string{"/api/aggregates", "/api/aggregates?date=29-08-2026"} {
		rec := doRequest(t, s, http.MethodGet, target)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
	}
}

func TestCompareSkipsFailedHistoryLookups(t *testing.T) {
	reader := &fakeReader{
		aggregates: []model.DailyAggregate{
			{ScanDate: "2026-08-29", TypeID: 34, HasGone: false, Amount: 40},
			{ScanDate: "2026-08-29", TypeID: 34, HasGone: true, Amount: 90},
			{ScanDate: "2026-08-29", TypeID: 35, HasGone: true, Amount: 10},
		},
	}
	history := &fakeHistory{
		days: map[int32][]esi.HistoryDay{
			34: {{Date: "2026-08-28", Volume: 100}, {Date: "2026-08-29", Volume: 500}},
		},
		errs: map[int32]error{35: errors.New("timeout")},
	}
	s := NewServer(testStation(), reader, &fakeTrigger{}, history, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/compare?date=2026-08-29")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var body struct {
		Rows           []CompareRow `json:"rows"`
		HistorySkipped int          `json:"history_skipped"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.HistorySkipped != 1 {
		t.Errorf("history_skipped = %d, want 1", body.HistorySkipped)
	}
	if len(body.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(body.Rows))
	}
	// Sorted by upper-bound volume, type 34 first.
	first := body.Rows[0]
	if first.TypeID != 34 || first.ConfirmedAmount != 40 || first.UpperAmount != 90 {
		t.Errorf("row = %+v", first)
	}
	if !first.HistoryFound || first.RegionVolume != 500 {
		t.Errorf("row = %+v, want region volume 500 for the requested date", first)
	}
	if body.Rows[1].HistoryFound {
		t.Error("type 35 history lookup failed, HistoryFound must be false")
	}
}
