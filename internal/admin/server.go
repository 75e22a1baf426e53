package admin

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stationledger/marketdata/internal/collector"
	"github.com/stationledger/marketdata/internal/config"
	"github.com/stationledger/marketdata/internal/esi"
	"github.com/stationledger/marketdata/internal/model"
	"github.com/stationledger/marketdata/internal/store"
	"github.com/stationledger/marketdata/internal/version"
)

// Reader is the read-only store surface the admin API needs.
type Reader interface {
	LatestBaseline(ctx context.Context, stationID int64) (*model.Baseline, error)
	LastRun(ctx context.Context, stationID int64) (*model.Run, error)
	SnapshotSummaries(ctx context.Context, baselineID uuid.UUID) ([]store.SnapshotSummary, error)
	AggregatesByDate(ctx context.Context, stationID int64, scanDate string) ([]model.DailyAggregate, error)
}

// Trigger starts a collection pass on demand.
type Trigger interface {
	TriggerOnce(ctx context.Context) (*collector.RunSummary, error)
	Busy() bool
}

// HistorySource provides the upstream's own daily trade aggregates,
// used by the comparison report.
type HistorySource interface {
	TypeHistory(ctx context.Context, regionID, typeID int32) ([]esi.HistoryDay, error)
}

// Server serves the admin API.
type Server struct {
	station config.StationConfig
	reader  Reader
	trigger Trigger
	history HistorySource
	logger  *slog.Logger
	engine  *gin.Engine
}

// NewServer builds the admin API router.
func NewServer(station config.StationConfig, reader Reader, trigger Trigger, history HistorySource, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		station: station,
		reader:  reader,
		trigger: trigger,
		history: history,
		logger:  logger.With("component", "admin"),
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version.Version})
	})

	api := engine.Group("/api")
	api.GET("/status", s.handleStatus)
	api.POST("/collect", s.handleCollect)
	api.GET("/snapshots", s.handleSnapshots)
	api.GET("/aggregates", s.handleAggregates)
	api.GET("/compare", s.handleCompare)

	s.engine = engine
	return s
}

// Handler returns the HTTP handler for mounting on a server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) handleStatus(c *gin.Context) {
	ctx := c.Request.Context()

	baseline, err := s.reader.LatestBaseline(ctx, s.station.StationID)
	if err != nil {
		s.fail(c, "load baseline", err)
		return
	}
	lastRun, err := s.reader.LastRun(ctx, s.station.StationID)
	if err != nil {
		s.fail(c, "load last run", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"station_id":       s.station.StationID,
		"region_id":        s.station.RegionID,
		"collect_interval": s.station.CollectInterval.String(),
		"collecting":       s.trigger.Busy(),
		"baseline":         baseline,
		"last_run":         lastRun,
	})
}

func (s *Server) handleCollect(c *gin.Context) {
	summary, err := s.trigger.TriggerOnce(c.Request.Context())
	if err != nil {
		if errors.Is(err, collector.ErrRunInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		s.fail(c, "collection pass", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleSnapshots(c *gin.Context) {
	ctx := c.Request.Context()

	baseline, err := s.reader.LatestBaseline(ctx, s.station.StationID)
	if err != nil {
		s.fail(c, "load baseline", err)
		return
	}
	if baseline == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no baseline collected yet"})
		return
	}

	summaries, err := s.reader.SnapshotSummaries(ctx, baseline.BaselineID)
	if err != nil {
		s.fail(c, "load snapshot summaries", err)
		return
	}
	if q := c.Query("type_id"); q != "" {
		typeID, err := strconv.ParseInt(q, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid type_id"})
			return
		}
		filtered := summaries[:0]
		for _, sum := range summaries {
			if sum.TypeID == int32(typeID) {
				filtered = append(filtered, sum)
			}
		}
		summaries = filtered
	}

	c.JSON(http.StatusOK, gin.H{
		"baseline_id": baseline.BaselineID,
		"observed_at": baseline.ObservedAt,
		"snapshots":   summaries,
	})
}

func (s *Server) handleAggregates(c *gin.Context) {
	scanDate, ok := s.scanDate(c)
	if !ok {
		return
	}

	rows, err := s.reader.AggregatesByDate(c.Request.Context(), s.station.StationID, scanDate)
	if err != nil {
		s.fail(c, "load aggregates", err)
		return
	}

	// Unless asked otherwise, report the conservative confirmed-only
	// buckets; include_gone=true adds the upper-bound rows.
	if c.Query("include_gone") != "true" {
		filtered := rows[:0]
		for _, row := range rows {
			if !row.HasGone {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}

	c.JSON(http.StatusOK, gin.H{
		"date":       scanDate,
		"station_id": s.station.StationID,
		"aggregates": rows,
	})
}

func (s *Server) scanDate(c *gin.Context) (string, bool) {
	scanDate := c.Query("date")
	if scanDate == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter is required (YYYY-MM-DD)"})
		return "", false
	}
	if _, err := time.Parse(model.ScanDateLayout, scanDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, want YYYY-MM-DD"})
		return "", false
	}
	return scanDate, true
}

func (s *Server) fail(c *gin.Context, op string, err error) {
	s.logger.Error("admin request failed", "op", op, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
