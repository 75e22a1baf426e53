package admin

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"
)

const defaultCompareLimit = 20

// CompareRow pairs one type's inferred station volume with the region's
// own reported daily volume.
type CompareRow struct {
	TypeID          int32 `json:"type_id"`
	ConfirmedAmount int64 `json:"confirmed_amount"`
	UpperAmount     int64 `json:"upper_amount"`
	RegionVolume    int64 `json:"region_volume"`
	HistoryFound    bool  `json:"history_found"`
}

// handleCompare reports how the station's inferred daily volumes relate
// to the upstream's regional history for the same date. History is
// fetched per type; types whose history lookup fails are skipped rather
// than failing the report.
func (s *Server) handleCompare(c *gin.Context) {
	scanDate, ok := s.scanDate(c)
	if !ok {
		return
	}

	limit := defaultCompareLimit
	if q := c.Query("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	ctx := c.Request.Context()
	rows, err := s.reader.AggregatesByDate(ctx, s.station.StationID, scanDate)
	if err != nil {
		s.fail(c, "load aggregates", err)
		return
	}

	// Sum both order sides per type; sides are separate rows in storage.
	byType := make(map[int32]*CompareRow)
	for _, row := range rows {
		cr, ok := byType[row.TypeID]
		if !ok {
			cr = &CompareRow{TypeID: row.TypeID}
			byType[row.TypeID] = cr
		}
		if row.HasGone {
			cr.UpperAmount += row.Amount
		} else {
			cr.ConfirmedAmount += row.Amount
		}
	}

	report := make([]*CompareRow, 0, len(byType))
	for _, cr := range byType {
		report = append(report, cr)
	}
	sort.Slice(report, func(i, j int) bool {
		return report[i].UpperAmount > report[j].UpperAmount
	})
	if len(report) > limit {
		report = report[:limit]
	}

	skipped := 0
	for _, cr := range report {
		days, err := s.history.TypeHistory(ctx, s.station.RegionID, cr.TypeID)
		if err != nil {
			s.logger.Warn("history lookup failed", "type_id", cr.TypeID, "error", err)
			skipped++
			continue
		}
		for _, day := range days {
			if day.Date == scanDate {
				cr.RegionVolume = day.Volume
				cr.HistoryFound = true
				break
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"date":            scanDate,
		"station_id":      s.station.StationID,
		"region_id":       s.station.RegionID,
		"rows":            report,
		"history_skipped": skipped,
	})
}
