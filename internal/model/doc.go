// Package model defines shared data types used across the station market collector.
//
// All types mirror the database schema defined in internal/database/migrations.
//
// Conventions:
//   - Prices: float64 ISK, as delivered by ESI
//   - Type IDs: int32; location/station IDs: int64
//   - Baseline and run identifiers: uuid.UUID
//   - Scan dates: "2006-01-02" in UTC
package model
