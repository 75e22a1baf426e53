// Package database manages the PostgreSQL connection pool and schema
// migrations for the collector.
package database
