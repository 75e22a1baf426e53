// Package store persists snapshots, baselines, daily aggregates and run
// records in PostgreSQL.
//
// The baseline pointer and daily aggregate rows are the only cross-run
// shared mutable state; both are written exclusively inside CommitRun's
// single transaction. Snapshot rows are immutable and keyed by a baseline
// ID that is unreachable until that same transaction advances the pointer.
package store
