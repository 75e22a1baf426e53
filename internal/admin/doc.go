// Package admin exposes the operator HTTP surface: run status, manual
// collection triggers, and read access to stored snapshots, daily
// aggregates and an upstream comparison report.
package admin
