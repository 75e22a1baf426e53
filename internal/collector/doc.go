// Package collector implements the market collection pipeline.
//
// One collection pass for a station:
//  1. Record a run row, before any network I/O.
//  2. Enumerate every item type trading in the region.
//  3. Concurrently fetch each type's station order book (both sides),
//     diff it against the previous baseline generation, and buffer the
//     new snapshot rows for chunked persistence.
//  4. After all per-type work joins, drain the snapshot buffer and commit
//     atomically under a timeout: merge the run's aggregate deltas, advance
//     the baseline pointer, and finalize the run.
//
// A failed pass leaves the previous baseline authoritative. The Runner
// triggers passes periodically, skips a trigger while one is in progress,
// and alerts after repeated failures, throttled to avoid alert storms.
package collector
