package collector

import (
	"context"
	"fmt"
	"sync"

	"github.com/stationledger/marketdata/internal/model"
)

// snapshotWriter is the slice of Store the buffer needs.
type snapshotWriter interface {
	InsertSnapshots(ctx context.Context, snapshots []model.Snapshot) error
}

// snapshotBuffer accumulates snapshot rows from concurrent per-type tasks
// and writes them in fixed-size chunks. The mutex is held across the
// database write so chunk writes are serialized.
type snapshotBuffer struct {
	writer    snapshotWriter
	chunkSize int

	mu      sync.Mutex
	pending []model.Snapshot
	flushed int
}

func newSnapshotBuffer(w snapshotWriter, chunkSize int) *snapshotBuffer {
	if chunkSize <= 0 {
		chunkSize = 1
	}
	return &snapshotBuffer{writer: w, chunkSize: chunkSize}
}

// Add appends a snapshot and flushes when the chunk threshold is reached.
func (b *snapshotBuffer) Add(ctx context.Context, snap model.Snapshot) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = append(b.pending, snap)
	if len(b.pending) < b.chunkSize {
		return nil
	}
	return b.flushLocked(ctx)
}

// Flush drains whatever remains, regardless of the threshold.
func (b *snapshotBuffer) Flush(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.flushLocked(ctx)
}

// Flushed reports how many rows have been written so far.
func (b *snapshotBuffer) Flushed() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.flushed
}

func (b *snapshotBuffer) flushLocked(ctx context.Context) error {
	if len(b.pending) == 0 {
		return nil
	}
	chunk := b.pending
	b.pending = nil
	if err := b.writer.InsertSnapshots(ctx, chunk); err != nil {
		return fmt.Errorf("flush %d snapshots: %w", len(chunk), err)
	}
	b.flushed += len(chunk)
	return nil
}
