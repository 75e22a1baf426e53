package store

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store provides persistence for the collector.
type Store struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// New creates a Store backed by the given pool.
func New(db *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}
