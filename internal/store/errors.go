package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// pgUndefinedTable is the SQLSTATE reported when a query touches a table
// that does not exist, i.e. the schema has not been migrated yet.
const pgUndefinedTable = "42P01"

// IsSchemaNotMigrated reports whether err is a missing-table failure.
func IsSchemaNotMigrated(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable
}

// FriendlyError substitutes a clearer message for known failure
// signatures, preserving the original error in the chain.
func FriendlyError(err error) error {
	if err == nil {
		return nil
	}
	if IsSchemaNotMigrated(err) {
		return fmt.Errorf("database schema is not migrated, run migrations first: %w", err)
	}
	return err
}
