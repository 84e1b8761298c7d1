package store

import (
	"context"
	"database/sql"
)

// Querier is the read-only subset of *sql.DB and *sql.Tx the SQL stores
// need. Integration tests pass a transaction that is rolled back.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
