package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/todoapp/notifier/internal/domain"
	"github.com/todoapp/notifier/internal/store"
)

// PostgreSQL error codes and classes
const (
	// undefinedTableCode is returned when a queried relation does not exist
	undefinedTableCode = "42P01"

	// queryCanceledCode is returned when a statement timeout or cancel hits
	queryCanceledCode = "57014"

	// connectionExceptionClass covers SQLSTATE 08xxx
	connectionExceptionClass = "08"

	// operatorInterventionClass covers SQLSTATE 57xxx (admin shutdown, crash recovery)
	operatorInterventionClass = "57"

	// insufficientResourcesClass covers SQLSTATE 53xxx (too many connections, out of memory)
	insufficientResourcesClass = "53"
)

// MapError maps a database error to an appropriate domain error.
// It wraps the original error to preserve context for debugging.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %w", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == undefinedTableCode:
			return fmt.Errorf("%w: relation missing, run migrations: %w", domain.ErrStoreUnavailable, err)
		case pgErr.Code == queryCanceledCode:
			return fmt.Errorf("%w: query canceled: %w", domain.ErrStoreUnavailable, err)
		case sqlStateClass(pgErr.Code) == connectionExceptionClass,
			sqlStateClass(pgErr.Code) == operatorInterventionClass,
			sqlStateClass(pgErr.Code) == insufficientResourcesClass:
			return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
		}
	}

	// Connection-level failures that never reached the server
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	return err
}

// IsUnavailable reports whether err means the database could not serve the
// request at all, as opposed to a bad query or missing row.
func IsUnavailable(err error) bool {
	return errors.Is(MapError(err), domain.ErrStoreUnavailable)
}

func sqlStateClass(code string) string {
	if len(code) < 2 {
		return ""
	}
	return code[:2]
}
