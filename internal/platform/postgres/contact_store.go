package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/todoapp/notifier/internal/domain"
	"github.com/todoapp/notifier/internal/store"
)

// PostgresContactStore implements store.ContactStore over the users table.
type PostgresContactStore struct {
	db store.Querier
}

// NewPostgresContactStore creates a new PostgresContactStore.
func NewPostgresContactStore(db store.Querier) *PostgresContactStore {
	return &PostgresContactStore{db: db}
}

var _ store.ContactStore = (*PostgresContactStore)(nil)

// GetContact implements store.ContactStore.
func (s *PostgresContactStore) GetContact(ctx context.Context, userID uuid.UUID) (*domain.Contact, error) {
	var (
		c           domain.Contact
		first, last sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, first_name, last_name FROM users WHERE id = $1`,
		userID,
	).Scan(&c.UserID, &c.Email, &first, &last)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", store.ErrContactNotFound, userID)
	}
	if err != nil {
		return nil, store.NewStoreError("contact", "get", "query failed", MapError(err))
	}

	c.FirstName = first.String
	c.LastName = last.String
	return &c, nil
}
