package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/todoapp/notifier/internal/domain"
)

// ContactStore resolves a recipient to an addressable contact.
// Version: 1.0
type ContactStore interface {
	// GetContact returns the contact for the user.
	// Returns ErrContactNotFound if the user does not exist.
	GetContact(ctx context.Context, userID uuid.UUID) (*domain.Contact, error)
}
