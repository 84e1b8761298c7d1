package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Contact holds the parts of a user record needed to address an email.
type Contact struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
}

// DisplayName joins the first and last name, falling back to the email.
func (c Contact) DisplayName() string {
	name := strings.TrimSpace(c.FirstName + " " + c.LastName)
	if name == "" {
		return c.Email
	}
	return name
}

// Reachable reports whether the contact has an email address.
func (c Contact) Reachable() bool {
	return strings.TrimSpace(c.Email) != ""
}
