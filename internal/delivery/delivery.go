package delivery

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Pusher sends an event to a recipient's real-time channel.
type Pusher interface {
	// Push delivers payload under the event name and reports whether the
	// recipient had an active channel. An inactive recipient is not an
	// error.
	Push(ctx context.Context, recipientID uuid.UUID, event string, payload any) (bool, error)
}

// Mail is an outgoing email message. At least one of TextBody or HTMLBody
// must be non-empty.
type Mail struct {
	// To is put into the "To" header field.
	To []string

	// Subject is put into the "Subject" header field.
	Subject string

	// TextBody is the plaintext body.
	TextBody string

	// HTMLBody is the HTML body. Sent as a multipart alternative together
	// with TextBody.
	HTMLBody string
}

// Mailer sends email.
type Mailer interface {
	Send(ctx context.Context, mail *Mail) error
}

// Result reports what happened to one recipient's notification.
type Result struct {
	// Active is true when the recipient had a live real-time channel.
	Active bool
	// PushErr is the real-time failure, tagged domain.ErrDeliveryFailed.
	PushErr error
	// Emailed is true when an email was handed to the mailer.
	Emailed bool
	// EmailErr is the email failure, tagged domain.ErrDeliveryFailed.
	EmailErr error
}

// Err joins both leg failures, or returns nil.
func (r Result) Err() error {
	return errors.Join(r.PushErr, r.EmailErr)
}
