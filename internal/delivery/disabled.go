package delivery

import (
	"context"
	"log/slog"
)

// Disabled is the Mailer used when no SMTP server is configured. It drops
// every message.
type Disabled struct {
	Logger *slog.Logger
}

// Send implements Mailer.
func (d Disabled) Send(_ context.Context, mail *Mail) error {
	if d.Logger != nil {
		d.Logger.Debug("email disabled, dropping message",
			"subject", mail.Subject,
			"recipients", len(mail.To))
	}
	return nil
}
