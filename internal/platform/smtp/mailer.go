package smtp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"

	"github.com/jordan-wright/email"

	"github.com/todoapp/notifier/internal/config"
	"github.com/todoapp/notifier/internal/delivery"
	"github.com/todoapp/notifier/internal/platform/logger"
)

// ErrNoRecipients is returned for a message without any To address.
var ErrNoRecipients = errors.New("mail has no recipients")

// sendFunc delivers a composed message. Replaced in tests.
type sendFunc func(e *email.Email, addr string, auth smtp.Auth) error

// Mailer sends mail through one SMTP relay.
type Mailer struct {
	addr   string
	from   string
	auth   smtp.Auth
	send   sendFunc
	logger *slog.Logger
}

var _ delivery.Mailer = (*Mailer)(nil)

// NewMailer creates a Mailer for cfg. PLAIN auth is used when a username is
// configured.
func NewMailer(cfg config.SMTPConfig, log *slog.Logger) (*Mailer, error) {
	if !cfg.Enabled() {
		return nil, errors.New("smtp host is not configured")
	}
	if cfg.From == "" {
		return nil, errors.New("smtp from address is not configured")
	}
	if log == nil {
		log = logger.Discard()
	}

	port := cfg.Port
	if port == 0 {
		port = 587
	}

	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	return &Mailer{
		addr: net.JoinHostPort(cfg.Host, strconv.Itoa(port)),
		from: cfg.From,
		auth: auth,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
		logger: log.With("component", "smtp_mailer"),
	}, nil
}

// Send implements delivery.Mailer. The SMTP client has no context support,
// so ctx is only checked before dialing.
func (m *Mailer) Send(ctx context.Context, mail *delivery.Mail) error {
	if len(mail.To) == 0 {
		return ErrNoRecipients
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	e := m.compose(mail)
	if err := m.send(e, m.addr, m.auth); err != nil {
		return fmt.Errorf("smtp send via %s: %w", m.addr, err)
	}

	m.logger.Debug("email sent", "subject", mail.Subject, "recipients", len(mail.To))
	return nil
}

func (m *Mailer) compose(mail *delivery.Mail) *email.Email {
	e := email.NewEmail()
	e.From = m.from
	e.To = append([]string(nil), mail.To...)
	e.Subject = mail.Subject
	if mail.TextBody != "" {
		e.Text = []byte(mail.TextBody)
	}
	if mail.HTMLBody != "" {
		e.HTML = []byte(mail.HTMLBody)
	}
	return e
}
