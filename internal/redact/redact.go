// Package redact strips credentials, tokens, and personal data from strings
// before they are logged or returned in error responses. Connection URLs for
// Postgres, Redis, NATS, and SMTP routinely end up in dial errors.
package redact

import (
	"log/slog"
	"net/url"
	"regexp"
)

// Placeholders
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedJWTPlaceholder        = "[REDACTED_JWT]"
	RedactedEmailPlaceholder      = "[REDACTED_EMAIL]"
	RedactedSQLPlaceholder        = "[REDACTED_SQL]"
)

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

// Applied in order; URL credentials go first so the password rule does not
// eat half of a connection string.
var rules = []rule{
	{
		regexp.MustCompile(`(?i)\b(postgres(?:ql)?|redis|rediss|nats|tls|smtp|smtps)://[^@\s/]+@`),
		"${1}://" + RedactedCredentialPlaceholder + "@",
	},
	{
		regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]?['"]?)[^'"&\s]{3,}`),
		RedactedCredentialPlaceholder,
	},
	{
		regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`),
		RedactedJWTPlaceholder,
	},
	{
		regexp.MustCompile(`(?i)(secret|api[_-]?key|token)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`),
		RedactedKeyPlaceholder,
	},
	{
		regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		RedactedEmailPlaceholder,
	},
	{
		regexp.MustCompile(`\b(SELECT|INSERT|UPDATE|DELETE)\b[\s\S]+?\b(FROM|INTO|SET)\b[^;:]*`),
		RedactedSQLPlaceholder,
	},
}

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}
	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.placeholder)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}

// ErrorAttr returns the redacted error as a slog "error" attribute.
func ErrorAttr(err error) slog.Attr {
	return slog.String("error", Error(err))
}

// URL masks the password of a connection URL, keeping scheme, user, and
// host so the target is still identifiable in logs. Unparseable input is
// redacted entirely.
func URL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return RedactionPlaceholder
	}
	if u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			u.User = url.UserPassword(u.User.Username(), "xxxxx")
		}
	}
	return u.String()
}
