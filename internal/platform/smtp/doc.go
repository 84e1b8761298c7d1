// Package smtp implements delivery.Mailer over an SMTP relay.
package smtp
