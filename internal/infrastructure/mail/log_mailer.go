// Package mail provides Mailer implementations.
package mail

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/clubroster/membership/internal/core/domain"
)

// LogMailer records outgoing mail in the log instead of sending it. Only the
// envelope is logged; bodies carry single-use reset links.
type LogMailer struct {
	from string
	log  zerolog.Logger
}

func NewLogMailer(from string, log zerolog.Logger) *LogMailer {
	return &LogMailer{from: from, log: log}
}

func (m *LogMailer) Send(_ context.Context, mail domain.Mail) error {
	m.log.Info().
		Str("from", m.from).
		Str("to", mail.To).
		Str("subject", mail.Subject).
		Int("body_bytes", len(mail.Body)).
		Msg("mail not delivered, log mailer in use")
	return nil
}
