package ports

import (
	"context"

	"github.com/clubroster/membership/internal/core/domain"
)

// Mailer delivers a single message.
type Mailer interface {
	Send(ctx context.Context, mail domain.Mail) error
}

// MailQueue accepts messages for asynchronous delivery.
type MailQueue interface {
	Enqueue(mail domain.Mail)
}
