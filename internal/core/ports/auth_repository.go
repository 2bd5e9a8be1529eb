package ports

import (
	"context"
	"time"

	"github.com/clubroster/membership/internal/core/domain"
)

// AccountRepository persists identity-provider accounts.
type AccountRepository interface {
	// Insert stores a new account. A duplicate email returns domain.ErrAccountExists.
	Insert(ctx context.Context, account *domain.Account) error
	// FindByEmail returns domain.ErrAccountNotFound when no account matches.
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	// Delete removes the account. Deleting a missing account is not an error.
	Delete(ctx context.Context, id string) error
}

// ResetTokenStore holds single-use password reset tokens.
type ResetTokenStore interface {
	Issue(ctx context.Context, token, accountID string, ttl time.Duration) error
	// Consume returns the account bound to token and invalidates it.
	// Unknown or expired tokens return domain.ErrResetTokenInvalid.
	Consume(ctx context.Context, token string) (string, error)
}
