package ports

import "context"

// IdentityProvider authenticates credentials and manages account identities.
type IdentityProvider interface {
	CreateAccount(ctx context.Context, email, password string) (string, error)
	SignIn(ctx context.Context, email, password string) (string, error)
	SendPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
	DeleteAccount(ctx context.Context, accountID string) error
}
