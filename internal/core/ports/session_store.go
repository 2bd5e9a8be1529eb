package ports

import (
	"context"

	"github.com/clubroster/membership/internal/core/domain"
)

// SessionBackend stores flat string maps under a key. ReplaceAll must drop
// every existing field of key before writing fields, atomically.
type SessionBackend interface {
	ReplaceAll(ctx context.Context, key string, fields map[string]string) error
	GetAll(ctx context.Context, key string) (map[string]string, error)
	Delete(ctx context.Context, key string) error
}

// SessionStore is the device-bound record of the active login.
type SessionStore interface {
	Save(ctx context.Context, user *domain.User) error
	// CurrentUser returns nil when no readable session exists.
	CurrentUser(ctx context.Context) *domain.User
	IsLoggedIn(ctx context.Context) bool
	Clear(ctx context.Context) error
}
