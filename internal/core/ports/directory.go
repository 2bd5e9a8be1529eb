package ports

import (
	"context"

	"github.com/clubroster/membership/internal/core/domain"
)

// FieldFilter is an equality filter on a single profile field.
type FieldFilter struct {
	Field string
	Value any
}

// ProfileRepository is the raw document-store contract for profile records.
// Implementations return plain driver errors; DirectoryService classifies them.
type ProfileRepository interface {
	// Query returns at most limit records matching filter.
	Query(ctx context.Context, filter FieldFilter, limit int64) ([]domain.User, error)
	// Get returns the record with id, or nil when absent.
	Get(ctx context.Context, id string) (*domain.User, error)
	// Insert adds a new record. An existing id or email is reported as
	// domain.ErrUserExists and leaves the stored record untouched.
	Insert(ctx context.Context, user *domain.User) error
	// Stream emits the full collection on subscribe and again after every
	// remote change. The channel is closed once ctx is done.
	Stream(ctx context.Context) (<-chan []domain.User, error)
}

// DirectoryService resolves and creates profile records.
type DirectoryService interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	Stream(ctx context.Context) (<-chan []domain.User, error)
}
