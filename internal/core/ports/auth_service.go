package ports

import (
	"context"

	"github.com/clubroster/membership/internal/core/domain"
)

// RegisterInput carries the credentials and candidate profile of a new member.
type RegisterInput struct {
	Email        string `validate:"required,email"`
	Password     string `validate:"required,min=6"`
	FullName     string `validate:"required"`
	Role         string `validate:"required,oneof=indoor_coach outdoor_coach indoor_player outdoor_player"`
	Age          int    `validate:"gte=0,lte=120"`
	Gender       string
	Category     string `validate:"omitempty,oneof=indoor outdoor"`
	Phone        string
	ProfileImage string
}

// AuthService orchestrates registration, login and session lifecycle.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, session SessionStore, email, password string) (*domain.User, error)
	Logout(ctx context.Context, session SessionStore) error
	Restore(ctx context.Context, session SessionStore) (*domain.User, domain.Destination, error)
	SendPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
}
