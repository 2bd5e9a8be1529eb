package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/clubroster/membership/internal/core/domain"
	"github.com/clubroster/membership/internal/core/ports"
)

const fieldEmail = "email"

// DirectoryService resolves profile records and keeps "not found" apart from
// "directory unavailable".
type DirectoryService struct {
	repo ports.ProfileRepository
	log  zerolog.Logger
}

func NewDirectoryService(repo ports.ProfileRepository, log zerolog.Logger) *DirectoryService {
	return &DirectoryService{repo: repo, log: log}
}

// FindByEmail returns the single profile with email, or nil when none exists.
func (s *DirectoryService) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	users, err := s.repo.Query(ctx, ports.FieldFilter{Field: fieldEmail, Value: domain.NormalizeEmail(email)}, 1)
	if err != nil {
		return nil, s.unavailable("find by email", err)
	}
	if len(users) == 0 {
		return nil, nil
	}
	u := users[0]
	return &u, nil
}

// FindByID returns the profile with id, or nil when none exists.
func (s *DirectoryService) FindByID(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, s.unavailable("find by id", err)
	}
	return u, nil
}

// Create inserts user. Uniqueness is not pre-checked here; a collision caught
// by the store surfaces as domain.ErrUserExists.
func (s *DirectoryService) Create(ctx context.Context, user *domain.User) error {
	if err := s.repo.Insert(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return fmt.Errorf("create profile: %w", domain.ErrUserExists)
		}
		return s.unavailable("create profile", err)
	}
	return nil
}

// Stream subscribes to live directory snapshots until ctx is done.
func (s *DirectoryService) Stream(ctx context.Context) (<-chan []domain.User, error) {
	ch, err := s.repo.Stream(ctx)
	if err != nil {
		return nil, s.unavailable("stream", err)
	}
	return ch, nil
}

func (s *DirectoryService) unavailable(op string, err error) error {
	s.log.Error().Err(err).Str("op", op).Msg("directory call failed")
	return fmt.Errorf("%s: %w: %w", op, domain.ErrDirectoryUnavailable, err)
}
