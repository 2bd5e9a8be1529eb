package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/clubroster/membership/internal/core/domain"
	"github.com/clubroster/membership/internal/core/ports"
)

const sessionKeyPrefix = "session:"

// SessionStore keeps the active login of one device in a SessionBackend.
type SessionStore struct {
	backend ports.SessionBackend
	key     string
	log     zerolog.Logger
}

// NewSessionStore returns the session of deviceID.
func NewSessionStore(backend ports.SessionBackend, deviceID string, log zerolog.Logger) *SessionStore {
	return &SessionStore{
		backend: backend,
		key:     sessionKeyPrefix + deviceID,
		log:     log.With().Str("device_id", deviceID).Logger(),
	}
}

// Save overwrites any prior session with user.
func (s *SessionStore) Save(ctx context.Context, user *domain.User) error {
	if user == nil {
		return fmt.Errorf("save session: nil user")
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("save session: encode user: %w", err)
	}

	fields := map[string]string{
		domain.SessionKeyEmail:         user.Email,
		domain.SessionKeyUserID:        user.ID,
		domain.SessionKeyRole:          string(user.Role),
		domain.SessionKeyFullName:      user.FullName,
		domain.SessionKeyUserObject:    string(raw),
		domain.SessionKeyLoggedIn:      strconv.FormatBool(true),
		domain.SessionKeySchemaVersion: domain.SessionSchemaVersion,
	}
	if err := s.backend.ReplaceAll(ctx, s.key, fields); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Session returns the full stored record, or nil when nothing readable is stored.
func (s *SessionStore) Session(ctx context.Context) *domain.Session {
	fields := s.load(ctx)
	if fields == nil {
		return nil
	}

	sess := &domain.Session{
		Email:    fields[domain.SessionKeyEmail],
		UserID:   fields[domain.SessionKeyUserID],
		Role:     domain.Role(fields[domain.SessionKeyRole]),
		FullName: fields[domain.SessionKeyFullName],
	}
	sess.LoggedIn, _ = strconv.ParseBool(fields[domain.SessionKeyLoggedIn])

	if raw, ok := fields[domain.SessionKeyUserObject]; ok {
		var u domain.User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			s.log.Warn().Err(err).Msg("stored user object is corrupt")
		} else {
			sess.User = &u
		}
	}
	return sess
}

// CurrentUser returns the stored user, or nil when absent or unreadable.
func (s *SessionStore) CurrentUser(ctx context.Context) *domain.User {
	sess := s.Session(ctx)
	if sess == nil {
		return nil
	}
	return sess.User
}

// IsLoggedIn reports the stored flag, false when unset or unreadable.
func (s *SessionStore) IsLoggedIn(ctx context.Context) bool {
	sess := s.Session(ctx)
	return sess != nil && sess.LoggedIn
}

// Clear erases the session. Clearing an empty session succeeds.
func (s *SessionStore) Clear(ctx context.Context) error {
	if err := s.backend.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *SessionStore) load(ctx context.Context) map[string]string {
	fields, err := s.backend.GetAll(ctx, s.key)
	if err != nil {
		s.log.Warn().Err(err).Msg("session backend read failed")
		return nil
	}
	if len(fields) == 0 {
		return nil
	}
	if v := fields[domain.SessionKeySchemaVersion]; v != domain.SessionSchemaVersion {
		s.log.Warn().Str("schema_version", v).Msg("unsupported session schema")
		return nil
	}
	return fields
}
