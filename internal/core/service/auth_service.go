package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/clubroster/membership/internal/core/domain"
	"github.com/clubroster/membership/internal/core/ports"
	"github.com/clubroster/membership/internal/core/validation"
)

const minPasswordLength = 6

// AuthService coordinates the identity provider, the directory and the
// caller's session store.
type AuthService struct {
	directory ports.DirectoryService
	identity  ports.IdentityProvider
	validate  *validator.Validate
	log       zerolog.Logger
	now       func() time.Time
}

func NewAuthService(directory ports.DirectoryService, identity ports.IdentityProvider, log zerolog.Logger) *AuthService {
	return &AuthService{
		directory: directory,
		identity:  identity,
		validate:  validator.New(),
		log:       log,
		now:       time.Now,
	}
}

// Register creates the identity account and then the profile record. A
// duplicate email never reaches the identity provider, and a failed profile
// write deletes the account created for it.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	in.Email = domain.NormalizeEmail(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)
	if err := s.validateStruct(in); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	attempt := domain.NewRegistrationAttempt(in.Email, domain.User{
		Email:        in.Email,
		FullName:     in.FullName,
		Role:         domain.Role(in.Role),
		Age:          in.Age,
		Gender:       in.Gender,
		Category:     domain.Category(in.Category),
		Phone:        in.Phone,
		ProfileImage: in.ProfileImage,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	log := s.log.With().Str("email", in.Email).Logger()

	var accountID string
	workflow := newSaga(log,
		sagaStep{
			name: "check_duplicate",
			do: func(ctx context.Context) error {
				existing, err := s.directory.FindByEmail(ctx, in.Email)
				if err != nil {
					return err
				}
				if existing != nil {
					return domain.ErrEmailRegistered
				}
				return attempt.Advance(domain.PhaseCreatingIdentity)
			},
		},
		sagaStep{
			name: "create_identity",
			do: func(ctx context.Context) error {
				id, err := s.identity.CreateAccount(ctx, in.Email, in.Password)
				if err != nil {
					if errors.Is(err, domain.ErrAccountExists) {
						return fmt.Errorf("%w: %w", domain.ErrEmailRegistered, err)
					}
					return fmt.Errorf("%w: %w", domain.ErrAccountCreateFailed, err)
				}
				accountID = id
				return attempt.Advance(domain.PhaseWritingProfile)
			},
			undo: func(ctx context.Context) error {
				return s.identity.DeleteAccount(ctx, accountID)
			},
		},
		sagaStep{
			name: "write_profile",
			do: func(ctx context.Context) error {
				attempt.Profile.ID = accountID
				if err := s.directory.Create(ctx, &attempt.Profile); err != nil {
					if errors.Is(err, domain.ErrUserExists) {
						return fmt.Errorf("%w: %w: %w", domain.ErrProfileSaveFailed, domain.ErrEmailRegistered, err)
					}
					return fmt.Errorf("%w: %w", domain.ErrProfileSaveFailed, err)
				}
				return nil
			},
		},
	)

	if err := workflow.run(ctx); err != nil {
		var serr *sagaError
		if errors.As(err, &serr) && serr.rolledBack {
			_ = attempt.Advance(domain.PhaseRolledBack)
		} else {
			_ = attempt.Advance(domain.PhaseFailed)
		}
		ev := log.Warn()
		if serr != nil && serr.rollbackErr != nil {
			ev = log.Error().Str("account_id", accountID)
		}
		ev.Err(err).Str("phase", attempt.Phase.String()).Msg("registration failed")
		return nil, fmt.Errorf("register: %w", err)
	}

	_ = attempt.Advance(domain.PhaseDone)
	log.Info().Str("user_id", accountID).Str("role", in.Role).Msg("user registered")

	user := attempt.Profile
	return &user, nil
}

// Login verifies credentials with the identity provider, loads the profile
// and stores it in session. Callers cannot tell a wrong password from a
// missing profile; both are logged with their own reason.
func (s *AuthService) Login(ctx context.Context, session ports.SessionStore, email, password string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return nil, domain.NewValidationError("email", "is required")
	}
	if password == "" {
		return nil, domain.NewValidationError("password", "is required")
	}
	log := s.log.With().Str("email", email).Logger()

	accountID, err := s.identity.SignIn(ctx, email, password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return nil, s.rejectLogin(log, domain.LoginReasonBadCredentials, err)
		}
		log.Error().Err(err).Msg("identity provider sign-in failed")
		return nil, fmt.Errorf("login: %w", err)
	}

	user, err := s.directory.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if user == nil {
		return nil, s.rejectLogin(log, domain.LoginReasonProfileMissing, nil)
	}
	if user.ID != accountID {
		log.Warn().Str("account_id", accountID).Str("user_id", user.ID).Msg("profile id differs from account id")
	}

	if err := session.Save(ctx, user); err != nil {
		log.Error().Err(err).Msg("session save failed")
		return nil, fmt.Errorf("login: %w: %w", domain.ErrSessionSaveFailed, err)
	}

	log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user logged in")
	return user, nil
}

func (s *AuthService) rejectLogin(log zerolog.Logger, reason string, cause error) error {
	log.Info().Err(cause).Str("reason", reason).Msg("login rejected")
	return &domain.LoginRejection{Reason: reason}
}

// Logout clears the session. It is the only transition to logged out.
func (s *AuthService) Logout(ctx context.Context, session ports.SessionStore) error {
	if err := session.Clear(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Restore reads the session at startup and picks the home destination.
// A logged-in flag without a readable user is cleared.
func (s *AuthService) Restore(ctx context.Context, session ports.SessionStore) (*domain.User, domain.Destination, error) {
	if !session.IsLoggedIn(ctx) {
		return nil, "", domain.ErrNoSession
	}
	user := session.CurrentUser(ctx)
	if user == nil {
		s.log.Warn().Msg("logged-in session has no readable user, clearing")
		if err := session.Clear(ctx); err != nil {
			s.log.Warn().Err(err).Msg("failed to clear unreadable session")
		}
		return nil, "", domain.ErrNoSession
	}
	return user, domain.RouteFor(string(user.Role)), nil
}

// SendPasswordReset asks the identity provider to mail a reset link. Unknown
// emails report success so accounts cannot be probed.
func (s *AuthService) SendPasswordReset(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)
	if err := s.validateVar(email, "email", "required,email"); err != nil {
		return err
	}

	if err := s.identity.SendPasswordReset(ctx, email); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			s.log.Info().Str("email", email).Msg("password reset requested for unknown account")
			return nil
		}
		s.log.Error().Err(err).Str("email", email).Msg("password reset failed")
		return fmt.Errorf("%w: %w", domain.ErrPasswordResetFailed, err)
	}
	s.log.Info().Str("email", email).Msg("password reset sent")
	return nil
}

// ConfirmPasswordReset sets a new password using a token from a reset mail.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if strings.TrimSpace(token) == "" {
		return domain.NewValidationError("token", "is required")
	}
	if err := s.validateVar(newPassword, "password", fmt.Sprintf("required,min=%d", minPasswordLength)); err != nil {
		return err
	}
	if err := s.identity.ConfirmPasswordReset(ctx, token, newPassword); err != nil {
		if !errors.Is(err, domain.ErrResetTokenInvalid) {
			s.log.Error().Err(err).Msg("password reset confirmation failed")
		}
		return fmt.Errorf("confirm password reset: %w", err)
	}
	return nil
}

func (s *AuthService) validateStruct(in any) error {
	return validation.FromError(s.validate.Struct(in), "")
}

func (s *AuthService) validateVar(value any, field, tag string) error {
	return validation.FromError(s.validate.Var(value, tag), field)
}
