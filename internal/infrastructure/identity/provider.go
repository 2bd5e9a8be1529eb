// Package identity implements the identity provider that owns credentials:
// account creation, password verification, password reset and deletion.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/clubroster/membership/internal/core/domain"
	"github.com/clubroster/membership/internal/core/ports"
)

const defaultResetTTL = time.Hour

// Config controls password hashing and reset links.
type Config struct {
	ResetTTL         time.Duration
	ResetLinkBaseURL string
	BcryptCost       int
}

// Provider implements ports.IdentityProvider.
type Provider struct {
	accounts ports.AccountRepository
	resets   ports.ResetTokenStore
	mail     ports.MailQueue
	cfg      Config
	log      zerolog.Logger
	now      func() time.Time
}

func NewProvider(accounts ports.AccountRepository, resets ports.ResetTokenStore, mail ports.MailQueue, cfg Config, log zerolog.Logger) *Provider {
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = defaultResetTTL
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &Provider{
		accounts: accounts,
		resets:   resets,
		mail:     mail,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// CreateAccount stores a new account and returns its id.
func (p *Provider) CreateAccount(ctx context.Context, email, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cfg.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	now := p.now().UTC()
	acc := &domain.Account{
		ID:           uuid.NewString(),
		Email:        domain.NormalizeEmail(email),
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := p.accounts.Insert(ctx, acc); err != nil {
		if errors.Is(err, domain.ErrAccountExists) {
			return "", err
		}
		return "", unavailable("create account", err)
	}
	return acc.ID, nil
}

// SignIn verifies email and password and returns the account id.
func (p *Provider) SignIn(ctx context.Context, email, password string) (string, error) {
	acc, err := p.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return "", fmt.Errorf("%w: unknown account", domain.ErrInvalidCredentials)
		}
		return "", unavailable("sign in", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)) != nil {
		return "", fmt.Errorf("%w: password mismatch", domain.ErrInvalidCredentials)
	}
	return acc.ID, nil
}

// SendPasswordReset issues a single-use token and queues the reset mail.
func (p *Provider) SendPasswordReset(ctx context.Context, email string) error {
	acc, err := p.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return err
		}
		return unavailable("password reset", err)
	}

	token := uuid.NewString()
	if err := p.resets.Issue(ctx, token, acc.ID, p.cfg.ResetTTL); err != nil {
		return unavailable("password reset", err)
	}

	p.mail.Enqueue(domain.Mail{
		To:      acc.Email,
		Subject: "Reset your password",
		Body: fmt.Sprintf("Use this link within %s to choose a new password: %s",
			p.cfg.ResetTTL, p.resetLink(token)),
	})
	return nil
}

// ConfirmPasswordReset consumes token and replaces the account's password.
func (p *Provider) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	accountID, err := p.resets.Consume(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrResetTokenInvalid) {
			return err
		}
		return unavailable("confirm reset", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), p.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := p.accounts.UpdatePasswordHash(ctx, accountID, string(hash)); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return domain.ErrResetTokenInvalid
		}
		return unavailable("confirm reset", err)
	}
	p.log.Info().Str("account_id", accountID).Msg("password changed via reset")
	return nil
}

// DeleteAccount removes the account. Deleting a missing account succeeds.
func (p *Provider) DeleteAccount(ctx context.Context, accountID string) error {
	if err := p.accounts.Delete(ctx, accountID); err != nil {
		return unavailable("delete account", err)
	}
	p.log.Info().Str("account_id", accountID).Msg("account deleted")
	return nil
}

func (p *Provider) resetLink(token string) string {
	if p.cfg.ResetLinkBaseURL == "" {
		return token
	}
	return p.cfg.ResetLinkBaseURL + "?token=" + url.QueryEscape(token)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrProviderUnavailable, err)
}
