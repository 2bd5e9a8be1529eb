package domain

import (
	"errors"
	"fmt"
)

// Registration outcomes.
var (
	ErrEmailRegistered     = errors.New("email already registered")
	ErrAccountCreateFailed = errors.New("failed to create authentication account")
	ErrProfileSaveFailed   = errors.New("failed to save user information")
)

// Login and session outcomes.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNoSession          = errors.New("no active session")
	ErrSessionSaveFailed  = errors.New("failed to save session")
)

// Password reset outcomes.
var (
	ErrPasswordResetFailed = errors.New("failed to send password reset email")
	ErrResetTokenInvalid   = errors.New("password reset link is invalid or expired")
)

// Collaborator failures.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserExists           = errors.New("user already exists")
	ErrDirectoryUnavailable = errors.New("directory unavailable")
	ErrAccountExists        = errors.New("account already exists")
	ErrAccountNotFound      = errors.New("account not found")
	ErrProviderUnavailable  = errors.New("identity provider unavailable")
)

// ValidationError reports malformed or missing input caught before any
// remote call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// userMessages is checked in order, so outcomes come before the collaborator
// failures they may wrap.
var userMessages = []struct {
	err error
	msg string
}{
	{ErrEmailRegistered, "email already registered"},
	{ErrAccountCreateFailed, "failed to create authentication account"},
	{ErrProfileSaveFailed, "failed to save user information"},
	{ErrInvalidCredentials, "invalid email or password"},
	{ErrNoSession, "please log in"},
	{ErrSessionSaveFailed, "could not keep you signed in, please try again"},
	{ErrPasswordResetFailed, "failed to send password reset email"},
	{ErrResetTokenInvalid, "password reset link is invalid or expired"},
	{ErrUserNotFound, "user not found"},
	{ErrUserExists, "email already registered"},
	{ErrAccountExists, "email already registered"},
	{ErrDirectoryUnavailable, "service temporarily unavailable, please try again"},
	{ErrProviderUnavailable, "service temporarily unavailable, please try again"},
}

// Message returns a short user-displayable string for err. Internal causes
// are never included.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return "something went wrong, please try again"
}

// Internal reasons behind an ErrInvalidCredentials outcome.
const (
	LoginReasonBadCredentials = "bad_credentials"
	LoginReasonProfileMissing = "profile_missing"
)

// LoginRejection is an ErrInvalidCredentials that remembers why the login was
// refused. Its message is identical for every reason.
type LoginRejection struct {
	Reason string
}

func (e *LoginRejection) Error() string { return ErrInvalidCredentials.Error() }

func (e *LoginRejection) Is(target error) bool { return target == ErrInvalidCredentials }
