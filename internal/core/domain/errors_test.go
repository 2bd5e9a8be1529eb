package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestMessage(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{NewValidationError("email", "is required"), "email is required"},
		{fmt.Errorf("register: %w", ErrEmailRegistered), "email already registered"},
		{fmt.Errorf("x: %w: %w", ErrProfileSaveFailed, ErrEmailRegistered), "email already registered"},
		{fmt.Errorf("x: %w: %w", ErrProfileSaveFailed, errors.New("timeout")), "failed to save user information"},
		{fmt.Errorf("x: %w: %w", ErrAccountCreateFailed, ErrProviderUnavailable), "failed to create authentication account"},
		{&LoginRejection{Reason: LoginReasonProfileMissing}, "invalid email or password"},
		{fmt.Errorf("find: %w: %w", ErrDirectoryUnavailable, errors.New("dial tcp")), "service temporarily unavailable, please try again"},
		{errors.New("boom"), "something went wrong, please try again"},
	}
	for _, tc := range cases {
		if got := Message(tc.err); got != tc.want {
			t.Errorf("Message(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestLoginRejection(t *testing.T) {
	a := &LoginRejection{Reason: LoginReasonBadCredentials}
	b := &LoginRejection{Reason: LoginReasonProfileMissing}

	if !errors.Is(a, ErrInvalidCredentials) || !errors.Is(b, ErrInvalidCredentials) {
		t.Fatalf("rejections must match ErrInvalidCredentials")
	}
	if a.Error() != b.Error() {
		t.Fatalf("rejection messages must not reveal the reason")
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Ana@Club.IO "); got != "ana@club.io" {
		t.Fatalf("NormalizeEmail = %q", got)
	}
}
