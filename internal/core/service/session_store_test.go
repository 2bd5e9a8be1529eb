package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/clubroster/membership/internal/core/domain"
)

func sampleUser() *domain.User {
	return &domain.User{
		ID:        "u-1",
		Email:     "ana@club.io",
		FullName:  "Ana Coach",
		Role:      domain.RoleIndoorCoach,
		Age:       31,
		Category:  domain.CategoryIndoor,
		CreatedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestSessionStore_SaveAndCurrentUser(t *testing.T) {
	backend := newStubBackend()
	store := NewSessionStore(backend, "device-1", zerolog.Nop())
	ctx := context.Background()

	if store.IsLoggedIn(ctx) || store.CurrentUser(ctx) != nil {
		t.Fatalf("fresh store should be empty")
	}

	u := sampleUser()
	if err := store.Save(ctx, u); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	got := store.CurrentUser(ctx)
	if got == nil || got.ID != u.ID || got.Email != u.Email || got.Role != u.Role || got.Age != u.Age {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, u)
	}
	if !got.CreatedAt.Equal(u.CreatedAt) || got.Category != u.Category {
		t.Fatalf("round trip lost fields: got %+v", got)
	}
	if !store.IsLoggedIn(ctx) {
		t.Fatalf("expected logged in")
	}

	fields := backend.data["session:device-1"]
	if fields[domain.SessionKeyRole] != "indoor_coach" || fields[domain.SessionKeyUserID] != "u-1" {
		t.Fatalf("unexpected flat fields: %v", fields)
	}
	if fields[domain.SessionKeySchemaVersion] != domain.SessionSchemaVersion {
		t.Fatalf("missing schema version")
	}
}

func TestSessionStore_SaveReplacesPriorSession(t *testing.T) {
	backend := newStubBackend()
	store := NewSessionStore(backend, "device-1", zerolog.Nop())
	ctx := context.Background()

	if err := store.Save(ctx, sampleUser()); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	next := &domain.User{ID: "u-2", Email: "bo@club.io", Role: domain.RoleOutdoorPlayer}
	if err := store.Save(ctx, next); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	sess := store.Session(ctx)
	if sess.UserID != "u-2" || sess.Role != domain.RoleOutdoorPlayer || sess.FullName != "" {
		t.Fatalf("unexpected session after replace: %+v", sess)
	}
}

func TestSessionStore_DevicesAreIsolated(t *testing.T) {
	backend := newStubBackend()
	ctx := context.Background()
	a := NewSessionStore(backend, "a", zerolog.Nop())
	b := NewSessionStore(backend, "b", zerolog.Nop())

	if err := a.Save(ctx, sampleUser()); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if b.IsLoggedIn(ctx) {
		t.Fatalf("device b must not see device a's session")
	}
}

func TestSessionStore_UnreadableStateIsAbsent(t *testing.T) {
	ctx := context.Background()

	cases := map[string]map[string]string{
		"corrupt user": {
			domain.SessionKeyLoggedIn:      "true",
			domain.SessionKeyUserObject:    "not json",
			domain.SessionKeySchemaVersion: domain.SessionSchemaVersion,
		},
		"unknown schema": {
			domain.SessionKeyLoggedIn:      "true",
			domain.SessionKeyUserObject:    `{"id":"u-1"}`,
			domain.SessionKeySchemaVersion: "99",
		},
	}
	for name, fields := range cases {
		t.Run(name, func(t *testing.T) {
			backend := newStubBackend()
			backend.data["session:d"] = fields
			store := NewSessionStore(backend, "d", zerolog.Nop())
			if store.CurrentUser(ctx) != nil {
				t.Fatalf("expected nil user")
			}
		})
	}

	backend := newStubBackend()
	backend.readErr = errors.New("connection refused")
	store := NewSessionStore(backend, "d", zerolog.Nop())
	if store.CurrentUser(ctx) != nil || store.IsLoggedIn(ctx) {
		t.Fatalf("backend failure must read as logged out")
	}
}

func TestSessionStore_ClearIsIdempotent(t *testing.T) {
	backend := newStubBackend()
	store := NewSessionStore(backend, "device-1", zerolog.Nop())
	ctx := context.Background()

	if err := store.Save(ctx, sampleUser()); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := store.Clear(ctx); err != nil {
			t.Fatalf("Clear returned error: %v", err)
		}
	}
	if store.IsLoggedIn(ctx) || store.CurrentUser(ctx) != nil {
		t.Fatalf("expected empty session after clear")
	}
}

func TestSessionStore_SaveNilUser(t *testing.T) {
	store := NewSessionStore(newStubBackend(), "device-1", zerolog.Nop())
	if err := store.Save(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil user")
	}
}
