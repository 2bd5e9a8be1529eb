package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/clubroster/membership/internal/api/middleware"
	"github.com/clubroster/membership/internal/core/domain"
	"github.com/clubroster/membership/internal/core/ports"
)

func restoring(user *domain.User, err error) *stubAuthService {
	return &stubAuthService{
		restoreFn: func(context.Context, ports.SessionStore) (*domain.User, domain.Destination, error) {
			if err != nil {
				return nil, "", err
			}
			return user, domain.RouteFor(string(user.Role)), nil
		},
	}
}

func TestSessionHandler_Get(t *testing.T) {
	user := &domain.User{ID: "u-1", Role: domain.RoleIndoorPlayer}

	cases := []struct {
		name    string
		svc     *stubAuthService
		tokenID string
		wantErr error
	}{
		{"restored", restoring(user, nil), "u-1", nil},
		{"no session", restoring(nil, domain.ErrNoSession), "u-1", domain.ErrNoSession},
		{"superseded", restoring(user, nil), "u-2", domain.ErrNoSession},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewSessionHandler(tc.svc, deviceSessions)
			c, rec := newTestContext(http.MethodGet, "/v1/session", "")
			c.Set(middleware.ContextUserID, tc.tokenID)
			c.Set(middleware.ContextDeviceID, "dev-1")

			err := h.Get(c)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
		})
	}
}
