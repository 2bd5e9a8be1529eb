package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/clubroster/membership/internal/core/domain"
	"github.com/clubroster/membership/internal/core/ports"
)

type fakeSession struct {
	user     *domain.User
	loggedIn bool
}

func (s *fakeSession) Save(_ context.Context, u *domain.User) error {
	s.user, s.loggedIn = u, true
	return nil
}
func (s *fakeSession) CurrentUser(context.Context) *domain.User { return s.user }
func (s *fakeSession) IsLoggedIn(context.Context) bool          { return s.loggedIn }
func (s *fakeSession) Clear(context.Context) error {
	s.user, s.loggedIn = nil, false
	return nil
}

func runRequireSession(t *testing.T, sessions map[string]*fakeSession, userID, deviceID string) (bool, error) {
	t.Helper()
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Set(ContextUserID, userID)
	c.Set(ContextDeviceID, deviceID)

	factory := func(deviceID string) ports.SessionStore {
		if s, ok := sessions[deviceID]; ok {
			return s
		}
		return &fakeSession{}
	}
	called := false
	err := RequireSession(factory)(func(c echo.Context) error {
		called = true
		return nil
	})(c)
	return called, err
}

func TestRequireSession_Admits(t *testing.T) {
	sessions := map[string]*fakeSession{
		"dev-1": {user: &domain.User{ID: "u-1"}, loggedIn: true},
	}
	called, err := runRequireSession(t, sessions, "u-1", "dev-1")
	if err != nil || !called {
		t.Fatalf("expected next to run, called=%v err=%v", called, err)
	}
}

func TestRequireSession_Rejects(t *testing.T) {
	cases := map[string]struct {
		sessions map[string]*fakeSession
		userID   string
		deviceID string
	}{
		"no session on device": {
			sessions: map[string]*fakeSession{},
			userID:   "u-1", deviceID: "dev-1",
		},
		"logged out": {
			sessions: map[string]*fakeSession{"dev-1": {user: &domain.User{ID: "u-1"}}},
			userID:   "u-1", deviceID: "dev-1",
		},
		"unreadable user": {
			sessions: map[string]*fakeSession{"dev-1": {loggedIn: true}},
			userID:   "u-1", deviceID: "dev-1",
		},
		"other user on device": {
			sessions: map[string]*fakeSession{"dev-1": {user: &domain.User{ID: "u-2"}, loggedIn: true}},
			userID:   "u-1", deviceID: "dev-1",
		},
		"session on another device": {
			sessions: map[string]*fakeSession{"dev-2": {user: &domain.User{ID: "u-1"}, loggedIn: true}},
			userID:   "u-1", deviceID: "dev-1",
		},
		"missing claims": {
			sessions: map[string]*fakeSession{},
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			called, err := runRequireSession(t, tc.sessions, tc.userID, tc.deviceID)
			if called {
				t.Fatalf("next handler should not run")
			}
			if !errors.Is(err, domain.ErrNoSession) {
				t.Fatalf("expected ErrNoSession, got %v", err)
			}
		})
	}
}
