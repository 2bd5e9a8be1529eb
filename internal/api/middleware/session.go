package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/clubroster/membership/internal/core/domain"
	"github.com/clubroster/membership/internal/core/ports"
)

// RequireSession admits a request only while the token's device still holds
// a logged-in session for the token's subject. It must run after Auth.
func RequireSession(sessions func(deviceID string) ports.SessionStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, _ := c.Get(ContextUserID).(string)
			deviceID, _ := c.Get(ContextDeviceID).(string)
			if userID == "" || deviceID == "" {
				return domain.ErrNoSession
			}

			ctx := c.Request().Context()
			store := sessions(deviceID)
			if !store.IsLoggedIn(ctx) {
				return domain.ErrNoSession
			}
			if u := store.CurrentUser(ctx); u == nil || u.ID != userID {
				return domain.ErrNoSession
			}
			return next(c)
		}
	}
}
