package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clubroster/membership/internal/api/middleware"
)

// identity is what the Auth middleware learned from the bearer token.
type identity struct {
	UserID   string
	Role     string
	DeviceID string
}

// ctxIdentity fails fast when the Auth middleware did not run.
func ctxIdentity(c echo.Context) (identity, error) {
	id := identity{}
	id.UserID, _ = c.Get(middleware.ContextUserID).(string)
	id.Role, _ = c.Get(middleware.ContextRole).(string)
	id.DeviceID, _ = c.Get(middleware.ContextDeviceID).(string)
	if id.UserID == "" || id.DeviceID == "" {
		return identity{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return id, nil
}

// ctxDeviceID returns the device id stored by the DeviceID middleware.
func ctxDeviceID(c echo.Context) (string, error) {
	id, _ := c.Get(middleware.ContextDeviceID).(string)
	if id == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "missing "+middleware.HeaderDeviceID+" header")
	}
	return id, nil
}
