package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HeaderDeviceID identifies the client device that owns a session.
const HeaderDeviceID = "X-Device-ID"

const maxDeviceIDLength = 128

// DeviceID requires the X-Device-ID header and stores it under ContextDeviceID.
func DeviceID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(HeaderDeviceID)
			if !validDeviceID(id) {
				return echo.NewHTTPError(http.StatusBadRequest, "missing or invalid "+HeaderDeviceID+" header")
			}
			c.Set(ContextDeviceID, id)
			return next(c)
		}
	}
}

// validDeviceID accepts 1..128 characters from [A-Za-z0-9._-].
func validDeviceID(id string) bool {
	if id == "" || len(id) > maxDeviceIDLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}
