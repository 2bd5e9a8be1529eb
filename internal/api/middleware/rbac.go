package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clubroster/membership/internal/core/domain"
)

// RBAC admits requests whose role passes allow.
func RBAC(allow func(role string) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(ContextRole).(string)
			if role == "" || !allow(role) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

// CoachOnly admits every coach role.
func CoachOnly() echo.MiddlewareFunc {
	return RBAC(domain.IsCoach)
}
