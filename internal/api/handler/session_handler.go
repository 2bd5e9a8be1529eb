package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clubroster/membership/internal/api/metrics"
	"github.com/clubroster/membership/internal/core/domain"
	"github.com/clubroster/membership/internal/core/ports"
)

type SessionHandler struct {
	authService ports.AuthService
	sessions    SessionFactory
}

func NewSessionHandler(authService ports.AuthService, sessions SessionFactory) *SessionHandler {
	return &SessionHandler{authService: authService, sessions: sessions}
}

// Get restores the device session and the home destination for its role.
//
// @Summary      Restore the current session
// @Tags         session
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  map[string]string
// @Router       /v1/session [get]
func (h *SessionHandler) Get(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	user, dest, err := h.authService.Restore(c.Request().Context(), h.sessions(id.DeviceID))
	if err != nil {
		if errors.Is(err, domain.ErrNoSession) {
			metrics.SessionRestoresTotal.WithLabelValues("none").Inc()
		}
		return err
	}
	// Another user logged in on this device after the token was issued.
	if user.ID != id.UserID {
		metrics.SessionRestoresTotal.WithLabelValues("superseded").Inc()
		return domain.ErrNoSession
	}

	metrics.SessionRestoresTotal.WithLabelValues("restored").Inc()
	return c.JSON(http.StatusOK, sessionResponse{User: user, Destination: dest})
}
