package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clubroster/membership/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler maps domain errors to status codes and renders
// {"error": "<message>"}. Causes of unexpected errors are logged, never sent.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

// statusByError is checked in order. Outcomes come before the collaborator
// failures they wrap.
var statusByError = []struct {
	err  error
	code int
}{
	{domain.ErrEmailRegistered, http.StatusConflict},
	{domain.ErrUserExists, http.StatusConflict},
	{domain.ErrAccountExists, http.StatusConflict},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized},
	{domain.ErrNoSession, http.StatusUnauthorized},
	{domain.ErrResetTokenInvalid, http.StatusBadRequest},
	{domain.ErrUserNotFound, http.StatusNotFound},
	{domain.ErrAccountCreateFailed, http.StatusBadGateway},
	{domain.ErrPasswordResetFailed, http.StatusBadGateway},
	{domain.ErrProviderUnavailable, http.StatusBadGateway},
	{domain.ErrProfileSaveFailed, http.StatusServiceUnavailable},
	{domain.ErrSessionSaveFailed, http.StatusServiceUnavailable},
	{domain.ErrDirectoryUnavailable, http.StatusServiceUnavailable},
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, ve.Error()
	}

	for _, s := range statusByError {
		if errors.Is(err, s.err) {
			if s.code >= http.StatusInternalServerError {
				logFailure(log, c, err)
			}
			return s.code, domain.Message(err)
		}
	}

	if errors.Is(err, context.Canceled) {
		return http.StatusServiceUnavailable, domain.Message(err)
	}

	logFailure(log, c, err)
	return http.StatusInternalServerError, "internal server error"
}

func logFailure(log zerolog.Logger, c echo.Context, err error) {
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("request failed")
}
