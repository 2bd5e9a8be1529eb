package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clubroster/membership/internal/api/metrics"
	"github.com/clubroster/membership/internal/core/domain"
	"github.com/clubroster/membership/internal/core/ports"
)

// SessionFactory returns the session store bound to a device.
type SessionFactory func(deviceID string) ports.SessionStore

// TokenIssuer signs bearer tokens for logged-in users.
type TokenIssuer interface {
	Issue(userID, role, deviceID string) (string, time.Time, error)
}

type AuthHandler struct {
	authService ports.AuthService
	sessions    SessionFactory
	tokens      TokenIssuer
}

func NewAuthHandler(authService ports.AuthService, sessions SessionFactory, tokens TokenIssuer) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions, tokens: tokens}
}

// Register creates the identity account and profile of a new member.
//
// @Summary      Register a new member
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Member registration details"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := c.Validate(&req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("validation").Inc()
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Email:        req.Email,
		Password:     req.Password,
		FullName:     req.FullName,
		Role:         req.Role,
		Age:          req.Age,
		Gender:       req.Gender,
		Category:     req.Category,
		Phone:        req.Phone,
		ProfileImage: req.ProfileImage,
	})
	metrics.RegistrationsTotal.WithLabelValues(registrationOutcome(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, userResponse{User: user})
}

// Login verifies credentials, stores the session of the calling device and
// returns a bearer token bound to that device.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        X-Device-ID  header    string        true  "Client device identifier"
// @Param        body         body      loginRequest  true  "Login credentials"
// @Success      200          {object}  loginResponse
// @Failure      400          {object}  map[string]string
// @Failure      401          {object}  map[string]string
// @Failure      503          {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	deviceID, err := ctxDeviceID(c)
	if err != nil {
		return err
	}
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := c.Validate(&req); err != nil {
		metrics.LoginsTotal.WithLabelValues("validation").Inc()
		return err
	}

	user, err := h.authService.Login(c.Request().Context(), h.sessions(deviceID), req.Email, req.Password)
	metrics.LoginsTotal.WithLabelValues(loginOutcome(err)).Inc()
	if err != nil {
		return err
	}

	token, exp, err := h.tokens.Issue(user.ID, string(user.Role), deviceID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{
		Token:       token,
		ExpiresAt:   exp,
		User:        user,
		Destination: domain.RouteFor(string(user.Role)),
	})
}

// Logout clears the session of the token's device.
//
// @Summary      Logout
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  map[string]string
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	if err := h.authService.Logout(c.Request().Context(), h.sessions(id.DeviceID)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// RequestPasswordReset mails a reset link. The response does not reveal
// whether the email is registered.
//
// @Summary      Request a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      passwordResetRequest  true  "Account email"
// @Success      202   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /auth/password-reset [post]
func (h *AuthHandler) RequestPasswordReset(c echo.Context) error {
	var req passwordResetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := c.Validate(&req); err != nil {
		return err
	}

	err := h.authService.SendPasswordReset(c.Request().Context(), req.Email)
	metrics.PasswordResetsTotal.WithLabelValues("request", resetOutcome(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, messageResponse{
		Message: "if the email is registered, a reset link has been sent",
	})
}

// ConfirmPasswordReset sets a new password from a reset token.
//
// @Summary      Confirm a password reset
// @Tags         auth
// @Accept       json
// @Param        body  body  passwordResetConfirmRequest  true  "Reset token and new password"
// @Success      204
// @Failure      400   {object}  map[string]string
// @Router       /auth/password-reset/confirm [post]
func (h *AuthHandler) ConfirmPasswordReset(c echo.Context) error {
	var req passwordResetConfirmRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	err := h.authService.ConfirmPasswordReset(c.Request().Context(), req.Token, req.Password)
	metrics.PasswordResetsTotal.WithLabelValues("confirm", resetOutcome(err)).Inc()
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func resetOutcome(err error) string {
	var ve *domain.ValidationError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &ve), errors.Is(err, domain.ErrResetTokenInvalid):
		return "invalid"
	default:
		return "error"
	}
}

func registrationOutcome(err error) string {
	var ve *domain.ValidationError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &ve):
		return "validation"
	case errors.Is(err, domain.ErrProfileSaveFailed):
		return "rolled_back"
	case errors.Is(err, domain.ErrEmailRegistered):
		return "duplicate"
	case errors.Is(err, domain.ErrAccountCreateFailed):
		return "account_create_failed"
	case errors.Is(err, domain.ErrDirectoryUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}

func loginOutcome(err error) string {
	var rejection *domain.LoginRejection
	var ve *domain.ValidationError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &rejection):
		return rejection.Reason
	case errors.As(err, &ve):
		return "validation"
	case errors.Is(err, domain.ErrDirectoryUnavailable), errors.Is(err, domain.ErrProviderUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
