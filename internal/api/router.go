package api

import (
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/clubroster/membership/docs"
	"github.com/clubroster/membership/internal/api/handler"
	"github.com/clubroster/membership/internal/api/middleware"
	"github.com/clubroster/membership/internal/core/ports"
	"github.com/clubroster/membership/internal/infrastructure/http/handlers"
)

// RouterDeps carries everything NewRouter wires into routes.
type RouterDeps struct {
	Auth      ports.AuthService
	Directory ports.DirectoryService
	Sessions  handler.SessionFactory
	Tokens    handler.TokenIssuer
	JWTSecret string
	Readiness *handlers.ReadinessHandler
	Log       zerolog.Logger

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps RouterDeps) (*echo.Echo, error) {
	if deps.Registerer == nil {
		deps.Registerer = prometheus.DefaultRegisterer
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	promMW, err := echoprometheus.MiddlewareConfig{
		Subsystem:  "membership_http",
		Registerer: deps.Registerer,
		Skipper:    skipProbes,
	}.ToMiddleware()
	if err != nil {
		return nil, err
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echomiddleware.BodyLimit("64K"))
	e.Use(promMW)

	authHandler := handler.NewAuthHandler(deps.Auth, deps.Sessions, deps.Tokens)
	sessionHandler := handler.NewSessionHandler(deps.Auth, deps.Sessions)
	directoryHandler := handler.NewDirectoryHandler(deps.Directory, deps.Log)
	requireAuth := middleware.Auth(deps.JWTSecret)
	requireSession := middleware.RequireSession(deps.Sessions)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login, middleware.DeviceID())
	e.POST("/auth/password-reset", authHandler.RequestPasswordReset)
	e.POST("/auth/password-reset/confirm", authHandler.ConfirmPasswordReset)
	e.POST("/auth/logout", authHandler.Logout, requireAuth)

	// --- Authenticated API ---
	v1 := e.Group("/v1", requireAuth)
	v1.GET("/session", sessionHandler.Get)

	users := v1.Group("/users", requireSession)
	users.GET("/stream", directoryHandler.Stream, middleware.CoachOnly())
	users.GET("/:id", directoryHandler.GetUser)

	// --- Health probes (no auth required) ---
	e.GET("/health", handlers.NewHealthHandler().Liveness)
	if deps.Readiness != nil {
		e.GET("/health/ready", deps.Readiness.Readiness)
	}

	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e, nil
}

func skipProbes(c echo.Context) bool {
	p := c.Path()
	return p == "/metrics" || strings.HasPrefix(p, "/health") || strings.HasPrefix(p, "/swagger")
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		Skipper:      skipProbes,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Warn()
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
