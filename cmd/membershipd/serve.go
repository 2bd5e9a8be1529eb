package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/clubroster/membership/internal/api"
	"github.com/clubroster/membership/internal/api/middleware"
	"github.com/clubroster/membership/internal/core/ports"
	"github.com/clubroster/membership/internal/core/service"
	"github.com/clubroster/membership/internal/infrastructure/config"
	"github.com/clubroster/membership/internal/infrastructure/db/memory"
	mongodb "github.com/clubroster/membership/internal/infrastructure/db/mongo"
	redisdb "github.com/clubroster/membership/internal/infrastructure/db/redis"
	"github.com/clubroster/membership/internal/infrastructure/http/handlers"
	"github.com/clubroster/membership/internal/infrastructure/identity"
	"github.com/clubroster/membership/internal/infrastructure/mail"
	"github.com/clubroster/membership/internal/infrastructure/queue"
	"github.com/clubroster/membership/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "membershipd",
	})

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "membershipd",
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()
	log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")

	var sessionBackend ports.SessionBackend
	switch cfg.Session.Backend {
	case config.SessionBackendMemory:
		sessionBackend = memory.NewSessionBackend()
		log.Warn().Msg("sessions are kept in memory and will not survive a restart")
	default:
		sessionBackend = redisdb.NewSessionBackend(rdb, cfg.Session.TTL)
	}

	mailer, err := newMailer(cfg)
	if err != nil {
		return err
	}
	dispatcher := queue.NewDispatcher(cfg.Mail.Workers, mailer, logger.Component("mail_queue"))
	dispatcher.Start(ctx)

	provider := identity.NewProvider(
		mongodb.NewAccountRepository(db),
		redisdb.NewResetTokenStore(rdb),
		dispatcher,
		identity.Config{
			ResetTTL:         cfg.Reset.TokenTTL,
			ResetLinkBaseURL: cfg.Reset.LinkBaseURL,
		},
		logger.Component("identity"),
	)
	directory := service.NewDirectoryService(mongodb.NewProfileRepository(db, logger.Component("profiles")), logger.Component("directory"))
	authService := service.NewAuthService(directory, provider, logger.Component("auth"))
	sessionLog := logger.Component("session")

	readiness := handlers.NewReadinessHandler(handlers.MongoCheck(db), handlers.RedisCheck(rdb))
	e, err := api.NewRouter(api.RouterDeps{
		Auth:      authService,
		Directory: directory,
		Sessions: func(deviceID string) ports.SessionStore {
			return service.NewSessionStore(sessionBackend, deviceID, sessionLog)
		},
		Tokens:    middleware.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL),
		JWTSecret: cfg.JWTSecret,
		Readiness: readiness,
		Log:       log,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", cfg.Addr()).
			Str("session_backend", cfg.Session.Backend).
			Strs("readiness_checks", readiness.Names()).
			Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newMailer picks the SMTP relay when one is configured. Config validation
// only lets the log mailer through in development.
func newMailer(cfg *config.Config) (ports.Mailer, error) {
	if !cfg.Mail.UsesSMTP() {
		mailLog := logger.Component("mail")
		mailLog.Warn().Msg("SMTP_HOST not set, outgoing mail is only logged")
		return mail.NewLogMailer(cfg.Mail.From, logger.Component("mail")), nil
	}
	return mail.NewSMTPMailer(mail.SMTPConfig{
		Host:     cfg.Mail.SMTPHost,
		Port:     cfg.Mail.SMTPPort,
		Username: cfg.Mail.SMTPUsername,
		Password: cfg.Mail.SMTPPassword,
		From:     cfg.Mail.From,
	})
}
