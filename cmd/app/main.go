// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"account-activation/internal/config"
	"account-activation/internal/domain/model"
	"account-activation/internal/domain/ports/adapter"
	captchaAdapters "account-activation/internal/infra/adapters/captcha"
	mailAdapters "account-activation/internal/infra/adapters/mail"
	pg "account-activation/internal/infra/db/postgres"
	"account-activation/internal/infra/logging"
	"account-activation/internal/infra/metrics"
	red "account-activation/internal/infra/redis"
	"account-activation/internal/infra/web"
	"account-activation/internal/usecase"

	"github.com/rs/zerolog"
)

// Set with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, unredacted PII)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	go pg.ReportPoolStats(ctx, pool, 15*time.Second, logger)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)
	locker := red.NewLocker(redisClient)

	// ---- Repositories ----
	tm := pg.NewTxManager(pool)
	activationRepo := pg.NewActivationRepo(pool)
	userRepo := pg.NewPostgresUserRepo(pool)

	// ---- Adapters ----
	mailer, err := newMailer(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("mailer")
	}
	captcha, err := newCaptcha(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("captcha")
	}
	logger.Info().Str("mailer", mailer.Name()).Bool("captcha", cfg.Captcha.Enabled).Msg("adapters ready")

	// ---- Use cases ----
	activator := usecase.NewActivationUseCase(activationRepo, usecase.NewCodeGenerator(), tm, usecase.ActivationSettings{
		Lifetime:    cfg.Activation.Lifetime,
		CodeLength:  cfg.Activation.CodeLength,
		MaxAttempts: cfg.Activation.MaxAttempts,
	}, logger)
	flowUC := usecase.NewActivationFlowUseCase(userRepo, activator, tm, mailer, rateLimiter, locker, usecase.FlowSettings{
		BaseURL:      cfg.App.URL,
		ResendLimit:  cfg.Activation.ResendLimit,
		ResendWindow: cfg.Activation.ResendWindow,
		LockTTL:      cfg.Activation.LockTTL,
		Dev:          cfg.Runtime.Dev,
	}, logger)
	settingsUC := usecase.NewSettingsUseCase(model.AccessMode(cfg.Auth.AccessMode), captcha)

	// ---- HTTP ----
	flasher := web.NewFlasher(cfg.Flash.Secret, cfg.Flash.CookieName, cfg.Flash.Secure, cfg.Flash.TTL)
	srv := web.NewServer(flowUC, settingsUC, flasher, captcha, cfg.App.URL, cfg.HTTP.WriteTimeout, logger)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      srv.Routes(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
			cancel()
		}
	}()

	// ---- Graceful shutdown ----
	<-ctx.Done()
	logger.Info().Msg("shutdown requested")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 15*time.Second)
	defer stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		os.Exit(1)
	}
}

func newMailer(cfg *config.Config, logger *zerolog.Logger) (adapter.Mailer, error) {
	if cfg.Mail.Provider == "sendgrid" && cfg.Mail.APIKey != "" {
		return mailAdapters.NewSendGridMailer(cfg.Mail.APIKey, cfg.Mail.FromName, cfg.Mail.FromEmail, cfg.Mail.Subject)
	}
	return mailAdapters.NewLogMailer(logger, cfg.Runtime.Dev), nil
}

func newCaptcha(cfg *config.Config) (adapter.CaptchaVerifier, error) {
	if !cfg.Captcha.Enabled {
		return captchaAdapters.NewNoopVerifier(), nil
	}
	return captchaAdapters.NewRecaptchaVerifier(cfg.Captcha.SiteKey, cfg.Captcha.Secret, cfg.Captcha.VerifyURL)
}
