package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/hvac-dispatch/cmd/mainconfig"
	"github.com/wolfman30/hvac-dispatch/internal/api/router"
	"github.com/wolfman30/hvac-dispatch/internal/app/bootstrap"
	"github.com/wolfman30/hvac-dispatch/internal/board"
	"github.com/wolfman30/hvac-dispatch/internal/bookingmail"
	appconfig "github.com/wolfman30/hvac-dispatch/internal/config"
	"github.com/wolfman30/hvac-dispatch/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/hvac-dispatch/internal/http/middleware"
	"github.com/wolfman30/hvac-dispatch/internal/notify"
	"github.com/wolfman30/hvac-dispatch/internal/observability/metrics"
	"github.com/wolfman30/hvac-dispatch/internal/recommend"
	"github.com/wolfman30/hvac-dispatch/pkg/logging"
)

func main() {
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting hvac-dispatch API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"mail_provider", cfg.MailProvider,
	)

	ctx := context.Background()
	awsCfg, err := loadAWSIfNeeded(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}
	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer redisClient.Close()
	}

	reg := prometheus.NewRegistry()
	handler, err := buildHandler(cfg, reg, bootstrap.BookingDeps{AWS: awsCfg, Redis: redisClient, Logger: logger})
	if err != nil {
		logger.Error("failed to wire API", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// loadAWSIfNeeded returns nil when neither the mail provider nor the secret
// store talks to AWS.
func loadAWSIfNeeded(ctx context.Context, cfg *appconfig.Config) (*aws.Config, error) {
	if cfg.MailProvider != notify.ProviderSES && cfg.SecretStore != bootstrap.SecretStoreSecretsManager {
		return nil, nil
	}
	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &awsCfg, nil
}

// buildHandler wires the board, the booking push endpoints and /metrics.
// The admin push endpoint is mounted only when ADMIN_NOTIFY_EMAIL is set.
func buildHandler(cfg *appconfig.Config, reg *prometheus.Registry, deps bootstrap.BookingDeps) (http.Handler, error) {
	logger := deps.Logger
	deps.Metrics = metrics.NewBookingMailMetrics(reg)

	b := board.NewSeeded(board.Options{
		Rand:    recommend.NewRand(cfg.RandomSeed),
		Now:     func() time.Time { return time.Now().In(cfg.Location()) },
		Logger:  logger,
		Metrics: metrics.NewDispatchMetrics(reg),
	})

	userProc, err := bootstrap.BuildBookingProcessor(cfg, bookingmail.KindUser, deps)
	if err != nil {
		return nil, fmt.Errorf("user booking processor: %w", err)
	}
	var adminPush http.Handler
	if cfg.AdminNotifyEmail != "" {
		adminProc, err := bootstrap.BuildBookingProcessor(cfg, bookingmail.KindAdmin, deps)
		if err != nil {
			return nil, fmt.Errorf("admin booking processor: %w", err)
		}
		adminPush = bookingmail.NewPushHandler(adminProc, logger)
	}

	return router.New(&router.Config{
		Logger:             logger,
		Schedule:           handlers.NewScheduleHandler(b, logger),
		BookingUserPush:    bookingmail.NewPushHandler(userProc, logger),
		BookingAdminPush:   adminPush,
		WebhookLimiter:     httpmiddleware.NewRateLimiter(20, 40, nil),
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}), nil
}
