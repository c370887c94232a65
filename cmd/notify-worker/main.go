package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/wolfman30/hvac-dispatch/cmd/mainconfig"
	"github.com/wolfman30/hvac-dispatch/internal/app/bootstrap"
	"github.com/wolfman30/hvac-dispatch/internal/bookingmail"
	"github.com/wolfman30/hvac-dispatch/internal/config"
	"github.com/wolfman30/hvac-dispatch/pkg/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer, err := setup(ctx, cfg, logger)
	if err != nil {
		logger.Error("notify worker setup failed", "error", err)
		os.Exit(1)
	}

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		logger.Info("notify worker shutting down")
		cancel()
	}()

	logger.Info("notify worker started", "queue_url", cfg.BookingQueueURL, "kind", cfg.BookingQueueKind)
	if err := consumer.Run(ctx); err != nil {
		logger.Error("notify worker stopped", "error", err)
		os.Exit(1)
	}
}

func setup(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*bookingmail.SQSConsumer, error) {
	if cfg.BookingQueueURL == "" {
		return nil, errors.New("BOOKING_QUEUE_URL is required")
	}
	kind, err := bookingmail.ParseKind(cfg.BookingQueueKind)
	if err != nil {
		return nil, err
	}
	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	proc, err := bootstrap.BuildBookingProcessor(cfg, kind, bootstrap.BookingDeps{
		AWS:    &awsCfg,
		Redis:  bootstrap.BuildRedisClient(ctx, cfg, logger, true),
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	return bookingmail.NewSQSConsumer(sqs.NewFromConfig(awsCfg), cfg.BookingQueueURL, proc, logger,
		bookingmail.WithWaitTime(cfg.WorkerPollWait),
	), nil
}
