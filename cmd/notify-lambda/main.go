package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/wolfman30/hvac-dispatch/cmd/mainconfig"
	"github.com/wolfman30/hvac-dispatch/internal/app/bootstrap"
	"github.com/wolfman30/hvac-dispatch/internal/bookingmail"
	appconfig "github.com/wolfman30/hvac-dispatch/internal/config"
	"github.com/wolfman30/hvac-dispatch/pkg/logging"
)

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	proc, err := setup(context.Background(), cfg, logger)
	if err != nil {
		panic(err)
	}
	logger.Info("notify lambda ready", "kind", proc.Kind(), "mail_provider", cfg.MailProvider)

	lambda.Start(func(ctx context.Context, evt events.SQSEvent) (events.SQSEventResponse, error) {
		return handle(ctx, proc, evt), nil
	})
}

// setup builds the processor for BOOKING_QUEUE_KIND. Redis dedupe is used when
// REDIS_ADDR is reachable; a warm Lambda keeps the in-memory fallback between
// invocations.
func setup(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (bookingmail.DeliveryProcessor, error) {
	kind, err := bookingmail.ParseKind(cfg.BookingQueueKind)
	if err != nil {
		return nil, err
	}
	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	proc, err := bootstrap.BuildBookingProcessor(cfg, kind, bootstrap.BookingDeps{
		AWS:    &awsCfg,
		Redis:  bootstrap.BuildRedisClient(ctx, cfg, logger, true),
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	return proc, nil
}

func handle(ctx context.Context, proc bookingmail.DeliveryProcessor, evt events.SQSEvent) events.SQSEventResponse {
	return bookingmail.HandleSQSEvent(ctx, proc, evt)
}
