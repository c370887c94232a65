package bootstrap

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/hvac-dispatch/internal/bookingmail"
	appconfig "github.com/wolfman30/hvac-dispatch/internal/config"
	"github.com/wolfman30/hvac-dispatch/internal/notify"
	"github.com/wolfman30/hvac-dispatch/internal/observability/metrics"
	"github.com/wolfman30/hvac-dispatch/internal/secrets"
	"github.com/wolfman30/hvac-dispatch/pkg/logging"
)

// Secret store backends.
const (
	SecretStoreEnv            = "env"
	SecretStoreSecretsManager = "secretsmanager"
)

// BookingDeps are the shared clients a booking processor is built over.
// AWS is required for the ses provider and the secretsmanager store.
type BookingDeps struct {
	AWS     *aws.Config
	Redis   *redis.Client
	Metrics *metrics.BookingMailMetrics
	Logger  *logging.Logger
}

// BuildSecretStore picks the credential backend named by SECRET_STORE.
func BuildSecretStore(cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) (secrets.Store, error) {
	switch cfg.SecretStore {
	case "", SecretStoreEnv:
		return secrets.EnvStore{}, nil
	case SecretStoreSecretsManager:
		if awsCfg == nil {
			return nil, errors.New("bootstrap: secretsmanager store requires AWS config")
		}
		return secrets.NewSecretsManagerStore(secretsmanager.NewFromConfig(*awsCfg), logger), nil
	}
	return nil, fmt.Errorf("bootstrap: unknown secret store %q", cfg.SecretStore)
}

// BuildBookingProcessor wires a processor for one mail kind: secret store,
// sender factory, a breaker of its own, and Redis dedupe when a client is
// given, in-memory otherwise.
func BuildBookingProcessor(cfg *appconfig.Config, kind bookingmail.Kind, deps BookingDeps) (*bookingmail.Processor, error) {
	if cfg == nil {
		return nil, errors.New("bootstrap: config is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}

	store, err := BuildSecretStore(cfg, deps.AWS, logger)
	if err != nil {
		return nil, err
	}

	factoryCfg := notify.FactoryConfig{
		Provider: cfg.MailProvider,
		From: notify.Identity{
			Email:   cfg.MailSenderEmail,
			Name:    cfg.MailSenderName,
			ReplyTo: cfg.MailReplyTo,
		},
	}
	if cfg.MailProvider == notify.ProviderSES {
		if deps.AWS == nil {
			return nil, errors.New("bootstrap: ses provider requires AWS config")
		}
		factoryCfg.SES = sesv2.NewFromConfig(*deps.AWS)
	}
	senders, err := notify.NewSenderFactory(factoryCfg, logger)
	if err != nil {
		return nil, err
	}

	var dedupe bookingmail.DedupeStore
	if deps.Redis != nil {
		dedupe = bookingmail.NewRedisDedupeStore(deps.Redis, "hvac:bookingmail:"+string(kind), cfg.DedupeTTL, nil)
	} else {
		dedupe = bookingmail.NewMemoryDedupeStore(cfg.DedupeTTL, nil)
	}

	return bookingmail.NewProcessor(bookingmail.ProcessorConfig{
		Kind:       kind,
		AdminEmail: cfg.AdminNotifyEmail,
		SecretName: cfg.MailSecretName,
		Composer: bookingmail.NewComposer(bookingmail.ComposerConfig{
			Brand:      cfg.BrandName,
			SenderName: cfg.MailSenderName,
			ReplyTo:    cfg.MailReplyTo,
		}),
		Secrets: store,
		Senders: senders,
		Breaker: notify.NewBreaker(notify.BreakerConfig{
			Name:             "mail-" + string(kind),
			FailureThreshold: cfg.BreakerFailureThreshold,
			OpenTimeout:      cfg.BreakerOpenTimeout,
		}, logger),
		Dedupe:  dedupe,
		Metrics: deps.Metrics,
		Logger:  logger,
	})
}
