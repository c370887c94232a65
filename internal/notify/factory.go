package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wolfman30/hvac-dispatch/pkg/logging"
)

// Supported mail providers.
const (
	ProviderGmail    = "gmail"
	ProviderSendGrid = "sendgrid"
	ProviderSES      = "ses"
	ProviderStub     = "stub"
)

var (
	ErrUnknownProvider   = errors.New("notify: unknown mail provider")
	ErrMissingCredential = errors.New("notify: mail credential is empty")
)

// FactoryConfig names the provider and the sender identity.
type FactoryConfig struct {
	Provider string
	From     Identity
	SES      SESAPI // required for the ses provider
}

// SenderFactory builds a sender from a freshly fetched credential. Gmail takes
// a service-account JSON key and SendGrid an API key; SES and the stub ignore
// the credential.
type SenderFactory struct {
	cfg    FactoryConfig
	logger *logging.Logger
}

func NewSenderFactory(cfg FactoryConfig, logger *logging.Logger) (*SenderFactory, error) {
	if logger == nil {
		logger = logging.Default()
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	switch cfg.Provider {
	case ProviderGmail, ProviderSendGrid, ProviderStub:
	case ProviderSES:
		if cfg.SES == nil {
			return nil, fmt.Errorf("notify: ses provider requires an SES client")
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
	return &SenderFactory{cfg: cfg, logger: logger}, nil
}

// Provider is the normalized provider name.
func (f *SenderFactory) Provider() string { return f.cfg.Provider }

// NeedsCredential reports whether Build expects a secret.
func (f *SenderFactory) NeedsCredential() bool {
	return f.cfg.Provider == ProviderGmail || f.cfg.Provider == ProviderSendGrid
}

func (f *SenderFactory) Build(ctx context.Context, credential []byte) (EmailSender, error) {
	switch f.cfg.Provider {
	case ProviderGmail:
		return NewGmailSender(ctx, credential, f.cfg.From, f.logger)
	case ProviderSendGrid:
		return NewSendGridSender(string(credential), f.cfg.From, f.logger)
	case ProviderSES:
		return NewSESSender(f.cfg.SES, f.cfg.From, f.logger)
	case ProviderStub:
		return NewLogSender(f.logger), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, f.cfg.Provider)
}
