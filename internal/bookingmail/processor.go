package bookingmail

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/wolfman30/hvac-dispatch/internal/notify"
	"github.com/wolfman30/hvac-dispatch/internal/observability/metrics"
	"github.com/wolfman30/hvac-dispatch/internal/secrets"
	"github.com/wolfman30/hvac-dispatch/pkg/logging"
)

// Delivery is one inbound booking event. ID is the transport's message id
// and may be empty, in which case no dedupe is attempted.
type Delivery struct {
	ID   string
	Data []byte
}

// Outcome labels how a delivery ended.
type Outcome string

const (
	OutcomeSent          Outcome = "sent"
	OutcomeDuplicate     Outcome = "duplicate"
	OutcomeUnprocessable Outcome = "unprocessable"
	OutcomeFailed        Outcome = "failed"
)

// Result describes a processed delivery.
type Result struct {
	Outcome Outcome
	Kind    Kind
	To      string
}

// SenderBuilder builds a mail sender from a fetched credential.
type SenderBuilder interface {
	Provider() string
	NeedsCredential() bool
	Build(ctx context.Context, credential []byte) (notify.EmailSender, error)
}

// ProcessorConfig wires a Processor.
type ProcessorConfig struct {
	Kind       Kind
	AdminEmail string // recipient for KindAdmin
	SecretName string

	Composer *Composer
	Secrets  secrets.Store
	Senders  SenderBuilder
	Breaker  *notify.Breaker
	Dedupe   DedupeStore
	Metrics  *metrics.BookingMailMetrics
	Logger   *logging.Logger
}

// Processor sends one email per booking delivery. Each delivery is a single
// attempt; retries are left to the transport.
type Processor struct {
	cfg      ProcessorConfig
	validate *validator.Validate
	logger   *logging.Logger
}

func NewProcessor(cfg ProcessorConfig) (*Processor, error) {
	switch cfg.Kind {
	case KindUser:
	case KindAdmin:
		if cfg.AdminEmail == "" {
			return nil, errors.New("bookingmail: admin kind requires an admin email")
		}
	default:
		return nil, fmt.Errorf("bookingmail: unknown mail kind %q", cfg.Kind)
	}
	if cfg.Senders == nil {
		return nil, errors.New("bookingmail: sender builder is required")
	}
	if cfg.Senders.NeedsCredential() && cfg.Secrets == nil {
		return nil, errors.New("bookingmail: secret store is required for " + cfg.Senders.Provider())
	}
	if cfg.Composer == nil {
		cfg.Composer = NewComposer(ComposerConfig{})
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Processor{
		cfg:      cfg,
		validate: validator.New(),
		logger:   cfg.Logger.Component("bookingmail").With("kind", string(cfg.Kind)),
	}, nil
}

// Kind reports which email this processor sends.
func (p *Processor) Kind() Kind { return p.cfg.Kind }

// Process handles one delivery. Errors wrapping ErrUnprocessable mean the
// delivery should be acknowledged; any other error means it should be retried.
func (p *Processor) Process(ctx context.Context, d Delivery) (Result, error) {
	res := Result{Kind: p.cfg.Kind}

	booking, err := DecodeBooking(d.Data)
	if err != nil {
		return p.reject(res, d, err)
	}
	to, err := p.recipient(booking)
	if err != nil {
		return p.reject(res, d, err)
	}
	res.To = to

	if d.ID != "" && p.cfg.Dedupe != nil {
		first, err := p.cfg.Dedupe.MarkProcessed(ctx, d.ID)
		if err != nil {
			return p.fail(res, d, err)
		}
		if !first {
			p.logger.Info("duplicate booking delivery skipped", "delivery_id", d.ID)
			p.cfg.Metrics.ObserveDelivery(string(p.cfg.Kind), string(OutcomeDuplicate))
			res.Outcome = OutcomeDuplicate
			return res, nil
		}
	}

	if err := p.send(ctx, booking, to); err != nil {
		p.release(ctx, d.ID)
		return p.fail(res, d, err)
	}

	p.logger.Info("booking email sent", "delivery_id", d.ID, "to", to, "booking_name", booking.Name)
	p.cfg.Metrics.ObserveDelivery(string(p.cfg.Kind), string(OutcomeSent))
	res.Outcome = OutcomeSent
	return res, nil
}

func (p *Processor) recipient(b Booking) (string, error) {
	if p.cfg.Kind == KindAdmin {
		return p.cfg.AdminEmail, nil
	}
	if b.Email == "" {
		return "", ErrMissingEmail
	}
	if err := p.validate.Var(b.Email, "email"); err != nil {
		return "", ErrInvalidEmail
	}
	return b.Email, nil
}

func (p *Processor) send(ctx context.Context, b Booking, to string) error {
	var credential []byte
	if p.cfg.Senders.NeedsCredential() {
		cred, err := p.cfg.Secrets.Latest(ctx, p.cfg.SecretName)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCredentialUnavailable, err)
		}
		credential = cred
	}

	sender, err := p.cfg.Senders.Build(ctx, credential)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCredentialUnavailable, err)
	}
	if p.cfg.Breaker != nil {
		sender = p.cfg.Breaker.Wrap(sender)
	}

	msg, err := p.cfg.Composer.Compose(p.cfg.Kind, b, to)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}

	start := time.Now()
	err = sender.Send(ctx, msg)
	p.cfg.Metrics.ObserveSend(p.cfg.Senders.Provider(), time.Since(start))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}
	return nil
}

func (p *Processor) release(ctx context.Context, id string) {
	if id == "" || p.cfg.Dedupe == nil {
		return
	}
	if err := p.cfg.Dedupe.Release(context.WithoutCancel(ctx), id); err != nil {
		p.logger.Error("failed to release delivery mark", "error", err, "delivery_id", id)
	}
}

func (p *Processor) reject(res Result, d Delivery, err error) (Result, error) {
	p.logger.Warn("booking delivery acknowledged without sending", "error", err, "delivery_id", d.ID)
	p.cfg.Metrics.ObserveDelivery(string(p.cfg.Kind), string(OutcomeUnprocessable))
	res.Outcome = OutcomeUnprocessable
	return res, err
}

func (p *Processor) fail(res Result, d Delivery, err error) (Result, error) {
	p.logger.Error("booking delivery failed", "error", err, "delivery_id", d.ID, "to", res.To)
	p.cfg.Metrics.ObserveDelivery(string(p.cfg.Kind), string(OutcomeFailed))
	res.Outcome = OutcomeFailed
	return res, err
}
