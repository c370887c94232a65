package notify

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/wolfman30/hvac-dispatch/pkg/logging"
)

// ErrCircuitOpen is returned without contacting the provider while the breaker is open.
var ErrCircuitOpen = errors.New("notify: mail circuit open")

// BreakerConfig tunes when the breaker trips and how long it stays open.
type BreakerConfig struct {
	Name             string
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// Breaker is a circuit breaker shared by every sender it wraps, so a provider
// outage is remembered across deliveries even when senders are rebuilt.
type Breaker struct {
	cb     *gobreaker.CircuitBreaker[struct{}]
	logger *logging.Logger
}

func NewBreaker(cfg BreakerConfig, logger *logging.Logger) *Breaker {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Name == "" {
		cfg.Name = "mail"
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("mail circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	}
	return &Breaker{cb: gobreaker.NewCircuitBreaker[struct{}](settings), logger: logger}
}

// State reports the breaker state name (closed, half-open, open).
func (b *Breaker) State() string {
	return b.cb.State().String()
}

// Wrap returns a sender whose calls go through the breaker.
func (b *Breaker) Wrap(next EmailSender) *BreakerSender {
	return &BreakerSender{next: next, breaker: b}
}

// BreakerSender guards another sender with a Breaker.
type BreakerSender struct {
	next    EmailSender
	breaker *Breaker
}

func (s *BreakerSender) Send(ctx context.Context, msg EmailMessage) error {
	_, err := s.breaker.cb.Execute(func() (struct{}, error) {
		return struct{}{}, s.next.Send(ctx, msg)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		s.breaker.logger.Warn("mail send rejected by open circuit", "to", msg.To)
		return ErrCircuitOpen
	}
	return err
}

var _ EmailSender = (*BreakerSender)(nil)
