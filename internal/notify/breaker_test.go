package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSender struct {
	calls int
	err   error
}

func (s *countingSender) Send(ctx context.Context, msg EmailMessage) error {
	s.calls++
	return s.err
}

func TestBreakerSender_OpensAfterThreshold(t *testing.T) {
	failing := &countingSender{err: errors.New("provider down")}
	breaker := NewBreaker(BreakerConfig{FailureThreshold: 2, OpenTimeout: time.Minute}, nil)
	sender := breaker.Wrap(failing)

	msg := EmailMessage{To: "ada@example.com"}
	assert.EqualError(t, sender.Send(context.Background(), msg), "provider down")
	assert.EqualError(t, sender.Send(context.Background(), msg), "provider down")

	err := sender.Send(context.Background(), msg)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 2, failing.calls)
	assert.Equal(t, "open", breaker.State())
}

func TestBreaker_SharedAcrossWrappedSenders(t *testing.T) {
	breaker := NewBreaker(BreakerConfig{FailureThreshold: 1, OpenTimeout: time.Minute}, nil)

	require.Error(t, breaker.Wrap(&countingSender{err: errors.New("boom")}).Send(context.Background(), EmailMessage{}))

	healthy := &countingSender{}
	err := breaker.Wrap(healthy).Send(context.Background(), EmailMessage{})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Zero(t, healthy.calls)
}

func TestBreakerSender_PassesThroughSuccess(t *testing.T) {
	ok := &countingSender{}
	breaker := NewBreaker(BreakerConfig{}, nil)

	for i := 0; i < 3; i++ {
		require.NoError(t, breaker.Wrap(ok).Send(context.Background(), EmailMessage{}))
	}
	assert.Equal(t, 3, ok.calls)
	assert.Equal(t, "closed", breaker.State())
}
