package bookingmail

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/hvac-dispatch/internal/notify"
	"github.com/wolfman30/hvac-dispatch/internal/observability/metrics"
	"github.com/wolfman30/hvac-dispatch/internal/secrets"
	"github.com/wolfman30/hvac-dispatch/pkg/logging"
)

const bookingJSON = `{"name":"Ana Ruiz","email":"ana@example.com","phone":"555-0100","event_name":"Spring Fair","event_date":"2025-06-14","number_of_people":40}`

type recordingSender struct {
	mu   sync.Mutex
	sent []notify.EmailMessage
	err  error
}

func (s *recordingSender) Send(ctx context.Context, msg notify.EmailMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *recordingSender) messages() []notify.EmailMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notify.EmailMessage(nil), s.sent...)
}

type fakeBuilder struct {
	sender      *recordingSender
	credentials [][]byte
	buildErr    error
}

func (f *fakeBuilder) Provider() string      { return "fake" }
func (f *fakeBuilder) NeedsCredential() bool { return true }

func (f *fakeBuilder) Build(ctx context.Context, credential []byte) (notify.EmailSender, error) {
	f.credentials = append(f.credentials, credential)
	if f.buildErr != nil {
		return nil, f.buildErr
	}
	return f.sender, nil
}

func quietLogger() *logging.Logger {
	return logging.NewWithWriter("error", io.Discard)
}

func newTestProcessor(t *testing.T, kind Kind, builder SenderBuilder, store secrets.Store) *Processor {
	t.Helper()
	p, err := NewProcessor(ProcessorConfig{
		Kind:       kind,
		AdminEmail: "ops@blaz.example.com",
		SecretName: "mail/credential",
		Composer:   testComposer(),
		Secrets:    store,
		Senders:    builder,
		Dedupe:     NewMemoryDedupeStore(time.Hour, nil),
		Metrics:    metrics.NewBookingMailMetrics(prometheus.NewRegistry()),
		Logger:     quietLogger(),
	})
	require.NoError(t, err)
	return p
}

func TestProcessSendsUserConfirmation(t *testing.T) {
	builder := &fakeBuilder{sender: &recordingSender{}}
	p := newTestProcessor(t, KindUser, builder, secrets.StaticStore{"mail/credential": []byte("key-1")})

	res, err := p.Process(context.Background(), Delivery{ID: "m-1", Data: []byte(bookingJSON)})
	require.NoError(t, err)

	assert.Equal(t, OutcomeSent, res.Outcome)
	assert.Equal(t, "ana@example.com", res.To)
	require.Len(t, builder.sender.messages(), 1)
	assert.Equal(t, "ana@example.com", builder.sender.messages()[0].To)
	assert.Equal(t, [][]byte{[]byte("key-1")}, builder.credentials)
}

func TestProcessSendsAdminNotification(t *testing.T) {
	builder := &fakeBuilder{sender: &recordingSender{}}
	p := newTestProcessor(t, KindAdmin, builder, secrets.StaticStore{"mail/credential": []byte("key-1")})

	res, err := p.Process(context.Background(), Delivery{ID: "m-1", Data: []byte(`{"name":"Ana Ruiz","event_name":"Spring Fair"}`)})
	require.NoError(t, err)

	assert.Equal(t, OutcomeSent, res.Outcome)
	assert.Equal(t, "ops@blaz.example.com", res.To)
	assert.Equal(t, "New Bläz Booth Request: Spring Fair (Ana Ruiz)", builder.sender.messages()[0].Subject)
}

func TestProcessDuplicateDelivery(t *testing.T) {
	builder := &fakeBuilder{sender: &recordingSender{}}
	p := newTestProcessor(t, KindUser, builder, secrets.StaticStore{"mail/credential": []byte("key-1")})
	ctx := context.Background()

	_, err := p.Process(ctx, Delivery{ID: "m-1", Data: []byte(bookingJSON)})
	require.NoError(t, err)
	res, err := p.Process(ctx, Delivery{ID: "m-1", Data: []byte(bookingJSON)})
	require.NoError(t, err)

	assert.Equal(t, OutcomeDuplicate, res.Outcome)
	assert.Len(t, builder.sender.messages(), 1)
}

func TestProcessWithoutIDSkipsDedupe(t *testing.T) {
	builder := &fakeBuilder{sender: &recordingSender{}}
	p := newTestProcessor(t, KindUser, builder, secrets.StaticStore{"mail/credential": []byte("key-1")})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := p.Process(ctx, Delivery{Data: []byte(bookingJSON)})
		require.NoError(t, err)
	}
	assert.Len(t, builder.sender.messages(), 2)
}

func TestProcessUnprocessable(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"bad json", `{"name":`, ErrBadJSON},
		{"missing email", `{"name":"Ana Ruiz"}`, ErrMissingEmail},
		{"blank email", `{"name":"Ana Ruiz","email":"   "}`, ErrMissingEmail},
		{"invalid email", `{"name":"Ana Ruiz","email":"not-an-address"}`, ErrInvalidEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			builder := &fakeBuilder{sender: &recordingSender{}}
			p := newTestProcessor(t, KindUser, builder, secrets.StaticStore{"mail/credential": []byte("key-1")})

			res, err := p.Process(context.Background(), Delivery{ID: "m-1", Data: []byte(tt.data)})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrUnprocessable)
			assert.Equal(t, OutcomeUnprocessable, res.Outcome)
			assert.Empty(t, builder.credentials)
		})
	}
}

func TestProcessMissingSecret(t *testing.T) {
	builder := &fakeBuilder{sender: &recordingSender{}}
	p := newTestProcessor(t, KindUser, builder, secrets.StaticStore{})

	res, err := p.Process(context.Background(), Delivery{ID: "m-1", Data: []byte(bookingJSON)})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCredentialUnavailable)
	assert.ErrorIs(t, err, secrets.ErrSecretNotFound)
	assert.False(t, errors.Is(err, ErrUnprocessable))
	assert.Equal(t, OutcomeFailed, res.Outcome)
}

func TestProcessSendFailureReleasesMark(t *testing.T) {
	sender := &recordingSender{err: errors.New("provider down")}
	builder := &fakeBuilder{sender: sender}
	p := newTestProcessor(t, KindUser, builder, secrets.StaticStore{"mail/credential": []byte("key-1")})
	ctx := context.Background()

	_, err := p.Process(ctx, Delivery{ID: "m-1", Data: []byte(bookingJSON)})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSendFailed)

	sender.mu.Lock()
	sender.err = nil
	sender.mu.Unlock()

	res, err := p.Process(ctx, Delivery{ID: "m-1", Data: []byte(bookingJSON)})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSent, res.Outcome)
}

func TestProcessBuildFailureIsCredentialError(t *testing.T) {
	builder := &fakeBuilder{buildErr: notify.ErrMissingCredential}
	p := newTestProcessor(t, KindUser, builder, secrets.StaticStore{"mail/credential": []byte("key-1")})

	_, err := p.Process(context.Background(), Delivery{ID: "m-1", Data: []byte(bookingJSON)})
	assert.ErrorIs(t, err, ErrCredentialUnavailable)
}

func TestProcessOpenBreakerFailsFast(t *testing.T) {
	sender := &recordingSender{err: errors.New("provider down")}
	builder := &fakeBuilder{sender: sender}
	p, err := NewProcessor(ProcessorConfig{
		Kind:       KindUser,
		SecretName: "mail/credential",
		Secrets:    secrets.StaticStore{"mail/credential": []byte("key-1")},
		Senders:    builder,
		Breaker:    notify.NewBreaker(notify.BreakerConfig{FailureThreshold: 1, OpenTimeout: time.Minute}, quietLogger()),
		Logger:     quietLogger(),
	})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = p.Process(ctx, Delivery{Data: []byte(bookingJSON)})
	require.ErrorIs(t, err, ErrSendFailed)

	_, err = p.Process(ctx, Delivery{Data: []byte(bookingJSON)})
	assert.ErrorIs(t, err, notify.ErrCircuitOpen)
}

func TestNewProcessorValidation(t *testing.T) {
	builder := &fakeBuilder{sender: &recordingSender{}}

	_, err := NewProcessor(ProcessorConfig{Kind: KindAdmin, Senders: builder, Secrets: secrets.StaticStore{}})
	assert.Error(t, err, "admin kind needs an admin email")

	_, err = NewProcessor(ProcessorConfig{Kind: "sms", Senders: builder, Secrets: secrets.StaticStore{}})
	assert.Error(t, err)

	_, err = NewProcessor(ProcessorConfig{Kind: KindUser, Senders: builder})
	assert.Error(t, err, "credentialed provider needs a secret store")

	_, err = NewProcessor(ProcessorConfig{Kind: KindUser})
	assert.Error(t, err)
}
