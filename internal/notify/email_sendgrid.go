package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/wolfman30/hvac-dispatch/pkg/logging"
)

const (
	sendGridHost     = "https://api.sendgrid.com"
	sendGridEndpoint = "/v3/mail/send"
)

// SendGridSender posts mail to the SendGrid v3 API.
type SendGridSender struct {
	client *sendgrid.Client
	from   Identity
	logger *logging.Logger
}

func NewSendGridSender(apiKey string, from Identity, logger *logging.Logger) (*SendGridSender, error) {
	return newSendGridSender(apiKey, sendGridHost, from, logger)
}

func newSendGridSender(apiKey, host string, from Identity, logger *logging.Logger) (*SendGridSender, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrMissingCredential
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SendGridSender{
		client: &sendgrid.Client{Request: sendgrid.GetRequest(apiKey, sendGridEndpoint, host)},
		from:   from.withDefaults(),
		logger: logger,
	}, nil
}

func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("notify: sendgrid client not configured")
	}

	html := msg.HTML
	if html == "" {
		html = msg.Text
	}
	v3 := mail.NewSingleEmail(
		mail.NewEmail(s.from.Name, s.from.Email),
		msg.Subject,
		mail.NewEmail(msg.ToName, msg.To),
		msg.Text,
		html,
	)
	if reply := s.from.replyTo(msg); reply != "" {
		v3.SetReplyTo(mail.NewEmail("", reply))
	}

	resp, err := s.client.SendWithContext(ctx, v3)
	if err != nil {
		s.logger.Error("sendgrid request failed", "error", err, "to", msg.To)
		return fmt.Errorf("notify: sendgrid send: %w", err)
	}
	if resp.StatusCode >= 300 {
		s.logger.Error("sendgrid rejected message", "status", resp.StatusCode, "body", resp.Body, "to", msg.To)
		return fmt.Errorf("notify: sendgrid status %d", resp.StatusCode)
	}

	s.logger.Info("email sent", "provider", ProviderSendGrid, "to", msg.To, "status", resp.StatusCode)
	return nil
}

var _ EmailSender = (*SendGridSender)(nil)
