// Package notify delivers rendered email through a pluggable provider.
package notify

import (
	"context"
	"net/mail"

	"github.com/wolfman30/hvac-dispatch/pkg/logging"
)

// DefaultSenderName is used when the identity carries no display name.
const DefaultSenderName = "Bläz Booking System"

// EmailSender delivers one message. Gmail, SendGrid, SES and the log-only
// sender all satisfy it.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailMessage is a single outgoing email. HTML is preferred by providers
// that can only carry one body; Text is the fallback.
type EmailMessage struct {
	To      string
	ToName  string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}

// Identity is the mailbox mail goes out from.
type Identity struct {
	Email   string
	Name    string
	ReplyTo string
}

func (id Identity) withDefaults() Identity {
	if id.Name == "" {
		id.Name = DefaultSenderName
	}
	return id
}

func (id Identity) address() *mail.Address {
	return &mail.Address{Name: id.Name, Address: id.Email}
}

// replyTo picks the message override before the identity default.
func (id Identity) replyTo(msg EmailMessage) string {
	if msg.ReplyTo != "" {
		return msg.ReplyTo
	}
	return id.ReplyTo
}

// LogSender records what would have been sent. It backs the stub provider.
type LogSender struct {
	logger *logging.Logger
}

func NewLogSender(logger *logging.Logger) *LogSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg EmailMessage) error {
	s.logger.Info("mail delivery skipped by stub provider", "to", msg.To, "subject", msg.Subject)
	return nil
}

var _ EmailSender = (*LogSender)(nil)
