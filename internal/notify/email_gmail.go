package notify

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"net/mail"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/wolfman30/hvac-dispatch/pkg/logging"
)

const mimeLineLength = 76

// GmailSender sends mail through the Gmail API as a delegated service account.
type GmailSender struct {
	svc    *gmail.Service
	from   Identity
	logger *logging.Logger
}

// NewGmailSender authenticates with a service-account key using domain-wide
// delegation on behalf of from.Email.
func NewGmailSender(ctx context.Context, credentialsJSON []byte, from Identity, logger *logging.Logger) (*GmailSender, error) {
	if len(credentialsJSON) == 0 {
		return nil, ErrMissingCredential
	}
	jwtCfg, err := google.JWTConfigFromJSON(credentialsJSON, gmail.GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("notify: parse gmail service account: %w", err)
	}
	jwtCfg.Subject = from.Email

	svc, err := gmail.NewService(ctx, option.WithTokenSource(jwtCfg.TokenSource(ctx)))
	if err != nil {
		return nil, fmt.Errorf("notify: create gmail service: %w", err)
	}
	return NewGmailSenderWithService(svc, from, logger), nil
}

func NewGmailSenderWithService(svc *gmail.Service, from Identity, logger *logging.Logger) *GmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &GmailSender{svc: svc, from: from.withDefaults(), logger: logger}
}

func (s *GmailSender) Send(ctx context.Context, msg EmailMessage) error {
	if s.svc == nil {
		return fmt.Errorf("notify: gmail service not configured")
	}

	raw := buildMIMEMessage(s.from, msg)
	sent, err := s.svc.Users.Messages.Send("me", &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(raw),
	}).Context(ctx).Do()
	if err != nil {
		s.logger.Error("gmail send failed", "error", err, "to", msg.To)
		return fmt.Errorf("notify: gmail send: %w", err)
	}

	s.logger.Info("email sent", "provider", ProviderGmail, "to", msg.To, "message_id", sent.Id)
	return nil
}

// buildMIMEMessage renders a single-part RFC 2822 message. Display names and
// the subject are RFC 2047 encoded so non-ASCII text survives transport.
func buildMIMEMessage(from Identity, msg EmailMessage) []byte {
	var buf bytes.Buffer

	to := mail.Address{Name: msg.ToName, Address: msg.To}

	fmt.Fprintf(&buf, "From: %s\r\n", from.address())
	fmt.Fprintf(&buf, "To: %s\r\n", to.String())
	if replyTo := from.replyTo(msg); replyTo != "" {
		fmt.Fprintf(&buf, "Reply-To: %s\r\n", replyTo)
	}
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.BEncoding.Encode("UTF-8", msg.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")

	body, contentType := msg.HTML, "text/html"
	if body == "" {
		body, contentType = msg.Text, "text/plain"
	}
	fmt.Fprintf(&buf, "Content-Type: %s; charset=\"UTF-8\"\r\n", contentType)
	buf.WriteString("Content-Transfer-Encoding: base64\r\n\r\n")
	encoded := base64.StdEncoding.EncodeToString([]byte(body))
	for len(encoded) > mimeLineLength {
		buf.WriteString(encoded[:mimeLineLength])
		buf.WriteString("\r\n")
		encoded = encoded[mimeLineLength:]
	}
	buf.WriteString(encoded)
	buf.WriteString("\r\n")

	return buf.Bytes()
}

var _ EmailSender = (*GmailSender)(nil)
