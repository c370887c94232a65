package bookingmail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/wolfman30/hvac-dispatch/internal/notify"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

var templateNames = map[Kind]string{
	KindUser:  "user_confirmation.html",
	KindAdmin: "admin_notification.html",
}

// ComposerConfig holds the branding that appears in every email.
type ComposerConfig struct {
	Brand      string
	SenderName string
	WebsiteURL string
	ReplyTo    string // reply-to for user confirmations
	Now        func() time.Time
}

// Composer renders booking emails. Booking fields are HTML-escaped.
type Composer struct {
	cfg ComposerConfig
}

func NewComposer(cfg ComposerConfig) *Composer {
	if cfg.Brand == "" {
		cfg.Brand = "Bläz Booth"
	}
	if cfg.SenderName == "" {
		cfg.SenderName = "Bläz Booking System"
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Composer{cfg: cfg}
}

type detailRow struct {
	Label string
	Value string
}

type templateData struct {
	Brand      string
	SenderName string
	WebsiteURL string
	Year       int
	Booking    Booking
	Rows       []detailRow
}

// Compose builds the email of the given kind addressed to to.
func (c *Composer) Compose(kind Kind, b Booking, to string) (notify.EmailMessage, error) {
	name, ok := templateNames[kind]
	if !ok {
		return notify.EmailMessage{}, fmt.Errorf("bookingmail: no template for kind %q", kind)
	}

	rows := []detailRow{
		{"Event Name", b.EventName},
		{"Event Date", FormatEventDate(b.EventDate)},
		{"Contact Name", b.Name},
		{"Contact Email", b.Email},
		{"Contact Phone", b.Phone},
		{"Number of Attendees", string(b.NumberOfPeople)},
		{"Special Instructions", b.SpecialInstructions},
	}
	data := templateData{
		Brand:      c.cfg.Brand,
		SenderName: c.cfg.SenderName,
		WebsiteURL: c.cfg.WebsiteURL,
		Year:       c.cfg.Now().Year(),
		Booking:    b,
		Rows:       rows,
	}

	var html bytes.Buffer
	if err := templates.ExecuteTemplate(&html, name, data); err != nil {
		return notify.EmailMessage{}, fmt.Errorf("bookingmail: render %s: %w", name, err)
	}

	msg := notify.EmailMessage{
		To:   to,
		HTML: html.String(),
		Text: plainText(rows),
	}
	switch kind {
	case KindUser:
		msg.ToName = b.Name
		msg.ReplyTo = c.cfg.ReplyTo
		msg.Subject = fmt.Sprintf("Your %s Request for %s has been Received!", c.cfg.Brand, b.EventName)
	case KindAdmin:
		msg.ReplyTo = b.Email
		msg.Subject = fmt.Sprintf("New %s Request: %s (%s)", c.cfg.Brand, b.EventName, b.Name)
	}
	return msg, nil
}

func plainText(rows []detailRow) string {
	var sb strings.Builder
	sb.WriteString("Booth Request Details\n\n")
	for _, r := range rows {
		fmt.Fprintf(&sb, "%s: %s\n", r.Label, r.Value)
	}
	return sb.String()
}
