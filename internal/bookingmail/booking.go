// Package bookingmail turns booth booking events into confirmation and
// notification emails. Deliveries arrive as Pub/Sub-style pushes or SQS
// messages and are processed at most once per delivery id.
package bookingmail

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Kind selects which email a processor sends for a booking.
type Kind string

const (
	KindUser  Kind = "user"
	KindAdmin Kind = "admin"
)

// ParseKind accepts user or admin in any case.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindUser, KindAdmin:
		return k, nil
	}
	return "", fmt.Errorf("bookingmail: unknown mail kind %q", s)
}

const defaultInstructions = "None"

// Booking is the request a visitor submitted for a booth.
type Booking struct {
	Name                string    `json:"name"`
	Email               string    `json:"email"`
	Phone               string    `json:"phone"`
	EventName           string    `json:"event_name"`
	EventDate           string    `json:"event_date"`
	NumberOfPeople      Attendees `json:"number_of_people"`
	SpecialInstructions string    `json:"special_instructions"`
}

// Attendees accepts the head count as either a JSON number or a string.
type Attendees string

func (a *Attendees) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Attendees(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("bookingmail: number_of_people: %w", err)
	}
	*a = Attendees(n.String())
	return nil
}

// DecodeBooking parses a delivery payload. A JSON null decodes to an empty booking.
func DecodeBooking(data []byte) (Booking, error) {
	var b Booking
	if err := json.Unmarshal(data, &b); err != nil {
		return Booking{}, fmt.Errorf("%w: %v", ErrBadJSON, err)
	}
	b.Email = strings.TrimSpace(b.Email)
	if strings.TrimSpace(b.SpecialInstructions) == "" {
		b.SpecialInstructions = defaultInstructions
	}
	return b, nil
}
