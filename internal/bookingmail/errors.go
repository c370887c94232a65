package bookingmail

import (
	"errors"
	"fmt"
)

// ErrUnprocessable marks deliveries that can never succeed. They are
// acknowledged so the transport stops redelivering them.
var ErrUnprocessable = errors.New("bookingmail: unprocessable delivery")

var (
	ErrBadJSON      = fmt.Errorf("%w: booking is not valid JSON", ErrUnprocessable)
	ErrMissingEmail = fmt.Errorf("%w: booking is missing the user email", ErrUnprocessable)
	ErrInvalidEmail = fmt.Errorf("%w: booking email is not a valid address", ErrUnprocessable)
)

// Backend failures. Deliveries failing with these are left for redelivery.
var (
	ErrCredentialUnavailable = errors.New("bookingmail: mail credential unavailable")
	ErrSendFailed            = errors.New("bookingmail: mail send failed")
)
