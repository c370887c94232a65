package board

import "errors"

var (
	// ErrAppointmentNotFound is returned when no appointment has the given id
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrTechnicianNotFound is returned when a request names an unknown technician
	ErrTechnicianNotFound = errors.New("technician not found")

	// ErrCustomerNotFound is returned when a request names an unknown customer
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrInvalidRequest wraps every validation failure
	ErrInvalidRequest = errors.New("invalid request")
)
