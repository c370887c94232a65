// Package command turns a free-text scheduling instruction into an Intent and
// applies that intent to an appointment snapshot. Each instruction is handled
// on its own; nothing is remembered between calls.
package command

import "github.com/wolfman30/hvac-dispatch/internal/dispatch"

// Action is the kind of change an instruction asks for.
type Action string

const (
	ActionUnknown    Action = "unknown"
	ActionCreate     Action = "create"
	ActionReschedule Action = "reschedule"
	ActionCancel     Action = "cancel"
	ActionInfo       Action = "info"
)

// Intent is the structured reading of one instruction. Fields are filled by
// whichever matchers fired; a zero value means the instruction did not say.
type Intent struct {
	Action               Action               `json:"action"`
	Original             string               `json:"original"`
	CustomerName         string               `json:"customer_name,omitempty"`
	CustomerID           string               `json:"customer_id,omitempty"`
	TechnicianName       string               `json:"technician_name,omitempty"`
	AppointmentID        string               `json:"appointment_id,omitempty"`
	FromDate             string               `json:"from_date,omitempty"`
	ToDate               string               `json:"to_date,omitempty"`
	ShiftDays            int                  `json:"shift_days,omitempty"`
	AffectedAppointments []string             `json:"affected_appointments,omitempty"`
	ServiceType          dispatch.ServiceType `json:"service_type,omitempty"`
	Description          string               `json:"description,omitempty"`
	Address              string               `json:"address,omitempty"`
}

// Result is the outcome of executing an intent: the snapshot the caller should
// adopt and a message for the user.
type Result struct {
	Appointments []dispatch.Appointment `json:"appointments"`
	Message      string                 `json:"message"`
}

// FallbackMessage is returned for anything the executor cannot act on.
const FallbackMessage = "I couldn't understand that request."
