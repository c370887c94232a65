// Package dispatch holds the HVAC scheduling domain: technicians, customers,
// appointments and the enumerated values shared by the recommendation engine,
// the command interpreter and the board that owns the live collection.
package dispatch

import "strings"

// TechnicianLevel is a seniority grade. Levels are ordered apprentice < journeyman < master.
type TechnicianLevel string

const (
	LevelApprentice TechnicianLevel = "apprentice"
	LevelJourneyman TechnicianLevel = "journeyman"
	LevelMaster     TechnicianLevel = "master"
)

// Valid reports whether l is a known level.
func (l TechnicianLevel) Valid() bool {
	switch l {
	case LevelApprentice, LevelJourneyman, LevelMaster:
		return true
	}
	return false
}

// Rank orders levels by seniority; unknown levels rank below apprentice.
func (l TechnicianLevel) Rank() int {
	switch l {
	case LevelApprentice:
		return 1
	case LevelJourneyman:
		return 2
	case LevelMaster:
		return 3
	}
	return 0
}

// ServiceType is the kind of work an appointment covers.
type ServiceType string

const (
	ServiceInstallation ServiceType = "installation"
	ServiceMaintenance  ServiceType = "maintenance"
	ServiceRepair       ServiceType = "repair"
	ServiceInspection   ServiceType = "inspection"
)

// ServiceTypes lists every service type in declaration order.
var ServiceTypes = []ServiceType{ServiceInstallation, ServiceMaintenance, ServiceRepair, ServiceInspection}

func (s ServiceType) Valid() bool {
	switch s {
	case ServiceInstallation, ServiceMaintenance, ServiceRepair, ServiceInspection:
		return true
	}
	return false
}

// SpecialtyTag is the technician specialty that matches s.
func (s ServiceType) SpecialtyTag() string {
	switch s {
	case ServiceInstallation:
		return SpecialtyInstallations
	case ServiceMaintenance:
		return SpecialtyMaintenance
	case ServiceRepair:
		return SpecialtyRepairs
	case ServiceInspection:
		return SpecialtyDiagnostics
	}
	return ""
}

// Specialty tags the engine and analyzer look for.
const (
	SpecialtyInstallations = "installations"
	SpecialtyMaintenance   = "maintenance"
	SpecialtyRepairs       = "repairs"
	SpecialtyDiagnostics   = "diagnostics"
)

// Priority of an appointment.
type Priority string

const (
	PriorityLow       Priority = "low"
	PriorityNormal    Priority = "normal"
	PriorityHigh      Priority = "high"
	PriorityEmergency Priority = "emergency"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityEmergency:
		return true
	}
	return false
}

// TimeSlot is a third of the working day.
type TimeSlot string

const (
	SlotMorning   TimeSlot = "morning"
	SlotAfternoon TimeSlot = "afternoon"
	SlotEvening   TimeSlot = "evening"
)

func (t TimeSlot) Valid() bool {
	switch t {
	case SlotMorning, SlotAfternoon, SlotEvening:
		return true
	}
	return false
}

// Status is the appointment lifecycle state.
type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// DurationFor returns the estimated minutes for a service type.
func DurationFor(s ServiceType) int {
	switch s {
	case ServiceInstallation:
		return 180
	case ServiceRepair:
		return 120
	case ServiceMaintenance:
		return 60
	default:
		return 45
	}
}

// SlotAvailability flags which slots a technician can take on one day.
type SlotAvailability struct {
	Morning   bool `json:"morning"`
	Afternoon bool `json:"afternoon"`
	Evening   bool `json:"evening"`
}

// Has reports the flag for slot.
func (a SlotAvailability) Has(slot TimeSlot) bool {
	switch slot {
	case SlotMorning:
		return a.Morning
	case SlotAfternoon:
		return a.Afternoon
	case SlotEvening:
		return a.Evening
	}
	return false
}

// Technician is a field technician. Availability is keyed by canonical date;
// a missing key means no availability data, not free.
type Technician struct {
	ID           string                      `json:"id"`
	Name         string                      `json:"name"`
	Level        TechnicianLevel             `json:"level"`
	Specialties  []string                    `json:"specialties"`
	Availability map[string]SlotAvailability `json:"availability"`
}

// HasSpecialty reports whether tag is among the technician's specialties.
func (t Technician) HasSpecialty(tag string) bool {
	for _, s := range t.Specialties {
		if s == tag {
			return true
		}
	}
	return false
}

// AvailableAt reports whether the technician has a true flag for slot on date.
func (t Technician) AvailableAt(date string, slot TimeSlot) bool {
	day, ok := t.Availability[date]
	return ok && day.Has(slot)
}

// Clone returns a deep copy so an appointment snapshot never aliases the roster.
func (t Technician) Clone() Technician {
	out := t
	if t.Specialties != nil {
		out.Specialties = append([]string(nil), t.Specialties...)
	}
	if t.Availability != nil {
		out.Availability = make(map[string]SlotAvailability, len(t.Availability))
		for k, v := range t.Availability {
			out.Availability[k] = v
		}
	}
	return out
}

// Customer is the person or business the work is for.
type Customer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Notes   string `json:"notes,omitempty"`
}

// Appointment is one scheduled visit. Customer and Technician are copies taken
// at assignment time. EstimatedDuration is fixed at creation.
type Appointment struct {
	ID                 string      `json:"id"`
	CustomerID         string      `json:"customer_id"`
	Customer           Customer    `json:"customer"`
	TechnicianID       string      `json:"technician_id"`
	Technician         Technician  `json:"technician"`
	ServiceType        ServiceType `json:"service_type"`
	ServiceDescription string      `json:"service_description"`
	Priority           Priority    `json:"priority"`
	Date               string      `json:"date"`
	TimeSlot           TimeSlot    `json:"time_slot"`
	EstimatedDuration  int         `json:"estimated_duration"`
	Status             Status      `json:"status"`
	Notes              string      `json:"notes,omitempty"`
}

// CustomerNameContains is the case-insensitive substring match used to resolve
// spoken customer references.
func (a Appointment) CustomerNameContains(fragment string) bool {
	return strings.Contains(strings.ToLower(a.Customer.Name), strings.ToLower(fragment))
}

// NewAppointment assembles an appointment with snapshot copies of customer and
// technician, the derived duration and status scheduled.
func NewAppointment(id string, customer Customer, tech Technician, service ServiceType, description string, priority Priority, date string, slot TimeSlot) Appointment {
	return Appointment{
		ID:                 id,
		CustomerID:         customer.ID,
		Customer:           customer,
		TechnicianID:       tech.ID,
		Technician:         tech.Clone(),
		ServiceType:        service,
		ServiceDescription: description,
		Priority:           priority,
		Date:               date,
		TimeSlot:           slot,
		EstimatedDuration:  DurationFor(service),
		Status:             StatusScheduled,
	}
}

// CloneAppointments copies the slice header and records. Inner snapshots are
// shared; callers only replace scalar fields on the copies.
func CloneAppointments(in []Appointment) []Appointment {
	if in == nil {
		return nil
	}
	return append([]Appointment(nil), in...)
}
