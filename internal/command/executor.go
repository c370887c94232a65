package command

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/wolfman30/hvac-dispatch/internal/dispatch"
	"github.com/wolfman30/hvac-dispatch/internal/recommend"
)

const (
	placeholderCustomer = "New Customer"
	placeholderAddress  = "Address to be confirmed"
	placeholderPhone    = "555-000-0000"
	createdNote         = "Created via voice command"
)

// Executor applies intents to appointment snapshots. It never mutates the
// slice it is given.
type Executor struct {
	technicians []dispatch.Technician
	rand        recommend.Rand
	now         func() time.Time
	newID       func() string
}

// ExecutorOption customizes an Executor.
type ExecutorOption func(*Executor)

// WithIDGenerator replaces the uuid-based id source.
func WithIDGenerator(fn func() string) ExecutorOption {
	return func(x *Executor) {
		if fn != nil {
			x.newID = fn
		}
	}
}

// NewExecutor builds an executor over the technician roster used for new
// appointments.
func NewExecutor(technicians []dispatch.Technician, r recommend.Rand, now func() time.Time, opts ...ExecutorOption) *Executor {
	if r == nil {
		r = recommend.NewRand(0)
	}
	if now == nil {
		now = time.Now
	}
	x := &Executor{
		technicians: technicians,
		rand:        r,
		now:         now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Execute applies in to appointments and returns the resulting snapshot.
func (x *Executor) Execute(in Intent, appointments []dispatch.Appointment) Result {
	pool := dispatch.CloneAppointments(appointments)
	if pool == nil {
		pool = []dispatch.Appointment{}
	}

	switch in.Action {
	case ActionCreate:
		return x.create(in, pool)
	case ActionReschedule:
		return x.reschedule(in, pool)
	case ActionCancel:
		return x.cancel(in, pool)
	case ActionInfo:
		return x.info(in, pool)
	}
	return Result{Appointments: pool, Message: FallbackMessage}
}

func (x *Executor) create(in Intent, pool []dispatch.Appointment) Result {
	service := in.ServiceType
	if !service.Valid() {
		service = dispatch.ServiceMaintenance
	}

	candidates := x.candidates(service)
	if len(candidates) == 0 {
		return Result{
			Appointments: pool,
			Message:      fmt.Sprintf("No technicians are available to take a new %s appointment.", service),
		}
	}
	tech := candidates[x.rand.IntN(len(candidates))]

	date := in.ToDate
	if !dispatch.ValidDate(date) {
		date = dispatch.FormatDate(x.now().AddDate(0, 0, 1))
	}

	name := placeholderCustomer
	if in.CustomerName != "" {
		name = titleCase(in.CustomerName)
	}
	address := placeholderAddress
	if in.Address != "" {
		address = titleCase(in.Address)
	}
	description := in.Description
	if description == "" {
		description = fmt.Sprintf("%s requested by voice command", titleCase(string(service)))
	}

	customer := dispatch.Customer{
		ID:      x.newID(),
		Name:    name,
		Address: address,
		Phone:   placeholderPhone,
		Email:   strings.Join(strings.Fields(strings.ToLower(name)), ".") + "@example.com",
	}
	appt := dispatch.NewAppointment(x.newID(), customer, tech, service, description, dispatch.PriorityNormal, date, dispatch.SlotMorning)
	appt.Notes = createdNote

	msg := fmt.Sprintf("Created a new %s appointment", service)
	if in.CustomerName != "" {
		msg += " for " + name
	}
	msg += fmt.Sprintf(" on %s with %s.", dispatch.ShortDate(date), tech.Name)

	return Result{Appointments: append(pool, appt), Message: msg}
}

// candidates are the technicians suited to service. Maintenance also accepts
// anyone past apprentice. With no suited technician the whole roster is used.
func (x *Executor) candidates(service dispatch.ServiceType) []dispatch.Technician {
	tag := service.SpecialtyTag()
	var out []dispatch.Technician
	for _, t := range x.technicians {
		if t.HasSpecialty(tag) || (service == dispatch.ServiceMaintenance && t.Level != dispatch.LevelApprentice) {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return x.technicians
	}
	return out
}

func (x *Executor) reschedule(in Intent, pool []dispatch.Appointment) Result {
	switch {
	case in.AppointmentID != "" && in.ToDate != "":
		i := indexOf(pool, in.AppointmentID)
		if i < 0 {
			return Result{Appointments: pool, Message: notFound(in.CustomerName)}
		}
		from := pool[i].Date
		pool[i].Date = in.ToDate
		return Result{
			Appointments: pool,
			Message: fmt.Sprintf("Rescheduled %s's appointment from %s to %s.",
				pool[i].Customer.Name, dispatch.ShortDate(from), dispatch.ShortDate(in.ToDate)),
		}

	case in.ShiftDays != 0 && in.CustomerName != "":
		moved := 0
		for i := range pool {
			if !pool[i].CustomerNameContains(in.CustomerName) {
				continue
			}
			if shifted, err := dispatch.AddDays(pool[i].Date, in.ShiftDays); err == nil {
				pool[i].Date = shifted
				moved++
			}
		}
		if moved == 0 {
			return Result{Appointments: pool, Message: notFound(in.CustomerName)}
		}
		return Result{
			Appointments: pool,
			Message: fmt.Sprintf("Moved %s's appointment %s by %s.",
				titleCase(in.CustomerName), direction(in.ShiftDays), dayCount(in.ShiftDays)),
		}

	case in.ShiftDays != 0:
		if len(in.AffectedAppointments) == 0 {
			return Result{Appointments: pool, Message: "There are no upcoming appointments to move."}
		}
		affected := make(map[string]bool, len(in.AffectedAppointments))
		for _, id := range in.AffectedAppointments {
			affected[id] = true
		}
		for i := range pool {
			if !affected[pool[i].ID] {
				continue
			}
			if shifted, err := dispatch.AddDays(pool[i].Date, in.ShiftDays); err == nil {
				pool[i].Date = shifted
			}
		}
		return Result{
			Appointments: pool,
			Message: fmt.Sprintf("Shifted %d appointments %s by %s.",
				len(in.AffectedAppointments), direction(in.ShiftDays), dayCount(in.ShiftDays)),
		}

	case in.CustomerName != "" && in.AppointmentID == "":
		return Result{Appointments: pool, Message: notFound(in.CustomerName)}
	}
	return Result{Appointments: pool, Message: FallbackMessage}
}

func (x *Executor) cancel(in Intent, pool []dispatch.Appointment) Result {
	if in.AppointmentID != "" {
		if i := indexOf(pool, in.AppointmentID); i >= 0 {
			pool[i].Status = dispatch.StatusCancelled
			return Result{
				Appointments: pool,
				Message:      fmt.Sprintf("Cancelled %s's appointment on %s.", pool[i].Customer.Name, dispatch.ShortDate(pool[i].Date)),
			}
		}
	}
	if in.CustomerName != "" {
		return Result{Appointments: pool, Message: notFound(in.CustomerName)}
	}
	return Result{Appointments: pool, Message: FallbackMessage}
}

func (x *Executor) info(in Intent, pool []dispatch.Appointment) Result {
	today := dispatch.Today(x.now())

	if in.TechnicianName != "" {
		var lines []string
		for _, a := range pool {
			if a.Date >= today && strings.Contains(strings.ToLower(a.Technician.Name), strings.ToLower(in.TechnicianName)) {
				lines = append(lines, fmt.Sprintf("%s: %s (%s)", dispatch.ShortDate(a.Date), a.Customer.Name, a.ServiceType))
			}
		}
		if len(lines) == 0 {
			return Result{Appointments: pool, Message: fmt.Sprintf("I couldn't find any appointments for %s.", titleCase(in.TechnicianName))}
		}
		return Result{
			Appointments: pool,
			Message:      fmt.Sprintf("%s has these upcoming appointments: %s.", titleCase(in.TechnicianName), strings.Join(lines, ", ")),
		}
	}

	upcoming := 0
	for _, a := range pool {
		if a.Date >= today {
			upcoming++
		}
	}
	return Result{Appointments: pool, Message: fmt.Sprintf("You have %d upcoming appointments scheduled.", upcoming)}
}

func indexOf(pool []dispatch.Appointment, id string) int {
	for i := range pool {
		if pool[i].ID == id {
			return i
		}
	}
	return -1
}

func notFound(name string) string {
	if name == "" {
		return "I couldn't find that appointment."
	}
	return fmt.Sprintf("I couldn't find an appointment for %s.", titleCase(name))
}

func direction(days int) string {
	if days < 0 {
		return "back"
	}
	return "forward"
}

func dayCount(days int) string {
	if days < 0 {
		days = -days
	}
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
