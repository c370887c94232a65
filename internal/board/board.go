// Package board holds the live scheduling state. Every mutation is serialized
// behind one lock and applied by adopting a new snapshot, so the recommend and
// command packages only ever see immutable inputs.
package board

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/wolfman30/hvac-dispatch/internal/command"
	"github.com/wolfman30/hvac-dispatch/internal/dispatch"
	"github.com/wolfman30/hvac-dispatch/internal/observability/metrics"
	"github.com/wolfman30/hvac-dispatch/internal/recommend"
	"github.com/wolfman30/hvac-dispatch/pkg/logging"
)

// Options carries the board's collaborators. Zero values pick defaults.
type Options struct {
	Rand    recommend.Rand
	Now     func() time.Time
	NewID   func() string
	Logger  *logging.Logger
	Metrics *metrics.DispatchMetrics
}

// Board owns technicians, customers and appointments.
type Board struct {
	mu           sync.RWMutex
	technicians  []dispatch.Technician
	customers    []dispatch.Customer
	appointments []dispatch.Appointment

	engine      *recommend.Engine
	interpreter *command.Interpreter
	validate    *validator.Validate
	now         func() time.Time
	newID       func() string
	logger      *logging.Logger
	metrics     *metrics.DispatchMetrics
}

// New builds a board over the given collections. The slices are copied.
func New(technicians []dispatch.Technician, customers []dispatch.Customer, appointments []dispatch.Appointment, opts Options) *Board {
	if opts.Rand == nil {
		opts.Rand = recommend.NewRand(0)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}

	roster := make([]dispatch.Technician, len(technicians))
	for i, t := range technicians {
		roster[i] = t.Clone()
	}
	appts := dispatch.CloneAppointments(appointments)
	if appts == nil {
		appts = []dispatch.Appointment{}
	}

	return &Board{
		technicians:  roster,
		customers:    append([]dispatch.Customer(nil), customers...),
		appointments: appts,
		engine:       recommend.NewEngine(opts.Rand, opts.Now),
		interpreter:  command.NewInterpreter(roster, opts.Rand, opts.Now, command.WithIDGenerator(opts.NewID)),
		validate:     newValidator(),
		now:          opts.Now,
		newID:        opts.NewID,
		logger:       opts.Logger.Component("board"),
		metrics:      opts.Metrics,
	}
}

// NewSeeded builds a board over the demo dataset laid out around opts.Now.
func NewSeeded(opts Options) *Board {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	technicians, customers, appointments := dispatch.SeedData(now())
	return New(technicians, customers, appointments, opts)
}

// Technicians returns independent copies of the roster.
func (b *Board) Technicians() []dispatch.Technician {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]dispatch.Technician, len(b.technicians))
	for i, t := range b.technicians {
		out[i] = t.Clone()
	}
	return out
}

func (b *Board) Customers() []dispatch.Customer {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]dispatch.Customer{}, b.customers...)
}

// Appointments returns the current snapshot, optionally restricted to one date.
func (b *Board) Appointments(date string) []dispatch.Appointment {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]dispatch.Appointment, 0, len(b.appointments))
	for _, a := range b.appointments {
		if date == "" || a.Date == date {
			out = append(out, a)
		}
	}
	return out
}

func (b *Board) Appointment(id string) (dispatch.Appointment, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if i := b.indexOf(id); i >= 0 {
		return b.appointments[i], nil
	}
	return dispatch.Appointment{}, ErrAppointmentNotFound
}

// Schedule adds an appointment from a form request. Customer and technician
// are copied into the appointment as they are right now.
func (b *Board) Schedule(req ScheduleRequest) (dispatch.Appointment, error) {
	if err := b.check(req); err != nil {
		return dispatch.Appointment{}, err
	}
	if req.Priority == "" {
		req.Priority = dispatch.PriorityNormal
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	customer, ok := b.customer(req.CustomerID)
	if !ok {
		return dispatch.Appointment{}, fmt.Errorf("%w: %s", ErrCustomerNotFound, req.CustomerID)
	}
	tech, ok := b.technician(req.TechnicianID)
	if !ok {
		return dispatch.Appointment{}, fmt.Errorf("%w: %s", ErrTechnicianNotFound, req.TechnicianID)
	}

	appt := dispatch.NewAppointment(b.newID(), customer, tech, req.ServiceType, req.ServiceDescription, req.Priority, req.Date, req.TimeSlot)
	appt.Notes = req.Notes

	next := append(dispatch.CloneAppointments(b.appointments), appt)
	b.appointments = next

	b.logger.Info("appointment scheduled", "appointment_id", appt.ID, "customer_id", customer.ID, "technician_id", tech.ID, "date", appt.Date)
	return appt, nil
}

// UpdateStatus moves an appointment to a new lifecycle state.
func (b *Board) UpdateStatus(id string, status dispatch.Status) (dispatch.Appointment, error) {
	if !status.Valid() {
		return dispatch.Appointment{}, fmt.Errorf("%w: unknown status %q", ErrInvalidRequest, status)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(id)
	if i < 0 {
		return dispatch.Appointment{}, ErrAppointmentNotFound
	}
	next := dispatch.CloneAppointments(b.appointments)
	next[i].Status = status
	b.appointments = next

	b.logger.Info("appointment status updated", "appointment_id", id, "status", status)
	return next[i], nil
}

// Delete removes an appointment. It is the only path that shrinks the
// collection; cancelling keeps the record.
func (b *Board) Delete(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(id)
	if i < 0 {
		return ErrAppointmentNotFound
	}
	next := make([]dispatch.Appointment, 0, len(b.appointments)-1)
	next = append(next, b.appointments[:i]...)
	next = append(next, b.appointments[i+1:]...)
	b.appointments = next

	b.logger.Info("appointment deleted", "appointment_id", id)
	return nil
}

// ParseCommand reads an instruction without applying it.
func (b *Board) ParseCommand(text string) (command.Intent, error) {
	if strings.TrimSpace(text) == "" {
		return command.Intent{}, fmt.Errorf("%w: text is required", ErrInvalidRequest)
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.interpreter.Parse(text, b.appointments), nil
}

// Interpret parses and executes an instruction against the current snapshot
// and adopts the result. Unrecognized instructions leave the board unchanged.
func (b *Board) Interpret(text string) (command.Intent, command.Result, error) {
	if strings.TrimSpace(text) == "" {
		return command.Intent{}, command.Result{}, fmt.Errorf("%w: text is required", ErrInvalidRequest)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	intent, res := b.interpreter.Interpret(text, b.appointments)
	b.appointments = res.Appointments

	b.metrics.ObserveCommand(string(intent.Action))
	b.logger.Info("command interpreted", "action", intent.Action, "message", res.Message)
	return intent, res, nil
}

// RecommendTechnicians ranks technicians for the query, best first.
func (b *Board) RecommendTechnicians(q TechnicianQuery) ([]recommend.Recommendation, error) {
	if err := b.check(q); err != nil {
		return nil, err
	}

	b.mu.RLock()
	recs := b.engine.RecommendTechnicians(recommend.TechnicianRequest{
		ServiceType: q.ServiceType,
		Date:        q.Date,
		TimeSlot:    q.TimeSlot,
	}, b.technicians)
	b.mu.RUnlock()

	b.metrics.ObserveRecommendation("technicians")
	if q.Limit > 0 && len(recs) > q.Limit {
		recs = recs[:q.Limit]
	}
	return recs, nil
}

// SuggestDates scores the next seven days for the query, best first.
func (b *Board) SuggestDates(q DateQuery) ([]recommend.DateScore, error) {
	if err := b.check(q); err != nil {
		return nil, err
	}
	if q.Priority == "" {
		q.Priority = dispatch.PriorityNormal
	}

	b.mu.RLock()
	scores := b.engine.SuggestDates(b.appointments, q.ServiceType, q.Priority)
	b.mu.RUnlock()

	b.metrics.ObserveRecommendation("dates")
	if q.Limit > 0 && len(scores) > q.Limit {
		scores = scores[:q.Limit]
	}
	return scores, nil
}

// Analyze grades the current schedule.
func (b *Board) Analyze() recommend.Efficiency {
	b.mu.RLock()
	eff := b.engine.AnalyzeEfficiency(b.appointments)
	b.mu.RUnlock()

	b.metrics.ObserveRecommendation("efficiency")
	return eff
}

func (b *Board) indexOf(id string) int {
	for i := range b.appointments {
		if b.appointments[i].ID == id {
			return i
		}
	}
	return -1
}

func (b *Board) customer(id string) (dispatch.Customer, bool) {
	for _, c := range b.customers {
		if c.ID == id {
			return c, true
		}
	}
	return dispatch.Customer{}, false
}

func (b *Board) technician(id string) (dispatch.Technician, bool) {
	for _, t := range b.technicians {
		if t.ID == id {
			return t, true
		}
	}
	return dispatch.Technician{}, false
}
