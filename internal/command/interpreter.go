package command

import (
	"time"

	"github.com/wolfman30/hvac-dispatch/internal/dispatch"
	"github.com/wolfman30/hvac-dispatch/internal/recommend"
)

// Interpreter parses and executes instructions in one step.
type Interpreter struct {
	parser   *Parser
	executor *Executor
}

// NewInterpreter wires a parser and executor sharing the same clock.
func NewInterpreter(technicians []dispatch.Technician, r recommend.Rand, now func() time.Time, opts ...ExecutorOption) *Interpreter {
	return &Interpreter{
		parser:   NewParser(now),
		executor: NewExecutor(technicians, r, now, opts...),
	}
}

// Parse exposes the intent without applying it.
func (i *Interpreter) Parse(text string, appointments []dispatch.Appointment) Intent {
	return i.parser.Parse(text, appointments)
}

// Interpret parses text and applies the resulting intent to appointments.
func (i *Interpreter) Interpret(text string, appointments []dispatch.Appointment) (Intent, Result) {
	intent := i.parser.Parse(text, appointments)
	return intent, i.executor.Execute(intent, appointments)
}
