package command

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/wolfman30/hvac-dispatch/internal/dispatch"
)

const maxShiftDays = 365

const (
	weekdayPattern = `(sunday|monday|tuesday|wednesday|thursday|friday|saturday)`
	shiftTail      = `(back|forward|ahead|later|earlier)\s+(?:by\s+)?(\d+|a|one|two|three|four|five|six|seven)?\s*days?\b`
)

var (
	createVerbRE      = regexp.MustCompile(`\b(create|add|schedule|new)\b`)
	appointmentNounRE = regexp.MustCompile(`\b(appointment|job|service|visit)s?\b`)
	createCustomerRE  = regexp.MustCompile(`\b(?:for|with|customer)\s+([a-z]+\s+[a-z]+)`)
	createDateRE      = regexp.MustCompile(`\b(?:on|for|next)\s+` + weekdayPattern)
	createDescRE      = regexp.MustCompile(`\b(?:for|to)\s+(.+?)\s+(?:on|at|with|tomorrow|next)\b`)
	createAddressRE   = regexp.MustCompile(`\bat\s+(.+?)(?:\s+(?:on|for|with|tomorrow|next)\b|,|$)`)

	namedRescheduleRE = regexp.MustCompile(`\b(?:move|reschedule|change|shift)\s+([a-z]+\s+[a-z]+)(?:\s+to\s+|'s\s+appointment|\s+appointment)`)
	toWeekdayRE       = regexp.MustCompile(`\bto\s+(?:next\s+|this\s+)?` + weekdayPattern)

	shiftRE         = regexp.MustCompile(`\b(?:move|push|shift)\s+(?:(?:all|other|the|my|our|every|upcoming|remaining|appointments?|jobs?|everything)\s+){0,4}` + shiftTail)
	trailingShiftRE = regexp.MustCompile(`\b` + shiftTail)

	cancelNounRE     = regexp.MustCompile(`\b(appointment|job|service|visit|meeting)s?\b`)
	cancelCustomerRE = regexp.MustCompile(`\bcancel\s+([a-z]+\s+[a-z]+)(?:'s)?\s+(?:appointment|job|service|visit|meeting)`)

	infoVerbRE       = regexp.MustCompile(`\b(show|tell me|what is)\b`)
	scheduleNounRE   = regexp.MustCompile(`\b(schedule|appointment|job)s?\b`)
	infoTechnicianRE = regexp.MustCompile(`\b([a-z]+)(?:'s)?\s+(?:schedule|appointments|jobs)\b`)
)

var numberWords = map[string]int{
	"a": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6, "seven": 7,
}

// fillerWords never start a name; they keep "for tomorrow at", "show me the
// schedule" or "show cancelled appointments" from being read as a customer or
// technician.
var fillerWords = map[string]bool{
	"a": true, "an": true, "the": true, "me": true, "my": true, "our": true, "all": true,
	"this": true, "that": true, "next": true, "today": true, "tomorrow": true, "upcoming": true,
	"is": true, "other": true, "every": true, "about": true, "show": true, "what": true,
	"his": true, "her": true, "their": true, "your": true, "full": true, "whole": true, "weekly": true, "daily": true,
	"appointment": true, "job": true, "service": true, "visit": true,
	"cancelled": true, "canceled": true, "completed": true, "scheduled": true, "pending": true,
	"confirmed": true, "future": true, "past": true, "remaining": true, "open": true,
	"sunday": true, "monday": true, "tuesday": true, "wednesday": true, "thursday": true, "friday": true, "saturday": true,
}

// Parser reads instructions against a clock used to resolve relative days.
type Parser struct {
	now func() time.Time
}

// NewParser builds a parser. A nil clock uses time.Now.
func NewParser(now func() time.Time) *Parser {
	if now == nil {
		now = time.Now
	}
	return &Parser{now: now}
}

type parseState struct {
	text         string
	now          time.Time
	appointments []dispatch.Appointment
	intent       *Intent
}

type matcher func(*parseState)

// matchers run in this order, every time. A later matcher that fires may
// overwrite the action and fields an earlier one set.
var matchers = []matcher{
	matchCreate,
	matchNamedReschedule,
	matchShift,
	matchCancel,
	matchInfo,
}

// Parse interprets text against the current appointments. Unrecognized text
// yields ActionUnknown; Parse never fails.
func (p *Parser) Parse(text string, appointments []dispatch.Appointment) Intent {
	intent := Intent{Action: ActionUnknown, Original: text}
	st := &parseState{
		text:         normalize(text),
		now:          p.now(),
		appointments: appointments,
		intent:       &intent,
	}
	for _, m := range matchers {
		m(st)
	}
	return intent
}

func normalize(text string) string {
	text = strings.ToLower(text)
	text = strings.NewReplacer("’", "'", "‘", "'").Replace(text)
	return strings.Join(strings.Fields(text), " ")
}

func matchCreate(st *parseState) {
	if !createVerbRE.MatchString(st.text) || !appointmentNounRE.MatchString(st.text) {
		return
	}
	in := st.intent
	in.Action = ActionCreate
	in.ServiceType = serviceFromKeywords(st.text)

	if name := firstName(createCustomerRE, st.text); name != "" {
		in.CustomerName = name
	}

	if m := createDateRE.FindStringSubmatch(st.text); m != nil {
		if day, ok := dispatch.ParseWeekday(m[1]); ok {
			in.ToDate = dispatch.NextWeekday(st.now, day)
		}
	} else if strings.Contains(st.text, "tomorrow") {
		in.ToDate = dispatch.FormatDate(st.now.AddDate(0, 0, 1))
	}

	if m := createDescRE.FindStringSubmatch(st.text); m != nil {
		desc := strings.TrimSpace(m[1])
		if desc != in.CustomerName {
			in.Description = desc
		}
	}

	if m := createAddressRE.FindStringSubmatch(st.text); m != nil {
		in.Address = strings.TrimSpace(m[1])
	}
}

// serviceFromKeywords checks keywords in a fixed order; the first hit wins.
func serviceFromKeywords(text string) dispatch.ServiceType {
	switch {
	case strings.Contains(text, "install"):
		return dispatch.ServiceInstallation
	case strings.Contains(text, "repair"):
		return dispatch.ServiceRepair
	case strings.Contains(text, "maintenance"):
		return dispatch.ServiceMaintenance
	case strings.Contains(text, "inspect"):
		return dispatch.ServiceInspection
	}
	return dispatch.ServiceMaintenance
}

func matchNamedReschedule(st *parseState) {
	in := st.intent
	if in.Action == ActionCreate {
		return
	}
	name := firstName(namedRescheduleRE, st.text)
	if name == "" {
		return
	}
	in.Action = ActionReschedule
	in.CustomerName = name

	if appt, ok := findByCustomer(st.appointments, name); ok {
		in.AppointmentID = appt.ID
		in.CustomerID = appt.CustomerID
		in.FromDate = appt.Date
	}

	if m := toWeekdayRE.FindStringSubmatch(st.text); m != nil {
		if day, ok := dispatch.ParseWeekday(m[1]); ok {
			in.ToDate = dispatch.NextWeekday(st.now, day)
		}
	}
}

func matchShift(st *parseState) {
	in := st.intent
	m := shiftRE.FindStringSubmatch(st.text)
	if m == nil && in.Action == ActionReschedule && in.CustomerName != "" {
		// "move sarah williams appointment back two days"
		m = trailingShiftRE.FindStringSubmatch(st.text)
	}
	if m == nil {
		return
	}
	days, ok := shiftCount(m[2])
	if !ok {
		return
	}
	in.Action = ActionReschedule

	switch m[1] {
	case "back", "earlier":
		in.ShiftDays = -days
	default:
		in.ShiftDays = days
	}

	// Without a named customer the shift applies to everything still ahead.
	if in.CustomerName == "" {
		today := dispatch.Today(st.now)
		in.AffectedAppointments = in.AffectedAppointments[:0]
		for _, a := range st.appointments {
			if a.Date >= today {
				in.AffectedAppointments = append(in.AffectedAppointments, a.ID)
			}
		}
	}
}

// shiftCount reads the day count of a shift. A missing count means one day;
// digits beyond maxShiftDays are refused rather than clamped.
func shiftCount(word string) (int, bool) {
	if word == "" {
		return 1, true
	}
	if n, ok := numberWords[word]; ok {
		return n, true
	}
	n, err := strconv.Atoi(word)
	if err != nil || n > maxShiftDays {
		return 0, false
	}
	return n, true
}

func matchCancel(st *parseState) {
	if !strings.Contains(st.text, "cancel") || !cancelNounRE.MatchString(st.text) {
		return
	}
	in := st.intent
	in.Action = ActionCancel

	name := firstName(cancelCustomerRE, st.text)
	if name == "" {
		return
	}
	in.CustomerName = name
	if appt, ok := findByCustomer(st.appointments, name); ok {
		in.AppointmentID = appt.ID
		in.CustomerID = appt.CustomerID
	}
}

func matchInfo(st *parseState) {
	if !infoVerbRE.MatchString(st.text) || !scheduleNounRE.MatchString(st.text) {
		return
	}
	in := st.intent
	in.Action = ActionInfo

	for _, m := range infoTechnicianRE.FindAllStringSubmatch(st.text, -1) {
		if !fillerWords[m[1]] {
			in.TechnicianName = m[1]
			return
		}
	}
}

// firstName returns the first captured two-word name whose leading word is not
// filler.
func firstName(re *regexp.Regexp, text string) string {
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(m[1])
		first, _, _ := strings.Cut(name, " ")
		if !fillerWords[first] {
			return name
		}
	}
	return ""
}

func findByCustomer(appointments []dispatch.Appointment, name string) (dispatch.Appointment, bool) {
	for _, a := range appointments {
		if a.CustomerNameContains(name) {
			return a, true
		}
	}
	return dispatch.Appointment{}, false
}
