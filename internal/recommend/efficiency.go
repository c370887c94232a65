package recommend

import (
	"math"
	"time"

	"github.com/wolfman30/hvac-dispatch/internal/dispatch"
)

const (
	baselineEfficiency      = 75
	imbalanceStdDevLimit    = 2.0
	preferredMaintenanceDay = time.Tuesday
)

const (
	suggestionImbalanced    = "Consider balancing workload more evenly across days"
	suggestionBalanced      = "Appointment distribution is well balanced"
	suggestionMismatched    = "Some technicians are assigned services outside their specialties"
	suggestionAligned       = "Technician specialties are well aligned with assigned services"
	suggestionGeographic    = "Group appointments in the same area on the same day to cut drive time between jobs"
	suggestionNoAppointment = "No appointments scheduled yet. Add appointments to get efficiency insights"
)

var generalInsights = []string{
	"Consider batch scheduling maintenance appointments by neighborhood",
	"Emergency slots could be reserved each day for unexpected calls",
	"Morning appointments for commercial clients appear most efficient",
	"Journeyman technicians might benefit from more varied assignments",
}

// Efficiency is the aggregate grade of a schedule snapshot.
type Efficiency struct {
	Score       int      `json:"score"`
	Suggestions []string `json:"suggestions"`
}

// AnalyzeEfficiency grades how evenly work is spread across days and how well
// assignments match technician specialties. An empty snapshot returns the
// baseline score and a single prompt, with no random insight.
func (e *Engine) AnalyzeEfficiency(appointments []dispatch.Appointment) Efficiency {
	if len(appointments) == 0 {
		return Efficiency{Score: baselineEfficiency, Suggestions: []string{suggestionNoAppointment}}
	}

	score := baselineEfficiency
	var suggestions []string

	if loadStdDev(appointments) > imbalanceStdDevLimit {
		score -= 10
		suggestions = append(suggestions, suggestionImbalanced)
	} else {
		score += 5
		suggestions = append(suggestions, suggestionBalanced)
	}

	// Repair and inspection assignments are not checked.
	mismatches := 0
	for _, a := range appointments {
		switch a.ServiceType {
		case dispatch.ServiceInstallation:
			if !a.Technician.HasSpecialty(dispatch.SpecialtyInstallations) {
				mismatches++
			}
		case dispatch.ServiceMaintenance:
			if !a.Technician.HasSpecialty(dispatch.SpecialtyMaintenance) {
				mismatches++
			}
		}
	}
	if mismatches > 0 {
		score -= 5 * mismatches
		suggestions = append(suggestions, suggestionMismatched)
	} else {
		score += 10
		suggestions = append(suggestions, suggestionAligned)
	}

	suggestions = append(suggestions, suggestionGeographic)

	if e.rand.Float64() > 0.5 {
		suggestions = append(suggestions, generalInsights[e.rand.IntN(len(generalInsights))])
	}

	return Efficiency{Score: clamp(score), Suggestions: suggestions}
}

// loadStdDev is the population standard deviation of appointments per date.
func loadStdDev(appointments []dispatch.Appointment) float64 {
	perDate := make(map[string]int)
	for _, a := range appointments {
		perDate[a.Date]++
	}
	if len(perDate) == 0 {
		return 0
	}

	mean := float64(len(appointments)) / float64(len(perDate))
	var sumSq float64
	for _, n := range perDate {
		d := float64(n) - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(perDate)))
}
