package recommend

import (
	"sort"

	"github.com/wolfman30/hvac-dispatch/internal/dispatch"
)

const suggestionHorizonDays = 7

// DateScore grades one candidate day.
type DateScore struct {
	Date    string `json:"date"`
	Weekday string `json:"weekday"`
	Score   int    `json:"score"`
}

// SuggestDates scores today and the following six days for a new appointment,
// best first. Lighter days, weekdays, same-day emergencies and Tuesday
// maintenance score higher.
func (e *Engine) SuggestDates(appointments []dispatch.Appointment, service dispatch.ServiceType, priority dispatch.Priority) []DateScore {
	load := make(map[string]int, len(appointments))
	for _, a := range appointments {
		load[a.Date]++
	}

	now := e.now()
	out := make([]DateScore, 0, suggestionHorizonDays)
	for i := 0; i < suggestionHorizonDays; i++ {
		day := now.AddDate(0, 0, i)
		date := dispatch.FormatDate(day)

		score := maxScore - 10*load[date]
		if dispatch.IsWeekday(day) {
			score += 5
		}
		if priority == dispatch.PriorityEmergency && i == 0 {
			score += 30
		}
		if service == dispatch.ServiceMaintenance && day.Weekday() == preferredMaintenanceDay {
			score += 15
		}
		score += e.rand.IntN(perturbationRange)

		out = append(out, DateScore{Date: date, Weekday: day.Weekday().String(), Score: clamp(score)})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
