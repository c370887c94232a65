// Package recommend scores technicians and calendar days for a requested
// service and grades the efficiency of a schedule snapshot. Everything here is
// a pure function of its inputs plus the injected random source and clock.
package recommend

import (
	"fmt"
	"sort"
	"time"

	"github.com/wolfman30/hvac-dispatch/internal/dispatch"
)

const (
	perturbationRange = 10
	maxScore          = 100
)

// Engine holds the random source and clock shared by the scoring operations.
type Engine struct {
	rand Rand
	now  func() time.Time
}

// NewEngine builds an engine. A nil rand uses the global generator and a nil
// clock uses time.Now.
func NewEngine(r Rand, now func() time.Time) *Engine {
	if r == nil {
		r = NewRand(0)
	}
	if now == nil {
		now = time.Now
	}
	return &Engine{rand: r, now: now}
}

// Recommendation is a ranked technician suggestion.
type Recommendation struct {
	TechnicianID   string `json:"technician_id"`
	TechnicianName string `json:"technician_name"`
	Score          int    `json:"score"`
	Reason         string `json:"reason"`
}

// TechnicianRequest is what the caller wants scheduled.
type TechnicianRequest struct {
	ServiceType dispatch.ServiceType
	Date        string
	TimeSlot    dispatch.TimeSlot
}

// RecommendTechnicians ranks the technicians free on req.Date during
// req.TimeSlot, best first. No eligible technician yields an empty slice.
func (e *Engine) RecommendTechnicians(req TechnicianRequest, technicians []dispatch.Technician) []Recommendation {
	recs := make([]Recommendation, 0, len(technicians))
	for _, tech := range technicians {
		if !tech.AvailableAt(req.Date, req.TimeSlot) {
			continue
		}
		score, matched := baseScore(tech, req.ServiceType)
		score = clamp(score + e.rand.IntN(perturbationRange))
		recs = append(recs, Recommendation{
			TechnicianID:   tech.ID,
			TechnicianName: tech.Name,
			Score:          score,
			Reason:         reason(tech, score, matched),
		})
	}

	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Score > recs[j].Score })
	return recs
}

// baseScore is the deterministic part of a technician score. matched is the
// specialty tag that earned the bonus, empty when the bonus came from level
// alone or was not granted.
func baseScore(tech dispatch.Technician, service dispatch.ServiceType) (score int, matched string) {
	switch tech.Level {
	case dispatch.LevelMaster:
		score = 40
	case dispatch.LevelJourneyman:
		score = 25
	default:
		score = 15
	}

	tag := service.SpecialtyTag()
	hasTag := tag != "" && tech.HasSpecialty(tag)
	if hasTag {
		matched = tag
	}

	switch service {
	case dispatch.ServiceInstallation, dispatch.ServiceMaintenance:
		if hasTag {
			score += 30
		}
	case dispatch.ServiceRepair:
		if hasTag || tech.Level == dispatch.LevelMaster {
			score += 30
		}
	case dispatch.ServiceInspection:
		if hasTag || tech.Level == dispatch.LevelJourneyman {
			score += 25
		}
	}
	return score, matched
}

func reason(tech dispatch.Technician, score int, matched string) string {
	switch {
	case score > 80:
		msg := fmt.Sprintf("%s is highly recommended due to %s level expertise", tech.Name, tech.Level)
		if matched != "" {
			msg += fmt.Sprintf(" and %s specialty", matched)
		}
		return msg
	case score > 60:
		return fmt.Sprintf("%s is qualified with relevant experience", tech.Name)
	default:
		return fmt.Sprintf("%s is available but may not specialize in this service", tech.Name)
	}
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > maxScore {
		return maxScore
	}
	return score
}
