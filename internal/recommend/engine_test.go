package recommend

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/hvac-dispatch/internal/dispatch"
)

// fixedRand always draws n (capped to the range) and f.
type fixedRand struct {
	n int
	f float64
}

func (r fixedRand) IntN(max int) int {
	if r.n >= max {
		return max - 1
	}
	return r.n
}

func (r fixedRand) Float64() float64 { return r.f }

var friday = time.Date(2025, 5, 16, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return friday }

func tech(id string, level dispatch.TechnicianLevel, specialties []string, date string, slots dispatch.SlotAvailability) dispatch.Technician {
	return dispatch.Technician{
		ID:           id,
		Name:         "Tech " + id,
		Level:        level,
		Specialties:  specialties,
		Availability: map[string]dispatch.SlotAvailability{date: slots},
	}
}

func TestRecommendTechniciansFiltersUnavailable(t *testing.T) {
	e := NewEngine(fixedRand{}, fixedClock)
	roster := []dispatch.Technician{
		tech("a", dispatch.LevelMaster, nil, "2025-05-16", dispatch.SlotAvailability{Morning: true}),
		tech("b", dispatch.LevelMaster, nil, "2025-05-16", dispatch.SlotAvailability{Afternoon: true}),
		tech("c", dispatch.LevelMaster, nil, "2025-05-17", dispatch.SlotAvailability{Morning: true}),
	}

	recs := e.RecommendTechnicians(TechnicianRequest{ServiceType: dispatch.ServiceRepair, Date: "2025-05-16", TimeSlot: dispatch.SlotMorning}, roster)

	require.Len(t, recs, 1)
	assert.Equal(t, "a", recs[0].TechnicianID)
}

func TestRecommendTechniciansNoCandidates(t *testing.T) {
	e := NewEngine(fixedRand{}, fixedClock)
	recs := e.RecommendTechnicians(TechnicianRequest{ServiceType: dispatch.ServiceRepair, Date: "2030-01-01", TimeSlot: dispatch.SlotEvening}, nil)

	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestRecommendTechniciansDeterministicScores(t *testing.T) {
	e := NewEngine(fixedRand{n: 0}, fixedClock)
	slots := dispatch.SlotAvailability{Morning: true}
	roster := []dispatch.Technician{
		tech("apprentice", dispatch.LevelApprentice, []string{"maintenance"}, "2025-05-16", slots),
		tech("journeyman", dispatch.LevelJourneyman, []string{"installations"}, "2025-05-16", slots),
		tech("master", dispatch.LevelMaster, []string{"heat pumps"}, "2025-05-16", slots),
		tech("diag", dispatch.LevelApprentice, []string{"diagnostics"}, "2025-05-16", slots),
	}
	req := func(s dispatch.ServiceType) TechnicianRequest {
		return TechnicianRequest{ServiceType: s, Date: "2025-05-16", TimeSlot: dispatch.SlotMorning}
	}
	scores := func(recs []Recommendation) map[string]int {
		out := map[string]int{}
		for _, r := range recs {
			out[r.TechnicianID] = r.Score
		}
		return out
	}

	assert.Equal(t, map[string]int{"apprentice": 15, "journeyman": 55, "master": 40, "diag": 15},
		scores(e.RecommendTechnicians(req(dispatch.ServiceInstallation), roster)))
	assert.Equal(t, map[string]int{"apprentice": 45, "journeyman": 25, "master": 40, "diag": 15},
		scores(e.RecommendTechnicians(req(dispatch.ServiceMaintenance), roster)))
	assert.Equal(t, map[string]int{"apprentice": 15, "journeyman": 25, "master": 70, "diag": 15},
		scores(e.RecommendTechnicians(req(dispatch.ServiceRepair), roster)), "master earns the repair bonus without the tag")
	assert.Equal(t, map[string]int{"apprentice": 15, "journeyman": 50, "master": 40, "diag": 40},
		scores(e.RecommendTechnicians(req(dispatch.ServiceInspection), roster)))
}

func TestRecommendTechniciansSortedAndBounded(t *testing.T) {
	levels := []dispatch.TechnicianLevel{dispatch.LevelApprentice, dispatch.LevelJourneyman, dispatch.LevelMaster}
	specialties := [][]string{nil, {"repairs"}, {"installations", "maintenance"}, {"diagnostics"}}

	var roster []dispatch.Technician
	for i := 0; i < 24; i++ {
		roster = append(roster, tech(string(rune('a'+i)), levels[i%3], specialties[i%4], "2025-05-16",
			dispatch.SlotAvailability{Morning: true, Afternoon: true, Evening: true}))
	}

	for seed := uint64(1); seed <= 20; seed++ {
		e := NewEngine(rand.New(rand.NewPCG(seed, seed)), fixedClock)
		for _, service := range dispatch.ServiceTypes {
			recs := e.RecommendTechnicians(TechnicianRequest{ServiceType: service, Date: "2025-05-16", TimeSlot: dispatch.SlotEvening}, roster)
			require.Len(t, recs, len(roster))
			for i, r := range recs {
				assert.GreaterOrEqual(t, r.Score, 0)
				assert.LessOrEqual(t, r.Score, 100)
				if i > 0 {
					assert.GreaterOrEqual(t, recs[i-1].Score, r.Score)
				}
			}
		}
	}
}

func TestMasterRepairSpecialistScoresAtLeastSeventy(t *testing.T) {
	roster := []dispatch.Technician{
		tech("m", dispatch.LevelMaster, []string{"repairs"}, "2025-05-16", dispatch.SlotAvailability{Morning: true}),
	}
	for seed := uint64(1); seed <= 50; seed++ {
		e := NewEngine(rand.New(rand.NewPCG(seed, 7)), fixedClock)
		recs := e.RecommendTechnicians(TechnicianRequest{ServiceType: dispatch.ServiceRepair, Date: "2025-05-16", TimeSlot: dispatch.SlotMorning}, roster)
		require.Len(t, recs, 1)
		assert.GreaterOrEqual(t, recs[0].Score, 70)
		assert.Less(t, recs[0].Score, 80)
	}
}

func TestReasonBands(t *testing.T) {
	john := dispatch.Technician{Name: "John Smith", Level: dispatch.LevelMaster}

	assert.Equal(t, "John Smith is highly recommended due to master level expertise and repairs specialty", reason(john, 85, "repairs"))
	assert.Equal(t, "John Smith is highly recommended due to master level expertise", reason(john, 81, ""))
	assert.Equal(t, "John Smith is qualified with relevant experience", reason(john, 61, "repairs"))
	assert.Equal(t, "John Smith is available but may not specialize in this service", reason(john, 60, ""))
}

func TestNewRandSeeded(t *testing.T) {
	a, b := NewRand(99), NewRand(99)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.IntN(1000), b.IntN(1000))
	}
	n := NewRand(0).IntN(10)
	assert.True(t, n >= 0 && n < 10)
}
