package dispatch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurationFor(t *testing.T) {
	assert.Equal(t, 180, DurationFor(ServiceInstallation))
	assert.Equal(t, 120, DurationFor(ServiceRepair))
	assert.Equal(t, 60, DurationFor(ServiceMaintenance))
	assert.Equal(t, 45, DurationFor(ServiceInspection))
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, ServiceRepair.Valid())
	assert.False(t, ServiceType("plumbing").Valid())
	assert.True(t, PriorityEmergency.Valid())
	assert.False(t, Priority("urgent").Valid())
	assert.True(t, SlotEvening.Valid())
	assert.False(t, TimeSlot("night").Valid())
	assert.True(t, StatusInProgress.Valid())
	assert.False(t, Status("deleted").Valid())
	assert.True(t, LevelMaster.Rank() > LevelJourneyman.Rank())
	assert.True(t, LevelJourneyman.Rank() > LevelApprentice.Rank())
}

func TestAvailableAtRequiresDateKey(t *testing.T) {
	tech := Technician{
		Availability: map[string]SlotAvailability{
			"2025-05-16": {Morning: true},
		},
	}

	assert.True(t, tech.AvailableAt("2025-05-16", SlotMorning))
	assert.False(t, tech.AvailableAt("2025-05-16", SlotEvening))
	assert.False(t, tech.AvailableAt("2025-05-17", SlotMorning), "missing date means no data, not available")
}

func TestNewAppointmentSnapshotsTechnician(t *testing.T) {
	tech := Technician{ID: "tech-1", Name: "John Smith", Specialties: []string{"repairs"}}
	cust := Customer{ID: "cust-1", Name: "Oakridge Apartments"}

	appt := NewAppointment("appt-1", cust, tech, ServiceRepair, "leak", PriorityHigh, "2025-05-16", SlotMorning)
	tech.Name = "Johnny Smith"
	tech.Specialties[0] = "installations"

	assert.Equal(t, "John Smith", appt.Technician.Name)
	assert.Equal(t, []string{"repairs"}, appt.Technician.Specialties)
	assert.Equal(t, 120, appt.EstimatedDuration)
	assert.Equal(t, StatusScheduled, appt.Status)
	assert.Equal(t, "cust-1", appt.CustomerID)
}

func TestCustomerNameContains(t *testing.T) {
	appt := Appointment{Customer: Customer{Name: "John Smith Co"}}
	assert.True(t, appt.CustomerNameContains("john smith"))
	assert.False(t, appt.CustomerNameContains("jane"))
}

func TestSeedDataIsConsistent(t *testing.T) {
	now := time.Date(2025, 5, 16, 9, 0, 0, 0, time.UTC)
	techs, customers, appts := SeedData(now)

	require.Len(t, techs, 3)
	require.Len(t, customers, 5)
	require.Len(t, appts, 8)
	assert.Equal(t, "2025-05-16", appts[0].Date)
	for _, a := range appts {
		assert.NotEmpty(t, a.Customer.Name)
		assert.NotEmpty(t, a.Technician.Name)
		assert.Equal(t, DurationFor(a.ServiceType), a.EstimatedDuration)
	}
	// Sundays carry an explicit all-false entry.
	assert.False(t, techs[0].AvailableAt("2025-05-18", SlotMorning))
	assert.True(t, techs[0].AvailableAt("2025-05-16", SlotMorning))
}
