package dispatch

import "time"

// SeedData returns the demo roster laid out around now: three technicians with
// two weeks of availability, five customers and eight appointments over the
// coming week.
func SeedData(now time.Time) ([]Technician, []Customer, []Appointment) {
	day := func(offset int) string { return FormatDate(now.AddDate(0, 0, offset)) }

	availability := func(pattern func(offset int) SlotAvailability) map[string]SlotAvailability {
		out := make(map[string]SlotAvailability, 14)
		for i := 0; i < 14; i++ {
			d := now.AddDate(0, 0, i)
			if d.Weekday() == time.Sunday {
				out[FormatDate(d)] = SlotAvailability{}
				continue
			}
			out[FormatDate(d)] = pattern(i)
		}
		return out
	}

	technicians := []Technician{
		{
			ID:          "tech-1",
			Name:        "John Smith",
			Level:       LevelMaster,
			Specialties: []string{"commercial HVAC", "refrigeration", "heat pumps"},
			Availability: availability(func(i int) SlotAvailability {
				return SlotAvailability{Morning: true, Afternoon: i%6 != 5}
			}),
		},
		{
			ID:          "tech-2",
			Name:        "Maria Garcia",
			Level:       LevelJourneyman,
			Specialties: []string{"residential HVAC", "ductwork", SpecialtyInstallations},
			Availability: availability(func(i int) SlotAvailability {
				return SlotAvailability{Morning: i%3 == 1, Afternoon: true, Evening: true}
			}),
		},
		{
			ID:          "tech-3",
			Name:        "David Johnson",
			Level:       LevelApprentice,
			Specialties: []string{SpecialtyMaintenance, "filter changes", "basic repairs"},
			Availability: availability(func(i int) SlotAvailability {
				return SlotAvailability{Morning: true, Afternoon: i%4 != 1}
			}),
		},
	}

	customers := []Customer{
		{ID: "cust-1", Name: "Oakridge Apartments", Address: "1234 Maple Street, Springfield", Phone: "555-123-4567", Email: "manager@oakridgeapts.com", Notes: "Large apartment complex with 50 units. Multiple systems."},
		{ID: "cust-2", Name: "Sarah Williams", Address: "456 Oak Avenue, Springfield", Phone: "555-876-5432", Email: "swilliams@email.com", Notes: "Prefers afternoon appointments. Has a dog."},
		{ID: "cust-3", Name: "Riverfront Office Park", Address: "789 River Road, Springfield", Phone: "555-222-3333", Email: "facilities@riverfrontoffice.com", Notes: "Commercial property with rooftop units."},
		{ID: "cust-4", Name: "Michael Brown", Address: "321 Pine Lane, Springfield", Phone: "555-444-5555", Email: "mbrown@email.com"},
		{ID: "cust-5", Name: "Greenview Mall", Address: "100 Commerce Blvd, Springfield", Phone: "555-999-8888", Email: "maintenance@greenviewmall.com", Notes: "Multiple units on roof. Access through service corridor."},
	}

	techByID := make(map[string]Technician, len(technicians))
	for _, t := range technicians {
		techByID[t.ID] = t
	}
	custByID := make(map[string]Customer, len(customers))
	for _, c := range customers {
		custByID[c.ID] = c
	}

	appt := func(id, custID, techID string, service ServiceType, desc string, priority Priority, offset int, slot TimeSlot) Appointment {
		return NewAppointment(id, custByID[custID], techByID[techID], service, desc, priority, day(offset), slot)
	}

	appointments := []Appointment{
		appt("appt-1", "cust-1", "tech-1", ServiceMaintenance, "Annual system check and filter replacement", PriorityNormal, 0, SlotMorning),
		appt("appt-2", "cust-2", "tech-2", ServiceRepair, "AC not cooling properly", PriorityHigh, 0, SlotAfternoon),
		appt("appt-3", "cust-3", "tech-1", ServiceInspection, "Pre-summer inspection of cooling towers", PriorityNormal, 1, SlotMorning),
		appt("appt-4", "cust-4", "tech-3", ServiceMaintenance, "Air filter replacement", PriorityLow, 3, SlotMorning),
		appt("appt-5", "cust-5", "tech-1", ServiceRepair, "Refrigerant leak", PriorityHigh, 3, SlotAfternoon),
		appt("appt-6", "cust-2", "tech-2", ServiceMaintenance, "Annual maintenance", PriorityNormal, 4, SlotAfternoon),
		appt("appt-7", "cust-3", "tech-1", ServiceInstallation, "New system installation", PriorityNormal, 5, SlotMorning),
		appt("appt-8", "cust-1", "tech-3", ServiceMaintenance, "Quarterly maintenance", PriorityLow, 6, SlotMorning),
	}

	return technicians, customers, appointments
}
