// Package catalog holds the static lookup tables offered to the booking
// front-end. The tables are fixed at process start and never mutated.
package catalog

import "slices"

var doctorsByHospital = map[string][]string{
	"hospital1": {"Dr. Smith", "Dr. Johnson", "Dr. Williams"},
	"hospital2": {"Dr. Brown", "Dr. Jones", "Dr. Garcia"},
	"hospital3": {"Dr. Miller", "Dr. Davis", "Dr. Rodriguez"},
}

var hospitals = []string{"hospital1", "hospital2", "hospital3"}

// Booking slots, the 12:00 to 01:00 lunch hour excluded.
var timeSlots = []string{
	"09:00 AM", "09:30 AM", "10:00 AM", "10:30 AM",
	"11:00 AM", "11:30 AM", "01:00 PM", "01:30 PM",
	"02:00 PM", "02:30 PM", "03:00 PM", "03:30 PM",
	"04:00 PM", "04:30 PM",
}

// Doctors returns the doctors practising at hospital, or an empty slice for
// an unknown hospital. The result is a copy.
func Doctors(hospital string) []string {
	doctors, ok := doctorsByHospital[hospital]
	if !ok {
		return []string{}
	}
	return slices.Clone(doctors)
}

func TimeSlots() []string {
	return slices.Clone(timeSlots)
}

func Hospitals() []string {
	return slices.Clone(hospitals)
}

func IsTimeSlot(label string) bool {
	return slices.Contains(timeSlots, label)
}
