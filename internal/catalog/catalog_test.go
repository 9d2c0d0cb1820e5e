package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeSlots(t *testing.T) {
	slots := TimeSlots()
	require.Len(t, slots, 14)
	assert.Equal(t, "09:00 AM", slots[0])
	assert.Equal(t, "04:30 PM", slots[len(slots)-1])
	assert.NotContains(t, slots, "12:00 PM")
	assert.NotContains(t, slots, "12:30 PM")

	slots[0] = "mutated"
	assert.Equal(t, "09:00 AM", TimeSlots()[0])
}

func TestDoctors(t *testing.T) {
	assert.Equal(t, []string{"Dr. Brown", "Dr. Jones", "Dr. Garcia"}, Doctors("hospital2"))

	unknown := Doctors("hospital9")
	assert.NotNil(t, unknown)
	assert.Empty(t, unknown)
}

func TestLookups(t *testing.T) {
	assert.True(t, IsTimeSlot("01:30 PM"))
	assert.False(t, IsTimeSlot("12:00 PM"))
	assert.Len(t, Hospitals(), 3)
	for _, h := range Hospitals() {
		assert.NotEmpty(t, Doctors(h), "every listed hospital has doctors")
	}
	assert.Equal(t, len(doctorsByHospital), len(Hospitals()))
}
