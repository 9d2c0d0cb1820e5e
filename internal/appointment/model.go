package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Appointment is an active booking. It holds its bed for as long as it exists;
// discharge deletes the record.
type Appointment struct {
	ID              uuid.UUID
	PatientName     string
	PatientAge      int
	PatientGender   string
	Doctor          string
	AppointmentType string
	AppointmentDate time.Time // calendar date, midnight UTC
	AppointmentTime string    // one of catalog.TimeSlots
	Hospital        string
	BedID           uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CreateInput carries the booking form as submitted. PatientAge is a pointer
// so a missing age is distinguishable from zero.
type CreateInput struct {
	PatientName     string
	PatientAge      *int
	PatientGender   string
	Doctor          string
	AppointmentType string
	AppointmentDate string // YYYY-MM-DD or RFC 3339
	AppointmentTime string
	Hospital        string
}

type ListFilter struct {
	Hospital string
	Limit    int // <= 0 means no limit
	Offset   int
}

type DischargeResult struct {
	AppointmentID uuid.UUID
	BedID         uuid.UUID
	Message       string
}

type ReconcileReport struct {
	Checked    int
	Released   int
	Reoccupied int
	Conflicts  int
}

type EventLog struct {
	ID            int64
	EventType     string
	AppointmentID *uuid.UUID
	BedID         *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}
