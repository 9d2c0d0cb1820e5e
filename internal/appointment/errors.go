package appointment

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("validation error")
	ErrNoBedsAvailable     = errors.New("no beds available")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrHospitalBusy        = errors.New("hospital is busy, please retry")
	// ErrBedMismatch means an appointment and its bed no longer point at each other.
	ErrBedMismatch = errors.New("bed is not held by appointment")
)

// ValidationError names the offending input field. It matches ErrValidation
// under errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
