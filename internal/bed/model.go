package bed

import (
	"time"

	"github.com/google/uuid"
)

// Bed is a schedulable bed at a hospital. Occupied is true exactly when
// AppointmentID is set.
type Bed struct {
	ID            uuid.UUID
	Hospital      string
	BedNumber     int
	Occupied      bool
	AppointmentID *uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
