package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/hospital-bed-scheduling/internal/bed"
)

// Repository contains all appointment persistence needed by the service.
type Repository interface {
	Insert(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// GetForUpdate reads the appointment and, where the backend supports it,
	// locks the row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Appointment, error)
	UpdateDate(ctx context.Context, id uuid.UUID, date time.Time) (*Appointment, error)
	// Delete removes the appointment and returns it as it was.
	Delete(ctx context.Context, id uuid.UUID) (*Appointment, error)
	List(ctx context.Context, filter ListFilter) ([]Appointment, error)

	InsertEvent(ctx context.Context, ev EventLog) error
}

// Tx is the set of stores visible inside one unit of work.
type Tx struct {
	Beds         bed.Registry
	Appointments Repository
}

// Store hands out units of work. Everything fn writes through WithinTx is
// committed together or not at all.
type Store interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// View runs fn against committed state without a transaction. fn must not write.
	View(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
