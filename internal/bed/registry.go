package bed

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrBedNotFound = errors.New("bed not found")
	ErrNoFreeBed   = errors.New("no free bed")
	// ErrBedOccupied means an occupy lost a race or broke the occupancy
	// invariant. Callers must surface it, never swallow it.
	ErrBedOccupied = errors.New("bed already occupied")
)

// Registry tracks bed occupancy per hospital.
type Registry interface {
	// FindAvailable returns the free bed with the lowest bed number, or ErrNoFreeBed.
	FindAvailable(ctx context.Context, hospital string) (*Bed, error)
	// Occupy marks a free bed as held by appointmentID. It is a conditional
	// update: an occupied bed yields ErrBedOccupied.
	Occupy(ctx context.Context, bedID, appointmentID uuid.UUID) error
	// Release frees the bed. Releasing a free bed is a no-op.
	Release(ctx context.Context, bedID uuid.UUID) error

	GetByID(ctx context.Context, id uuid.UUID) (*Bed, error)
	ListByHospital(ctx context.Context, hospital string) ([]Bed, error)
	ListOccupied(ctx context.Context) ([]Bed, error)
}
