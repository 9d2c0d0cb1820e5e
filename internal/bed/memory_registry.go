package bed

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRegistry keeps beds in process memory. It backs the memory storage
// driver and tests.
type MemoryRegistry struct {
	mu   sync.Mutex
	beds map[uuid.UUID]Bed
	now  func() time.Time
}

// NewMemoryRegistry takes ownership of beds; pass nil for an empty registry.
func NewMemoryRegistry(beds map[uuid.UUID]Bed) *MemoryRegistry {
	if beds == nil {
		beds = make(map[uuid.UUID]Bed)
	}
	return &MemoryRegistry{beds: beds, now: time.Now}
}

// Snapshot returns a copy of every bed keyed by id.
func (r *MemoryRegistry) Snapshot() map[uuid.UUID]Bed {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.beds)
}

// Provision adds a free bed unless one with the same hospital and number exists.
func (r *MemoryRegistry) Provision(hospital string, bedNumber int) Bed {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range r.beds {
		if b.Hospital == hospital && b.BedNumber == bedNumber {
			return b
		}
	}

	now := r.now()
	b := Bed{
		ID:        uuid.New(),
		Hospital:  hospital,
		BedNumber: bedNumber,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.beds[b.ID] = b
	return b
}

func (r *MemoryRegistry) FindAvailable(_ context.Context, hospital string) (*Bed, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var best *Bed
	for _, b := range r.beds {
		if b.Hospital != hospital || b.Occupied {
			continue
		}
		if best == nil || b.BedNumber < best.BedNumber {
			candidate := b
			best = &candidate
		}
	}
	if best == nil {
		return nil, ErrNoFreeBed
	}
	return best, nil
}

func (r *MemoryRegistry) Occupy(_ context.Context, bedID, appointmentID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.beds[bedID]
	if !ok {
		return ErrBedNotFound
	}
	if b.Occupied {
		return ErrBedOccupied
	}

	apptID := appointmentID
	b.Occupied = true
	b.AppointmentID = &apptID
	b.UpdatedAt = r.now()
	r.beds[bedID] = b
	return nil
}

func (r *MemoryRegistry) Release(_ context.Context, bedID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.beds[bedID]
	if !ok {
		return ErrBedNotFound
	}

	b.Occupied = false
	b.AppointmentID = nil
	b.UpdatedAt = r.now()
	r.beds[bedID] = b
	return nil
}

func (r *MemoryRegistry) GetByID(_ context.Context, id uuid.UUID) (*Bed, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.beds[id]
	if !ok {
		return nil, ErrBedNotFound
	}
	return &b, nil
}

func (r *MemoryRegistry) ListByHospital(_ context.Context, hospital string) ([]Bed, error) {
	return r.list(func(b Bed) bool { return b.Hospital == hospital }), nil
}

func (r *MemoryRegistry) ListOccupied(_ context.Context) ([]Bed, error) {
	return r.list(func(b Bed) bool { return b.Occupied }), nil
}

func (r *MemoryRegistry) list(keep func(Bed) bool) []Bed {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []Bed
	for _, b := range r.beds {
		if keep(b) {
			result = append(result, b)
		}
	}
	slices.SortFunc(result, func(a, b Bed) int {
		return cmp.Or(strings.Compare(a.Hospital, b.Hospital), cmp.Compare(a.BedNumber, b.BedNumber))
	})
	return result
}
