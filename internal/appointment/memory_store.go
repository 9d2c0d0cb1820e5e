package appointment

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/hospital-bed-scheduling/internal/bed"
)

// MemoryStore keeps beds, appointments and events in process memory.
// Units of work are serialised and run against copies that replace the
// committed state only when fn succeeds.
type MemoryStore struct {
	mu     sync.Mutex
	beds   map[uuid.UUID]bed.Bed
	appts  map[uuid.UUID]Appointment
	events []EventLog
}

func NewMemoryStore(beds *bed.MemoryRegistry) *MemoryStore {
	return &MemoryStore{
		beds:  beds.Snapshot(),
		appts: make(map[uuid.UUID]Appointment),
	}
}

func (s *MemoryStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	beds := bed.NewMemoryRegistry(maps.Clone(s.beds))
	repo := &memoryRepository{
		appts:  maps.Clone(s.appts),
		events: slices.Clone(s.events),
	}

	if err := fn(ctx, Tx{Beds: beds, Appointments: repo}); err != nil {
		return err
	}

	s.beds = beds.Snapshot()
	s.appts = repo.appts
	s.events = repo.events
	return nil
}

func (s *MemoryStore) View(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return fn(ctx, Tx{
		Beds:         bed.NewMemoryRegistry(maps.Clone(s.beds)),
		Appointments: &memoryRepository{appts: maps.Clone(s.appts)},
	})
}

// BedSnapshot returns a copy of the committed beds keyed by id.
func (s *MemoryStore) BedSnapshot() map[uuid.UUID]bed.Bed {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.beds)
}

// Events returns the committed event log.
func (s *MemoryStore) Events() []EventLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.events)
}

// memoryRepository is confined to a single unit of work and needs no locking.
type memoryRepository struct {
	appts  map[uuid.UUID]Appointment
	events []EventLog
}

func (r *memoryRepository) Insert(_ context.Context, a *Appointment) error {
	r.appts[a.ID] = *a
	return nil
}

func (r *memoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := r.appts[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	return &a, nil
}

func (r *memoryRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return r.GetByID(ctx, id)
}

func (r *memoryRepository) UpdateDate(_ context.Context, id uuid.UUID, date time.Time) (*Appointment, error) {
	a, ok := r.appts[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	a.AppointmentDate = date
	a.UpdatedAt = time.Now()
	r.appts[id] = a
	return &a, nil
}

func (r *memoryRepository) Delete(_ context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := r.appts[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	delete(r.appts, id)
	return &a, nil
}

func (r *memoryRepository) List(_ context.Context, filter ListFilter) ([]Appointment, error) {
	var result []Appointment
	for _, a := range r.appts {
		if filter.Hospital == "" || a.Hospital == filter.Hospital {
			result = append(result, a)
		}
	}
	slices.SortFunc(result, func(a, b Appointment) int {
		return cmp.Or(
			a.AppointmentDate.Compare(b.AppointmentDate),
			a.CreatedAt.Compare(b.CreatedAt),
			slices.Compare(a.ID[:], b.ID[:]),
		)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return nil, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (r *memoryRepository) InsertEvent(_ context.Context, ev EventLog) error {
	ev.ID = int64(len(r.events) + 1)
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	r.events = append(r.events, ev)
	return nil
}
