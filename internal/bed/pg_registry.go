package bed

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hackgods/hospital-bed-scheduling/internal/db"
)

const bedColumns = `id, hospital, bed_number, occupied, appointment_id, created_at, updated_at`

type PgRegistry struct {
	q db.Querier
}

// NewPgRegistry binds the registry to a pool or to an open transaction.
func NewPgRegistry(q db.Querier) *PgRegistry {
	return &PgRegistry{q: q}
}

func scanBed(row pgx.Row) (*Bed, error) {
	var b Bed
	var appointmentID *uuid.UUID

	err := row.Scan(
		&b.ID,
		&b.Hospital,
		&b.BedNumber,
		&b.Occupied,
		&appointmentID,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBedNotFound
		}
		return nil, err
	}

	b.AppointmentID = appointmentID
	return &b, nil
}

func collectBeds(rows pgx.Rows) ([]Bed, error) {
	defer rows.Close()

	var result []Bed
	for rows.Next() {
		b, err := scanBed(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// FindAvailable locks the chosen row. Inside a transaction a concurrent
// caller skips it and moves to the next free bed.
func (r *PgRegistry) FindAvailable(ctx context.Context, hospital string) (*Bed, error) {
	row := r.q.QueryRow(ctx, `
		SELECT `+bedColumns+`
		FROM beds
		WHERE hospital = $1
		  AND NOT occupied
		ORDER BY bed_number
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	`, hospital)

	b, err := scanBed(row)
	if errors.Is(err, ErrBedNotFound) {
		return nil, ErrNoFreeBed
	}
	if err != nil {
		return nil, fmt.Errorf("find available bed: %w", err)
	}
	return b, nil
}

func (r *PgRegistry) Occupy(ctx context.Context, bedID, appointmentID uuid.UUID) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE beds
		SET occupied = TRUE,
		    appointment_id = $2,
		    updated_at = now()
		WHERE id = $1
		  AND NOT occupied
	`, bedID, appointmentID)
	if err != nil {
		return fmt.Errorf("occupy bed: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	exists, err := r.exists(ctx, bedID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrBedNotFound
	}
	return ErrBedOccupied
}

func (r *PgRegistry) Release(ctx context.Context, bedID uuid.UUID) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE beds
		SET occupied = FALSE,
		    appointment_id = NULL,
		    updated_at = now()
		WHERE id = $1
	`, bedID)
	if err != nil {
		return fmt.Errorf("release bed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBedNotFound
	}
	return nil
}

func (r *PgRegistry) GetByID(ctx context.Context, id uuid.UUID) (*Bed, error) {
	row := r.q.QueryRow(ctx, `
		SELECT `+bedColumns+`
		FROM beds
		WHERE id = $1
	`, id)
	return scanBed(row)
}

func (r *PgRegistry) ListByHospital(ctx context.Context, hospital string) ([]Bed, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+bedColumns+`
		FROM beds
		WHERE hospital = $1
		ORDER BY bed_number
	`, hospital)
	if err != nil {
		return nil, fmt.Errorf("list beds: %w", err)
	}
	return collectBeds(rows)
}

func (r *PgRegistry) ListOccupied(ctx context.Context) ([]Bed, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+bedColumns+`
		FROM beds
		WHERE occupied
		ORDER BY hospital, bed_number
	`)
	if err != nil {
		return nil, fmt.Errorf("list occupied beds: %w", err)
	}
	return collectBeds(rows)
}

// Provision inserts a free bed unless (hospital, bed_number) already exists.
// It reports whether a row was created.
func (r *PgRegistry) Provision(ctx context.Context, hospital string, bedNumber int) (bool, error) {
	tag, err := r.q.Exec(ctx, `
		INSERT INTO beds (id, hospital, bed_number, occupied, created_at, updated_at)
		VALUES ($1, $2, $3, FALSE, now(), now())
		ON CONFLICT (hospital, bed_number) DO NOTHING
	`, uuid.New(), hospital, bedNumber)
	if err != nil {
		return false, fmt.Errorf("provision bed: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PgRegistry) exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM beds WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check bed exists: %w", err)
	}
	return exists, nil
}
