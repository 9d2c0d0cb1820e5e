package bed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bedCols = []string{"id", "hospital", "bed_number", "occupied", "appointment_id", "created_at", "updated_at"}

func setupMockRegistry(t *testing.T) (pgxmock.PgxPoolIface, *PgRegistry) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewPgRegistry(mock)
}

func TestPgRegistry_FindAvailable(t *testing.T) {
	mock, reg := setupMockRegistry(t)
	bedID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`FOR UPDATE SKIP LOCKED`).
		WithArgs("hospital1").
		WillReturnRows(pgxmock.NewRows(bedCols).
			AddRow(bedID, "hospital1", 4, false, (*uuid.UUID)(nil), now, now))

	b, err := reg.FindAvailable(context.Background(), "hospital1")
	require.NoError(t, err)
	assert.Equal(t, bedID, b.ID)
	assert.Equal(t, 4, b.BedNumber)
	assert.False(t, b.Occupied)
	assert.Nil(t, b.AppointmentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgRegistry_FindAvailableNone(t *testing.T) {
	mock, reg := setupMockRegistry(t)

	mock.ExpectQuery(`FOR UPDATE SKIP LOCKED`).
		WithArgs("hospital1").
		WillReturnRows(pgxmock.NewRows(bedCols))

	_, err := reg.FindAvailable(context.Background(), "hospital1")
	assert.ErrorIs(t, err, ErrNoFreeBed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgRegistry_Occupy(t *testing.T) {
	mock, reg := setupMockRegistry(t)
	bedID, apptID := uuid.New(), uuid.New()

	mock.ExpectExec(`UPDATE beds`).
		WithArgs(bedID, apptID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, reg.Occupy(context.Background(), bedID, apptID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgRegistry_OccupyLostRace(t *testing.T) {
	mock, reg := setupMockRegistry(t)
	bedID, apptID := uuid.New(), uuid.New()

	mock.ExpectExec(`UPDATE beds`).
		WithArgs(bedID, apptID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(bedID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	err := reg.Occupy(context.Background(), bedID, apptID)
	assert.ErrorIs(t, err, ErrBedOccupied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgRegistry_OccupyUnknownBed(t *testing.T) {
	mock, reg := setupMockRegistry(t)
	bedID, apptID := uuid.New(), uuid.New()

	mock.ExpectExec(`UPDATE beds`).
		WithArgs(bedID, apptID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(bedID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	err := reg.Occupy(context.Background(), bedID, apptID)
	assert.ErrorIs(t, err, ErrBedNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgRegistry_Release(t *testing.T) {
	mock, reg := setupMockRegistry(t)
	known, unknown := uuid.New(), uuid.New()

	mock.ExpectExec(`appointment_id = NULL`).
		WithArgs(known).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`appointment_id = NULL`).
		WithArgs(unknown).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	require.NoError(t, reg.Release(context.Background(), known))
	assert.ErrorIs(t, reg.Release(context.Background(), unknown), ErrBedNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgRegistry_ReleaseDatabaseError(t *testing.T) {
	mock, reg := setupMockRegistry(t)
	bedID := uuid.New()
	dbErr := errors.New("connection reset")

	mock.ExpectExec(`UPDATE beds`).
		WithArgs(bedID).
		WillReturnError(dbErr)

	err := reg.Release(context.Background(), bedID)
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, ErrBedNotFound)
}

func TestPgRegistry_Provision(t *testing.T) {
	mock, reg := setupMockRegistry(t)

	mock.ExpectExec(`ON CONFLICT \(hospital, bed_number\) DO NOTHING`).
		WithArgs(pgxmock.AnyArg(), "hospital3", 7).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	created, err := reg.Provision(context.Background(), "hospital3", 7)
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}
