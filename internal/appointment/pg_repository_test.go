package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hackgods/hospital-bed-scheduling/internal/bed"
	redisclient "github.com/hackgods/hospital-bed-scheduling/internal/redis"
)

var appointmentCols = []string{
	"id", "patient_name", "patient_age", "patient_gender", "doctor", "appointment_type",
	"appointment_date", "appointment_time", "hospital", "bed_id", "created_at", "updated_at",
}

var bedCols = []string{"id", "hospital", "bed_number", "occupied", "appointment_id", "created_at", "updated_at"}

func setupMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func appointmentRow(id, bedID uuid.UUID, date time.Time) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows(appointmentCols).AddRow(
		id, "Ada Lovelace", 36, "female", "Dr. Smith", "checkup",
		date, "09:30 AM", "hospital1", bedID, now, now,
	)
}

func TestPgRepository_GetByID(t *testing.T) {
	mock := setupMockPool(t)
	repo := NewPgRepository(mock)
	id, bedID := uuid.New(), uuid.New()
	date := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM appointments`).
		WithArgs(id).
		WillReturnRows(appointmentRow(id, bedID, date))

	a, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, a.ID)
	assert.Equal(t, bedID, a.BedID)
	assert.Equal(t, date, a.AppointmentDate)
	assert.Equal(t, 36, a.PatientAge)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgRepository_DeleteUnknown(t *testing.T) {
	mock := setupMockPool(t)
	repo := NewPgRepository(mock)
	id := uuid.New()

	mock.ExpectQuery(`DELETE FROM appointments`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(appointmentCols))

	_, err := repo.Delete(context.Background(), id)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgRepository_UpdateDate(t *testing.T) {
	mock := setupMockPool(t)
	repo := NewPgRepository(mock)
	id, bedID := uuid.New(), uuid.New()
	date := time.Date(2024, 6, 13, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`UPDATE appointments`).
		WithArgs(id, date).
		WillReturnRows(appointmentRow(id, bedID, date))

	a, err := repo.UpdateDate(context.Background(), id, date)
	require.NoError(t, err)
	assert.Equal(t, date, a.AppointmentDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgStore_CreateCommitsBothWrites(t *testing.T) {
	mock := setupMockPool(t)
	svc := NewService(NewPgStore(mock), redisclient.NopLocker{}, zap.NewNop())
	bedID := uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE SKIP LOCKED`).
		WithArgs("hospital1").
		WillReturnRows(pgxmock.NewRows(bedCols).
			AddRow(bedID, "hospital1", 1, false, (*uuid.UUID)(nil), now, now))
	mock.ExpectExec(`INSERT INTO appointments`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`UPDATE beds`).
		WithArgs(bedID, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`INSERT INTO event_logs`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	appt, err := svc.CreateAppointment(context.Background(), validInput("hospital1"))
	require.NoError(t, err)
	assert.Equal(t, bedID, appt.BedID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgStore_CreateRollsBackWhenBedTaken(t *testing.T) {
	mock := setupMockPool(t)
	svc := NewService(NewPgStore(mock), redisclient.NopLocker{}, zap.NewNop())
	bedID := uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE SKIP LOCKED`).
		WithArgs("hospital1").
		WillReturnRows(pgxmock.NewRows(bedCols).
			AddRow(bedID, "hospital1", 1, false, (*uuid.UUID)(nil), now, now))
	mock.ExpectExec(`INSERT INTO appointments`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`UPDATE beds`).
		WithArgs(bedID, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(bedID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	_, err := svc.CreateAppointment(context.Background(), validInput("hospital1"))
	assert.ErrorIs(t, err, bed.ErrBedOccupied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgStore_CreateNoBeds(t *testing.T) {
	mock := setupMockPool(t)
	svc := NewService(NewPgStore(mock), redisclient.NopLocker{}, zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE SKIP LOCKED`).
		WithArgs("hospital1").
		WillReturnRows(pgxmock.NewRows(bedCols))
	mock.ExpectRollback()

	_, err := svc.CreateAppointment(context.Background(), validInput("hospital1"))
	assert.ErrorIs(t, err, ErrNoBedsAvailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgStore_DischargeUnknownRollsBack(t *testing.T) {
	mock := setupMockPool(t)
	svc := NewService(NewPgStore(mock), redisclient.NopLocker{}, zap.NewNop())
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`DELETE FROM appointments`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(appointmentCols))
	mock.ExpectRollback()

	_, err := svc.DischargeAppointment(context.Background(), id)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
