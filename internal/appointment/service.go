package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackgods/hospital-bed-scheduling/internal/bed"
	"github.com/hackgods/hospital-bed-scheduling/internal/catalog"
	redisclient "github.com/hackgods/hospital-bed-scheduling/internal/redis"
)

const (
	EventAppointmentCreated    = "APPOINTMENT_CREATED"
	EventAppointmentExtended   = "APPOINTMENT_EXTENDED"
	EventAppointmentDischarged = "APPOINTMENT_DISCHARGED"
	EventBedReconciled         = "BED_RECONCILED"
)

const DischargeMessage = "Patient discharged and bed released"

const dateLayout = "2006-01-02"

type Service struct {
	store  Store
	locker redisclient.Locker
	log    *zap.Logger
	now    func() time.Time
}

func NewService(store Store, locker redisclient.Locker, log *zap.Logger) *Service {
	if locker == nil {
		locker = redisclient.NopLocker{}
	}
	return &Service{
		store:  store,
		locker: locker,
		log:    log,
		now:    time.Now,
	}
}

// CreateAppointment books the lowest-numbered free bed at the requested
// hospital. The appointment insert and the bed occupation commit together.
func (s *Service) CreateAppointment(ctx context.Context, in CreateInput) (*Appointment, error) {
	date, err := in.validate()
	if err != nil {
		return nil, err
	}

	hospital := strings.TrimSpace(in.Hospital)
	var created *Appointment

	err = s.locker.WithHospitalLock(ctx, hospital, func(lockCtx context.Context) error {
		return s.store.WithinTx(lockCtx, func(ctx context.Context, tx Tx) error {
			free, err := tx.Beds.FindAvailable(ctx, hospital)
			if errors.Is(err, bed.ErrNoFreeBed) {
				return ErrNoBedsAvailable
			}
			if err != nil {
				return fmt.Errorf("find available bed: %w", err)
			}

			now := s.now().UTC()
			appt := &Appointment{
				ID:              uuid.New(),
				PatientName:     strings.TrimSpace(in.PatientName),
				PatientAge:      *in.PatientAge,
				PatientGender:   strings.TrimSpace(in.PatientGender),
				Doctor:          strings.TrimSpace(in.Doctor),
				AppointmentType: strings.TrimSpace(in.AppointmentType),
				AppointmentDate: date,
				AppointmentTime: strings.TrimSpace(in.AppointmentTime),
				Hospital:        hospital,
				BedID:           free.ID,
				CreatedAt:       now,
				UpdatedAt:       now,
			}

			if err := tx.Appointments.Insert(ctx, appt); err != nil {
				return fmt.Errorf("create appointment: %w", err)
			}
			if err := tx.Beds.Occupy(ctx, free.ID, appt.ID); err != nil {
				return fmt.Errorf("occupy bed %s: %w", free.ID, err)
			}

			if err := s.recordEvent(ctx, tx, EventAppointmentCreated, &appt.ID, &free.ID, map[string]any{
				"hospital":         appt.Hospital,
				"bed_number":       free.BedNumber,
				"appointment_date": appt.AppointmentDate.Format(dateLayout),
				"appointment_time": appt.AppointmentTime,
			}); err != nil {
				return err
			}

			created = appt
			return nil
		})
	})

	if err != nil {
		switch {
		case errors.Is(err, redisclient.ErrLockNotAcquired):
			return nil, ErrHospitalBusy
		case errors.Is(err, bed.ErrBedOccupied):
			s.log.Error("bed occupancy invariant violated during create",
				zap.String("hospital", hospital), zap.Error(err))
		}
		return nil, err
	}

	s.log.Info("appointment created",
		zap.String("appointment_id", created.ID.String()),
		zap.String("bed_id", created.BedID.String()),
		zap.String("hospital", created.Hospital))

	return created, nil
}

// ExtendAppointment shifts the appointment date by extensionDays. Any
// integer is accepted, zero and negative included. The bed is untouched.
func (s *Service) ExtendAppointment(ctx context.Context, id uuid.UUID, extensionDays int) (*Appointment, error) {
	var updated *Appointment

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		appt, err := tx.Appointments.GetForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("load appointment: %w", err)
		}

		newDate := appt.AppointmentDate.AddDate(0, 0, extensionDays)
		updated, err = tx.Appointments.UpdateDate(ctx, id, newDate)
		if err != nil {
			return fmt.Errorf("extend appointment: %w", err)
		}

		return s.recordEvent(ctx, tx, EventAppointmentExtended, &updated.ID, &updated.BedID, map[string]any{
			"extension_days": extensionDays,
			"from":           appt.AppointmentDate.Format(dateLayout),
			"to":             newDate.Format(dateLayout),
		})
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DischargeAppointment deletes the appointment and frees its bed in one unit of work.
func (s *Service) DischargeAppointment(ctx context.Context, id uuid.UUID) (*DischargeResult, error) {
	var result *DischargeResult

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		appt, err := tx.Appointments.Delete(ctx, id)
		if err != nil {
			return fmt.Errorf("delete appointment: %w", err)
		}

		held, err := tx.Beds.GetByID(ctx, appt.BedID)
		if err != nil {
			return fmt.Errorf("load bed %s: %w", appt.BedID, err)
		}
		if held.AppointmentID != nil && *held.AppointmentID != appt.ID {
			return fmt.Errorf("bed %s held by %s: %w", held.ID, *held.AppointmentID, ErrBedMismatch)
		}

		if err := tx.Beds.Release(ctx, appt.BedID); err != nil {
			return fmt.Errorf("release bed %s: %w", appt.BedID, err)
		}

		if err := s.recordEvent(ctx, tx, EventAppointmentDischarged, &appt.ID, &appt.BedID, map[string]any{
			"hospital":   appt.Hospital,
			"bed_number": held.BedNumber,
		}); err != nil {
			return err
		}

		result = &DischargeResult{
			AppointmentID: appt.ID,
			BedID:         appt.BedID,
			Message:       DischargeMessage,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrBedMismatch) || errors.Is(err, bed.ErrBedNotFound) {
			s.log.Error("bed invariant violated during discharge",
				zap.String("appointment_id", id.String()), zap.Error(err))
		}
		return nil, err
	}

	s.log.Info("appointment discharged",
		zap.String("appointment_id", result.AppointmentID.String()),
		zap.String("bed_id", result.BedID.String()))

	return result, nil
}

// GetAppointment retrieves an active appointment by ID
func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	var appt *Appointment
	err := s.store.View(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		appt, err = tx.Appointments.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return appt, nil
}

// ListAppointments retrieves active appointments, optionally for one hospital
func (s *Service) ListAppointments(ctx context.Context, hospital string, limit, offset int) ([]Appointment, error) {
	if limit <= 0 {
		limit = 20 // default
	}
	if limit > 100 {
		limit = 100 // max
	}
	if offset < 0 {
		offset = 0
	}

	var appts []Appointment
	err := s.store.View(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		appts, err = tx.Appointments.List(ctx, ListFilter{Hospital: hospital, Limit: limit, Offset: offset})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appts, nil
}

func (s *Service) ListBeds(ctx context.Context, hospital string) ([]bed.Bed, error) {
	var beds []bed.Bed
	err := s.store.View(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		beds, err = tx.Beds.ListByHospital(ctx, hospital)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list beds: %w", err)
	}
	return beds, nil
}

func (s *Service) recordEvent(ctx context.Context, tx Tx, eventType string, appointmentID, bedID *uuid.UUID, payload map[string]any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		s.log.Warn("failed to marshal event payload", zap.String("event_type", eventType), zap.Error(err))
		data = nil
	}

	ev := EventLog{
		EventType:     eventType,
		AppointmentID: appointmentID,
		BedID:         bedID,
		Payload:       data,
		CreatedAt:     s.now().UTC(),
	}

	if err := tx.Appointments.InsertEvent(ctx, ev); err != nil {
		return fmt.Errorf("record %s: %w", eventType, err)
	}
	return nil
}

func (in CreateInput) validate() (time.Time, error) {
	required := []struct {
		field string
		value string
	}{
		{"patientName", in.PatientName},
		{"patientGender", in.PatientGender},
		{"doctor", in.Doctor},
		{"appointmentType", in.AppointmentType},
		{"appointmentDate", in.AppointmentDate},
		{"appointmentTime", in.AppointmentTime},
		{"hospital", in.Hospital},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return time.Time{}, &ValidationError{Field: r.field, Reason: "is required"}
		}
	}

	if in.PatientAge == nil {
		return time.Time{}, &ValidationError{Field: "patientAge", Reason: "is required"}
	}
	if *in.PatientAge < 0 {
		return time.Time{}, &ValidationError{Field: "patientAge", Reason: "must not be negative"}
	}

	if !catalog.IsTimeSlot(strings.TrimSpace(in.AppointmentTime)) {
		return time.Time{}, &ValidationError{Field: "appointmentTime", Reason: "is not an offered time slot"}
	}

	date, err := ParseDate(in.AppointmentDate)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "appointmentDate", Reason: "must be a date (YYYY-MM-DD)"}
	}

	return date, nil
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns the
// calendar date at midnight UTC.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return toDate(t), nil
}

func toDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
