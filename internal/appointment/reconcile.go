package appointment

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/hackgods/hospital-bed-scheduling/internal/bed"
)

// ReconcileBeds restores the bed/appointment back-references. Beds pointing
// at a missing appointment, or at one that holds another bed, are released;
// free beds still claimed by an appointment are re-occupied. A bed claimed
// by two appointments is only reported, since picking a winner needs a human.
func (s *Service) ReconcileBeds(ctx context.Context) (ReconcileReport, error) {
	var report ReconcileReport

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		report = ReconcileReport{}

		occupied, err := tx.Beds.ListOccupied(ctx)
		if err != nil {
			return fmt.Errorf("list occupied beds: %w", err)
		}

		for _, b := range occupied {
			report.Checked++
			appt, err := tx.Appointments.GetByID(ctx, *b.AppointmentID)
			if err != nil && !errors.Is(err, ErrAppointmentNotFound) {
				return fmt.Errorf("load appointment %s: %w", *b.AppointmentID, err)
			}
			if appt != nil && appt.BedID == b.ID {
				continue
			}

			if err := tx.Beds.Release(ctx, b.ID); err != nil {
				return fmt.Errorf("release orphaned bed %s: %w", b.ID, err)
			}
			report.Released++

			reason := "appointment_missing"
			if appt != nil {
				reason = "appointment_holds_other_bed"
			}

			bedID := b.ID
			if err := s.recordEvent(ctx, tx, EventBedReconciled, b.AppointmentID, &bedID, map[string]any{
				"action": "released",
				"reason": reason,
			}); err != nil {
				return err
			}
		}

		appts, err := tx.Appointments.List(ctx, ListFilter{})
		if err != nil {
			return fmt.Errorf("list appointments: %w", err)
		}

		for _, a := range appts {
			report.Checked++
			held, err := tx.Beds.GetByID(ctx, a.BedID)
			if err != nil {
				if errors.Is(err, bed.ErrBedNotFound) {
					report.Conflicts++
					s.log.Error("appointment references unknown bed",
						zap.String("appointment_id", a.ID.String()), zap.String("bed_id", a.BedID.String()))
					continue
				}
				return fmt.Errorf("load bed %s: %w", a.BedID, err)
			}

			switch {
			case !held.Occupied:
				if err := tx.Beds.Occupy(ctx, held.ID, a.ID); err != nil {
					return fmt.Errorf("re-occupy bed %s: %w", held.ID, err)
				}
				report.Reoccupied++

				apptID := a.ID
				if err := s.recordEvent(ctx, tx, EventBedReconciled, &apptID, &held.ID, map[string]any{
					"action": "reoccupied",
					"reason": "bed_free_while_booked",
				}); err != nil {
					return err
				}
			case *held.AppointmentID != a.ID:
				report.Conflicts++
				s.log.Error("bed claimed by more than one appointment",
					zap.String("bed_id", held.ID.String()),
					zap.String("appointment_id", a.ID.String()),
					zap.String("holder_id", held.AppointmentID.String()))
			}
		}

		return nil
	})
	if err != nil {
		return ReconcileReport{}, err
	}

	return report, nil
}
