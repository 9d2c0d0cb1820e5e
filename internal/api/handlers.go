package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackgods/hospital-bed-scheduling/internal/appointment"
	"github.com/hackgods/hospital-bed-scheduling/internal/bed"
	"github.com/hackgods/hospital-bed-scheduling/internal/catalog"
)

func listDoctorsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, catalog.Doctors(chi.URLParam(r, "hospital")))
	}
}

func listTimeSlotsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, catalog.TimeSlots())
	}
}

func listBedsHandler(svc *appointment.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		beds, err := svc.ListBeds(r.Context(), chi.URLParam(r, "hospital"))
		if err != nil {
			internalError(w, r, log, err)
			return
		}

		resp := make([]BedResponse, 0, len(beds))
		for _, b := range beds {
			resp = append(resp, newBedResponse(b))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func createAppointmentHandler(svc *appointment.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		appt, err := svc.CreateAppointment(r.Context(), req.toInput())
		if err != nil {
			handleServiceError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusCreated, newAppointmentResponse(appt))
	}
}

func getAppointmentHandler(svc *appointment.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseAppointmentID(w, r)
		if !ok {
			return
		}

		appt, err := svc.GetAppointment(r.Context(), id)
		if err != nil {
			handleServiceError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusOK, newAppointmentResponse(appt))
	}
}

func listAppointmentsHandler(svc *appointment.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		limit, _ := strconv.Atoi(q.Get("limit"))
		offset, _ := strconv.Atoi(q.Get("offset"))

		appts, err := svc.ListAppointments(r.Context(), q.Get("hospital"), limit, offset)
		if err != nil {
			internalError(w, r, log, err)
			return
		}

		resp := make([]AppointmentResponse, 0, len(appts))
		for i := range appts {
			resp = append(resp, newAppointmentResponse(&appts[i]))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func extendAppointmentHandler(svc *appointment.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseAppointmentID(w, r)
		if !ok {
			return
		}

		var req ExtendAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if !req.ExtensionDays.Set {
			writeError(w, http.StatusBadRequest, "validation_error", "extensionDays is required")
			return
		}

		appt, err := svc.ExtendAppointment(r.Context(), id, req.ExtensionDays.Value)
		if err != nil {
			handleServiceError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusOK, newAppointmentResponse(appt))
	}
}

func dischargeAppointmentHandler(svc *appointment.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseAppointmentID(w, r)
		if !ok {
			return
		}

		res, err := svc.DischargeAppointment(r.Context(), id)
		if err != nil {
			handleServiceError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusOK, DischargeResponse{Message: res.Message})
	}
}

// parseAppointmentID treats a malformed id as unknown, since no appointment can have it.
func parseAppointmentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "appointment_not_found", "Appointment not found")
		return uuid.Nil, false
	}
	return id, true
}

func handleServiceError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, appointment.ErrValidation):
		var verr *appointment.ValidationError
		details := "invalid appointment"
		if errors.As(err, &verr) {
			details = verr.Error()
		}
		writeError(w, http.StatusBadRequest, "validation_error", details)
	case errors.Is(err, appointment.ErrNoBedsAvailable):
		writeError(w, http.StatusConflict, "no_beds_available", "No beds available")
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", "Appointment not found")
	case errors.Is(err, bed.ErrBedNotFound):
		writeError(w, http.StatusNotFound, "bed_not_found", "Bed not found")
	case errors.Is(err, appointment.ErrHospitalBusy):
		writeError(w, http.StatusServiceUnavailable, "hospital_busy", "hospital is busy, please retry shortly")
	default:
		internalError(w, r, log, err)
	}
}

// internalError logs the cause and answers with an opaque body.
func internalError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	log.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("request_id", GetRequestID(r.Context())),
		zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "")
}
