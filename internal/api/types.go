package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/hospital-bed-scheduling/internal/appointment"
	"github.com/hackgods/hospital-bed-scheduling/internal/bed"
)

// flexInt accepts 36 as well as "36"; browser forms post numbers as strings.
// A blank string or null leaves Set false, so the field reads as missing.
type flexInt struct {
	Value int
	Set   bool
}

func (n *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = flexInt{}
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = flexInt{}
			return nil
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return errors.New("not an integer")
		}
		*n = flexInt{Value: v, Set: true}
		return nil
	}

	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = flexInt{Value: v, Set: true}
	return nil
}

type CreateAppointmentRequest struct {
	PatientName     string  `json:"patientName"`
	PatientAge      flexInt `json:"patientAge"`
	PatientGender   string  `json:"patientGender"`
	Doctor          string  `json:"doctor"`
	AppointmentType string  `json:"appointmentType"`
	AppointmentDate string  `json:"appointmentDate"`
	AppointmentTime string  `json:"appointmentTime"`
	Hospital        string  `json:"hospital"`
}

func (r CreateAppointmentRequest) toInput() appointment.CreateInput {
	in := appointment.CreateInput{
		PatientName:     r.PatientName,
		PatientGender:   r.PatientGender,
		Doctor:          r.Doctor,
		AppointmentType: r.AppointmentType,
		AppointmentDate: r.AppointmentDate,
		AppointmentTime: r.AppointmentTime,
		Hospital:        r.Hospital,
	}
	if r.PatientAge.Set {
		age := r.PatientAge.Value
		in.PatientAge = &age
	}
	return in
}

type ExtendAppointmentRequest struct {
	ExtensionDays flexInt `json:"extensionDays"`
}

type AppointmentResponse struct {
	ID              uuid.UUID `json:"id"`
	PatientName     string    `json:"patientName"`
	PatientAge      int       `json:"patientAge"`
	PatientGender   string    `json:"patientGender"`
	Doctor          string    `json:"doctor"`
	AppointmentType string    `json:"appointmentType"`
	AppointmentDate string    `json:"appointmentDate"`
	AppointmentTime string    `json:"appointmentTime"`
	Hospital        string    `json:"hospital"`
	Bed             uuid.UUID `json:"bed"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func newAppointmentResponse(a *appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:              a.ID,
		PatientName:     a.PatientName,
		PatientAge:      a.PatientAge,
		PatientGender:   a.PatientGender,
		Doctor:          a.Doctor,
		AppointmentType: a.AppointmentType,
		AppointmentDate: a.AppointmentDate.Format("2006-01-02"),
		AppointmentTime: a.AppointmentTime,
		Hospital:        a.Hospital,
		Bed:             a.BedID,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

type BedResponse struct {
	ID          uuid.UUID  `json:"id"`
	Hospital    string     `json:"hospital"`
	BedNumber   int        `json:"bedNumber"`
	IsOccupied  bool       `json:"isOccupied"`
	Appointment *uuid.UUID `json:"appointment"`
}

func newBedResponse(b bed.Bed) BedResponse {
	return BedResponse{
		ID:          b.ID,
		Hospital:    b.Hospital,
		BedNumber:   b.BedNumber,
		IsOccupied:  b.Occupied,
		Appointment: b.AppointmentID,
	}
}

type DischargeResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
