package domain

import (
	"regexp"
	"strings"
	"time"
)

const (
	AppointmentStatusBooked    = "booked"
	AppointmentStatusCancelled = "cancelled"
)

// Appointment is a read-only snapshot of an appointment record owned by the
// external store. Only the fields needed for call authorization and the
// public summary are carried.
type Appointment struct {
	ID              string
	DoctorID        int64
	CreatedBy       string
	Date            string
	AppointmentDate *time.Time
	Reason          string
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Joinable reports whether the appointment is in the single lifecycle state
// that allows a call.
func (a *Appointment) Joinable() bool {
	return a != nil && a.Status == AppointmentStatusBooked
}

// PublicAppointment is the summary returned to a joining client.
type PublicAppointment struct {
	ID              string     `json:"id"`
	DoctorID        int64      `json:"doctorId"`
	Date            string     `json:"date"`
	AppointmentDate *time.Time `json:"appointmentDate"`
	Status          string     `json:"status"`
	Reason          string     `json:"reason"`
}

func (a *Appointment) Public() PublicAppointment {
	status := a.Status
	if status == "" {
		status = AppointmentStatusBooked
	}
	return PublicAppointment{
		ID:              a.ID,
		DoctorID:        a.DoctorID,
		Date:            a.Date,
		AppointmentDate: a.AppointmentDate,
		Status:          status,
		Reason:          a.Reason,
	}
}

var appointmentIDPattern = regexp.MustCompile(`^[a-fA-F0-9]{24}$`)

// NormalizeAppointmentID trims and lowercases the raw value and returns it
// when it has the expected 24-hex shape, or an empty string otherwise.
// Lowercasing keeps derived room ids stable regardless of how the caller
// spells the hex digits.
func NormalizeAppointmentID(value string) string {
	id := strings.TrimSpace(value)
	if !appointmentIDPattern.MatchString(id) {
		return ""
	}
	return strings.ToLower(id)
}
