package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/aureliov/medicall/internal/domain"
	"github.com/aureliov/medicall/internal/repository"
	"github.com/aureliov/medicall/lib/logger/sl"
)

// Authorizer decides whether an identity may interact with an appointment.
// Decisions are always evaluated against the current store record and never
// cached across calls.
type Authorizer struct {
	appointments repository.AppointmentRepository
	log          *slog.Logger
}

func NewAuthorizer(appointments repository.AppointmentRepository, log *slog.Logger) *Authorizer {
	if log == nil {
		log = slog.Default()
	}
	return &Authorizer{appointments: appointments, log: log}
}

// AuthorizeJoin checks eligibility to join the appointment's call room.
// The appointment must exist, be in the booked state, and the identity must
// match the role rule.
func (a *Authorizer) AuthorizeJoin(ctx context.Context, identity domain.Identity, appointmentID string) (*domain.Appointment, error) {
	appt, err := a.lookup(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !appt.Joinable() {
		return nil, ErrAppointmentNotJoinable
	}
	if !canAccess(identity, appt) {
		return nil, ErrAppointmentAccessDenied
	}
	return appt, nil
}

// AuthorizeAccess checks eligibility to read or append the appointment's
// session messages. Unlike AuthorizeJoin it does not gate on the lifecycle
// status, so history stays reachable after a call ended.
func (a *Authorizer) AuthorizeAccess(ctx context.Context, identity domain.Identity, appointmentID string) (*domain.Appointment, error) {
	appt, err := a.lookup(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !canAccess(identity, appt) {
		return nil, ErrAppointmentAccessDenied
	}
	return appt, nil
}

func (a *Authorizer) lookup(ctx context.Context, appointmentID string) (*domain.Appointment, error) {
	appt, err := a.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, repository.ErrAppointmentNotFound) {
			return nil, ErrAppointmentNotFound
		}
		a.log.Error("appointment lookup failed",
			slog.String("appointment_id", appointmentID),
			sl.Err(err),
		)
		return nil, err
	}
	return appt, nil
}

func canAccess(identity domain.Identity, appt *domain.Appointment) bool {
	switch identity.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleDoctor:
		return identity.DoctorID != 0 && identity.DoctorID == appt.DoctorID
	default:
		return identity.Email != "" && strings.EqualFold(identity.Email, appt.CreatedBy)
	}
}
