package repository

import (
	"context"

	"github.com/aureliov/medicall/internal/domain"
)

// AppointmentFilter narrows the appointment listing. Zero values mean "any".
type AppointmentFilter struct {
	DoctorID      int64
	CreatedBy     string
	Status        string
	ExcludeStatus string
	Page          int
	Limit         int
}

type AppointmentRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Appointment, error)
	List(ctx context.Context, filter AppointmentFilter) ([]*domain.Appointment, int64, error)
}

type DoctorRepository interface {
	GetByIDs(ctx context.Context, ids []int64) ([]*domain.Doctor, error)
}

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.ChatMessage) error
	ListByAppointment(ctx context.Context, appointmentID string, limit int) ([]*domain.ChatMessage, error)
}

type CallEventRepository interface {
	Create(ctx context.Context, event *domain.CallEvent) error
}
