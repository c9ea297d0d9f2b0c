package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/aureliov/medicall/internal/domain"
)

type InMemoryAppointmentRepository struct {
	mu           sync.RWMutex
	appointments map[string]*domain.Appointment
}

func NewInMemoryAppointmentRepository() *InMemoryAppointmentRepository {
	return &InMemoryAppointmentRepository{
		appointments: make(map[string]*domain.Appointment),
	}
}

func (r *InMemoryAppointmentRepository) Put(appt *domain.Appointment) {
	r.mu.Lock()
	r.appointments[appt.ID] = appt
	r.mu.Unlock()
}

func (r *InMemoryAppointmentRepository) GetByID(ctx context.Context, id string) (*domain.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	appt, ok := r.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}

	return appt, nil
}

func (r *InMemoryAppointmentRepository) List(ctx context.Context, filter AppointmentFilter) ([]*domain.Appointment, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	r.mu.RLock()
	matched := make([]*domain.Appointment, 0, len(r.appointments))
	for _, appt := range r.appointments {
		if filter.DoctorID != 0 && appt.DoctorID != filter.DoctorID {
			continue
		}
		if filter.CreatedBy != "" && !strings.EqualFold(appt.CreatedBy, filter.CreatedBy) {
			continue
		}
		if filter.Status != "" {
			if appt.Status != filter.Status {
				continue
			}
		} else if filter.ExcludeStatus != "" && appt.Status == filter.ExcludeStatus {
			continue
		}
		matched = append(matched, appt)
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		switch {
		case a.AppointmentDate == nil && b.AppointmentDate == nil:
			return a.CreatedAt.After(b.CreatedAt)
		case a.AppointmentDate == nil:
			return false
		case b.AppointmentDate == nil:
			return true
		case !a.AppointmentDate.Equal(*b.AppointmentDate):
			return a.AppointmentDate.After(*b.AppointmentDate)
		default:
			return a.CreatedAt.After(b.CreatedAt)
		}
	})

	total := int64(len(matched))
	if filter.Limit > 0 {
		offset := 0
		if filter.Page > 1 {
			offset = (filter.Page - 1) * filter.Limit
		}
		if offset >= len(matched) {
			return nil, total, nil
		}
		end := offset + filter.Limit
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[offset:end]
	}

	return matched, total, nil
}

type InMemoryDoctorRepository struct {
	mu      sync.RWMutex
	doctors map[int64]*domain.Doctor
}

func NewInMemoryDoctorRepository() *InMemoryDoctorRepository {
	return &InMemoryDoctorRepository{
		doctors: make(map[int64]*domain.Doctor),
	}
}

func (r *InMemoryDoctorRepository) Put(doctor *domain.Doctor) {
	r.mu.Lock()
	r.doctors[doctor.ID] = doctor
	r.mu.Unlock()
}

func (r *InMemoryDoctorRepository) GetByIDs(ctx context.Context, ids []int64) ([]*domain.Doctor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Doctor, 0, len(ids))
	for _, id := range ids {
		if doctor, ok := r.doctors[id]; ok {
			result = append(result, doctor)
		}
	}

	return result, nil
}

type InMemoryMessageRepository struct {
	mu       sync.RWMutex
	messages []*domain.ChatMessage
}

func NewInMemoryMessageRepository() *InMemoryMessageRepository {
	return &InMemoryMessageRepository{}
}

func (r *InMemoryMessageRepository) Create(ctx context.Context, msg *domain.ChatMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	r.messages = append(r.messages, msg)
	r.mu.Unlock()
	return nil
}

// ListByAppointment returns messages in insertion order, which is the
// store's notion of message order.
func (r *InMemoryMessageRepository) ListByAppointment(ctx context.Context, appointmentID string, limit int) ([]*domain.ChatMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.ChatMessage, 0, limit)
	for _, msg := range r.messages {
		if msg.AppointmentID != appointmentID {
			continue
		}
		result = append(result, msg)
		if limit > 0 && len(result) >= limit {
			break
		}
	}

	return result, nil
}

type InMemoryCallEventRepository struct {
	mu     sync.RWMutex
	events []*domain.CallEvent
}

func NewInMemoryCallEventRepository() *InMemoryCallEventRepository {
	return &InMemoryCallEventRepository{}
}

func (r *InMemoryCallEventRepository) Create(ctx context.Context, event *domain.CallEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
	return nil
}

func (r *InMemoryCallEventRepository) Events() []*domain.CallEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.CallEvent, len(r.events))
	copy(result, r.events)
	return result
}
