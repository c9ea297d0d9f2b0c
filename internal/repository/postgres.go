package repository

import (
	"context"
	"errors"

	"github.com/aureliov/medicall/internal/domain"
	"github.com/aureliov/medicall/internal/repository/model"
	"gorm.io/gorm"
)

var ErrAppointmentNotFound = errors.New("appointment not found")

type PostgresAppointmentRepository struct {
	db *gorm.DB
}

func NewPostgresAppointmentRepository(db *gorm.DB) *PostgresAppointmentRepository {
	return &PostgresAppointmentRepository{db: db}
}

func (r *PostgresAppointmentRepository) GetByID(ctx context.Context, id string) (*domain.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var appt model.Appointment
	err := r.db.WithContext(ctx).First(&appt, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	return toDomainAppointment(&appt), nil
}

func (r *PostgresAppointmentRepository) List(ctx context.Context, filter AppointmentFilter) ([]*domain.Appointment, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	query := r.db.WithContext(ctx).Model(&model.Appointment{})
	if filter.DoctorID != 0 {
		query = query.Where("doctor_id = ?", filter.DoctorID)
	}
	if filter.CreatedBy != "" {
		query = query.Where("lower(created_by) = lower(?)", filter.CreatedBy)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	} else if filter.ExcludeStatus != "" {
		query = query.Where("status <> ?", filter.ExcludeStatus)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("appointment_date DESC NULLS LAST").Order("created_at DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
		if filter.Page > 1 {
			query = query.Offset((filter.Page - 1) * filter.Limit)
		}
	}

	var rows []model.Appointment
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	result := make([]*domain.Appointment, 0, len(rows))
	for i := range rows {
		result = append(result, toDomainAppointment(&rows[i]))
	}

	return result, total, nil
}

type PostgresDoctorRepository struct {
	db *gorm.DB
}

func NewPostgresDoctorRepository(db *gorm.DB) *PostgresDoctorRepository {
	return &PostgresDoctorRepository{db: db}
}

func (r *PostgresDoctorRepository) GetByIDs(ctx context.Context, ids []int64) ([]*domain.Doctor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	var rows []model.Doctor
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}

	result := make([]*domain.Doctor, 0, len(rows))
	for i := range rows {
		result = append(result, &domain.Doctor{
			ID:        rows[i].ID,
			Name:      rows[i].Name,
			Specialty: rows[i].Specialty,
		})
	}

	return result, nil
}

type PostgresMessageRepository struct {
	db *gorm.DB
}

func NewPostgresMessageRepository(db *gorm.DB) *PostgresMessageRepository {
	return &PostgresMessageRepository{db: db}
}

func (r *PostgresMessageRepository) Create(ctx context.Context, msg *domain.ChatMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg == nil {
		return errors.New("message is nil")
	}

	return r.db.WithContext(ctx).Create(toModelMessage(msg)).Error
}

func (r *PostgresMessageRepository) ListByAppointment(ctx context.Context, appointmentID string, limit int) ([]*domain.ChatMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.TelemedicineMessage
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	result := make([]*domain.ChatMessage, 0, len(rows))
	for i := range rows {
		result = append(result, toDomainMessage(&rows[i]))
	}

	return result, nil
}

type PostgresCallEventRepository struct {
	db *gorm.DB
}

func NewPostgresCallEventRepository(db *gorm.DB) *PostgresCallEventRepository {
	return &PostgresCallEventRepository{db: db}
}

func (r *PostgresCallEventRepository) Create(ctx context.Context, event *domain.CallEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if event == nil {
		return errors.New("event is nil")
	}

	return r.db.WithContext(ctx).Create(&model.TelemedicineEvent{
		ID:                 event.ID,
		AppointmentID:      event.AppointmentID,
		RoomID:             event.RoomID,
		EventType:          string(event.EventType),
		ActorEmail:         event.ActorEmail,
		ActorRole:          string(event.ActorRole),
		TargetConnectionID: event.TargetConnectionID,
		Metadata:           event.Metadata,
		CreatedAt:          event.CreatedAt,
	}).Error
}

func toDomainAppointment(m *model.Appointment) *domain.Appointment {
	return &domain.Appointment{
		ID:              m.ID,
		DoctorID:        m.DoctorID,
		CreatedBy:       m.CreatedBy,
		Date:            m.Date,
		AppointmentDate: m.AppointmentDate,
		Reason:          m.Reason,
		Status:          m.Status,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func toModelMessage(msg *domain.ChatMessage) *model.TelemedicineMessage {
	return &model.TelemedicineMessage{
		ID:            msg.ID,
		AppointmentID: msg.AppointmentID,
		RoomID:        msg.RoomID,
		SenderEmail:   msg.SenderEmail,
		SenderRole:    string(msg.SenderRole),
		MessageType:   string(msg.MessageType),
		Text:          msg.Text,
		CreatedAt:     msg.CreatedAt,
	}
}

func toDomainMessage(m *model.TelemedicineMessage) *domain.ChatMessage {
	return &domain.ChatMessage{
		ID:            m.ID,
		AppointmentID: m.AppointmentID,
		RoomID:        m.RoomID,
		SenderEmail:   m.SenderEmail,
		SenderRole:    domain.Role(m.SenderRole),
		MessageType:   domain.MessageKind(m.MessageType),
		Text:          m.Text,
		CreatedAt:     m.CreatedAt,
	}
}
