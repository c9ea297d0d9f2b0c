package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aureliov/medicall/internal/config"
	"github.com/aureliov/medicall/internal/domain"
	"github.com/aureliov/medicall/internal/repository"
	"github.com/pion/webrtc/v3"
)

const (
	defaultAppointmentLimit = 20
	maxAppointmentLimit     = 100
	defaultHistoryLimit     = 100
	maxHistoryLimit         = 500
	maxStoredRoomIDLength   = 128
)

// TelemedicineService backs the companion REST API used by clients without
// an open realtime connection.
type TelemedicineService struct {
	authorizer   *Authorizer
	appointments repository.AppointmentRepository
	doctors      repository.DoctorRepository
	messages     repository.MessageRepository
	webrtcCfg    config.WebRTCConfig
	log          *slog.Logger
}

func NewTelemedicineService(
	authorizer *Authorizer,
	appointments repository.AppointmentRepository,
	doctors repository.DoctorRepository,
	messages repository.MessageRepository,
	webrtcCfg config.WebRTCConfig,
	log *slog.Logger,
) *TelemedicineService {
	if log == nil {
		log = slog.Default()
	}
	return &TelemedicineService{
		authorizer:   authorizer,
		appointments: appointments,
		doctors:      doctors,
		messages:     messages,
		webrtcCfg:    webrtcCfg,
		log:          log,
	}
}

// ICEServers builds the client ICE configuration. STUN is always present;
// a TURN entry is included only when its urls, username and credential are
// all configured, and the flag tells the client whether relaying is
// available.
func (s *TelemedicineService) ICEServers() ([]webrtc.ICEServer, bool) {
	servers := make([]webrtc.ICEServer, 0, 2)

	if len(s.webrtcCfg.STUNServers) > 0 {
		servers = append(servers, webrtc.ICEServer{URLs: s.webrtcCfg.STUNServers})
	}

	hasTURN := len(s.webrtcCfg.TURNServers) > 0 &&
		strings.TrimSpace(s.webrtcCfg.TURNUsername) != "" &&
		strings.TrimSpace(s.webrtcCfg.TURNCredential) != ""
	if hasTURN {
		servers = append(servers, webrtc.ICEServer{
			URLs:       s.webrtcCfg.TURNServers,
			Username:   s.webrtcCfg.TURNUsername,
			Credential: s.webrtcCfg.TURNCredential,
		})
	}

	if len(servers) == 0 {
		servers = append(servers, webrtc.ICEServer{URLs: []string{"stun:stun.l.google.com:19302"}})
	}

	return servers, hasTURN
}

// AppointmentQuery narrows and paginates the caller's appointment listing.
type AppointmentQuery struct {
	Page   int
	Limit  int
	Status string
}

// AppointmentListing bundles one page of appointments with the doctors
// referenced by it.
type AppointmentListing struct {
	Items     []*domain.Appointment
	DoctorsBy map[int64]*domain.Doctor
	Total     int64
	Page      int
	Limit     int
}

// ListAppointments returns the caller's joinable appointments: admins see
// everything, doctors their own schedule, patients the appointments they
// created. Cancelled appointments are hidden unless a status is asked for
// explicitly.
func (s *TelemedicineService) ListAppointments(ctx context.Context, identity domain.Identity, query AppointmentQuery) (*AppointmentListing, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = defaultAppointmentLimit
	}
	if limit > maxAppointmentLimit {
		limit = maxAppointmentLimit
	}

	filter := repository.AppointmentFilter{
		Page:  page,
		Limit: limit,
	}
	switch identity.Role {
	case domain.RoleAdmin:
	case domain.RoleDoctor:
		if identity.DoctorID != 0 {
			filter.DoctorID = identity.DoctorID
		} else {
			// A doctor token without a doctorId claim has no schedule
			// to scope by; fall back to appointments the subject
			// created instead of listing everyone's.
			filter.CreatedBy = identity.Email
		}
	default:
		filter.CreatedBy = identity.Email
	}
	if status := strings.TrimSpace(query.Status); status != "" {
		filter.Status = status
	} else {
		filter.ExcludeStatus = domain.AppointmentStatusCancelled
	}

	items, total, err := s.appointments.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	doctorIDs := make([]int64, 0, len(items))
	seen := make(map[int64]struct{}, len(items))
	for _, appt := range items {
		if appt.DoctorID == 0 {
			continue
		}
		if _, ok := seen[appt.DoctorID]; ok {
			continue
		}
		seen[appt.DoctorID] = struct{}{}
		doctorIDs = append(doctorIDs, appt.DoctorID)
	}

	doctorsBy := make(map[int64]*domain.Doctor, len(doctorIDs))
	if len(doctorIDs) > 0 {
		doctors, err := s.doctors.GetByIDs(ctx, doctorIDs)
		if err != nil {
			return nil, err
		}
		for _, doctor := range doctors {
			doctorsBy[doctor.ID] = doctor
		}
	}

	return &AppointmentListing{
		Items:     items,
		DoctorsBy: doctorsBy,
		Total:     total,
		Page:      page,
		Limit:     limit,
	}, nil
}

// MessageHistory returns the appointment's persisted session messages in
// insertion order. The caller must pass the same access rule as the call
// room itself.
func (s *TelemedicineService) MessageHistory(ctx context.Context, identity domain.Identity, appointmentID string, limit int) ([]*domain.ChatMessage, error) {
	id := domain.NormalizeAppointmentID(appointmentID)
	if id == "" {
		return nil, ErrInvalidAppointmentID
	}
	if _, err := s.authorizer.AuthorizeAccess(ctx, identity, id); err != nil {
		return nil, err
	}

	if limit < 1 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	return s.messages.ListByAppointment(ctx, id, limit)
}

// CreateMessageInput is the REST message payload.
type CreateMessageInput struct {
	Text        string
	MessageType string
	RoomID      string
}

// CreateMessage appends a session message without a realtime connection.
// Unlike the realtime path, overlong text is truncated instead of rejected:
// an asynchronous caller gets best-effort storage rather than feedback.
func (s *TelemedicineService) CreateMessage(ctx context.Context, identity domain.Identity, appointmentID string, input CreateMessageInput) (*domain.ChatMessage, error) {
	id := domain.NormalizeAppointmentID(appointmentID)
	if id == "" {
		return nil, ErrInvalidAppointmentID
	}
	if _, err := s.authorizer.AuthorizeAccess(ctx, identity, id); err != nil {
		return nil, err
	}

	text := domain.SanitizeMessageText(input.Text)
	if text == "" {
		return nil, ErrMessageTextRequired
	}
	text = domain.TruncateMessageText(text)

	kind := domain.NormalizeMessageKind(input.MessageType)
	if kind == domain.MessageKindCarePoint && !identity.CanCreateCarePoint() {
		return nil, ErrCarePointDoctorOnly
	}

	roomID := strings.TrimSpace(input.RoomID)
	if roomID == "" {
		roomID = domain.RoomIDForAppointment(id)
	}
	if len(roomID) > maxStoredRoomIDLength {
		roomID = roomID[:maxStoredRoomIDLength]
	}

	msg := domain.NewChatMessage(id, roomID, identity, kind, text)
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	return msg, nil
}
