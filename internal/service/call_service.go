package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/aureliov/medicall/internal/domain"
	"github.com/aureliov/medicall/internal/repository"
	"github.com/aureliov/medicall/lib/logger/sl"
)

const maxRoomIDLength = 64

// CallService owns the room registry and everything that happens inside an
// admitted room: signaling relay, session messages, call teardown. The
// registry map is the only state shared across connection tasks; one mutex
// guards it, and the membership size check and insert always happen inside
// the same critical section.
type CallService struct {
	authorizer *Authorizer
	messages   repository.MessageRepository
	audit      *AuditRecorder
	log        *slog.Logger

	mu    sync.Mutex
	rooms map[string]*domain.Room
}

func NewCallService(authorizer *Authorizer, messages repository.MessageRepository, audit *AuditRecorder, log *slog.Logger) *CallService {
	if log == nil {
		log = slog.Default()
	}
	return &CallService{
		authorizer: authorizer,
		messages:   messages,
		audit:      audit,
		log:        log,
		rooms:      make(map[string]*domain.Room),
	}
}

// JoinResult is the successful outcome of a join, returned to the caller
// through its ack.
type JoinResult struct {
	RoomID       string
	Appointment  *domain.Appointment
	Participants []domain.ParticipantInfo
}

// Join admits the client into the appointment's room. Authorization is
// evaluated from scratch on every call, including rejoin after reconnect.
// Joining while in another room leaves that room first.
func (s *CallService) Join(ctx context.Context, client *domain.Client, appointmentID string) (*JoinResult, error) {
	const op = "service.call.join"

	id := domain.NormalizeAppointmentID(appointmentID)
	if id == "" {
		return nil, ErrInvalidAppointmentID
	}

	log := s.log.With(
		slog.String("op", op),
		slog.String("appointment_id", id),
		slog.String("connection_id", client.ID),
	)

	appt, err := s.authorizer.AuthorizeJoin(ctx, client.Identity, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrAppointmentNotFound),
			errors.Is(err, ErrAppointmentNotJoinable),
			errors.Is(err, ErrAppointmentAccessDenied):
			return nil, err
		default:
			log.Error("join failed", sl.Err(err))
			return nil, ErrJoinRoomFailed
		}
	}

	roomID := domain.RoomIDForAppointment(id)

	// At most one room per connection.
	s.Leave(client, domain.CallEventLeave)

	s.mu.Lock()
	room, ok := s.rooms[roomID]
	if !ok {
		room = domain.NewRoom(id)
	}
	if len(room.Clients) >= domain.RoomCapacity {
		s.mu.Unlock()
		return nil, ErrRoomFull
	}
	if !ok {
		s.rooms[roomID] = room
	}
	room.Clients[client.ID] = client
	others := membersExcept(room, client.ID)
	s.mu.Unlock()

	client.SetRoom(roomID, id)

	participants := make([]domain.ParticipantInfo, 0, len(others))
	for _, other := range others {
		participants = append(participants, domain.ParticipantInfo{
			ConnectionID: other.ID,
			Email:        other.Identity.Email,
			Role:         other.Identity.Role,
		})
	}

	notice := domain.ParticipantNotice{
		RoomID:        roomID,
		AppointmentID: id,
		ConnectionID:  client.ID,
		Email:         client.Identity.Email,
		Role:          client.Identity.Role,
	}
	for _, other := range others {
		other.Enqueue(domain.Envelope{Event: domain.EventParticipantJoined, Data: notice})
	}

	s.audit.Record(domain.NewCallEvent(id, roomID, domain.CallEventJoin, client.Identity))

	log.Info("client joined room",
		slog.String("room_id", roomID),
		slog.Int("participants", len(participants)+1),
	)

	return &JoinResult{
		RoomID:       roomID,
		Appointment:  appt,
		Participants: participants,
	}, nil
}

// Leave removes the client from its current room. Idempotent: a client in
// no room is a no-op, and the peer is never notified twice.
func (s *CallService) Leave(client *domain.Client, reason domain.CallEventKind) {
	roomID, appointmentID := client.Room()
	if roomID == "" {
		return
	}
	client.ClearRoom()

	var others []*domain.Client
	s.mu.Lock()
	if room, ok := s.rooms[roomID]; ok {
		if _, member := room.Clients[client.ID]; member {
			delete(room.Clients, client.ID)
			others = membersExcept(room, client.ID)
			if len(room.Clients) == 0 {
				delete(s.rooms, roomID)
			}
		}
	}
	s.mu.Unlock()

	notice := domain.ParticipantNotice{
		RoomID:        roomID,
		AppointmentID: appointmentID,
		ConnectionID:  client.ID,
		Email:         client.Identity.Email,
	}
	for _, other := range others {
		other.Enqueue(domain.Envelope{Event: domain.EventParticipantLeft, Data: notice})
	}

	if appointmentID != "" {
		s.audit.Record(domain.NewCallEvent(appointmentID, roomID, reason, client.Identity))
	}
}

func (s *CallService) RelayOffer(client *domain.Client, req domain.RelayRequest) error {
	return s.relay(client, req, req.Offer, domain.EventOffer, ErrInvalidOfferPayload, domain.CallEventOffer)
}

func (s *CallService) RelayAnswer(client *domain.Client, req domain.RelayRequest) error {
	return s.relay(client, req, req.Answer, domain.EventAnswer, ErrInvalidAnswerPayload, domain.CallEventAnswer)
}

// RelayICECandidate forwards a candidate without recording an audit event;
// candidates arrive in floods and carry no forensic value individually.
func (s *CallService) RelayICECandidate(client *domain.Client, req domain.RelayRequest) error {
	return s.relay(client, req, req.Candidate, domain.EventICECandidate, ErrInvalidICEPayload, "")
}

// relay forwards one opaque negotiation payload to a single peer in the
// caller's room. The payload is never inspected or mutated.
func (s *CallService) relay(client *domain.Client, req domain.RelayRequest, payload json.RawMessage, event string, invalidErr error, auditKind domain.CallEventKind) error {
	target := strings.TrimSpace(req.TargetConnectionID)
	currentRoom, appointmentID := client.Room()

	roomID := normalizeRoomID(req.RoomID)
	if roomID == "" {
		roomID = currentRoom
	}
	if roomID == "" || target == "" || len(payload) == 0 {
		return invalidErr
	}
	if roomID != currentRoom {
		return ErrNotInRoom
	}

	s.mu.Lock()
	var targetClient *domain.Client
	if room, ok := s.rooms[roomID]; ok {
		targetClient = room.Clients[target]
	}
	s.mu.Unlock()
	if targetClient == nil {
		return ErrTargetNotInRoom
	}

	forward := domain.RelayForward{
		RoomID:           roomID,
		FromConnectionID: client.ID,
	}
	switch event {
	case domain.EventOffer:
		forward.AppointmentID = appointmentID
		forward.Offer = payload
	case domain.EventAnswer:
		forward.AppointmentID = appointmentID
		forward.Answer = payload
	default:
		forward.Candidate = payload
	}

	targetClient.Enqueue(domain.Envelope{Event: event, Data: forward})

	if auditKind != "" && appointmentID != "" {
		audit := domain.NewCallEvent(appointmentID, roomID, auditKind, client.Identity)
		audit.TargetConnectionID = target
		s.audit.Record(audit)
	}

	return nil
}

// SendMessage validates, persists and fans out a session message. The
// sender's ack waits for persistence; peers see the message only after the
// store accepted it, and the sender receives its own broadcast so everyone
// shares one ordering.
func (s *CallService) SendMessage(ctx context.Context, client *domain.Client, req domain.ChatMessageRequest) (*domain.ChatMessage, error) {
	const op = "service.call.sendMessage"

	currentRoom, appointmentID := client.Room()
	roomID := normalizeRoomID(req.RoomID)
	if roomID == "" {
		roomID = currentRoom
	}
	if currentRoom == "" || roomID != currentRoom || appointmentID == "" {
		return nil, ErrNotInRoom
	}

	text := domain.SanitizeMessageText(req.Text)
	if text == "" {
		return nil, ErrMessageTextRequired
	}
	if len([]rune(text)) > domain.MaxMessageLength {
		return nil, ErrMessageTooLong
	}

	kind := domain.NormalizeMessageKind(req.MessageType)
	if kind == domain.MessageKindCarePoint && !client.Identity.CanCreateCarePoint() {
		return nil, ErrCarePointDoctorOnly
	}

	msg := domain.NewChatMessage(appointmentID, roomID, client.Identity, kind, text)
	if err := s.messages.Create(ctx, msg); err != nil {
		s.log.Error("message persistence failed",
			slog.String("op", op),
			slog.String("appointment_id", appointmentID),
			sl.Err(err),
		)
		return nil, ErrChatMessageFailed
	}

	envelope := domain.Envelope{Event: domain.EventChatMessage, Data: msg}
	s.mu.Lock()
	var members []*domain.Client
	if room, ok := s.rooms[roomID]; ok {
		members = membersExcept(room, "")
	}
	s.mu.Unlock()
	for _, member := range members {
		member.Enqueue(envelope)
	}

	if kind == domain.MessageKindCarePoint {
		note := domain.NewCallEvent(appointmentID, roomID, domain.CallEventCarePoint, client.Identity)
		note.Metadata = map[string]string{"messageId": msg.ID}
		s.audit.Record(note)
	}

	return msg, nil
}

// EndCall notifies the other occupant that the caller hung up. The caller
// stays in the room; leaving is a separate operation.
func (s *CallService) EndCall(client *domain.Client, req domain.EndCallRequest) error {
	currentRoom, appointmentID := client.Room()
	roomID := normalizeRoomID(req.RoomID)
	if roomID == "" {
		roomID = currentRoom
	}
	if currentRoom == "" || roomID != currentRoom {
		return ErrNotInRoom
	}

	notice := domain.CallEndedNotice{
		RoomID:           roomID,
		AppointmentID:    appointmentID,
		FromConnectionID: client.ID,
	}
	s.mu.Lock()
	var others []*domain.Client
	if room, ok := s.rooms[roomID]; ok {
		others = membersExcept(room, client.ID)
	}
	s.mu.Unlock()
	for _, other := range others {
		other.Enqueue(domain.Envelope{Event: domain.EventCallEnded, Data: notice})
	}

	if appointmentID != "" {
		s.audit.Record(domain.NewCallEvent(appointmentID, roomID, domain.CallEventEnd, client.Identity))
	}

	return nil
}

// RoomSize reports current membership, for observability.
func (s *CallService) RoomSize(roomID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if room, ok := s.rooms[roomID]; ok {
		return len(room.Clients)
	}
	return 0
}

// membersExcept snapshots room membership. Callers must hold the registry
// mutex.
func membersExcept(room *domain.Room, exclude string) []*domain.Client {
	members := make([]*domain.Client, 0, len(room.Clients))
	for id, member := range room.Clients {
		if id == exclude {
			continue
		}
		members = append(members, member)
	}
	return members
}

func normalizeRoomID(value string) string {
	id := strings.ToLower(strings.TrimSpace(value))
	if len(id) > maxRoomIDLength {
		id = id[:maxRoomIDLength]
	}
	return id
}
