package domain

import (
	"time"

	"github.com/google/uuid"
)

type CallEventKind string

const (
	CallEventJoin       CallEventKind = "join"
	CallEventLeave      CallEventKind = "leave"
	CallEventDisconnect CallEventKind = "disconnect"
	CallEventOffer      CallEventKind = "offer"
	CallEventAnswer     CallEventKind = "answer"
	CallEventEnd        CallEventKind = "end"
	CallEventCarePoint  CallEventKind = "care-point"
)

// CallEvent is an append-only audit record of a room lifecycle transition.
// Writes are best effort; a lost event never affects the call itself.
type CallEvent struct {
	ID                 string
	AppointmentID      string
	RoomID             string
	EventType          CallEventKind
	ActorEmail         string
	ActorRole          Role
	TargetConnectionID string
	Metadata           map[string]string
	CreatedAt          time.Time
}

func NewCallEvent(appointmentID, roomID string, kind CallEventKind, actor Identity) *CallEvent {
	return &CallEvent{
		ID:            uuid.NewString(),
		AppointmentID: appointmentID,
		RoomID:        roomID,
		EventType:     kind,
		ActorEmail:    actor.Email,
		ActorRole:     actor.Role,
		CreatedAt:     time.Now().UTC(),
	}
}
