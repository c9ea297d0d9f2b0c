package domain

import "encoding/json"

// Realtime event names. Client requests carry a seq and receive an ack;
// server pushes carry no seq and expect no reply.
const (
	EventJoinRoom     = "join-room"
	EventOffer        = "offer"
	EventAnswer       = "answer"
	EventICECandidate = "ice-candidate"
	EventChatMessage  = "chat-message"
	EventEndCall      = "end-call"
	EventLeaveRoom    = "leave-room"

	EventAck               = "ack"
	EventConnected         = "connected"
	EventParticipantJoined = "participant-joined"
	EventParticipantLeft   = "participant-left"
	EventCallEnded         = "call-ended"
)

// Envelope is one outbound frame on the realtime channel.
type Envelope struct {
	Event string `json:"event"`
	Seq   uint64 `json:"seq,omitempty"`
	Data  any    `json:"data,omitempty"`
}

// InboundFrame is one client request. Data stays raw until the event name
// selects the payload type.
type InboundFrame struct {
	Event string          `json:"event"`
	Seq   uint64          `json:"seq"`
	Data  json.RawMessage `json:"data"`
}

type JoinRoomRequest struct {
	AppointmentID string `json:"appointmentId"`
}

// RelayRequest carries an offer, answer or ICE candidate toward one peer.
// The negotiation payload is opaque to the server and forwarded verbatim.
type RelayRequest struct {
	RoomID             string          `json:"roomId"`
	TargetConnectionID string          `json:"targetConnectionId"`
	Offer              json.RawMessage `json:"offer,omitempty"`
	Answer             json.RawMessage `json:"answer,omitempty"`
	Candidate          json.RawMessage `json:"candidate,omitempty"`
}

type ChatMessageRequest struct {
	RoomID      string `json:"roomId"`
	MessageType string `json:"messageType"`
	Text        string `json:"text"`
}

type EndCallRequest struct {
	RoomID string `json:"roomId"`
}

// Ack is the result payload answering a client request.
type Ack struct {
	OK           bool               `json:"ok"`
	Error        string             `json:"error,omitempty"`
	RoomID       string             `json:"roomId,omitempty"`
	ConnectionID string             `json:"connectionId,omitempty"`
	Appointment  *PublicAppointment `json:"appointment,omitempty"`
	Participants []ParticipantInfo  `json:"participants,omitempty"`
	Message      *ChatMessage       `json:"message,omitempty"`
}

// ParticipantInfo identifies one room occupant toward other clients.
type ParticipantInfo struct {
	ConnectionID string `json:"connectionId"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
}

// RelayForward is the envelope data delivered to the relay target. Exactly
// one of Offer, Answer and Candidate is set, matching the event name.
type RelayForward struct {
	RoomID           string          `json:"roomId"`
	AppointmentID    string          `json:"appointmentId,omitempty"`
	FromConnectionID string          `json:"fromConnectionId"`
	Offer            json.RawMessage `json:"offer,omitempty"`
	Answer           json.RawMessage `json:"answer,omitempty"`
	Candidate        json.RawMessage `json:"candidate,omitempty"`
}

// ParticipantNotice announces a join or leave to the remaining occupant.
type ParticipantNotice struct {
	RoomID        string `json:"roomId"`
	AppointmentID string `json:"appointmentId"`
	ConnectionID  string `json:"connectionId"`
	Email         string `json:"email"`
	Role          Role   `json:"role,omitempty"`
}

type CallEndedNotice struct {
	RoomID           string `json:"roomId"`
	AppointmentID    string `json:"appointmentId"`
	FromConnectionID string `json:"fromConnectionId"`
}

type ConnectedNotice struct {
	ConnectionID string `json:"connectionId"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
}
