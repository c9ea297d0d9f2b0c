package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type MessageKind string

const (
	MessageKindChat      MessageKind = "chat"
	MessageKindCarePoint MessageKind = "care-point"
)

// MaxMessageLength bounds the text of a session message in characters.
const MaxMessageLength = 1000

// NormalizeMessageKind maps any raw value onto the two supported kinds,
// defaulting to chat.
func NormalizeMessageKind(value string) MessageKind {
	kind := strings.ToLower(strings.TrimSpace(value))
	if kind == string(MessageKindCarePoint) {
		return MessageKindCarePoint
	}
	return MessageKindChat
}

// SanitizeMessageText trims surrounding whitespace. Length enforcement is
// left to the caller: the realtime path rejects overlong text, the REST
// fallback truncates it.
func SanitizeMessageText(value string) string {
	return strings.TrimSpace(value)
}

// TruncateMessageText bounds text to MaxMessageLength runes.
func TruncateMessageText(text string) string {
	runes := []rune(text)
	if len(runes) <= MaxMessageLength {
		return text
	}
	return string(runes[:MaxMessageLength])
}

// ChatMessage is a persisted session message scoped to an appointment's
// room. Immutable once created.
type ChatMessage struct {
	ID            string      `json:"id"`
	AppointmentID string      `json:"appointmentId"`
	RoomID        string      `json:"roomId"`
	SenderEmail   string      `json:"senderEmail"`
	SenderRole    Role        `json:"senderRole"`
	MessageType   MessageKind `json:"messageType"`
	Text          string      `json:"text"`
	CreatedAt     time.Time   `json:"createdAt"`
}

func NewChatMessage(appointmentID, roomID string, sender Identity, kind MessageKind, text string) *ChatMessage {
	return &ChatMessage{
		ID:            uuid.NewString(),
		AppointmentID: appointmentID,
		RoomID:        roomID,
		SenderEmail:   sender.Email,
		SenderRole:    sender.Role,
		MessageType:   kind,
		Text:          text,
		CreatedAt:     time.Now().UTC(),
	}
}
