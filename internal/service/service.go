package service

import (
	"context"

	"github.com/aureliov/medicall/internal/domain"
	"github.com/pion/webrtc/v3"
)

type CallInteractor interface {
	Join(ctx context.Context, client *domain.Client, appointmentID string) (*JoinResult, error)
	Leave(client *domain.Client, reason domain.CallEventKind)
	RelayOffer(client *domain.Client, req domain.RelayRequest) error
	RelayAnswer(client *domain.Client, req domain.RelayRequest) error
	RelayICECandidate(client *domain.Client, req domain.RelayRequest) error
	SendMessage(ctx context.Context, client *domain.Client, req domain.ChatMessageRequest) (*domain.ChatMessage, error)
	EndCall(client *domain.Client, req domain.EndCallRequest) error
}

type TelemedicineInteractor interface {
	ICEServers() ([]webrtc.ICEServer, bool)
	ListAppointments(ctx context.Context, identity domain.Identity, query AppointmentQuery) (*AppointmentListing, error)
	MessageHistory(ctx context.Context, identity domain.Identity, appointmentID string, limit int) ([]*domain.ChatMessage, error)
	CreateMessage(ctx context.Context, identity domain.Identity, appointmentID string, input CreateMessageInput) (*domain.ChatMessage, error)
}
