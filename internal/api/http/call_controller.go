package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/aureliov/medicall/internal/domain"
	"github.com/aureliov/medicall/internal/service"
	"github.com/aureliov/medicall/lib/logger/sl"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// CallController terminates the realtime signaling channel. Each websocket
// gets one read loop (this handler) and one writer goroutine; acks and
// server pushes share the client's event channel, so everything a client
// receives is written in enqueue order.
type CallController struct {
	auth     *service.AuthService
	calls    service.CallInteractor
	upgrader websocket.Upgrader
	log      *slog.Logger
}

func NewCallController(auth *service.AuthService, calls service.CallInteractor, log *slog.Logger) *CallController {
	if log == nil {
		log = slog.Default()
	}
	return &CallController{
		auth:  auth,
		calls: calls,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		log: log,
	}
}

func (c *CallController) Connect(ctx *gin.Context) {
	identity, err := c.auth.IdentityFromToken(tokenFromRequest(ctx))
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	conn, err := c.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		c.log.Debug("websocket upgrade failed", sl.Err(err))
		return
	}

	client := domain.NewClient(identity)
	log := c.log.With(
		slog.String("connection_id", client.ID),
		slog.String("subject", identity.Email),
		slog.String("role", string(identity.Role)),
	)
	log.Info("client connected")

	go c.writePump(conn, client)

	client.Deliver(domain.Envelope{
		Event: domain.EventConnected,
		Data: domain.ConnectedNotice{
			ConnectionID: client.ID,
			Email:        identity.Email,
			Role:         identity.Role,
		},
	})

	for {
		var frame domain.InboundFrame
		if err := conn.ReadJSON(&frame); err != nil {
			c.calls.Leave(client, domain.CallEventDisconnect)
			client.Close()
			conn.Close()
			log.Info("client disconnected")
			return
		}
		c.dispatch(client, frame)
	}
}

func (c *CallController) dispatch(client *domain.Client, frame domain.InboundFrame) {
	var ack domain.Ack

	switch frame.Event {
	case domain.EventJoinRoom:
		ack = c.handleJoin(client, frame.Data)
	case domain.EventOffer:
		ack = c.handleRelay(client, frame.Data, c.calls.RelayOffer, service.ErrInvalidOfferPayload)
	case domain.EventAnswer:
		ack = c.handleRelay(client, frame.Data, c.calls.RelayAnswer, service.ErrInvalidAnswerPayload)
	case domain.EventICECandidate:
		ack = c.handleRelay(client, frame.Data, c.calls.RelayICECandidate, service.ErrInvalidICEPayload)
	case domain.EventChatMessage:
		ack = c.handleChat(client, frame.Data)
	case domain.EventEndCall:
		ack = c.handleEndCall(client, frame.Data)
	case domain.EventLeaveRoom:
		c.calls.Leave(client, domain.CallEventLeave)
		ack = domain.Ack{OK: true}
	default:
		ack = failAck(service.ErrUnsupportedEvent)
	}

	client.Deliver(domain.Envelope{Event: domain.EventAck, Seq: frame.Seq, Data: ack})
}

func (c *CallController) handleJoin(client *domain.Client, data json.RawMessage) domain.Ack {
	var req domain.JoinRoomRequest
	if len(data) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			return failAck(service.ErrInvalidAppointmentID)
		}
	}

	result, err := c.calls.Join(context.Background(), client, req.AppointmentID)
	if err != nil {
		return failAck(err)
	}

	appt := result.Appointment.Public()
	return domain.Ack{
		OK:           true,
		RoomID:       result.RoomID,
		Appointment:  &appt,
		Participants: result.Participants,
	}
}

func (c *CallController) handleRelay(client *domain.Client, data json.RawMessage, relay func(*domain.Client, domain.RelayRequest) error, invalidErr error) domain.Ack {
	var req domain.RelayRequest
	if len(data) == 0 {
		return failAck(invalidErr)
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return failAck(invalidErr)
	}

	if err := relay(client, req); err != nil {
		return failAck(err)
	}
	return domain.Ack{OK: true}
}

func (c *CallController) handleChat(client *domain.Client, data json.RawMessage) domain.Ack {
	var req domain.ChatMessageRequest
	if len(data) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			return failAck(service.ErrMessageTextRequired)
		}
	}

	msg, err := c.calls.SendMessage(context.Background(), client, req)
	if err != nil {
		return failAck(err)
	}
	return domain.Ack{OK: true, Message: msg}
}

func (c *CallController) handleEndCall(client *domain.Client, data json.RawMessage) domain.Ack {
	var req domain.EndCallRequest
	if len(data) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			return failAck(service.ErrNotInRoom)
		}
	}

	if err := c.calls.EndCall(client, req); err != nil {
		return failAck(err)
	}
	return domain.Ack{OK: true}
}

func (c *CallController) writePump(conn *websocket.Conn, client *domain.Client) {
	defer conn.Close()
	for {
		select {
		case <-client.Done():
			return
		case env := <-client.Events():
			if err := conn.WriteJSON(env); err != nil {
				client.Close()
				return
			}
		}
	}
}

func failAck(err error) domain.Ack {
	return domain.Ack{OK: false, Error: err.Error()}
}
