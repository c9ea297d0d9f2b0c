package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aureliov/medicall/internal/domain"
	"github.com/aureliov/medicall/internal/repository"
	"github.com/stretchr/testify/require"
)

type callFixture struct {
	calls    *CallService
	messages *repository.InMemoryMessageRepository
	events   *repository.InMemoryCallEventRepository
	audit    *AuditRecorder
}

func newCallFixture(appointments ...*domain.Appointment) *callFixture {
	apptRepo := repository.NewInMemoryAppointmentRepository()
	for _, appt := range appointments {
		apptRepo.Put(appt)
	}
	messages := repository.NewInMemoryMessageRepository()
	events := repository.NewInMemoryCallEventRepository()
	audit := NewAuditRecorder(events, nil)
	calls := NewCallService(NewAuthorizer(apptRepo, nil), messages, audit, nil)

	return &callFixture{calls: calls, messages: messages, events: events, audit: audit}
}

func nextEvent(t *testing.T, client *domain.Client) domain.Envelope {
	t.Helper()
	select {
	case env := <-client.Events():
		return env
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for client event")
		return domain.Envelope{}
	}
}

func noEvent(t *testing.T, client *domain.Client) {
	t.Helper()
	select {
	case env := <-client.Events():
		t.Fatalf("unexpected event %q", env.Event)
	case <-time.After(50 * time.Millisecond):
	}
}

func patientIdentity() domain.Identity {
	return domain.NewIdentity("patient@example.com", domain.RoleUser, 0)
}

func doctorIdentity() domain.Identity {
	return domain.NewIdentity("doc@example.com", domain.RoleDoctor, 7)
}

func TestJoinInvalidAppointmentID(t *testing.T) {
	req := require.New(t)
	fix := newCallFixture()

	client := domain.NewClient(patientIdentity())
	_, err := fix.calls.Join(context.Background(), client, "not-an-id")
	req.ErrorIs(err, ErrInvalidAppointmentID)
}

func TestJoinDeniedLeavesRoomUntouched(t *testing.T) {
	req := require.New(t)
	fix := newCallFixture(bookedAppointment())

	patient := domain.NewClient(patientIdentity())
	_, err := fix.calls.Join(context.Background(), patient, apptID)
	req.NoError(err)

	stranger := domain.NewClient(domain.NewIdentity("stranger@example.com", domain.RoleUser, 0))
	_, err = fix.calls.Join(context.Background(), stranger, apptID)
	req.ErrorIs(err, ErrAppointmentAccessDenied)

	req.Equal(1, fix.calls.RoomSize(domain.RoomIDForAppointment(apptID)))
	noEvent(t, patient)
}

func TestRoomCapacity(t *testing.T) {
	req := require.New(t)
	fix := newCallFixture(bookedAppointment())

	patient := domain.NewClient(patientIdentity())
	doctor := domain.NewClient(doctorIdentity())
	admin := domain.NewClient(domain.NewIdentity("admin@example.com", domain.RoleAdmin, 0))

	res, err := fix.calls.Join(context.Background(), patient, apptID)
	req.NoError(err)
	req.Empty(res.Participants)

	res, err = fix.calls.Join(context.Background(), doctor, apptID)
	req.NoError(err)
	req.Len(res.Participants, 1)

	_, err = fix.calls.Join(context.Background(), admin, apptID)
	req.ErrorIs(err, ErrRoomFull)
	req.Equal(2, fix.calls.RoomSize(domain.RoomIDForAppointment(apptID)))
}

func TestRoomCapacityUnderConcurrentJoins(t *testing.T) {
	req := require.New(t)
	fix := newCallFixture(bookedAppointment())

	const joiners = 8

	start := make(chan struct{})
	var wg sync.WaitGroup
	errs := make([]error, joiners)

	for i := 0; i < joiners; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			client := domain.NewClient(domain.NewIdentity("admin@example.com", domain.RoleAdmin, 0))
			<-start
			_, errs[i] = fix.calls.Join(context.Background(), client, apptID)
		}(i)
	}

	close(start)
	wg.Wait()

	admitted := 0
	for _, err := range errs {
		if err == nil {
			admitted++
		} else {
			req.ErrorIs(err, ErrRoomFull)
		}
	}
	req.Equal(domain.RoomCapacity, admitted)
	req.Equal(domain.RoomCapacity, fix.calls.RoomSize(domain.RoomIDForAppointment(apptID)))
}

func TestRejoinMovesRooms(t *testing.T) {
	req := require.New(t)
	second := bookedAppointment()
	second.ID = otherApptID
	fix := newCallFixture(bookedAppointment(), second)

	patient := domain.NewClient(patientIdentity())
	doctor := domain.NewClient(doctorIdentity())

	_, err := fix.calls.Join(context.Background(), patient, apptID)
	req.NoError(err)
	_, err = fix.calls.Join(context.Background(), doctor, apptID)
	req.NoError(err)
	req.Equal(domain.EventParticipantJoined, nextEvent(t, patient).Event)

	// Joining elsewhere implicitly leaves the first room.
	_, err = fix.calls.Join(context.Background(), doctor, otherApptID)
	req.NoError(err)

	env := nextEvent(t, patient)
	req.Equal(domain.EventParticipantLeft, env.Event)
	req.Equal(1, fix.calls.RoomSize(domain.RoomIDForAppointment(apptID)))
	req.Equal(1, fix.calls.RoomSize(domain.RoomIDForAppointment(otherApptID)))
}

func TestRelayValidation(t *testing.T) {
	req := require.New(t)
	second := bookedAppointment()
	second.ID = otherApptID
	fix := newCallFixture(bookedAppointment(), second)

	patient := domain.NewClient(patientIdentity())
	doctor := domain.NewClient(doctorIdentity())
	outsider := domain.NewClient(domain.NewIdentity("admin@example.com", domain.RoleAdmin, 0))

	_, err := fix.calls.Join(context.Background(), patient, apptID)
	req.NoError(err)
	_, err = fix.calls.Join(context.Background(), doctor, apptID)
	req.NoError(err)
	_, err = fix.calls.Join(context.Background(), outsider, otherApptID)
	req.NoError(err)

	payload := json.RawMessage(`{"type":"offer","sdp":"v=0"}`)
	roomID := domain.RoomIDForAppointment(apptID)

	// Missing payload or target.
	err = fix.calls.RelayOffer(doctor, domain.RelayRequest{RoomID: roomID, TargetConnectionID: patient.ID})
	req.ErrorIs(err, ErrInvalidOfferPayload)
	err = fix.calls.RelayOffer(doctor, domain.RelayRequest{RoomID: roomID, Offer: payload})
	req.ErrorIs(err, ErrInvalidOfferPayload)

	// Stated room differs from the caller's room.
	err = fix.calls.RelayOffer(doctor, domain.RelayRequest{
		RoomID:             domain.RoomIDForAppointment(otherApptID),
		TargetConnectionID: outsider.ID,
		Offer:              payload,
	})
	req.ErrorIs(err, ErrNotInRoom)

	// Target exists but lives in a different room.
	err = fix.calls.RelayOffer(doctor, domain.RelayRequest{
		RoomID:             roomID,
		TargetConnectionID: outsider.ID,
		Offer:              payload,
	})
	req.ErrorIs(err, ErrTargetNotInRoom)

	// Caller not in any room.
	loner := domain.NewClient(patientIdentity())
	err = fix.calls.RelayAnswer(loner, domain.RelayRequest{
		RoomID:             roomID,
		TargetConnectionID: patient.ID,
		Answer:             payload,
	})
	req.ErrorIs(err, ErrNotInRoom)
}

func TestChatValidation(t *testing.T) {
	req := require.New(t)
	fix := newCallFixture(bookedAppointment())

	patient := domain.NewClient(patientIdentity())
	_, err := fix.calls.Join(context.Background(), patient, apptID)
	req.NoError(err)

	_, err = fix.calls.SendMessage(context.Background(), patient, domain.ChatMessageRequest{Text: "   "})
	req.ErrorIs(err, ErrMessageTextRequired)

	_, err = fix.calls.SendMessage(context.Background(), patient, domain.ChatMessageRequest{
		Text: strings.Repeat("a", domain.MaxMessageLength+1),
	})
	req.ErrorIs(err, ErrMessageTooLong)

	_, err = fix.calls.SendMessage(context.Background(), patient, domain.ChatMessageRequest{
		Text:        "please flag this",
		MessageType: "care-point",
	})
	req.ErrorIs(err, ErrCarePointDoctorOnly)

	loner := domain.NewClient(patientIdentity())
	_, err = fix.calls.SendMessage(context.Background(), loner, domain.ChatMessageRequest{Text: "hello"})
	req.ErrorIs(err, ErrNotInRoom)
}

func TestCarePointFromDoctorPersists(t *testing.T) {
	req := require.New(t)
	fix := newCallFixture(bookedAppointment())

	doctor := domain.NewClient(doctorIdentity())
	_, err := fix.calls.Join(context.Background(), doctor, apptID)
	req.NoError(err)

	msg, err := fix.calls.SendMessage(context.Background(), doctor, domain.ChatMessageRequest{
		Text:        "Take medication X twice daily",
		MessageType: "care-point",
	})
	req.NoError(err)
	req.Equal(domain.MessageKindCarePoint, msg.MessageType)

	stored, err := fix.messages.ListByAppointment(context.Background(), apptID, 10)
	req.NoError(err)
	req.Len(stored, 1)
	req.Equal(domain.MessageKindCarePoint, stored[0].MessageType)

	fix.audit.Wait()
	kinds := make(map[domain.CallEventKind]int)
	for _, event := range fix.events.Events() {
		kinds[event.EventType]++
	}
	req.Equal(1, kinds[domain.CallEventJoin])
	req.Equal(1, kinds[domain.CallEventCarePoint])
}

func TestLeaveIsIdempotent(t *testing.T) {
	req := require.New(t)
	fix := newCallFixture(bookedAppointment())

	patient := domain.NewClient(patientIdentity())
	doctor := domain.NewClient(doctorIdentity())

	_, err := fix.calls.Join(context.Background(), patient, apptID)
	req.NoError(err)
	_, err = fix.calls.Join(context.Background(), doctor, apptID)
	req.NoError(err)
	req.Equal(domain.EventParticipantJoined, nextEvent(t, patient).Event)

	fix.calls.Leave(patient, domain.CallEventLeave)
	req.Equal(domain.EventParticipantLeft, nextEvent(t, doctor).Event)

	// Leaving again, or disconnecting after leaving, does nothing and never
	// double-notifies the peer.
	fix.calls.Leave(patient, domain.CallEventLeave)
	fix.calls.Leave(patient, domain.CallEventDisconnect)
	noEvent(t, doctor)
	req.Equal(1, fix.calls.RoomSize(domain.RoomIDForAppointment(apptID)))
}

func TestCallRoundTrip(t *testing.T) {
	req := require.New(t)
	fix := newCallFixture(bookedAppointment())
	roomID := domain.RoomIDForAppointment(apptID)

	patient := domain.NewClient(patientIdentity())
	doctor := domain.NewClient(doctorIdentity())

	res, err := fix.calls.Join(context.Background(), patient, apptID)
	req.NoError(err)
	req.Equal(roomID, res.RoomID)
	req.Empty(res.Participants)

	res, err = fix.calls.Join(context.Background(), doctor, apptID)
	req.NoError(err)
	req.Len(res.Participants, 1)
	req.Equal(patient.ID, res.Participants[0].ConnectionID)

	env := nextEvent(t, patient)
	req.Equal(domain.EventParticipantJoined, env.Event)
	joined := env.Data.(domain.ParticipantNotice)
	req.Equal(doctor.ID, joined.ConnectionID)
	req.Equal("doc@example.com", joined.Email)

	// Doctor offers, patient answers.
	offer := json.RawMessage(`{"type":"offer","sdp":"v=0"}`)
	req.NoError(fix.calls.RelayOffer(doctor, domain.RelayRequest{
		RoomID:             roomID,
		TargetConnectionID: patient.ID,
		Offer:              offer,
	}))
	env = nextEvent(t, patient)
	req.Equal(domain.EventOffer, env.Event)
	forward := env.Data.(domain.RelayForward)
	req.Equal(doctor.ID, forward.FromConnectionID)
	req.Equal(apptID, forward.AppointmentID)
	req.JSONEq(string(offer), string(forward.Offer))

	answer := json.RawMessage(`{"type":"answer","sdp":"v=0"}`)
	req.NoError(fix.calls.RelayAnswer(patient, domain.RelayRequest{
		RoomID:             roomID,
		TargetConnectionID: doctor.ID,
		Answer:             answer,
	}))
	env = nextEvent(t, doctor)
	req.Equal(domain.EventAnswer, env.Event)

	// ICE flows without audit noise.
	req.NoError(fix.calls.RelayICECandidate(doctor, domain.RelayRequest{
		RoomID:             roomID,
		TargetConnectionID: patient.ID,
		Candidate:          json.RawMessage(`{"candidate":"candidate:1"}`),
	}))
	env = nextEvent(t, patient)
	req.Equal(domain.EventICECandidate, env.Event)

	// Care-point broadcast reaches both sides, sender included.
	msg, err := fix.calls.SendMessage(context.Background(), doctor, domain.ChatMessageRequest{
		Text:        "Take medication X twice daily",
		MessageType: "care-point",
	})
	req.NoError(err)
	for _, client := range []*domain.Client{patient, doctor} {
		env = nextEvent(t, client)
		req.Equal(domain.EventChatMessage, env.Event)
		broadcast := env.Data.(*domain.ChatMessage)
		req.Equal(msg.ID, broadcast.ID)
		req.Equal(domain.MessageKindCarePoint, broadcast.MessageType)
	}

	req.NoError(fix.calls.EndCall(doctor, domain.EndCallRequest{RoomID: roomID}))
	env = nextEvent(t, patient)
	req.Equal(domain.EventCallEnded, env.Event)
	req.Equal(doctor.ID, env.Data.(domain.CallEndedNotice).FromConnectionID)

	fix.calls.Leave(patient, domain.CallEventLeave)
	env = nextEvent(t, doctor)
	req.Equal(domain.EventParticipantLeft, env.Event)
	req.Equal(patient.ID, env.Data.(domain.ParticipantNotice).ConnectionID)

	fix.audit.Wait()
	kinds := make(map[domain.CallEventKind]int)
	for _, event := range fix.events.Events() {
		kinds[event.EventType]++
	}
	req.Equal(2, kinds[domain.CallEventJoin])
	req.Equal(1, kinds[domain.CallEventOffer])
	req.Equal(1, kinds[domain.CallEventAnswer])
	req.Equal(1, kinds[domain.CallEventEnd])
	req.Equal(1, kinds[domain.CallEventLeave])
}
