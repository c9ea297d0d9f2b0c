package domain

import "time"

// RoomCapacity is the hard upper bound on concurrent room members. A call
// is always between exactly two participants.
const RoomCapacity = 2

const roomIDPrefix = "appointment:"

// RoomIDForAppointment derives the deterministic room identifier for an
// appointment. One room per appointment, stable across reconnects.
func RoomIDForAppointment(appointmentID string) string {
	return roomIDPrefix + appointmentID
}

// Room is the in-memory signaling channel for one appointment. It is
// created on the first successful join and dropped when the last member
// leaves; nothing is persisted.
//
// Rooms carry no lock of their own: every read and mutation of Clients
// happens under the registry mutex in the call service.
type Room struct {
	ID            string
	AppointmentID string
	Clients       map[string]*Client
	CreatedAt     time.Time
}

func NewRoom(appointmentID string) *Room {
	return &Room{
		ID:            RoomIDForAppointment(appointmentID),
		AppointmentID: appointmentID,
		Clients:       make(map[string]*Client, RoomCapacity),
		CreatedAt:     time.Now().UTC(),
	}
}
