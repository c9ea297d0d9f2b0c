package service

import "errors"

// Stable, machine-readable failure reasons surfaced to clients verbatim in
// ack payloads and REST error bodies.
var (
	ErrUnauthorized = errors.New("unauthorized")

	ErrInvalidAppointmentID    = errors.New("invalid_appointment_id")
	ErrAppointmentNotFound     = errors.New("appointment_not_found")
	ErrAppointmentNotJoinable  = errors.New("appointment_not_joinable")
	ErrAppointmentAccessDenied = errors.New("appointment_access_denied")

	ErrRoomFull        = errors.New("room_full")
	ErrNotInRoom       = errors.New("not_in_room")
	ErrTargetNotInRoom = errors.New("target_not_in_room")
	ErrJoinRoomFailed  = errors.New("join_room_failed")

	ErrInvalidOfferPayload  = errors.New("invalid_offer_payload")
	ErrInvalidAnswerPayload = errors.New("invalid_answer_payload")
	ErrInvalidICEPayload    = errors.New("invalid_ice_payload")

	ErrMessageTextRequired = errors.New("message_text_required")
	ErrMessageTooLong      = errors.New("message_too_long")
	ErrCarePointDoctorOnly = errors.New("care_point_doctor_only")
	ErrChatMessageFailed   = errors.New("chat_message_failed")

	ErrUnsupportedEvent = errors.New("unsupported_event")
)
