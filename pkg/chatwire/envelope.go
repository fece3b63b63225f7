// Package chatwire defines the JSON envelope exchanged over the chat
// websocket. Both the server hub and the client session narrow inbound
// frames into this closed set of event kinds before acting on them.
package chatwire

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type EventType string

const (
	// Client -> server.
	EventJoinRoom        EventType = "join_room"
	EventLeaveRoom       EventType = "leave_room"
	EventMessage         EventType = "message"
	EventTyping          EventType = "typing"
	EventBookingResponse EventType = "booking_response"

	// Server -> client.
	EventPresenceJoined EventType = "presence_joined"
	EventPresenceLeft   EventType = "presence_left"
	EventPresenceState  EventType = "presence_state"
	EventRoomJoined     EventType = "room_joined"
	EventRoomLeft       EventType = "room_left"
	EventError          EventType = "error"
)

// Message types and booking-proposal statuses as carried on the wire.
const (
	TypeText     = "text"
	TypeImage    = "image"
	TypeFile     = "file"
	TypeLink     = "link"
	TypeProposal = "booking_proposal"

	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusDeclined = "declined"
)

var ErrUnknownEventType = errors.New("unknown event type")

type Envelope struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Message is the wire shape of a chat message. ID is zero until the
// server has accepted the message; ClientID is the sender-generated
// correlation id and is preserved on the server's echo.
type Message struct {
	ID         uint             `json:"id"`
	ClientID   string           `json:"client_id"`
	RoomID     string           `json:"room_id"`
	SenderID   uint             `json:"sender_id"`
	SenderName string           `json:"sender_name,omitempty"`
	Type       string           `json:"type"`
	Content    string           `json:"content"`
	Proposal   *BookingProposal `json:"proposal,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

type BookingProposal struct {
	EventID       uint    `json:"event_id"`
	EventName     string  `json:"event_name"`
	Price         float64 `json:"price"`
	OfficiantID   uint    `json:"officiant_id"`
	OfficiantName string  `json:"officiant_name"`
	CoupleID      uint    `json:"couple_id"`
	CoupleName    string  `json:"couple_name"`
	Status        string  `json:"status"`
}

type TypingPayload struct {
	RoomID   string `json:"room_id"`
	UserID   uint   `json:"user_id"`
	IsTyping bool   `json:"is_typing"`
}

type PresencePayload struct {
	UserID uint `json:"user_id"`
}

type PresenceStatePayload struct {
	Online []uint `json:"online"`
}

type RoomPayload struct {
	RoomID string `json:"room_id"`
}

// BookingResponsePayload carries an accept/decline for an existing
// booking_proposal message, and the server's broadcast of the resulting
// status. The status change is applied to the referenced message, never
// appended as a new one.
type BookingResponsePayload struct {
	RoomID      string `json:"room_id"`
	MessageID   uint   `json:"message_id"`
	ResponderID uint   `json:"responder_id"`
	Status      string `json:"status"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// NewEnvelope marshals payload into an Envelope's raw payload.
func NewEnvelope(t EventType, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("json.Marshal -> %w", err)
	}

	return Envelope{Type: t, Payload: raw}, nil
}

// Encode marshals a complete envelope ready for a websocket text frame.
func Encode(t EventType, payload any) ([]byte, error) {
	env, err := NewEnvelope(t, payload)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal -> %w", err)
	}

	return data, nil
}

// Decode parses a raw frame into an Envelope, rejecting event kinds
// outside the closed set so "any"-shaped payloads never travel further.
func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("json.Unmarshal -> %w", err)
	}

	switch env.Type {
	case EventJoinRoom, EventLeaveRoom, EventMessage, EventTyping, EventBookingResponse,
		EventPresenceJoined, EventPresenceLeft, EventPresenceState,
		EventRoomJoined, EventRoomLeft, EventError:
		return env, nil
	}

	return Envelope{}, fmt.Errorf("%w: %q", ErrUnknownEventType, env.Type)
}

// DecodePayload narrows an envelope's raw payload into a concrete type.
func DecodePayload[T any](env Envelope) (T, error) {
	var payload T
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		return payload, fmt.Errorf("json.Unmarshal -> %w", err)
	}

	return payload, nil
}
