package domain

import "time"

const (
	MessageTypeText     = "text"
	MessageTypeImage    = "image"
	MessageTypeFile     = "file"
	MessageTypeLink     = "link"
	MessageTypeProposal = "booking_proposal"
)

const (
	ProposalStatusPending  = "pending"
	ProposalStatusAccepted = "accepted"
	ProposalStatusDeclined = "declined"
)

// Message is one unit of conversation between a couple and an officiant.
// ClientID is generated by the sender before the server ever sees the
// message; ID is assigned once the server accepts it.
type Message struct {
	ID         uint             `json:"id"`
	ClientID   string           `json:"client_id"`
	RoomID     string           `json:"room_id"`
	SenderID   uint             `json:"sender_id"`
	SenderName string           `json:"sender_name"`
	Type       string           `json:"type"`
	Content    string           `json:"content"`
	Proposal   *BookingProposal `json:"proposal,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

// BookingProposal is the structured payload of a booking_proposal
// message. Status moves pending -> accepted or pending -> declined,
// exactly once.
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

func ValidMessageType(t string) bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeFile, MessageTypeLink, MessageTypeProposal:
		return true
	}
	return false
}
