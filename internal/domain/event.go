package domain

import "time"

// WeddingEvent is a ceremony a couple is planning. Booking proposals
// reference one by id.
type WeddingEvent struct {
	ID          uint      `json:"id"`
	CoupleID    uint      `json:"couple_id"`
	Name        string    `json:"name"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
