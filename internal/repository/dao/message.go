package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrMessageNotFound = errors.New("message not found")

type Proposal struct {
	EventID       uint
	EventName     string
	Price         float64
	OfficiantID   uint
	OfficiantName string
	CoupleID      uint
	CoupleName    string
	Status        string
}

type Message struct {
	ID uint `gorm:"primaryKey"`

	// ClientID is the sender-generated correlation id, echoed back so
	// the sender can reconcile its optimistic copy.
	ClientID   string `gorm:"index"`
	RoomID     string `gorm:"not null;index"`
	SenderID   uint   `gorm:"not null"`
	SenderName string
	Type       string `gorm:"not null"`
	Content    string

	Proposal Proposal `gorm:"embedded;embeddedPrefix:proposal_"`

	CreatedAt time.Time `gorm:"not null"`
}

type MessageDAO struct {
	db *gorm.DB
}

func NewMessageDAO(db *gorm.DB) *MessageDAO {
	return &MessageDAO{
		db: db,
	}
}

func (d *MessageDAO) Insert(ctx context.Context, message Message) (Message, error) {
	if result := d.db.WithContext(ctx).Create(&message); result.Error != nil {
		return Message{}, result.Error
	}

	return message, nil
}

func (d *MessageDAO) FindByID(ctx context.Context, id uint) (Message, error) {
	var message Message
	result := d.db.WithContext(ctx).First(&message, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Message{}, ErrMessageNotFound
		}

		return Message{}, result.Error
	}

	return message, nil
}

// FindByRoom returns a room's messages in insertion order, which is the
// order clients display them.
func (d *MessageDAO) FindByRoom(ctx context.Context, roomID string, limit, offset int) ([]Message, error) {
	var messages []Message
	result := d.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("id asc").
		Limit(limit).
		Offset(offset).
		Find(&messages)
	if result.Error != nil {
		return nil, result.Error
	}

	return messages, nil
}

func (d *MessageDAO) UpdateProposalStatus(ctx context.Context, id uint, status string) error {
	result := d.db.WithContext(ctx).
		Model(&Message{}).
		Where("id = ?", id).
		Update("proposal_status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMessageNotFound
	}

	return nil
}
