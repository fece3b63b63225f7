package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrEventNotFound = errors.New("wedding event not found")

type WeddingEvent struct {
	ID uint `gorm:"primaryKey"`

	CoupleID    uint      `gorm:"not null;index"`
	Name        string    `gorm:"not null"`
	Date        time.Time `gorm:"not null"`
	Location    string    `gorm:"not null"`
	Description string

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type EventDAO struct {
	db *gorm.DB
}

func NewEventDAO(db *gorm.DB) *EventDAO {
	return &EventDAO{
		db: db,
	}
}

func (d *EventDAO) Insert(ctx context.Context, event WeddingEvent) (WeddingEvent, error) {
	if result := d.db.WithContext(ctx).Create(&event); result.Error != nil {
		return WeddingEvent{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) FindByID(ctx context.Context, id uint) (WeddingEvent, error) {
	var event WeddingEvent
	result := d.db.WithContext(ctx).First(&event, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return WeddingEvent{}, ErrEventNotFound
		}

		return WeddingEvent{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) FindByCoupleID(ctx context.Context, coupleID uint) ([]WeddingEvent, error) {
	var events []WeddingEvent
	result := d.db.WithContext(ctx).Where("couple_id = ?", coupleID).Order("date asc").Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}
