package dao

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Attachment struct {
	ID uint `gorm:"primaryKey"`

	UploaderID uint   `gorm:"not null;index"`
	FileName   string `gorm:"not null"`
	URL        string `gorm:"not null"`
	Size       int64  `gorm:"not null"`
	MimeType   string `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
}

type AttachmentDAO struct {
	db *gorm.DB
}

func NewAttachmentDAO(db *gorm.DB) *AttachmentDAO {
	return &AttachmentDAO{
		db: db,
	}
}

func (d *AttachmentDAO) Insert(ctx context.Context, attachment Attachment) (Attachment, error) {
	if result := d.db.WithContext(ctx).Create(&attachment); result.Error != nil {
		return Attachment{}, result.Error
	}

	return attachment, nil
}
