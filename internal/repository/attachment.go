package repository

import (
	"context"
	"fmt"

	"github.com/wedlockhq/wedlock-api/internal/domain"
	"github.com/wedlockhq/wedlock-api/internal/repository/dao"
)

type AttachmentDAO interface {
	Insert(ctx context.Context, attachment dao.Attachment) (dao.Attachment, error)
}

type AttachmentRepository struct {
	dao AttachmentDAO
}

func NewAttachmentRepository(dao AttachmentDAO) *AttachmentRepository {
	return &AttachmentRepository{
		dao: dao,
	}
}

func (r *AttachmentRepository) Create(ctx context.Context, attachment domain.Attachment) (domain.Attachment, error) {
	created, err := r.dao.Insert(ctx, dao.Attachment{
		UploaderID: attachment.UploaderID,
		FileName:   attachment.FileName,
		URL:        attachment.URL,
		Size:       attachment.Size,
		MimeType:   attachment.MimeType,
	})
	if err != nil {
		return domain.Attachment{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return domain.Attachment{
		ID:         created.ID,
		UploaderID: created.UploaderID,
		FileName:   created.FileName,
		URL:        created.URL,
		Size:       created.Size,
		MimeType:   created.MimeType,
		CreatedAt:  created.CreatedAt,
	}, nil
}
