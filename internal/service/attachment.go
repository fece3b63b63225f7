package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/wedlockhq/wedlock-api/internal/config"
	"github.com/wedlockhq/wedlock-api/internal/domain"
)

var ErrAttachmentTooLarge = errors.New("attachment exceeds the maximum allowed size")

type AttachmentRepository interface {
	Create(ctx context.Context, attachment domain.Attachment) (domain.Attachment, error)
}

// AttachmentService turns a raw upload into a publicly retrievable URL
// plus size/mime metadata. A message referencing the file is only ever
// constructed after this succeeds.
type AttachmentService struct {
	conf *config.UploadConfig
	repo AttachmentRepository
}

func NewAttachmentService(conf *config.UploadConfig, repo AttachmentRepository) *AttachmentService {
	return &AttachmentService{
		conf: conf,
		repo: repo,
	}
}

func (s *AttachmentService) Store(ctx context.Context, uploaderID uint, fileName, mimeType string, size int64, r io.Reader) (domain.Attachment, error) {
	if size > s.conf.MaxSizeMB*1024*1024 {
		return domain.Attachment{}, ErrAttachmentTooLarge
	}

	if err := os.MkdirAll(s.conf.Dir, 0o755); err != nil {
		return domain.Attachment{}, fmt.Errorf("os.MkdirAll -> %w", err)
	}

	storedName := uuid.New().String() + filepath.Ext(fileName)
	path := filepath.Join(s.conf.Dir, storedName)

	f, err := os.Create(path)
	if err != nil {
		return domain.Attachment{}, fmt.Errorf("os.Create -> %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, r)
	if err != nil {
		// Never leave a half-written file behind a URL.
		os.Remove(path)
		return domain.Attachment{}, fmt.Errorf("io.Copy -> %w", err)
	}

	attachment, err := s.repo.Create(ctx, domain.Attachment{
		UploaderID: uploaderID,
		FileName:   fileName,
		URL:        s.conf.BaseURL + "/uploads/" + storedName,
		Size:       written,
		MimeType:   mimeType,
	})
	if err != nil {
		os.Remove(path)
		return domain.Attachment{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return attachment, nil
}
