package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wedlockhq/wedlock-api/internal/config"
	"github.com/wedlockhq/wedlock-api/internal/domain"
)

type memAttachmentRepo struct {
	nextID uint
	failed bool
}

func (r *memAttachmentRepo) Create(_ context.Context, attachment domain.Attachment) (domain.Attachment, error) {
	if r.failed {
		return domain.Attachment{}, assert.AnError
	}
	r.nextID++
	attachment.ID = r.nextID
	return attachment, nil
}

func newAttachmentService(t *testing.T, repo AttachmentRepository) (*AttachmentService, string) {
	dir := t.TempDir()
	conf := &config.UploadConfig{
		Dir:       dir,
		BaseURL:   "http://localhost:8080",
		MaxSizeMB: 1,
	}
	return NewAttachmentService(conf, repo), dir
}

func TestAttachmentService_Store(t *testing.T) {
	svc, dir := newAttachmentService(t, &memAttachmentRepo{})

	content := "fake png bytes"
	attachment, err := svc.Store(context.Background(), 1, "venue.png", "image/png", int64(len(content)), strings.NewReader(content))
	require.NoError(t, err)

	assert.NotZero(t, attachment.ID)
	assert.Equal(t, "venue.png", attachment.FileName)
	assert.Equal(t, int64(len(content)), attachment.Size)
	assert.True(t, strings.HasPrefix(attachment.URL, "http://localhost:8080/uploads/"))
	assert.True(t, strings.HasSuffix(attachment.URL, ".png"))

	stored := filepath.Join(dir, filepath.Base(attachment.URL))
	data, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestAttachmentService_StoreRejectsOversizedUpload(t *testing.T) {
	svc, dir := newAttachmentService(t, &memAttachmentRepo{})

	_, err := svc.Store(context.Background(), 1, "huge.bin", "application/octet-stream", 2*1024*1024, strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrAttachmentTooLarge)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "a rejected upload must leave no file behind")
}

func TestAttachmentService_StoreCleansUpOnPersistFailure(t *testing.T) {
	svc, dir := newAttachmentService(t, &memAttachmentRepo{failed: true})

	_, err := svc.Store(context.Background(), 1, "venue.png", "image/png", 3, strings.NewReader("png"))
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "a failed upload must leave no orphaned file")
}
