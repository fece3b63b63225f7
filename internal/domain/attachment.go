package domain

import "time"

// Attachment is an uploaded file addressable by URL. The upload happens
// before any message referencing it is constructed.
type Attachment struct {
	ID         uint      `json:"id"`
	UploaderID uint      `json:"uploader_id"`
	FileName   string    `json:"file_name"`
	URL        string    `json:"url"`
	Size       int64     `json:"size"`
	MimeType   string    `json:"mime_type"`
	CreatedAt  time.Time `json:"created_at"`
}
