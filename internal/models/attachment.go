package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	// PDFMediaType is the only media type accepted for upload.
	PDFMediaType = "application/pdf"
	// MaxUploadBytes caps uploaded file size at 15 MiB.
	MaxUploadBytes = 15 << 20
)

var (
	ErrUnsupportedType = errors.New("unsupported file type, only PDF is accepted")
	ErrTooLarge        = errors.New("file exceeds the 15 MB size limit")
)

// DocumentMetadata carries the optional document-level fields read from the
// PDF Info dictionary. Every field defaults independently: missing entries
// stay as the zero value.
type DocumentMetadata struct {
	Title        string `json:"title,omitempty"`
	Author       string `json:"author,omitempty"`
	Subject      string `json:"subject,omitempty"`
	Creator      string `json:"creator,omitempty"`
	Producer     string `json:"producer,omitempty"`
	CreationDate string `json:"creation_date,omitempty"`
	Keywords     string `json:"keywords,omitempty"`
	PageCount    int    `json:"page_count"`
}

// Attachment represents one uploaded document and its derived text.
// FilePath is the transient display handle: a stored copy of the uploaded
// bytes, valid only for the current process session and released via the
// file store. ExtractedText is empty when extraction never produced text;
// when present it is at least 10 characters long.
type Attachment struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	MediaType     string           `json:"media_type"`
	Size          int64            `json:"size"`
	FilePath      string           `json:"-"`
	ExtractedText string           `json:"-"`
	Metadata      DocumentMetadata `json:"metadata"`
	CreatedAt     time.Time        `json:"created_at"`
}

// NewAttachment builds an attachment shell for a validated upload. Text,
// metadata and the stored file path are filled in by the caller once
// extraction succeeds.
func NewAttachment(name, mediaType string, size int64) *Attachment {
	return &Attachment{
		ID:        uuid.NewString(),
		Name:      name,
		MediaType: mediaType,
		Size:      size,
		CreatedAt: time.Now().UTC(),
	}
}

// ValidateUpload checks the declared media type and byte size of an upload.
// It runs before any extraction attempt and has no side effects.
func ValidateUpload(mediaType string, size int64) error {
	if mediaType != PDFMediaType {
		return ErrUnsupportedType
	}
	if size > MaxUploadBytes {
		return ErrTooLarge
	}
	return nil
}
