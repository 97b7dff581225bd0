package proxy

import (
	"fmt"
	"path/filepath"
	"strings"

	"proxydeck/internal/httpx"
)

// DefaultMaxUploadBytes is the largest decklist accepted by default.
const DefaultMaxUploadBytes = 10000

// Upload describes a decklist file before it is read.
type Upload struct {
	Filename    string `json:"filename" validate:"max=255,decklist_ext"`
	ContentType string `json:"content_type" validate:"required,plain_text"`
	Size        int64  `json:"size" validate:"gte=1"`
}

// DeckName derives a deck name from the file name.
func (u Upload) DeckName() string {
	base := filepath.Base(u.Filename)
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// UploadError lists every rule an upload broke.
type UploadError struct {
	Details []httpx.ErrorDetail
}

func (e *UploadError) Error() string {
	msgs := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		msgs = append(msgs, d.Message)
	}
	return fmt.Sprintf("%s: %s", ErrInvalidUpload, strings.Join(msgs, "; "))
}

func (e *UploadError) Unwrap() error { return ErrInvalidUpload }

// ValidateUpload checks size, extension and content type.
func ValidateUpload(u Upload, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	details := httpx.ValidateStruct(u)
	details = append(details, httpx.ValidateVar("size", u.Size, fmt.Sprintf("lte=%d", maxBytes))...)
	if len(details) > 0 {
		return &UploadError{Details: details}
	}
	return nil
}
