package proxy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUpload(t *testing.T) {
	tests := []struct {
		name   string
		upload Upload
		fields []string
	}{
		{"valid txt", Upload{Filename: "deck.txt", ContentType: "text/plain", Size: 120}, nil},
		{"valid no extension", Upload{Filename: "deck", ContentType: "text/plain; charset=utf-8", Size: 1}, nil},
		{"max size", Upload{Filename: "deck.txt", ContentType: "text/plain", Size: 10000}, nil},
		{"empty", Upload{Filename: "deck.txt", ContentType: "text/plain", Size: 0}, []string{"size"}},
		{"too large", Upload{Filename: "deck.txt", ContentType: "text/plain", Size: 10001}, []string{"size"}},
		{"wrong extension", Upload{Filename: "deck.dek", ContentType: "text/plain", Size: 10}, []string{"filename"}},
		{"wrong content type", Upload{Filename: "deck.txt", ContentType: "application/octet-stream", Size: 10}, []string{"content_type"}},
		{"missing content type", Upload{Filename: "deck.txt", Size: 10}, []string{"content_type"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpload(tt.upload, 10000)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidUpload)

			var uerr *UploadError
			require.True(t, errors.As(err, &uerr))
			var fields []string
			for _, d := range uerr.Details {
				fields = append(fields, d.Field)
			}
			assert.Equal(t, tt.fields, fields)
		})
	}
}

func TestUpload_DeckName(t *testing.T) {
	assert.Equal(t, "tempo", Upload{Filename: "tempo.txt"}.DeckName())
	assert.Equal(t, "tempo", Upload{Filename: "decks/tempo"}.DeckName())
	assert.Equal(t, "", Upload{}.DeckName())
}
