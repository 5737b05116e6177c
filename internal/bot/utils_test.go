package bot

import (
	"errors"
	"fmt"
	"testing"

	"vipgate/internal/database"
	"vipgate/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestLooksLikeToken(t *testing.T) {
	assert.True(t, looksLikeToken(uuid.NewString()))
	assert.True(t, looksLikeToken("  "+uuid.NewString()+"  "))

	assert.False(t, looksLikeToken("hola"))
	assert.False(t, looksLikeToken(""))
	assert.False(t, looksLikeToken("12345678-1234-1234-1234"))
	assert.False(t, looksLikeToken("not-a-uuid-at-all-but-with-dashes"))
}

func TestExtractMedia(t *testing.T) {
	fileID, uniqueID, mediaType := extractMedia(&tgbotapi.Message{
		Photo: []tgbotapi.PhotoSize{
			{FileID: "small", FileUniqueID: "u1"},
			{FileID: "big", FileUniqueID: "u2"},
		},
	})
	assert.Equal(t, "big", fileID)
	assert.Equal(t, "u2", uniqueID)
	assert.Equal(t, models.MediaTypePhoto, mediaType)

	fileID, _, mediaType = extractMedia(&tgbotapi.Message{
		Video: &tgbotapi.Video{FileID: "vid", FileUniqueID: "uv"},
	})
	assert.Equal(t, "vid", fileID)
	assert.Equal(t, models.MediaTypeVideo, mediaType)

	fileID, _, mediaType = extractMedia(&tgbotapi.Message{
		Document: &tgbotapi.Document{FileID: "doc", FileUniqueID: "ud"},
	})
	assert.Equal(t, "doc", fileID)
	assert.Equal(t, models.MediaTypeDocument, mediaType)

	fileID, _, mediaType = extractMedia(&tgbotapi.Message{Text: "nada"})
	assert.Empty(t, fileID)
	assert.Empty(t, mediaType)
}

func TestGetErrorMessage(t *testing.T) {
	b := &Bot{}

	assert.Empty(t, b.getErrorMessage(nil))
	assert.Contains(t, b.getErrorMessage(database.ErrTokenNotFound), "token")
	assert.Contains(t, b.getErrorMessage(database.ErrNoActiveSubscription), "VIP")

	// Los errores envueltos también deben resolverse.
	wrapped := fmt.Errorf("redeem: %w", database.ErrTokenExpired)
	assert.Contains(t, b.getErrorMessage(wrapped), "caducado")

	generic := b.getErrorMessage(errors.New("boom"))
	assert.Contains(t, generic, "error")
}
