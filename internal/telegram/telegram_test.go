package telegram

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anonpair/backend/internal/config"
	"anonpair/backend/internal/localization"
)

func TestExtractMediaPart(t *testing.T) {
	msg := &tgbotapi.Message{
		MessageID: 42,
		Caption:   "look at this",
		Photo: []tgbotapi.PhotoSize{
			{FileID: "thumb"},
			{FileID: "full"},
		},
	}

	part, ok := extractMediaPart(msg)
	require.True(t, ok)
	assert.Equal(t, 42, part.MessageID)
	assert.Equal(t, "photo", part.Kind)
	assert.Equal(t, "full", part.FileID, "largest photo size wins")
	assert.Equal(t, "look at this", part.Caption)
}

func TestExtractMediaPartKinds(t *testing.T) {
	video := &tgbotapi.Message{MessageID: 1, Video: &tgbotapi.Video{FileID: "v"}}
	part, ok := extractMediaPart(video)
	require.True(t, ok)
	assert.Equal(t, "video", part.Kind)

	audio := &tgbotapi.Message{MessageID: 2, Audio: &tgbotapi.Audio{FileID: "a"}}
	part, ok = extractMediaPart(audio)
	require.True(t, ok)
	assert.Equal(t, "audio", part.Kind)

	doc := &tgbotapi.Message{MessageID: 3, Document: &tgbotapi.Document{FileID: "d"}}
	part, ok = extractMediaPart(doc)
	require.True(t, ok)
	assert.Equal(t, "document", part.Kind)

	plain := &tgbotapi.Message{MessageID: 4, Text: "no media"}
	_, ok = extractMediaPart(plain)
	assert.False(t, ok)
}

func TestInterestKeyboardCoversAllInterests(t *testing.T) {
	l, err := localization.NewLocalizer("../localization/locales")
	require.NoError(t, err)

	kb := interestKeyboard(l, "en")

	var data []string
	for _, row := range kb.InlineKeyboard {
		for _, btn := range row {
			require.NotNil(t, btn.CallbackData)
			data = append(data, *btn.CallbackData)
		}
	}
	for _, interest := range config.Interests {
		assert.Contains(t, data, "interest_"+interest)
	}
	assert.Contains(t, data, "main_menu", "keyboard needs a way back")
}

func TestLanguageKeyboardListsBothLanguages(t *testing.T) {
	kb := languageKeyboard()

	var data []string
	for _, row := range kb.InlineKeyboard {
		for _, btn := range row {
			require.NotNil(t, btn.CallbackData)
			data = append(data, *btn.CallbackData)
		}
	}
	assert.Contains(t, data, "lang_en")
	assert.Contains(t, data, "lang_si")
}
