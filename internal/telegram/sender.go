package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"anonpair/backend/internal/models"
	"anonpair/backend/internal/transport"
)

// Sender implements transport.Transport over the Telegram Bot API.
type Sender struct {
	BotAPI *tgbotapi.BotAPI
}

var _ transport.Transport = (*Sender)(nil)

func NewSender(bot *tgbotapi.BotAPI) *Sender {
	return &Sender{BotAPI: bot}
}

func (s *Sender) SendText(userID int64, text string, replyTo int) (int, error) {
	msg := tgbotapi.NewMessage(userID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if replyTo != 0 {
		msg.ReplyToMessageID = replyTo
	}
	sent, err := s.BotAPI.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func (s *Sender) SendMediaGroup(userID int64, parts []models.MediaPart) ([]int, error) {
	files := make([]interface{}, 0, len(parts))
	for _, part := range parts {
		file := tgbotapi.FileID(part.FileID)
		switch part.Kind {
		case "photo":
			media := tgbotapi.NewInputMediaPhoto(file)
			media.Caption = part.Caption
			files = append(files, media)
		case "video":
			media := tgbotapi.NewInputMediaVideo(file)
			media.Caption = part.Caption
			files = append(files, media)
		case "audio":
			media := tgbotapi.NewInputMediaAudio(file)
			media.Caption = part.Caption
			files = append(files, media)
		case "document":
			media := tgbotapi.NewInputMediaDocument(file)
			media.Caption = part.Caption
			files = append(files, media)
		default:
			return nil, fmt.Errorf("unsupported media kind %q", part.Kind)
		}
	}

	group := tgbotapi.NewMediaGroup(userID, files)
	sent, err := s.BotAPI.SendMediaGroup(group)
	if err != nil {
		return nil, err
	}
	ids := make([]int, len(sent))
	for i, msg := range sent {
		ids[i] = msg.MessageID
	}
	return ids, nil
}

func (s *Sender) CopyMessage(userID int64, fromUser int64, messageID int, replyTo int) (int, error) {
	copy := tgbotapi.NewCopyMessage(userID, fromUser, messageID)
	if replyTo != 0 {
		copy.ReplyToMessageID = replyTo
	}
	sent, err := s.BotAPI.CopyMessage(copy)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func (s *Sender) EditText(userID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(userID, messageID, text)
	_, err := s.BotAPI.Send(edit)
	return err
}

func (s *Sender) DeleteMessage(userID int64, messageID int) error {
	_, err := s.BotAPI.Request(tgbotapi.NewDeleteMessage(userID, messageID))
	return err
}

func (s *Sender) Pin(userID int64, messageID int) error {
	_, err := s.BotAPI.Request(tgbotapi.PinChatMessageConfig{
		ChatID:              userID,
		MessageID:           messageID,
		DisableNotification: true,
	})
	return err
}

func (s *Sender) UnpinAll(userID int64) error {
	_, err := s.BotAPI.Request(tgbotapi.UnpinAllChatMessagesConfig{ChatID: userID})
	return err
}
