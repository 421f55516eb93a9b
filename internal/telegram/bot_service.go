// Package telegram hosts the bot: it receives updates from the Telegram Bot
// API, gates them through the rate limiter, and routes them to the match
// engine and the relay. It also implements the transport capabilities the
// relay consumes (see sender.go).
package telegram

import (
	"errors"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"anonpair/backend/internal/config"
	"anonpair/backend/internal/localization"
	"anonpair/backend/internal/match"
	"anonpair/backend/internal/models"
	"anonpair/backend/internal/ratelimit"
	"anonpair/backend/internal/relay"
	"anonpair/backend/internal/storage"
)

// BotService receives Telegram updates and drives the matchmaking relay.
type BotService struct {
	BotAPI    *tgbotapi.BotAPI
	Storage   storage.Storage
	Match     *match.Engine
	Relay     *relay.Relay
	Limiter   ratelimit.Gate
	Sender    *Sender
	Localizer *localization.Localizer
	Config    config.Config

	// searchingMsgs remembers each user's "searching..." message so it can
	// be cleaned up once a match arrives. Run handles updates on a single
	// goroutine, so the map needs no locking.
	searchingMsgs map[int64]int
}

// NewBotService wires the bot together around an authorized Bot API client.
func NewBotService(bot *tgbotapi.BotAPI, s storage.Storage, engine *match.Engine, rly *relay.Relay, gate ratelimit.Gate, localizer *localization.Localizer, cfg config.Config) *BotService {
	log.Printf("✅ Authorized on account %s", bot.Self.UserName)
	return &BotService{
		BotAPI:        bot,
		Storage:       s,
		Match:         engine,
		Relay:         rly,
		Limiter:       gate,
		Sender:        NewSender(bot),
		Localizer:     localizer,
		Config:        cfg,
		searchingMsgs: make(map[int64]int),
	}
}

// Run is the main loop for receiving Telegram updates. It blocks until the
// updates channel closes.
func (s *BotService) Run() {
	s.setCommands()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := s.BotAPI.GetUpdatesChan(u)

	for update := range updates {
		switch {
		case update.EditedMessage != nil:
			s.handleEditedMessage(update.EditedMessage)
		case update.CallbackQuery != nil:
			s.handleCallbackQuery(update.CallbackQuery)
		case update.Message != nil:
			if update.Message.IsCommand() {
				s.handleCommand(update.Message)
			} else {
				s.handleIncomingMessage(update.Message)
			}
		}
	}
}

func (s *BotService) setCommands() {
	commands := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Start the bot"},
		tgbotapi.BotCommand{Command: "next", Description: "Find next partner"},
		tgbotapi.BotCommand{Command: "stop", Description: "End current chat"},
		tgbotapi.BotCommand{Command: "delete", Description: "Delete a relayed message (reply to it)"},
		tgbotapi.BotCommand{Command: "language", Description: "Change language / භාෂාව වෙනස් කරන්න"},
		tgbotapi.BotCommand{Command: "stats", Description: "Bot stats (admin only)"},
		tgbotapi.BotCommand{Command: "broadcast", Description: "Admin broadcast (admin only)"},
	)
	if _, err := s.BotAPI.Request(commands); err != nil {
		log.Printf("WARN: Failed to set bot commands: %v", err)
	}
}

// handleIncomingMessage relays a non-command message to the user's partner.
func (s *BotService) handleIncomingMessage(msg *tgbotapi.Message) {
	userID := msg.Chat.ID
	lang := s.language(userID)

	verdict := s.Limiter.Check(userID)
	if !verdict.Allowed {
		key := "spam_mute"
		if verdict.JustMuted {
			key = "spam_new_mute"
		}
		s.send(userID, s.Localizer.GetStringf(lang, key, verdict.RemainingSeconds()))
		return
	}

	m := models.Message{
		MessageID: msg.MessageID,
		From:      userID,
		Text:      msg.Text,
	}
	if msg.ReplyToMessage != nil {
		m.ReplyToID = msg.ReplyToMessage.MessageID
	}
	if msg.MediaGroupID != "" {
		if part, ok := extractMediaPart(msg); ok {
			m.MediaGroupID = msg.MediaGroupID
			m.Part = &part
		}
	}

	result := s.Relay.ForwardMessage(m)
	switch result.Status {
	case relay.NotInChat:
		s.sendWithKeyboard(userID, s.Localizer.GetString(lang, "not_in_chat"), mainMenuKeyboard(s.Localizer, lang))
	case relay.BlockedContent:
		s.send(userID, s.Localizer.GetString(lang, "blocked_msg"))
	case relay.PartnerGone:
		s.Sender.UnpinAll(userID)
		s.sendWithKeyboard(userID, s.Localizer.GetString(lang, "partner_offline"), mainMenuKeyboard(s.Localizer, lang))
	}
}

// extractMediaPart pulls the album-relevant payload out of a message.
func extractMediaPart(msg *tgbotapi.Message) (models.MediaPart, bool) {
	part := models.MediaPart{MessageID: msg.MessageID, Caption: msg.Caption}
	switch {
	case msg.Photo != nil:
		part.Kind = "photo"
		part.FileID = msg.Photo[len(msg.Photo)-1].FileID
	case msg.Video != nil:
		part.Kind = "video"
		part.FileID = msg.Video.FileID
	case msg.Audio != nil:
		part.Kind = "audio"
		part.FileID = msg.Audio.FileID
	case msg.Document != nil:
		part.Kind = "document"
		part.FileID = msg.Document.FileID
	default:
		return models.MediaPart{}, false
	}
	return part, true
}

// handleEditedMessage syncs a sender-side edit to the delivered copy.
func (s *BotService) handleEditedMessage(msg *tgbotapi.Message) {
	if msg.Text == "" {
		return
	}
	s.Relay.ForwardEdit(msg.Chat.ID, msg.MessageID, msg.Text)
}

func (s *BotService) handleCommand(msg *tgbotapi.Message) {
	userID := msg.Chat.ID
	lang := s.language(userID)

	switch msg.Command() {
	case "start":
		log.Printf("User %d started the bot", userID)
		s.sendWithKeyboard(userID, s.Localizer.GetString(lang, "security_check"), captchaKeyboard(s.Localizer, lang))

	case "next":
		s.endCurrentChat(userID)
		s.beginSearch(userID, lang, 0)

	case "stop":
		s.endCurrentChat(userID)
		s.sendWithKeyboard(userID, s.Localizer.GetString(lang, "chat_ended"), mainMenuKeyboard(s.Localizer, lang))

	case "delete":
		s.handleDeleteCommand(msg, lang)

	case "language":
		s.sendWithKeyboard(userID, s.Localizer.GetString(lang, "select_language"), languageKeyboard())

	case "stats":
		s.handleStatsCommand(msg)

	case "broadcast":
		s.handleBroadcastCommand(msg)
	}
}

// handleDeleteCommand lets a user retract a relayed message by replying to
// their own original with /delete.
func (s *BotService) handleDeleteCommand(msg *tgbotapi.Message, lang string) {
	userID := msg.Chat.ID
	if msg.ReplyToMessage == nil {
		s.send(userID, s.Localizer.GetString(lang, "delete_usage"))
		return
	}

	err := s.Relay.ForwardDelete(userID, msg.ReplyToMessage.MessageID)
	switch {
	case errors.Is(err, relay.ErrNoLink):
		s.send(userID, s.Localizer.GetString(lang, "delete_not_found"))
	case err != nil:
		log.Printf("ERROR: Failed to delete message for %d: %v", userID, err)
		s.send(userID, s.Localizer.GetString(lang, "delete_failed"))
	default:
		s.send(userID, s.Localizer.GetString(lang, "delete_done"))
	}
}

func (s *BotService) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	if query.Message == nil {
		return
	}

	userID := query.Message.Chat.ID
	msgID := query.Message.MessageID
	lang := s.language(userID)
	data := query.Data

	// Ack first so the client drops the loading spinner. Reports get a toast.
	ack := ""
	if strings.HasPrefix(data, "report_") && data != "report_menu" {
		ack = s.Localizer.GetString(lang, "user_reported")
	}
	if _, err := s.BotAPI.Request(tgbotapi.NewCallback(query.ID, ack)); err != nil {
		log.Printf("WARN: Failed to answer callback query: %v", err)
	}

	switch {
	case data == "captcha_solved":
		s.edit(userID, msgID, s.Localizer.GetString(lang, "welcome"), mainMenuKeyboard(s.Localizer, lang))

	case data == "start_search":
		if _, inChat := s.Match.PartnerOf(userID); inChat {
			s.edit(userID, msgID, s.Localizer.GetString(lang, "already_in_chat"), chatKeyboard(s.Localizer, lang))
			return
		}
		if queued, _ := s.Storage.IsInQueue(userID); queued {
			s.edit(userID, msgID, s.Localizer.GetString(lang, "searching"), queueKeyboard(s.Localizer, lang))
			s.searchingMsgs[userID] = msgID
			return
		}
		s.beginSearch(userID, lang, msgID)

	case data == "set_interest":
		current, _ := s.Storage.GetInterest(userID)
		if current == "" {
			current = "Random"
		}
		s.edit(userID, msgID, s.Localizer.GetStringf(lang, "select_interest", current), interestKeyboard(s.Localizer, lang))

	case data == "set_language":
		s.edit(userID, msgID, s.Localizer.GetString(lang, "select_language"), languageKeyboard())

	case strings.HasPrefix(data, "lang_"):
		lang = strings.TrimPrefix(data, "lang_")
		if err := s.Storage.SetLanguage(userID, lang); err != nil {
			log.Printf("ERROR: Failed to set language for %d: %v", userID, err)
		}
		s.edit(userID, msgID, s.Localizer.GetString(lang, "lang_set"), mainMenuKeyboard(s.Localizer, lang))

	case strings.HasPrefix(data, "interest_"):
		interest := strings.TrimPrefix(data, "interest_")
		if interest == "Random" {
			interest = ""
		}
		if err := s.Storage.SetInterest(userID, interest); err != nil {
			log.Printf("ERROR: Failed to set interest for %d: %v", userID, err)
		}
		label := interest
		if label == "" {
			label = "Random"
		}
		s.edit(userID, msgID, s.Localizer.GetStringf(lang, "interest_set", label), mainMenuKeyboard(s.Localizer, lang))

	case data == "main_menu":
		s.edit(userID, msgID, s.Localizer.GetString(lang, "welcome"), mainMenuKeyboard(s.Localizer, lang))

	case data == "help":
		s.edit(userID, msgID, s.Localizer.GetString(lang, "help_text"), mainMenuKeyboard(s.Localizer, lang))

	case data == "stop_chat":
		s.endCurrentChat(userID)
		s.edit(userID, msgID, s.Localizer.GetString(lang, "chat_ended"), mainMenuKeyboard(s.Localizer, lang))

	case data == "next_partner":
		s.endCurrentChat(userID)
		s.beginSearch(userID, lang, msgID)

	case data == "cancel_search":
		s.Match.Dequeue(userID)
		if searchingID, ok := s.searchingMsgs[userID]; ok {
			s.Sender.DeleteMessage(userID, searchingID)
			delete(s.searchingMsgs, userID)
		}
		s.sendWithKeyboard(userID, s.Localizer.GetString(lang, "search_cancelled"), mainMenuKeyboard(s.Localizer, lang))

	case data == "report_menu":
		s.edit(userID, msgID, s.Localizer.GetString(lang, "report_menu"), reportKeyboard(s.Localizer, lang))

	case data == "back_to_chat":
		s.edit(userID, msgID, s.Localizer.GetString(lang, "chat_title"), chatKeyboard(s.Localizer, lang))

	case strings.HasPrefix(data, "report_"):
		reason := strings.TrimPrefix(data, "report_")
		partnerID, inChat := s.Match.PartnerOf(userID)
		if !inChat {
			s.edit(userID, msgID, s.Localizer.GetString(lang, "not_in_chat"), mainMenuKeyboard(s.Localizer, lang))
			return
		}
		if err := s.Match.Report(userID, partnerID, reason); err != nil {
			log.Printf("ERROR: Failed to save report from %d: %v", userID, err)
		}
		s.edit(userID, msgID, s.Localizer.GetString(lang, "report_submitted"), chatKeyboard(s.Localizer, lang))

	case data == "block_partner":
		partnerID, ok := s.Match.EndSession(userID)
		if !ok {
			s.edit(userID, msgID, s.Localizer.GetString(lang, "not_in_chat"), mainMenuKeyboard(s.Localizer, lang))
			return
		}
		if err := s.Match.Block(userID, partnerID); err != nil {
			log.Printf("ERROR: Failed to record block %d->%d: %v", userID, partnerID, err)
		}
		s.Sender.UnpinAll(userID)
		s.edit(userID, msgID, s.Localizer.GetString(lang, "blocked"), mainMenuKeyboard(s.Localizer, lang))
		s.notifyDisconnected(partnerID)
	}
}

// beginSearch tries an immediate match and otherwise enqueues the user.
// When editMsgID is non-zero the first response edits that message (callback
// flow); otherwise a new message is sent (command flow).
func (s *BotService) beginSearch(userID int64, lang string, editMsgID int) {
	interest, err := s.Storage.GetInterest(userID)
	if err != nil {
		log.Printf("ERROR: Failed to read interest for %d: %v", userID, err)
	}

	if partnerID, matched := s.Match.FindAndReserveMatch(userID, interest); matched {
		s.connectPair(userID, partnerID, interest, lang, editMsgID)
		return
	}

	if _, err := s.Match.Enqueue(userID, interest); err != nil {
		log.Printf("ERROR: Failed to enqueue %d: %v", userID, err)
		s.send(userID, s.Localizer.GetString(lang, "use_menu"))
		return
	}

	text := s.Localizer.GetString(lang, "searching")
	if interest != "" {
		text += s.Localizer.GetStringf(lang, "interest_label", interest)
	}
	if editMsgID != 0 {
		s.edit(userID, editMsgID, text, queueKeyboard(s.Localizer, lang))
		s.searchingMsgs[userID] = editMsgID
	} else if sentID := s.sendWithKeyboard(userID, text, queueKeyboard(s.Localizer, lang)); sentID != 0 {
		s.searchingMsgs[userID] = sentID
	}
}

// connectPair starts the session and announces it to both sides, pinning the
// "connected" message in each chat.
func (s *BotService) connectPair(userID, partnerID int64, interest, lang string, editMsgID int) {
	if err := s.Match.StartSession(userID, partnerID); err != nil {
		log.Printf("ERROR: Failed to start session %d/%d: %v", userID, partnerID, err)
		// Give the claimed partner their queue slot back.
		if qErr := s.Storage.AddToQueue(partnerID, interest); qErr != nil {
			log.Printf("ERROR: Failed to re-queue %d: %v", partnerID, qErr)
		}
		s.send(userID, s.Localizer.GetString(lang, "use_menu"))
		return
	}

	text := s.Localizer.GetString(lang, "connected")
	if interest != "" {
		text += s.Localizer.GetStringf(lang, "matched_interest", interest)
	}
	if editMsgID != 0 {
		s.edit(userID, editMsgID, text, chatKeyboard(s.Localizer, lang))
		s.pin(userID, editMsgID)
	} else if sentID := s.sendWithKeyboard(userID, text, chatKeyboard(s.Localizer, lang)); sentID != 0 {
		s.pin(userID, sentID)
	}

	partnerLang := s.language(partnerID)
	partnerText := s.Localizer.GetString(partnerLang, "connected")
	if interest != "" {
		partnerText += s.Localizer.GetStringf(partnerLang, "matched_interest", interest)
	}
	if sentID := s.sendWithKeyboard(partnerID, partnerText, chatKeyboard(s.Localizer, partnerLang)); sentID != 0 {
		s.pin(partnerID, sentID)
	}

	for _, id := range []int64{userID, partnerID} {
		if searchingID, ok := s.searchingMsgs[id]; ok {
			if searchingID != editMsgID || id != userID {
				s.Sender.DeleteMessage(id, searchingID)
			}
			delete(s.searchingMsgs, id)
		}
	}
}

// endCurrentChat tears down the caller's session, unpins their chat and
// notifies the former partner. No-op when the caller is idle.
func (s *BotService) endCurrentChat(userID int64) {
	partnerID, ok := s.Match.EndSession(userID)
	s.Sender.UnpinAll(userID)
	if ok {
		s.notifyDisconnected(partnerID)
	}
}

func (s *BotService) notifyDisconnected(partnerID int64) {
	partnerLang := s.language(partnerID)
	s.Sender.UnpinAll(partnerID)
	if sentID := s.sendWithKeyboard(partnerID, s.Localizer.GetString(partnerLang, "partner_disconnected"), mainMenuKeyboard(s.Localizer, partnerLang)); sentID == 0 {
		log.Printf("WARN: Failed to notify partner %d about disconnect", partnerID)
	}
}

func (s *BotService) language(userID int64) string {
	lang, err := s.Storage.GetLanguage(userID)
	if err != nil || lang == "" {
		return "en"
	}
	return lang
}

func (s *BotService) send(userID int64, text string) {
	if _, err := s.Sender.SendText(userID, text, 0); err != nil {
		log.Printf("ERROR: Failed to send message to %d: %v", userID, err)
	}
}

// sendWithKeyboard sends text with an inline keyboard and returns the sent
// message ID, zero on failure.
func (s *BotService) sendWithKeyboard(userID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) int {
	msg := tgbotapi.NewMessage(userID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = keyboard
	sent, err := s.BotAPI.Send(msg)
	if err != nil {
		log.Printf("ERROR: Failed to send message to %d: %v", userID, err)
		return 0
	}
	return sent.MessageID
}

func (s *BotService) edit(userID int64, messageID int, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(userID, messageID, text, keyboard)
	edit.ParseMode = tgbotapi.ModeMarkdown
	if _, err := s.BotAPI.Send(edit); err != nil {
		log.Printf("ERROR: Failed to edit message %d for %d: %v", messageID, userID, err)
	}
}

func (s *BotService) pin(userID int64, messageID int) {
	if err := s.Sender.Pin(userID, messageID); err != nil {
		log.Printf("WARN: Failed to pin message %d for %d: %v", messageID, userID, err)
	}
}
