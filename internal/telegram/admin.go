package telegram

import (
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// handleStatsCommand reports bot-wide counters to admins.
func (s *BotService) handleStatsCommand(msg *tgbotapi.Message) {
	userID := msg.Chat.ID
	if !s.Config.IsAdmin(userID) {
		return
	}

	stats, err := s.Storage.GetStats()
	if err != nil {
		log.Printf("ERROR: Failed to load stats: %v", err)
		s.send(userID, "Failed to load stats.")
		return
	}

	s.send(userID, fmt.Sprintf(
		"📊 *Bot Stats*\n\n👥 Users: %d\n💬 Active chats: %d\n⏳ In queue: %d",
		stats.TotalUsers, stats.ActiveChats, stats.InQueue,
	))
}

// handleBroadcastCommand sends a message to every known user. The payload is
// either the command arguments or, when the admin replies to a message with
// a bare /broadcast, a copy of the replied-to message.
func (s *BotService) handleBroadcastCommand(msg *tgbotapi.Message) {
	userID := msg.Chat.ID
	if !s.Config.IsAdmin(userID) {
		return
	}

	text := strings.TrimSpace(msg.CommandArguments())
	if text == "" && msg.ReplyToMessage == nil {
		s.send(userID, "Usage: /broadcast <text>, or reply to a message with /broadcast.")
		return
	}

	users, err := s.Storage.ListUsers()
	if err != nil {
		log.Printf("ERROR: Failed to list users for broadcast: %v", err)
		s.send(userID, "Failed to load user list.")
		return
	}

	var sent, failed int
	for _, target := range users {
		var sendErr error
		if text != "" {
			_, sendErr = s.Sender.SendText(target, text, 0)
		} else {
			_, sendErr = s.Sender.CopyMessage(target, userID, msg.ReplyToMessage.MessageID, 0)
		}
		if sendErr != nil {
			failed++
			continue
		}
		sent++
	}

	log.Printf("Broadcast by %d finished: %d sent, %d failed", userID, sent, failed)
	s.send(userID, fmt.Sprintf("📣 Broadcast done: %d sent, %d failed.", sent, failed))
}
