// Package transport declares the delivery capabilities the relay consumes.
// The concrete implementation lives in internal/telegram; tests substitute
// mocks. Every operation may fail for a given recipient (blocked the bot,
// deleted the account) and failures must be handled by the caller, never
// crash the process.
package transport

import "anonpair/backend/internal/models"

type Transport interface {
	// SendText delivers plain text. replyTo is a message ID in the
	// recipient's chat to attach the message to, zero for none.
	// Returns the delivered message's ID.
	SendText(userID int64, text string, replyTo int) (int, error)

	// SendMediaGroup delivers an ordered set of attachments as one album.
	// Returns the delivered IDs in the same order as parts.
	SendMediaGroup(userID int64, parts []models.MediaPart) ([]int, error)

	// CopyMessage re-sends message messageID from fromUser's chat into
	// userID's chat without a forward header. Returns the delivered ID.
	CopyMessage(userID int64, fromUser int64, messageID int, replyTo int) (int, error)

	// EditText rewrites the text of a previously delivered message.
	EditText(userID int64, messageID int, text string) error

	// DeleteMessage removes a previously delivered message.
	DeleteMessage(userID int64, messageID int) error

	// Pin pins a message in the recipient's chat; best-effort.
	Pin(userID int64, messageID int) error

	// UnpinAll removes every pin in the recipient's chat; best-effort.
	UnpinAll(userID int64) error
}
