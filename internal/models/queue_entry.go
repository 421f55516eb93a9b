package models

import "time"

// QueueEntry represents a user waiting to be matched.
// A user has at most one entry at any time; UserID is the primary key.
type QueueEntry struct {
	// UserID is the Telegram chat ID of the waiting user.
	UserID int64 `gorm:"primaryKey"`
	// Interest is an optional tag the user wants their partner to share.
	// Empty means "match with anyone".
	Interest string `gorm:"index"`
	// EnqueuedAt orders the queue for FIFO selection.
	EnqueuedAt time.Time `gorm:"index"`
}
