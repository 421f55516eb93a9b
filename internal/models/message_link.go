package models

import "time"

// MessageLink records that a message delivered to the receiver is the relayed
// copy of the sender's original. It is read in both directions: given the
// original, find the copy (for outward reply targeting, edits, deletes); given
// the copy, find the original (for replies to delivered messages).
type MessageLink struct {
	ID uint `gorm:"primaryKey"`
	// SenderID and SenderMsgID identify the original on the sender's side.
	SenderID    int64 `gorm:"index:idx_link_sender"`
	SenderMsgID int   `gorm:"index:idx_link_sender"`
	// ReceiverID and ReceiverMsgID identify the delivered copy.
	ReceiverID    int64 `gorm:"index:idx_link_receiver"`
	ReceiverMsgID int   `gorm:"index:idx_link_receiver"`
	CreatedAt     time.Time
}
