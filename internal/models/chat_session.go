package models

import "time"

// ChatSession is one direction of an active 1-on-1 chat. Every session is
// stored as two symmetric rows (A→B and B→A) so the partner of either side
// can be found by primary key. The two rows share a SessionID and are created
// and deleted together.
type ChatSession struct {
	// UserID is the Telegram chat ID this row belongs to.
	UserID int64 `gorm:"primaryKey"`
	// PartnerID is the other participant.
	PartnerID int64 `gorm:"index"`
	// SessionID is the UUID shared by both directions of the pair.
	SessionID string `gorm:"index"`
	// StartedAt is when the pair was created.
	StartedAt time.Time
}
