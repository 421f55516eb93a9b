// Package storage is the persistence gateway for the matchmaking relay.
// It exposes queue, session, block, report, message-link and settings
// operations behind one interface with two implementations: a gorm-backed
// Service (SQLite or PostgreSQL) and an in-memory Memory store used as the
// reference implementation and in tests.
package storage

import "anonpair/backend/internal/models"

// Stats is the operator-facing summary of the system.
type Stats struct {
	TotalUsers  int64 `json:"total_users"`
	ActiveChats int64 `json:"active_chats"`
	InQueue     int64 `json:"in_queue"`
}

type Storage interface {
	// AddToQueue inserts a waiting-queue entry; no-op if the user is
	// already queued (the existing entry and its position are kept).
	AddToQueue(userID int64, interest string) error
	// RemoveFromQueue deletes the user's entry; no-op if absent.
	RemoveFromQueue(userID int64) error
	IsInQueue(userID int64) (bool, error)
	// ClaimFromQueue finds the oldest queued user who is eligible for
	// userID (not userID itself, not blocked in either direction, and
	// matching interest when interest is non-empty) and atomically removes
	// the entry. At most one caller ever claims any given entry. Returns
	// ok=false when no eligible entry exists.
	ClaimFromQueue(userID int64, interest string) (partnerID int64, ok bool, err error)

	// CreateChat writes both directions of a session as a unit.
	CreateChat(userID, partnerID int64) error
	// GetPartner returns the active partner of userID, ok=false if none.
	GetPartner(userID int64) (int64, bool, error)
	// EndChat removes both directions of the session containing userID and
	// returns the other participant. ok=false if there was no session.
	EndChat(userID int64) (int64, bool, error)

	BlockUser(blockerID, blockedID int64) error
	// IsBlockedEither reports whether a block exists between a and b in
	// either direction.
	IsBlockedEither(a, b int64) (bool, error)

	UnblockUser(blockerID, blockedID int64) error

	SaveReport(reporterID, reportedID int64, reason string) error
	// ListReports returns recent reports, newest first, capped at limit.
	ListReports(limit int) ([]models.Report, error)

	// LogMessage appends a link between an original and its delivered copy.
	LogMessage(senderID int64, senderMsgID int, receiverID int64, receiverMsgID int) error
	// FindReceiverMsgID resolves the delivered-copy ID given the sender and
	// the sender-side original ID.
	FindReceiverMsgID(senderID int64, senderMsgID int) (int, bool, error)
	// FindSenderMsgID resolves the original ID given the receiver and the
	// receiver-side delivered ID.
	FindSenderMsgID(receiverID int64, receiverMsgID int) (int, bool, error)

	SetInterest(userID int64, interest string) error
	GetInterest(userID int64) (string, error)
	SetLanguage(userID int64, language string) error
	// GetLanguage returns "en" for unknown users or on store failure.
	GetLanguage(userID int64) (string, error)
	// ListUsers returns every user with a settings row, for broadcast.
	ListUsers() ([]int64, error)
	GetStats() (Stats, error)
}

// Models returns the record types a SQL backend must migrate.
func Models() []interface{} {
	return []interface{}{
		&models.QueueEntry{},
		&models.ChatSession{},
		&models.BlockRelation{},
		&models.Report{},
		&models.MessageLink{},
		&models.UserSettings{},
	}
}
