// Package relay forwards messages, edits and deletions between the two sides
// of an active session, preserving reply threads through message links.
package relay

import (
	"errors"
	"log"
	"strings"

	"anonpair/backend/internal/match"
	"anonpair/backend/internal/mediagroup"
	"anonpair/backend/internal/models"
	"anonpair/backend/internal/storage"
	"anonpair/backend/internal/transport"
)

// Status classifies the outcome of a forward attempt.
type Status int

const (
	// Delivered means the partner received the message.
	Delivered Status = iota
	// NotInChat means the sender has no active partner; nothing was sent.
	NotInChat
	// BlockedContent means the banned-term policy suppressed the message.
	BlockedContent
	// Buffered means the message joined a pending media group.
	Buffered
	// PartnerGone means delivery failed and the session was torn down.
	PartnerGone
)

// Result is what ForwardMessage reports to the orchestrator.
type Result struct {
	Status Status
	// Partner is the recipient (or, for PartnerGone, the former partner).
	Partner int64
}

// ErrNoLink is returned when an edit or delete target has no recorded
// delivered copy.
var ErrNoLink = errors.New("no message link for target")

type Relay struct {
	Storage   storage.Storage
	Transport transport.Transport
	Match     *match.Engine
	Media     *mediagroup.Aggregator
	// BadWords are matched as lowercase substrings of plain text.
	BadWords []string
}

func New(s storage.Storage, t transport.Transport, m *match.Engine, media *mediagroup.Aggregator, badWords []string) *Relay {
	return &Relay{Storage: s, Transport: t, Match: m, Media: media, BadWords: badWords}
}

// ForwardMessage relays one inbound message to the sender's partner.
// Delivery failure is the one case with a side effect: the session ends so
// neither side keeps talking into the void.
func (r *Relay) ForwardMessage(msg models.Message) Result {
	partnerID, ok := r.Match.PartnerOf(msg.From)
	if !ok {
		return Result{Status: NotInChat}
	}

	if msg.Text != "" && r.containsBadWord(msg.Text) {
		// Suppressed: no delivery, no link.
		return Result{Status: BlockedContent, Partner: partnerID}
	}

	if msg.MediaGroupID != "" && msg.Part != nil {
		r.Media.OnPart(msg.MediaGroupID, msg.From, partnerID, *msg.Part)
		return Result{Status: Buffered, Partner: partnerID}
	}

	replyTo := 0
	if msg.ReplyToID != 0 {
		replyTo = r.resolvePartnerSideID(msg.From, msg.ReplyToID)
	}

	deliveredID, err := r.Transport.CopyMessage(partnerID, msg.From, msg.MessageID, replyTo)
	if err != nil {
		log.Printf("ERROR: Failed to deliver message from %d to %d: %v", msg.From, partnerID, err)
		r.Match.EndSession(msg.From)
		return Result{Status: PartnerGone, Partner: partnerID}
	}

	if err := r.Storage.LogMessage(msg.From, msg.MessageID, partnerID, deliveredID); err != nil {
		log.Printf("ERROR: Failed to log message link %d->%d: %v", msg.From, partnerID, err)
	}
	return Result{Status: Delivered, Partner: partnerID}
}

// ForwardEdit applies a sender-side edit to the delivered copy. It is a
// silent no-op when no link exists or the sender has no partner.
func (r *Relay) ForwardEdit(fromUser int64, messageID int, newText string) {
	partnerID, ok := r.Match.PartnerOf(fromUser)
	if !ok {
		return
	}
	copyID, found, err := r.Storage.FindReceiverMsgID(fromUser, messageID)
	if err != nil || !found {
		return
	}
	if newText == "" {
		// Media edits are not synced; only text content can be rewritten.
		return
	}
	if err := r.Transport.EditText(partnerID, copyID, newText); err != nil {
		log.Printf("ERROR: Failed to sync edit from %d to %d: %v", fromUser, partnerID, err)
		return
	}
	log.Printf("Synced edit from %d to %d", fromUser, partnerID)
}

// ForwardDelete removes the delivered copy of the sender's message. The
// transport may refuse (copy too old); the error is reported, not retried.
func (r *Relay) ForwardDelete(fromUser int64, messageID int) error {
	partnerID, ok := r.Match.PartnerOf(fromUser)
	if !ok {
		return ErrNoLink
	}
	copyID, found, err := r.Storage.FindReceiverMsgID(fromUser, messageID)
	if err != nil || !found {
		return ErrNoLink
	}
	return r.Transport.DeleteMessage(partnerID, copyID)
}

// resolvePartnerSideID maps a message ID in the sender's chat to the
// corresponding ID in the partner's chat. The referenced message is either
// one the sender wrote (its delivered copy is on the partner's side) or one
// delivered to the sender (the partner holds the original).
func (r *Relay) resolvePartnerSideID(userID int64, messageID int) int {
	if copyID, ok, err := r.Storage.FindReceiverMsgID(userID, messageID); err == nil && ok {
		return copyID
	}
	if originalID, ok, err := r.Storage.FindSenderMsgID(userID, messageID); err == nil && ok {
		return originalID
	}
	return 0
}

func (r *Relay) containsBadWord(text string) bool {
	lower := strings.ToLower(text)
	for _, word := range r.BadWords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}
