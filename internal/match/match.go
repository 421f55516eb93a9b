// Package match implements the waiting-queue state machine and block-aware
// partner selection.
package match

import (
	"fmt"
	"log"

	"anonpair/backend/internal/storage"
)

// Engine drives enqueue, claim and session lifecycle against the store.
// The at-most-one claim guarantee lives in Storage.ClaimFromQueue; the engine
// enforces the per-user state machine around it (a user is queued, chatting,
// or idle, never two at once).
type Engine struct {
	Storage storage.Storage
}

func NewEngine(s storage.Storage) *Engine {
	return &Engine{Storage: s}
}

// QueueState is what Enqueue reports back to the caller.
type QueueState int

const (
	// Queued means the user was added to the waiting queue.
	Queued QueueState = iota
	// AlreadyQueued means the user's existing entry was kept.
	AlreadyQueued
	// AlreadyChatting means the user has an active session and was not queued.
	AlreadyChatting
)

// Enqueue puts the user into the waiting queue. It is an idempotent no-op
// for a user who is already queued, and refuses users with an active session.
func (e *Engine) Enqueue(userID int64, interest string) (QueueState, error) {
	if _, inChat, err := e.Storage.GetPartner(userID); err != nil {
		return Queued, fmt.Errorf("enqueue %d: %w", userID, err)
	} else if inChat {
		return AlreadyChatting, nil
	}

	queued, err := e.Storage.IsInQueue(userID)
	if err != nil {
		return Queued, fmt.Errorf("enqueue %d: %w", userID, err)
	}
	if queued {
		return AlreadyQueued, nil
	}

	if err := e.Storage.AddToQueue(userID, interest); err != nil {
		return Queued, fmt.Errorf("enqueue %d: %w", userID, err)
	}
	log.Printf("User %d added to queue with interest %q", userID, interest)
	return Queued, nil
}

// Dequeue removes the user's queue entry; no-op if absent.
func (e *Engine) Dequeue(userID int64) {
	if err := e.Storage.RemoveFromQueue(userID); err != nil {
		log.Printf("ERROR: Failed to remove %d from queue: %v", userID, err)
	}
}

// FindAndReserveMatch claims the oldest eligible queued partner for userID.
// Block relations in either direction exclude a candidate; a non-empty
// interest restricts candidates to the same tag. A store failure degrades to
// "no match found" so the caller can enqueue instead.
func (e *Engine) FindAndReserveMatch(userID int64, interest string) (int64, bool) {
	partnerID, ok, err := e.Storage.ClaimFromQueue(userID, interest)
	if err != nil {
		log.Printf("ERROR: Match lookup failed for %d: %v", userID, err)
		return 0, false
	}
	return partnerID, ok
}

// StartSession creates the symmetric session pair. Neither participant may
// already be in a session.
func (e *Engine) StartSession(userID, partnerID int64) error {
	for _, id := range []int64{userID, partnerID} {
		if _, inChat, err := e.Storage.GetPartner(id); err != nil {
			return fmt.Errorf("start session %d/%d: %w", userID, partnerID, err)
		} else if inChat {
			return fmt.Errorf("start session: user %d already has a partner", id)
		}
	}
	if err := e.Storage.CreateChat(userID, partnerID); err != nil {
		return fmt.Errorf("start session %d/%d: %w", userID, partnerID, err)
	}
	log.Printf("Chat created between %d and %d", userID, partnerID)
	return nil
}

// EndSession tears down the session containing userID and returns the former
// partner. The second call for the same session returns ok=false.
func (e *Engine) EndSession(userID int64) (int64, bool) {
	partnerID, ok, err := e.Storage.EndChat(userID)
	if err != nil {
		log.Printf("ERROR: Failed to end chat for %d: %v", userID, err)
		return 0, false
	}
	if ok {
		log.Printf("Chat ended between %d and %d", userID, partnerID)
	}
	return partnerID, ok
}

// PartnerOf returns the current partner of userID, ok=false when idle or the
// store is unavailable.
func (e *Engine) PartnerOf(userID int64) (int64, bool) {
	partnerID, ok, err := e.Storage.GetPartner(userID)
	if err != nil {
		log.Printf("ERROR: Partner lookup failed for %d: %v", userID, err)
		return 0, false
	}
	return partnerID, ok
}

// Block records that blocker never wants to meet blocked again.
func (e *Engine) Block(blockerID, blockedID int64) error {
	if err := e.Storage.BlockUser(blockerID, blockedID); err != nil {
		return fmt.Errorf("block %d->%d: %w", blockerID, blockedID, err)
	}
	log.Printf("User %d blocked %d", blockerID, blockedID)
	return nil
}

// Report files a complaint against reported.
func (e *Engine) Report(reporterID, reportedID int64, reason string) error {
	if err := e.Storage.SaveReport(reporterID, reportedID, reason); err != nil {
		return fmt.Errorf("report %d->%d: %w", reporterID, reportedID, err)
	}
	log.Printf("User %d reported %d for %s", reporterID, reportedID, reason)
	return nil
}
