// Package mediagroup reassembles multi-attachment messages. The transport
// delivers album parts as individual messages tagged with a shared group ID;
// the aggregator buffers them and, after a short quiescence delay, delivers
// the whole album to the partner as one unit.
package mediagroup

import (
	"log"
	"sort"
	"sync"
	"time"

	"anonpair/backend/internal/models"
	"anonpair/backend/internal/storage"
	"anonpair/backend/internal/transport"
)

// Aggregator owns the per-group buffers. Buffers are process-local: all
// parts of one album arrive on the same update stream.
type Aggregator struct {
	storage   storage.Storage
	transport transport.Transport
	delay     time.Duration

	mu     sync.Mutex
	groups map[string]*group
}

type group struct {
	from  int64
	to    int64
	parts []models.MediaPart
}

func NewAggregator(s storage.Storage, t transport.Transport, delay time.Duration) *Aggregator {
	return &Aggregator{
		storage:   s,
		transport: t,
		delay:     delay,
		groups:    make(map[string]*group),
	}
}

// OnPart buffers one album part. The first part of a group schedules a
// one-shot flush after the quiescence delay; scheduling happens exactly once
// per group because creation and append run under one lock.
func (a *Aggregator) OnPart(groupID string, fromUser, toUser int64, part models.MediaPart) {
	a.mu.Lock()
	g, ok := a.groups[groupID]
	if !ok {
		g = &group{from: fromUser, to: toUser}
		a.groups[groupID] = g
		time.AfterFunc(a.delay, func() { a.Flush(groupID) })
	}
	g.parts = append(g.parts, part)
	a.mu.Unlock()
}

// Flush takes and clears the buffer for groupID and delivers it. A second
// trigger on an already-flushed group is a no-op.
func (a *Aggregator) Flush(groupID string) {
	a.mu.Lock()
	g, ok := a.groups[groupID]
	delete(a.groups, groupID)
	a.mu.Unlock()
	if !ok || len(g.parts) == 0 {
		return
	}

	// Parts may arrive out of order; the sender-side message ID restores
	// the original sequence.
	parts := g.parts
	sort.Slice(parts, func(i, j int) bool { return parts[i].MessageID < parts[j].MessageID })

	// The album caption is the first non-empty part caption; it rides on
	// the first item only.
	caption := ""
	for _, p := range parts {
		if p.Caption != "" {
			caption = p.Caption
			break
		}
	}
	for i := range parts {
		if i == 0 {
			parts[i].Caption = caption
		} else {
			parts[i].Caption = ""
		}
	}

	deliveredIDs, err := a.transport.SendMediaGroup(g.to, parts)
	if err != nil {
		log.Printf("ERROR: Failed to send media group to %d: %v", g.to, err)
		return
	}

	for i, part := range parts {
		if i >= len(deliveredIDs) {
			break
		}
		if err := a.storage.LogMessage(g.from, part.MessageID, g.to, deliveredIDs[i]); err != nil {
			log.Printf("ERROR: Failed to log media group message link for %d: %v", g.from, err)
		}
	}
}

// Pending reports whether a buffer exists for groupID.
func (a *Aggregator) Pending(groupID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.groups[groupID]
	return ok
}
