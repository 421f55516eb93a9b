// Package ratelimit guards the relay against per-user message floods.
// A user who sends more than a threshold of events inside a short sliding
// window is muted for a fixed duration; while muted every event is rejected
// with the remaining time.
package ratelimit

import (
	"math"
	"sync"
	"time"
)

// Verdict is the result of gating one inbound event.
type Verdict struct {
	// Allowed is true when the event may proceed.
	Allowed bool
	// JustMuted is true on the event that triggered the mute.
	JustMuted bool
	// Remaining is how long the mute still lasts, zero when Allowed.
	Remaining time.Duration
}

// RemainingSeconds is Remaining rounded up to whole seconds, for display.
func (v Verdict) RemainingSeconds() int {
	return int(math.Ceil(v.Remaining.Seconds()))
}

// Limiter applies the sliding-window policy over in-process state. State is
// transient: a restart clears all windows and mutes.
type Limiter struct {
	maxEvents int
	window    time.Duration
	muteFor   time.Duration

	mu    sync.Mutex
	users map[int64]*userState

	// now is swapped in tests.
	now func() time.Time
}

type userState struct {
	timestamps []time.Time
	mutedUntil time.Time
}

// NewLimiter builds a Limiter. maxEvents is the number of events tolerated
// inside window before the sender is muted for muteFor.
func NewLimiter(maxEvents int, window, muteFor time.Duration) *Limiter {
	return &Limiter{
		maxEvents: maxEvents,
		window:    window,
		muteFor:   muteFor,
		users:     make(map[int64]*userState),
		now:       time.Now,
	}
}

// Check gates one inbound event from userID.
func (l *Limiter) Check(userID int64) Verdict {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	state, ok := l.users[userID]
	if !ok {
		state = &userState{}
		l.users[userID] = state
	}

	if !state.mutedUntil.IsZero() {
		if now.Before(state.mutedUntil) {
			return Verdict{Remaining: state.mutedUntil.Sub(now)}
		}
		// Mute expired: clear it and start a fresh window.
		state.mutedUntil = time.Time{}
		state.timestamps = nil
	}

	kept := state.timestamps[:0]
	for _, ts := range state.timestamps {
		if now.Sub(ts) < l.window {
			kept = append(kept, ts)
		}
	}
	state.timestamps = append(kept, now)

	if len(state.timestamps) > l.maxEvents {
		state.mutedUntil = now.Add(l.muteFor)
		return Verdict{JustMuted: true, Remaining: l.muteFor}
	}
	return Verdict{Allowed: true}
}

// Cleanup drops users whose window is empty and whose mute has expired.
// Call periodically to keep the map from growing without bound.
func (l *Limiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for userID, state := range l.users {
		if !state.mutedUntil.IsZero() && now.Before(state.mutedUntil) {
			continue
		}
		stale := true
		for _, ts := range state.timestamps {
			if now.Sub(ts) < l.window {
				stale = false
				break
			}
		}
		if stale {
			delete(l.users, userID)
		}
	}
}
