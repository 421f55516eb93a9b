package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock lets tests step time deterministically.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter() (*Limiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	l := NewLimiter(5, 2*time.Second, 60*time.Second)
	l.now = clock.now
	return l, clock
}

func TestBurstWithinThresholdIsAllowed(t *testing.T) {
	l, _ := newTestLimiter()

	for i := 0; i < 5; i++ {
		v := l.Check(42)
		assert.True(t, v.Allowed, "event %d should pass", i+1)
	}
}

func TestSixthEventInWindowMutes(t *testing.T) {
	l, clock := newTestLimiter()

	for i := 0; i < 5; i++ {
		l.Check(42)
		clock.advance(100 * time.Millisecond)
	}

	v := l.Check(42)
	assert.False(t, v.Allowed)
	assert.True(t, v.JustMuted)
	assert.Equal(t, 60, v.RemainingSeconds())

	// Subsequent events report the mute without re-triggering it.
	clock.advance(10 * time.Second)
	v = l.Check(42)
	assert.False(t, v.Allowed)
	assert.False(t, v.JustMuted)
	assert.Equal(t, 50, v.RemainingSeconds())
}

func TestSlowSenderNeverMutes(t *testing.T) {
	l, clock := newTestLimiter()

	for i := 0; i < 20; i++ {
		v := l.Check(42)
		assert.True(t, v.Allowed)
		clock.advance(time.Second)
	}
}

func TestMuteExpiresAndWindowResets(t *testing.T) {
	l, clock := newTestLimiter()

	for i := 0; i < 6; i++ {
		l.Check(42)
	}
	clock.advance(61 * time.Second)

	v := l.Check(42)
	assert.True(t, v.Allowed, "a message after the mute window must pass")
}

func TestUsersAreIndependent(t *testing.T) {
	l, _ := newTestLimiter()

	for i := 0; i < 6; i++ {
		l.Check(1)
	}
	assert.False(t, l.Check(1).Allowed)
	assert.True(t, l.Check(2).Allowed)
}

func TestCleanupDropsIdleUsers(t *testing.T) {
	l, clock := newTestLimiter()

	l.Check(1)
	for i := 0; i < 6; i++ {
		l.Check(2)
	}

	clock.advance(5 * time.Second)
	l.Cleanup()

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.NotContains(t, l.users, int64(1), "idle window should be reclaimed")
	assert.Contains(t, l.users, int64(2), "muted user must survive cleanup")
}
