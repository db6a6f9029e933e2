// Package timectrl drives simulation time for one game instance. It owns the
// game clock and the pulse scheduler that advances it: a requested duration is
// split into variable-length subpulses, the processor pipeline runs once per
// subpulse, and processors cooperate with the scheduler through the
// SubpulseLimit and Interrupt registers.
package timectrl

import (
	"sync"
	"time"
)

// SimClock is a read-only view of simulation time. Processors and external
// components depend on this abstraction rather than the concrete clock,
// enabling testability.
type SimClock interface {
	// Now returns the current simulation time.
	Now() time.Time
}

// GameClock holds the current simulated date-time with second granularity.
// It is mutated only by the Scheduler between subpulses and never rolls back.
type GameClock struct {
	mu      sync.RWMutex
	start   time.Time
	current time.Time
}

// NewGameClock constructs a clock positioned at start.
func NewGameClock(start time.Time) *GameClock {
	start = start.UTC().Truncate(time.Second)
	return &GameClock{start: start, current: start}
}

// Now returns the current simulation time. Implements SimClock.
func (c *GameClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// ElapsedSeconds returns whole seconds advanced since the clock was created
// or last restored.
func (c *GameClock) ElapsedSeconds() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return int64(c.current.Sub(c.start) / time.Second)
}

// advance moves the clock forward. Non-positive amounts are ignored so the
// clock stays monotonically non-decreasing.
func (c *GameClock) advance(seconds int64) {
	if seconds <= 0 {
		return
	}
	c.mu.Lock()
	c.current = c.current.Add(time.Duration(seconds) * time.Second)
	c.mu.Unlock()
}

// Restore repositions the clock to a persisted timestamp. Intended for use
// before the first Advance after loading a saved game; the timestamp is
// truncated to the clock's second granularity.
func (c *GameClock) Restore(t time.Time) {
	t = t.UTC().Truncate(time.Second)
	c.mu.Lock()
	c.start = t
	c.current = t
	c.mu.Unlock()
}
