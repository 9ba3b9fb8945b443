package testing

import (
	"sync"
	"time"

	"github.com/LeJamon/goCPSwap/internal/core/tx"
)

// ManualClock provides a controllable clock for testing time-dependent behavior.
// It implements tx.Clock.
type ManualClock struct {
	mu      sync.RWMutex
	current time.Time
	epoch   uint64
}

// NewManualClock creates a new ManualClock set to a default time.
// The default is January 1, 2024, 00:00:00 UTC at epoch 500.
func NewManualClock() *ManualClock {
	return &ManualClock{
		current: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		epoch:   500,
	}
}

// Now returns the current snapshot.
func (c *ManualClock) Now() tx.ClockSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return tx.ClockSnapshot{UnixTimestamp: c.current.Unix(), Epoch: c.epoch}
}

// Time returns the current wall time on the clock.
func (c *ManualClock) Time() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Advance moves the clock forward by the specified duration.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

// AdvanceEpoch moves the epoch forward by n.
func (c *ManualClock) AdvanceEpoch(n uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch += n
}
