package testutil

import (
	"sync"
	"time"
)

// Epoch is the first instant reported by a DeterministicClock.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// DeterministicClock is a fake time source for reproducible run reports.
//
// Every call to Now advances the clock by Step, so durations computed
// between two readings are exact and identical across runs.
//
// Thread-safety: all methods are safe for concurrent use.
type DeterministicClock struct {
	mu   sync.Mutex
	seq  int64
	Step time.Duration
}

// NewDeterministicClock returns a clock starting at Epoch that advances by
// step on every reading.
func NewDeterministicClock(step time.Duration) *DeterministicClock {
	return &DeterministicClock{Step: step}
}

// Now returns the current instant and advances the clock.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := Epoch.Add(time.Duration(c.seq) * c.Step)
	c.seq++
	return t
}

// Readings returns how many times Now has been called.
func (c *DeterministicClock) Readings() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Reset rewinds the clock to Epoch.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = 0
}
