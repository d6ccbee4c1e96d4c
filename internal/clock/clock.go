// Package clock produces the ISO-8601 stamps applied to every mutation.
package clock

import (
	"sync"
	"time"
)

// Layout is the stamp format: UTC with millisecond precision.
const Layout = "2006-01-02T15:04:05.000Z"

// Clock yields monotonically-labeled instants. Two successive calls never
// return the same stamp, even when the wall clock has not advanced past
// millisecond resolution.
type Clock interface {
	Now() string
}

// System is the wall-clock implementation. Safe for concurrent use.
type System struct {
	mu   sync.Mutex
	last time.Time
}

// NewSystem creates a System clock.
func NewSystem() *System {
	return &System{}
}

// Now returns the current instant, bumped by one millisecond if the wall
// clock has not moved past the previous stamp.
func (c *System) Now() string {
	now := time.Now().UTC().Truncate(time.Millisecond)

	c.mu.Lock()
	if !now.After(c.last) {
		now = c.last.Add(time.Millisecond)
	}
	c.last = now
	c.mu.Unlock()

	return now.Format(Layout)
}

// Fixed is a deterministic clock for tests: it starts at a given instant and
// advances by a fixed step on every call.
type Fixed struct {
	mu   sync.Mutex
	next time.Time
	step time.Duration
}

// NewFixed creates a Fixed clock starting at start.
func NewFixed(start time.Time, step time.Duration) *Fixed {
	return &Fixed{next: start.UTC(), step: step}
}

// Now returns the current fixed instant and advances by the step.
func (c *Fixed) Now() string {
	c.mu.Lock()
	stamp := c.next.Format(Layout)
	c.next = c.next.Add(c.step)
	c.mu.Unlock()
	return stamp
}
