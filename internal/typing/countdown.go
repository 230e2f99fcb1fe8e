package typing

import (
	"fmt"
	"time"
)

// DefaultBudget is the length of an attempt.
const DefaultBudget = 30 * time.Second

// TickInterval is the countdown refresh resolution.
const TickInterval = 10 * time.Millisecond

// Countdown tracks remaining time from a fixed start, so tick jitter does not drift it.
type Countdown struct {
	budget  time.Duration
	start   time.Time
	running bool
}

// NewCountdown returns a stopped countdown. A non-positive budget uses DefaultBudget.
func NewCountdown(budget time.Duration) *Countdown {
	if budget <= 0 {
		budget = DefaultBudget
	}
	return &Countdown{budget: budget}
}

// Budget returns the total time of an attempt.
func (c *Countdown) Budget() time.Duration { return c.budget }

// Start arms the countdown at now, replacing any previous run.
func (c *Countdown) Start(now time.Time) {
	c.start = now
	c.running = true
}

// Stop halts the countdown. Stopping twice is a no-op.
func (c *Countdown) Stop() {
	c.running = false
}

// Active reports whether the countdown is running.
func (c *Countdown) Active() bool { return c.running }

// Remaining returns budget minus elapsed wall-clock time, never below zero.
func (c *Countdown) Remaining(now time.Time) time.Duration {
	if !c.running {
		return c.budget
	}
	remaining := c.budget - now.Sub(c.start)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// FormatClock renders d as MM:SS.CC.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	minutes := ms / 60000
	seconds := (ms % 60000) / 1000
	hundredths := (ms % 1000) / 10
	return fmt.Sprintf("%02d:%02d.%02d", minutes, seconds, hundredths)
}

// FormatIdle renders the reset display for a budget, e.g. 00:30:00.
func FormatIdle(budget time.Duration) string {
	secs := int64(budget / time.Second)
	return fmt.Sprintf("%02d:%02d:00", secs/60, secs%60)
}
