// Package model defines shared data structures.
package model

import "time"

// Config defines typing test settings.
type Config struct {
	Duration     time.Duration
	QuoteURL     string
	QuotesFile   string
	FetchTimeout time.Duration
}

// Result is a leaderboard entry. It is never mutated after creation.
type Result struct {
	WPM       int    `json:"wpm"`
	Accuracy  int    `json:"accuracy"`
	Timestamp string `json:"timestamp"`
}

// Attempt captures a finished attempt, by completion or timeout.
type Attempt struct {
	Result     Result
	EndedAt    time.Time
	Elapsed    time.Duration
	Keystrokes int
	Errors     int
	TimedOut   bool
	Quote      string
}

// AttemptAggregate is a stored attempt loaded for reporting.
type AttemptAggregate struct {
	ID         int64
	EndedAt    time.Time
	WPM        int
	Accuracy   int
	ElapsedMs  int64
	Keystrokes int
	Errors     int
	TimedOut   bool
}
