// Package typing implements the keystroke validation state machine.
package typing

import (
	"math"
	"time"
)

// Status is the validation state of a single quote character.
type Status int

const (
	Pending Status = iota
	Correct
	Wrong
)

func (s Status) String() string {
	switch s {
	case Correct:
		return "correct"
	case Wrong:
		return "wrong"
	default:
		return "pending"
	}
}

// Session holds the state of one attempt. The zero value is an attempt with an empty quote.
type Session struct {
	quote []rune
	cells []Status

	keystrokes int
	errors     int

	started   bool
	startedAt time.Time
}

// Outcome describes the effect of one input event.
type Outcome struct {
	// Buffer is the input value after validation. It is shorter than the
	// received value when a wrong character was rejected.
	Buffer string
	// Started is true when the event was the first of the attempt.
	Started bool
	// Complete is true when the typed length reached the quote length.
	Complete bool
	Accuracy int
}

// NewSession returns a session for the given quote.
func NewSession(quote string) *Session {
	s := &Session{}
	s.SetQuote(quote)
	return s
}

// SetQuote replaces the quote and renders a fresh, all-pending cell sequence.
// Counters are left alone so a quote arriving mid-attempt keeps them.
func (s *Session) SetQuote(quote string) {
	s.quote = []rune(quote)
	s.cells = make([]Status, len(s.quote))
}

// Reset starts a new attempt on the given quote.
func (s *Session) Reset(quote string) {
	s.keystrokes = 0
	s.errors = 0
	s.started = false
	s.startedAt = time.Time{}
	s.SetQuote(quote)
}

// Quote returns the current quote.
func (s *Session) Quote() string { return string(s.quote) }

// Cells returns a copy of the per-character statuses.
func (s *Session) Cells() []Status {
	out := make([]Status, len(s.cells))
	copy(out, s.cells)
	return out
}

// Keystrokes returns the number of input events seen in this attempt.
func (s *Session) Keystrokes() int { return s.keystrokes }

// Errors returns the number of rejected characters in this attempt.
func (s *Session) Errors() int { return s.errors }

// Started reports whether the attempt has received its first input.
func (s *Session) Started() bool { return s.started }

// StartedAt returns the time of the first input event.
func (s *Session) StartedAt() time.Time { return s.startedAt }

// Input consumes one input-change event carrying the full input value.
func (s *Session) Input(buffer string, now time.Time) Outcome {
	var out Outcome
	if !s.started {
		s.started = true
		s.startedAt = now
		out.Started = true
	}
	s.keystrokes++

	typed := []rune(buffer)
	var rejected bool
	s.cells, typed, rejected = Validate(s.cells, typed, s.quote)
	if rejected {
		s.errors++
	}

	out.Buffer = string(typed)
	out.Accuracy = s.Accuracy()
	out.Complete = len(s.quote) > 0 && len([]rune(buffer)) == len(s.quote)
	return out
}

// Validate walks cells left to right against typed and returns the updated
// statuses, the accepted input and whether a character was rejected. A
// mismatch on a cell that is not already correct marks it wrong, drops it and
// everything after it from the input, and ends the walk. A wrong cell stays
// wrong until the input no longer reaches it.
func Validate(prev []Status, typed, quote []rune) ([]Status, []rune, bool) {
	cells := make([]Status, len(quote))
	copy(cells, prev)
	for i, expected := range quote {
		if i >= len(typed) {
			cells[i] = Pending
			continue
		}
		ch := typed[i]
		switch {
		case ch == expected && cells[i] != Wrong:
			cells[i] = Correct
		case ch != expected && cells[i] != Correct:
			cells[i] = Wrong
			return cells, typed[:i], true
		}
	}
	return cells, typed, false
}

// CorrectCells counts cells in the correct state.
func (s *Session) CorrectCells() int {
	n := 0
	for _, st := range s.cells {
		if st == Correct {
			n++
		}
	}
	return n
}

// Accuracy returns correct cells over keystrokes as a rounded percentage.
func (s *Session) Accuracy() int {
	return Accuracy(s.CorrectCells(), s.keystrokes)
}

// Accuracy returns round(correct/keystrokes*100), or 0 without keystrokes.
func Accuracy(correct, keystrokes int) int {
	if keystrokes <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(keystrokes) * 100))
}
