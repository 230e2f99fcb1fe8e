package typing

import (
	"math"
	"strings"
	"time"
)

// TimestampLayout formats leaderboard timestamps.
const TimestampLayout = "2006-01-02 15:04:05"

// Result is the outcome of a finished attempt.
type Result struct {
	WPM        int
	Accuracy   int
	Elapsed    time.Duration
	Keystrokes int
	Errors     int
	TimedOut   bool
	EndedAt    time.Time
}

// Timestamp returns the human readable end time.
func (r Result) Timestamp() string {
	return r.EndedAt.Format(TimestampLayout)
}

// CompletionResult computes results for an attempt that reached the end of the quote.
func (s *Session) CompletionResult(buffer string, now time.Time) Result {
	return s.result(buffer, s.CorrectCells(), now, false)
}

// TimeoutResult computes results when the countdown expires. Correct cells are
// recounted against buffer; a cell that was ever marked wrong never counts.
func (s *Session) TimeoutResult(buffer string, now time.Time) Result {
	typed := []rune(buffer)
	correct := 0
	for i, expected := range s.quote {
		if i < len(typed) && typed[i] == expected && s.cells[i] != Wrong {
			correct++
		}
	}
	return s.result(buffer, correct, now, true)
}

func (s *Session) result(buffer string, correct int, now time.Time, timedOut bool) Result {
	elapsed := time.Duration(0)
	if s.started {
		elapsed = now.Sub(s.startedAt)
	}
	return Result{
		WPM:        WPM(string(s.quote), buffer, elapsed),
		Accuracy:   Accuracy(correct, s.keystrokes),
		Elapsed:    elapsed,
		Keystrokes: s.keystrokes,
		Errors:     s.errors,
		TimedOut:   timedOut,
		EndedAt:    now,
	}
}

// CorrectWords counts whitespace-separated words of typed that equal the
// quote's word at the same position.
func CorrectWords(quote, typed string) int {
	want := strings.Fields(quote)
	got := strings.Fields(typed)
	n := 0
	for i := 0; i < len(want) && i < len(got); i++ {
		if want[i] == got[i] {
			n++
		}
	}
	return n
}

// WPM returns whole-word matches per minute of elapsed time.
func WPM(quote, typed string, elapsed time.Duration) int {
	words := CorrectWords(quote, typed)
	if words == 0 {
		return 0
	}
	if elapsed < time.Millisecond {
		elapsed = time.Millisecond
	}
	return int(math.Round(float64(words) / elapsed.Seconds() * 60))
}
