// Package stats contains result calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/quotype/internal/model"
)

const sparkChars = " .:-=+*#%@"

// EmptyLeaderboard is shown when no results are stored.
const EmptyLeaderboard = "No scores yet. Start typing!"

// LeaderboardLines renders one line per entry in stored order.
func LeaderboardLines(entries []model.Result) []string {
	if len(entries) == 0 {
		return []string{EmptyLeaderboard}
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, FormatEntry(e))
	}
	return lines
}

// FormatEntry renders a single leaderboard entry.
func FormatEntry(e model.Result) string {
	return fmt.Sprintf("%d WPM, %d %% Accuracy (%s)", e.WPM, e.Accuracy, e.Timestamp)
}

// Summary aggregates stored attempts.
type Summary struct {
	Attempts    int
	TimedOut    int
	AvgWPM      float64
	BestWPM     int
	AvgAccuracy float64
	TotalErrors int
}

// Summarize aggregates attempts.
func Summarize(attempts []model.AttemptAggregate) Summary {
	var s Summary
	if len(attempts) == 0 {
		return s
	}
	var wpm, acc float64
	for _, a := range attempts {
		wpm += float64(a.WPM)
		acc += float64(a.Accuracy)
		if a.WPM > s.BestWPM {
			s.BestWPM = a.WPM
		}
		if a.TimedOut {
			s.TimedOut++
		}
		s.TotalErrors += a.Errors
	}
	s.Attempts = len(attempts)
	s.AvgWPM = wpm / float64(len(attempts))
	s.AvgAccuracy = acc / float64(len(attempts))
	return s
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderLeaderboard prints the leaderboard.
func RenderLeaderboard(w io.Writer, entries []model.Result) error {
	if _, err := fmt.Fprintln(w, "Leaderboard"); err != nil {
		return err
	}
	for i, line := range LeaderboardLines(entries) {
		prefix := "  "
		if len(entries) > 0 {
			prefix = fmt.Sprintf("%d. ", i+1)
		}
		if _, err := fmt.Fprintln(w, prefix+line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderSummary prints a summary table and a WPM trend for attempts.
// A positive width limits the trend line to the last width attempts.
func RenderSummary(w io.Writer, attempts []model.AttemptAggregate, width int) error {
	if len(attempts) == 0 {
		_, err := fmt.Fprintln(w, "No attempts found.")
		return err
	}
	s := Summarize(attempts)
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	cols := []column{
		{title: "Attempts", right: true},
		{title: "Timed out", right: true},
		{title: "Avg WPM", right: true},
		{title: "Best WPM", right: true},
		{title: "Avg Accuracy", right: true},
		{title: "Errors", right: true},
	}
	rows := [][]string{{
		fmt.Sprintf("%d", s.Attempts),
		fmt.Sprintf("%d", s.TimedOut),
		fmt.Sprintf("%.1f", s.AvgWPM),
		fmt.Sprintf("%d", s.BestWPM),
		fmt.Sprintf("%.1f%%", s.AvgAccuracy),
		fmt.Sprintf("%d", s.TotalErrors),
	}}
	for _, line := range renderTable(cols, rows) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	wpms := make([]float64, len(attempts))
	for i, a := range attempts {
		wpms[i] = float64(a.WPM)
	}
	label := "WPM trend "
	if width > len(label) && len(wpms) > width-len(label) {
		wpms = wpms[len(wpms)-(width-len(label)):]
	}
	if _, err := fmt.Fprintf(w, "\n%s%s\n", label, Sparkline(MovingAverage(wpms, 3))); err != nil {
		return err
	}
	return nil
}
