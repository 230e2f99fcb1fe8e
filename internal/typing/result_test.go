package typing

import (
	"testing"
	"time"
)

func TestCompletionResultCat(t *testing.T) {
	s := NewSession("cat")
	buffer, out := typeKeys(s, "", "cat", t0)
	if !out.Complete {
		t.Fatalf("expected completion")
	}
	res := s.CompletionResult(buffer, t0.Add(2*time.Second))
	if res.Accuracy != 100 {
		t.Fatalf("accuracy = %d, want 100", res.Accuracy)
	}
	// 1 word in 2 seconds.
	if res.WPM != 30 {
		t.Fatalf("wpm = %d, want 30", res.WPM)
	}
	if res.Elapsed != 2*time.Second {
		t.Fatalf("elapsed = %v", res.Elapsed)
	}
	if res.TimedOut {
		t.Fatalf("completion must not be a timeout")
	}
	if res.Timestamp() != "2024-05-01 12:00:02" {
		t.Fatalf("timestamp = %q", res.Timestamp())
	}
}

func TestTimeoutResultExcludesWrongCells(t *testing.T) {
	s := NewSession("cat dog")
	buffer, _ := typeKeys(s, "", "cxat", t0)
	if buffer != "cat" {
		t.Fatalf("buffer = %q", buffer)
	}
	res := s.TimeoutResult(buffer, t0.Add(30*time.Second))
	// c and t count; a matches but was marked wrong. 4 keystrokes.
	if res.Accuracy != 50 {
		t.Fatalf("accuracy = %d, want 50", res.Accuracy)
	}
	if res.WPM != 2 {
		t.Fatalf("wpm = %d, want 2", res.WPM)
	}
	if !res.TimedOut || res.Errors != 1 || res.Keystrokes != 4 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestTimeoutWithoutTyping(t *testing.T) {
	s := NewSession("cat")
	res := s.TimeoutResult("", t0)
	if res.Accuracy != 0 || res.WPM != 0 {
		t.Fatalf("expected zeroed result, got %+v", res)
	}
}

func TestCorrectWords(t *testing.T) {
	cases := []struct {
		quote, typed string
		want         int
	}{
		{"the cat sat", "the cat sat", 3},
		{"the cat sat", "the cut sat", 2},
		{"the cat sat", "the ca", 1},
		{"the cat", "", 0},
		{"", "", 0},
		{"  spaced   out ", "spaced out", 2},
	}
	for _, tc := range cases {
		if got := CorrectWords(tc.quote, tc.typed); got != tc.want {
			t.Fatalf("CorrectWords(%q, %q) = %d, want %d", tc.quote, tc.typed, got, tc.want)
		}
	}
}

func TestWPMGuardsZeroElapsed(t *testing.T) {
	if got := WPM("a", "a", 0); got <= 0 {
		t.Fatalf("expected positive wpm for instant completion, got %d", got)
	}
	if got := WPM("a", "b", time.Second); got != 0 {
		t.Fatalf("expected 0 wpm without correct words, got %d", got)
	}
}
