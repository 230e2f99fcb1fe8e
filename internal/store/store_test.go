package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/verte-zerg/quotype/internal/model"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "quotype.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func attemptAt(i int) model.Attempt {
	end := time.Unix(0, 0).UTC().Add(time.Duration(i) * time.Minute)
	return model.Attempt{
		Result:     model.Result{WPM: 40 + i, Accuracy: 90, Timestamp: end.Format("2006-01-02 15:04:05")},
		EndedAt:    end,
		Elapsed:    20 * time.Second,
		Keystrokes: 50,
		Errors:     i % 2,
		TimedOut:   i%3 == 0,
		Quote:      "quote",
	}
}

func TestLeaderboardEmptyWhenMissing(t *testing.T) {
	st := openStore(t)
	entries, err := st.Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Fatalf("expected empty leaderboard, got %#v", entries)
	}
}

func TestLeaderboardCorruptValueIsEmpty(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	for _, raw := range []string{"{not json", "null", `{"wpm":1}`} {
		if err := st.SetRaw(ctx, LeaderboardKey, raw); err != nil {
			t.Fatalf("set raw: %v", err)
		}
		entries, err := st.Leaderboard(ctx)
		if err != nil {
			t.Fatalf("leaderboard: %v", err)
		}
		if len(entries) != 0 {
			t.Fatalf("raw %q: expected empty leaderboard, got %+v", raw, entries)
		}
	}
	if err := st.PushResult(ctx, attemptAt(1)); err != nil {
		t.Fatalf("push over corrupt value: %v", err)
	}
	entries, err := st.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
}

func TestPushResultKeepsSixMostRecent(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	for i := 1; i <= 7; i++ {
		if err := st.PushResult(ctx, attemptAt(i)); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	entries, err := st.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != LeaderboardSize {
		t.Fatalf("expected %d entries, got %d", LeaderboardSize, len(entries))
	}
	var got []int
	for _, e := range entries {
		got = append(got, e.WPM)
	}
	want := []int{47, 46, 45, 44, 43, 42}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("leaderboard order mismatch (-want +got):\n%s", diff)
	}
}

func TestPushResultWritesJSONLayout(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	if err := st.PushResult(ctx, attemptAt(2)); err != nil {
		t.Fatalf("push: %v", err)
	}
	var raw string
	if err := st.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, LeaderboardKey).Scan(&raw); err != nil {
		t.Fatalf("read raw: %v", err)
	}
	want := `[{"wpm":42,"accuracy":90,"timestamp":"1970-01-01 00:02:00"}]`
	if raw != want {
		t.Fatalf("raw = %s, want %s", raw, want)
	}
}

func TestListAttempts(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	for i := 1; i <= 4; i++ {
		if err := st.PushResult(ctx, attemptAt(i)); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	all, err := st.ListAttempts(ctx, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 attempts, got %d", len(all))
	}
	if all[0].WPM != 41 || all[3].WPM != 44 {
		t.Fatalf("expected oldest first, got %+v", all)
	}
	if !all[2].TimedOut || all[0].TimedOut {
		t.Fatalf("timed_out flag not round-tripped: %+v", all)
	}
	if all[0].ElapsedMs != 20000 {
		t.Fatalf("elapsed = %d", all[0].ElapsedMs)
	}

	last, err := st.ListAttempts(ctx, 2)
	if err != nil {
		t.Fatalf("list last: %v", err)
	}
	if len(last) != 2 || last[0].WPM != 43 || last[1].WPM != 44 {
		t.Fatalf("unexpected last attempts: %+v", last)
	}
}

func TestPrependCapped(t *testing.T) {
	entries := []model.Result{{WPM: 2}, {WPM: 1}}
	got := PrependCapped(entries, model.Result{WPM: 3}, 2)
	if diff := cmp.Diff([]model.Result{{WPM: 3}, {WPM: 2}}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if entries[0].WPM != 2 {
		t.Fatalf("input slice was modified")
	}
}
