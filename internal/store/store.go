// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/quotype/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// LeaderboardKey is the kv row holding the leaderboard JSON array.
const LeaderboardKey = "typingResults"

// LeaderboardSize caps the number of leaderboard entries.
const LeaderboardSize = 6

// Store wraps SQLite access for results.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS attempts (
			id INTEGER PRIMARY KEY,
			ended_at TEXT NOT NULL,
			wpm INTEGER NOT NULL,
			accuracy INTEGER NOT NULL,
			elapsed_ms INTEGER NOT NULL,
			keystrokes INTEGER NOT NULL,
			errors INTEGER NOT NULL,
			timed_out INTEGER NOT NULL,
			quote TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_ended_at ON attempts(ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Leaderboard returns the stored entries, most recent first. A missing or
// unreadable value is an empty leaderboard.
func (s *Store) Leaderboard(ctx context.Context) ([]model.Result, error) {
	return readLeaderboard(ctx, s.db)
}

func readLeaderboard(ctx context.Context, q queryer) ([]model.Result, error) {
	var raw string
	err := q.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, LeaderboardKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return []model.Result{}, nil
	}
	if err != nil {
		return nil, err
	}
	return DecodeLeaderboard(raw), nil
}

// DecodeLeaderboard parses a stored leaderboard, treating corrupt input as empty.
func DecodeLeaderboard(raw string) []model.Result {
	var entries []model.Result
	if err := json.Unmarshal([]byte(raw), &entries); err != nil || entries == nil {
		return []model.Result{}
	}
	return entries
}

// PushResult records a finished attempt: its entry goes to the front of the
// leaderboard, which is then cut to LeaderboardSize, and the attempt is
// appended to the history.
func (s *Store) PushResult(ctx context.Context, attempt model.Attempt) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	entries, err := readLeaderboard(ctx, tx)
	if err != nil {
		return err
	}
	entries = PrependCapped(entries, attempt.Result, LeaderboardSize)
	payload, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode leaderboard: %w", err)
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		LeaderboardKey, string(payload)); err != nil {
		return err
	}

	timedOut := 0
	if attempt.TimedOut {
		timedOut = 1
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO attempts (ended_at, wpm, accuracy, elapsed_ms, keystrokes, errors, timed_out, quote)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		attempt.EndedAt.Format(time.RFC3339Nano),
		attempt.Result.WPM,
		attempt.Result.Accuracy,
		attempt.Elapsed.Milliseconds(),
		attempt.Keystrokes,
		attempt.Errors,
		timedOut,
		attempt.Quote,
	); err != nil {
		return err
	}

	return tx.Commit()
}

// PrependCapped returns entries with entry in front, keeping at most limit items.
func PrependCapped(entries []model.Result, entry model.Result, limit int) []model.Result {
	out := make([]model.Result, 0, len(entries)+1)
	out = append(out, entry)
	out = append(out, entries...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// SetRaw overwrites a kv value.
func (s *Store) SetRaw(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

// ListAttempts returns stored attempts oldest first, limited to the last n when n > 0.
func (s *Store) ListAttempts(ctx context.Context, last int) ([]model.AttemptAggregate, error) {
	query := `SELECT id, ended_at, wpm, accuracy, elapsed_ms, keystrokes, errors, timed_out
		FROM attempts
		ORDER BY ended_at ASC, id ASC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var attempts []model.AttemptAggregate
	for rows.Next() {
		var agg model.AttemptAggregate
		var endedAt string
		var timedOut int
		if err := rows.Scan(&agg.ID, &endedAt, &agg.WPM, &agg.Accuracy, &agg.ElapsedMs, &agg.Keystrokes, &agg.Errors, &timedOut); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		agg.TimedOut = timedOut != 0
		attempts = append(attempts, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if last > 0 && len(attempts) > last {
		attempts = attempts[len(attempts)-last:]
	}
	return attempts, nil
}
