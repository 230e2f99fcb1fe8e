package stats

import (
	"context"

	"github.com/verte-zerg/quotype/internal/model"
	"github.com/verte-zerg/quotype/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Leaderboard []model.Result
	Attempts    []model.AttemptAggregate
}

// BuildReport loads the leaderboard and the last n attempts (all when n <= 0).
func BuildReport(ctx context.Context, st *store.Store, last int) (Report, error) {
	entries, err := st.Leaderboard(ctx)
	if err != nil {
		return Report{}, err
	}
	attempts, err := st.ListAttempts(ctx, last)
	if err != nil {
		return Report{}, err
	}
	return Report{Leaderboard: entries, Attempts: attempts}, nil
}
