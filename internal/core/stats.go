package core

import (
	"context"
	"time"
)

// RecentWindow bounds the "recent submissions" count on dashboards.
const RecentWindow = 7 * 24 * time.Hour

// StatsEngine computes aggregate counts for a form on demand. Nothing is
// cached: the recent-window boundary is re-evaluated against the clock on
// every call, so repeated calls roll the window forward naturally.
type StatsEngine struct {
	store SubmissionStore
}

// NewStatsEngine returns a stats engine reading from the given store.
func NewStatsEngine(store SubmissionStore) *StatsEngine {
	return &StatsEngine{store: store}
}

// Stats returns total, spam, and recent non-spam counts for the form.
// Returns ErrFormNotFound when the form does not exist.
func (e *StatsEngine) Stats(ctx context.Context, formID string) (FormStats, error) {
	total, err := e.store.CountSubmissions(ctx, formID, nil, nil)
	if err != nil {
		return FormStats{}, err
	}

	spamOnly := true
	spamCount, err := e.store.CountSubmissions(ctx, formID, &spamOnly, nil)
	if err != nil {
		return FormStats{}, err
	}

	hamOnly := false
	window := RecentWindow
	recent, err := e.store.CountSubmissions(ctx, formID, &hamOnly, &window)
	if err != nil {
		return FormStats{}, err
	}

	return FormStats{
		Total:       total,
		SpamCount:   spamCount,
		RecentCount: recent,
	}, nil
}
