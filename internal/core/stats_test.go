package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countCall struct {
	spamOnly *bool
	since    *time.Duration
}

type countingStore struct {
	calls  []countCall
	counts map[string]int
	err    error
}

func (s *countingStore) CreateSubmission(context.Context, *Submission) error { return nil }

func (s *countingStore) CountSubmissions(_ context.Context, _ string, spamOnly *bool, since *time.Duration) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.calls = append(s.calls, countCall{spamOnly: spamOnly, since: since})

	key := "total"
	switch {
	case spamOnly != nil && *spamOnly:
		key = "spam"
	case spamOnly != nil && since != nil:
		key = "recent"
	}
	return s.counts[key], nil
}

func TestStatsEngine(t *testing.T) {
	t.Run("ThreeCountsWithExpectedFilters", func(t *testing.T) {
		store := &countingStore{counts: map[string]int{"total": 10, "spam": 3, "recent": 5}}
		engine := NewStatsEngine(store)

		stats, err := engine.Stats(context.Background(), "form-1")
		require.NoError(t, err)
		require.Equal(t, FormStats{Total: 10, SpamCount: 3, RecentCount: 5}, stats)

		require.Len(t, store.calls, 3)

		require.Nil(t, store.calls[0].spamOnly)
		require.Nil(t, store.calls[0].since)

		require.NotNil(t, store.calls[1].spamOnly)
		require.True(t, *store.calls[1].spamOnly)
		require.Nil(t, store.calls[1].since)

		require.NotNil(t, store.calls[2].spamOnly)
		require.False(t, *store.calls[2].spamOnly)
		require.NotNil(t, store.calls[2].since)
		require.Equal(t, RecentWindow, *store.calls[2].since)
	})

	t.Run("PropagatesNotFound", func(t *testing.T) {
		engine := NewStatsEngine(&countingStore{err: ErrFormNotFound})

		_, err := engine.Stats(context.Background(), "ghost")
		require.ErrorIs(t, err, ErrFormNotFound)
	})
}
