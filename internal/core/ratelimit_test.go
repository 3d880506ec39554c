package core

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestLimiter(maxPoints int, window time.Duration) (*RateLimiter, *time.Time) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := NewRateLimiter(maxPoints, window)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestRateLimiterAdmit(t *testing.T) {
	t.Run("AllowsUpToMaxPoints", func(t *testing.T) {
		l, _ := newTestLimiter(3, time.Minute)

		for i := 0; i < 3; i++ {
			require.True(t, l.Admit("form-a"), "admission %d should pass", i+1)
		}
		require.False(t, l.Admit("form-a"))
	})

	t.Run("DenialRecordsNothing", func(t *testing.T) {
		l, now := newTestLimiter(1, time.Minute)

		require.True(t, l.Admit("form-a"))
		require.False(t, l.Admit("form-a"))
		require.False(t, l.Admit("form-a"))

		// Once the single admitted timestamp ages out, the key is clean
		// again; the denied attempts added no penalty.
		*now = now.Add(61 * time.Second)
		require.True(t, l.Admit("form-a"))
	})

	t.Run("WindowRollsForward", func(t *testing.T) {
		l, now := newTestLimiter(2, time.Minute)

		require.True(t, l.Admit("form-a"))
		*now = now.Add(30 * time.Second)
		require.True(t, l.Admit("form-a"))
		require.False(t, l.Admit("form-a"))

		// 61s after the first admission it is pruned, freeing one slot.
		*now = now.Add(31 * time.Second)
		require.True(t, l.Admit("form-a"))
		require.False(t, l.Admit("form-a"))
	})

	t.Run("KeysAreIsolated", func(t *testing.T) {
		l, _ := newTestLimiter(2, time.Minute)

		require.True(t, l.Admit("form-a"))
		require.True(t, l.Admit("form-a"))
		require.False(t, l.Admit("form-a"))

		require.True(t, l.Admit("form-b"))
	})
}

func TestRateLimiterConcurrentAdmissions(t *testing.T) {
	// With 50 goroutines racing for 10 slots, exactly 10 must win.
	l := NewRateLimiter(10, time.Minute)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Admit("form-a") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 10, allowed)
}
