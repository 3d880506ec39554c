//go:build cgo

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/formsink/formsink/internal/config"
	"github.com/formsink/formsink/internal/core"
)

func openMemoryStore(t *testing.T) *Store {
	t.Helper()

	ctx := context.Background()
	st, err := Open(ctx, config.StoreConfig{Driver: "libsql", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, st.Migrate(ctx))
	t.Cleanup(func() { _ = st.Close() })

	return st
}

func TestOpenMemoryStore(t *testing.T) {
	ctx := context.Background()

	st, err := Open(ctx, config.StoreConfig{Driver: "libsql", Path: ":memory:"})
	require.NoError(t, err)
	require.NotNil(t, st)
	require.Equal(t, "libsql", st.Driver())
	require.NoError(t, st.CheckHealth(ctx))
	require.NoError(t, st.Close())
}

func TestFormCRUD(t *testing.T) {
	ctx := context.Background()
	st := openMemoryStore(t)

	form := &core.Form{Name: "Contact", OwnerEmail: "owner@example.com"}
	require.NoError(t, st.CreateForm(ctx, form))
	require.NotEmpty(t, form.ID)
	require.Equal(t, core.DefaultHoneypotField, form.HoneypotField)
	require.False(t, form.CreatedAt.IsZero())

	fetched, err := st.GetForm(ctx, form.ID)
	require.NoError(t, err)
	require.Equal(t, form.ID, fetched.ID)
	require.Equal(t, "Contact", fetched.Name)
	require.Equal(t, "owner@example.com", fetched.OwnerEmail)

	forms, err := st.ListForms(ctx)
	require.NoError(t, err)
	require.Len(t, forms, 1)

	_, err = st.GetForm(ctx, "missing")
	require.ErrorIs(t, err, core.ErrFormNotFound)

	require.NoError(t, st.DeleteForm(ctx, form.ID))
	require.ErrorIs(t, st.DeleteForm(ctx, form.ID), core.ErrFormNotFound)
}

func TestCreateFormRequiresOwnerEmail(t *testing.T) {
	st := openMemoryStore(t)

	err := st.CreateForm(context.Background(), &core.Form{Name: "No owner"})
	require.Error(t, err)
}

func TestCreateSubmission(t *testing.T) {
	ctx := context.Background()
	st := openMemoryStore(t)

	t.Run("UnknownForm", func(t *testing.T) {
		err := st.CreateSubmission(ctx, &core.Submission{FormID: "missing"})
		require.ErrorIs(t, err, core.ErrFormNotFound)
	})

	t.Run("AssignsIDAndTimestamp", func(t *testing.T) {
		form := &core.Form{Name: "Contact", OwnerEmail: "owner@example.com"}
		require.NoError(t, st.CreateForm(ctx, form))

		sub := &core.Submission{
			FormID:     form.ID,
			Fields:     map[string]string{"name": "John", "message": "Hello!"},
			RemoteAddr: "203.0.113.7",
			UserAgent:  "Mozilla/5.0",
		}
		require.NoError(t, st.CreateSubmission(ctx, sub))
		require.NotEmpty(t, sub.ID)
		require.False(t, sub.CreatedAt.IsZero())

		listed, err := st.ListSubmissions(ctx, form.ID, true)
		require.NoError(t, err)
		require.Len(t, listed, 1)
		require.Equal(t, sub.ID, listed[0].ID)
		require.Equal(t, "John", listed[0].Fields["name"])
		require.Equal(t, "203.0.113.7", listed[0].RemoteAddr)
		require.Equal(t, "Mozilla/5.0", listed[0].UserAgent)
		require.False(t, listed[0].IsSpam)
	})
}

func TestListSubmissionsOrderingAndSpamFilter(t *testing.T) {
	ctx := context.Background()
	st := openMemoryStore(t)

	form := &core.Form{Name: "Contact", OwnerEmail: "owner@example.com"}
	require.NoError(t, st.CreateForm(ctx, form))

	base := time.Now().UTC().Truncate(time.Second)
	seed := []core.Submission{
		{FormID: form.ID, Fields: map[string]string{"n": "first"}, CreatedAt: base.Add(-3 * time.Minute)},
		{FormID: form.ID, Fields: map[string]string{"n": "second"}, CreatedAt: base.Add(-2 * time.Minute), IsSpam: true},
		{FormID: form.ID, Fields: map[string]string{"n": "third"}, CreatedAt: base.Add(-1 * time.Minute)},
		// Same timestamp as third; insertion order breaks the tie.
		{FormID: form.ID, Fields: map[string]string{"n": "fourth"}, CreatedAt: base.Add(-1 * time.Minute)},
	}
	for i := range seed {
		require.NoError(t, st.CreateSubmission(ctx, &seed[i]))
	}

	t.Run("NewestFirstWithTieBreak", func(t *testing.T) {
		all, err := st.ListSubmissions(ctx, form.ID, true)
		require.NoError(t, err)
		require.Len(t, all, 4)
		require.Equal(t, "fourth", all[0].Fields["n"])
		require.Equal(t, "third", all[1].Fields["n"])
		require.Equal(t, "second", all[2].Fields["n"])
		require.Equal(t, "first", all[3].Fields["n"])
	})

	t.Run("SpamExcludedByDefault", func(t *testing.T) {
		ham, err := st.ListSubmissions(ctx, form.ID, false)
		require.NoError(t, err)
		require.Len(t, ham, 3)
		for _, sub := range ham {
			require.False(t, sub.IsSpam)
		}
	})

	t.Run("UnknownForm", func(t *testing.T) {
		_, err := st.ListSubmissions(ctx, form.ID+"-missing", true)
		require.ErrorIs(t, err, core.ErrFormNotFound)
	})
}

func TestCountSubmissions(t *testing.T) {
	ctx := context.Background()
	st := openMemoryStore(t)

	form := &core.Form{Name: "Contact", OwnerEmail: "owner@example.com"}
	require.NoError(t, st.CreateForm(ctx, form))

	now := time.Now().UTC()
	seed := []core.Submission{
		{FormID: form.ID, CreatedAt: now.Add(-time.Hour)},
		{FormID: form.ID, CreatedAt: now.Add(-time.Hour), IsSpam: true},
		{FormID: form.ID, CreatedAt: now.Add(-30 * 24 * time.Hour)},
	}
	for i := range seed {
		require.NoError(t, st.CreateSubmission(ctx, &seed[i]))
	}

	total, err := st.CountSubmissions(ctx, form.ID, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 3, total)

	spamOnly := true
	spam, err := st.CountSubmissions(ctx, form.ID, &spamOnly, nil)
	require.NoError(t, err)
	require.Equal(t, 1, spam)

	hamOnly := false
	ham, err := st.CountSubmissions(ctx, form.ID, &hamOnly, nil)
	require.NoError(t, err)
	require.Equal(t, ham, total-spam)

	window := core.RecentWindow
	recentHam, err := st.CountSubmissions(ctx, form.ID, &hamOnly, &window)
	require.NoError(t, err)
	require.Equal(t, 1, recentHam)

	_, err = st.CountSubmissions(ctx, "missing", nil, nil)
	require.ErrorIs(t, err, core.ErrFormNotFound)
}

func TestDeleteFormCascades(t *testing.T) {
	ctx := context.Background()
	st := openMemoryStore(t)

	keep := &core.Form{Name: "Keep", OwnerEmail: "owner@example.com"}
	drop := &core.Form{Name: "Drop", OwnerEmail: "owner@example.com"}
	require.NoError(t, st.CreateForm(ctx, keep))
	require.NoError(t, st.CreateForm(ctx, drop))

	for _, formID := range []string{keep.ID, drop.ID} {
		sub := &core.Submission{FormID: formID, Fields: map[string]string{"n": "x"}}
		require.NoError(t, st.CreateSubmission(ctx, sub))
	}

	require.NoError(t, st.DeleteForm(ctx, drop.ID))

	_, err := st.ListSubmissions(ctx, drop.ID, true)
	require.ErrorIs(t, err, core.ErrFormNotFound)

	var orphans int
	require.NoError(t, st.DB.QueryRow(`SELECT COUNT(*) FROM submissions WHERE form_id = ?`, drop.ID).Scan(&orphans))
	require.Zero(t, orphans)

	kept, err := st.ListSubmissions(ctx, keep.ID, true)
	require.NoError(t, err)
	require.Len(t, kept, 1)
}
