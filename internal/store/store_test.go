package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "summaries.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_GetMissing(t *testing.T) {
	s := openTemp(t)
	_, err := s.Get(context.Background(), "nope", "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_PutGet(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Put(ctx, Record{
		ContentHash:   "abc",
		OptionsKey:    "k1",
		Filename:      "syllabus.pdf",
		Summary:       "A course on automata.",
		ChunksTotal:   3,
		ChunksSkipped: 1,
		CreatedAt:     created,
	}))

	rec, err := s.Get(ctx, "abc", "k1")
	require.NoError(t, err)
	assert.Equal(t, "syllabus.pdf", rec.Filename)
	assert.Equal(t, "A course on automata.", rec.Summary)
	assert.Equal(t, 3, rec.ChunksTotal)
	assert.Equal(t, 1, rec.ChunksSkipped)
	assert.True(t, created.Equal(rec.CreatedAt), "created_at %v", rec.CreatedAt)

	// Same document, different options: separate entry.
	_, err = s.Get(ctx, "abc", "k2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_PutReplaces(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, Record{ContentHash: "h", OptionsKey: "k", Filename: "a.txt", Summary: "old"}))
	require.NoError(t, s.Put(ctx, Record{ContentHash: "h", OptionsKey: "k", Filename: "b.txt", Summary: "new"}))

	rec, err := s.Get(ctx, "h", "k")
	require.NoError(t, err)
	assert.Equal(t, "new", rec.Summary)
	assert.Equal(t, "b.txt", rec.Filename)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_InMemory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Put(ctx, Record{ContentHash: "h", OptionsKey: "k", Filename: "f", Summary: "s"}))
	_, err = s.Get(ctx, "h", "k")
	assert.NoError(t, err)
}
