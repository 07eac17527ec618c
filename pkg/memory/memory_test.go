package memory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "memory.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRememberAndRecall(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Remember(ctx, "the wifi password is hunter2"))
	require.NoError(t, s.Remember(ctx, "dentist appointment on friday"))

	notes, err := s.Recall(ctx, "wifi", 10)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0].Content, "hunter2")
}

func TestRecallNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Remember(ctx, "project alpha kickoff"))
	require.NoError(t, s.Remember(ctx, "project beta kickoff"))

	notes, err := s.Recall(ctx, "project", 10)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Contains(t, notes[0].Content, "beta")
	assert.Contains(t, notes[1].Content, "alpha")
}

func TestRecallRespectsLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, c := range []string{"note one", "note two", "note three"} {
		require.NoError(t, s.Remember(ctx, c))
	}

	notes, err := s.Recall(ctx, "note", 2)
	require.NoError(t, err)
	assert.Len(t, notes, 2)
}

func TestRememberRejectsEmpty(t *testing.T) {
	s := openTestStore(t)
	assert.Error(t, s.Remember(context.Background(), ""))
}

func TestCommandLog(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.LogCommand(ctx, "open chrome", "plan"))
	require.NoError(t, s.LogCommand(ctx, "what time is it", "skill:time"))

	recs, err := s.RecentCommands(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "what time is it", recs[0].Command)
	assert.Equal(t, "skill:time", recs[0].Route)
}
