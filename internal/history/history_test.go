package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndList(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	id, err := s.Record(ctx, Run{Kind: "minor", From: "1.2.3", To: "1.3.0", Tag: "1.3.0", Commit: "abc123", Status: StatusSuccess, CreatedAt: at})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	_, err = s.Record(ctx, Run{Kind: "patch", From: "1.3.0", To: "1.3.1", Status: StatusFailed, FailedStep: "RunTests", Error: "exit 1"})
	require.NoError(t, err)

	runs, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, "patch", runs[0].Kind, "newest first")
	assert.Equal(t, StatusFailed, runs[0].Status)
	assert.Equal(t, "RunTests", runs[0].FailedStep)
	assert.False(t, runs[0].CreatedAt.IsZero())

	assert.Equal(t, "1.3.0", runs[1].Tag)
	assert.Equal(t, "abc123", runs[1].Commit)
	assert.True(t, at.Equal(runs[1].CreatedAt))

	limited, err := s.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, runs[0].ID, limited[0].ID)
}

func TestReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Record(context.Background(), Run{Kind: "major", From: "1.0.0", To: "2.0.0", Status: StatusSuccess})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	runs, err := s.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "2.0.0", runs[0].To)
}

func TestEmpty(t *testing.T) {
	runs, err := openStore(t).List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
