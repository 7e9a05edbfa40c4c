package iocache

import (
	"context"
	"testing"
	"time"

	"github.com/huangsam/hotspotter/internal/contract"
	"github.com/huangsam/hotspotter/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRows(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	rows := []schema.FileInfo{
		{RunID: "r1", FilePath: "b.go", TotalCommits: 1},
		{RunID: "r1", FilePath: "a.go", TotalCommits: 2},
		{RunID: "r2", FilePath: "a.go", TotalCommits: 3},
	}
	require.NoError(t, store.Files().SaveAll(ctx, rows))
	require.NoError(t, store.Files().SaveAll(ctx, []schema.FileInfo{{RunID: "r1", FilePath: "b.go", TotalCommits: 5}}))

	got, err := store.Files().FindAllByRunID(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b.go", got[0].FilePath, "insertion order is kept on replace")
	assert.Equal(t, 5, got[0].TotalCommits)

	none, err := store.Files().FindAllByRunID(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryStoreTrendKeyIsDay(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Trends().SaveAll(ctx, []schema.DailyStats{
		{RunID: "r", Day: day, Commits: 1},
		{RunID: "r", Day: day, Commits: 2},
		{RunID: "r", Day: day.AddDate(0, 0, 1), Commits: 3},
	}))
	got, err := store.Trends().FindAllByRunID(ctx, "r")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].Commits)
}

func TestMemoryStoreRuns(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	at := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	for _, info := range []schema.AnalysisInfo{
		{ID: "b", AnalyzedAt: at},
		{ID: "a", AnalyzedAt: at},
		{ID: "c", AnalyzedAt: at.Add(time.Minute)},
	} {
		require.NoError(t, store.Runs().SaveRun(ctx, info))
	}

	list, err := store.Runs().ListRuns(ctx)
	require.NoError(t, err)
	ids := make([]string, len(list))
	for i, r := range list {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)

	_, err = store.Runs().GetRun(ctx, "zzz")
	assert.ErrorIs(t, err, contract.ErrRunNotFound)

	status, err := store.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, "none", status.Backend)
	assert.Equal(t, 3, status.TotalRuns)
	assert.Equal(t, "c", status.LastRunID)
	assert.Equal(t, int64(3), status.TableSizes[analysesTable])
	assert.NoError(t, store.Close())
}
