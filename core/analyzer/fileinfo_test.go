package analyzer

import (
	"context"
	"errors"
	"testing"

	"github.com/huangsam/hotspotter/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileInfoBuckets(t *testing.T) {
	// Reference 2025-06-15: month from 05-15, year from 2024-06-15, hot spot
	// (6 months) from 2024-12-15.
	s := NewFileInfo(newFileInfoStore(), nil, nil, 6, 10).Start(params("run"))
	s.ProcessCommit(commit("c1", "Ada", day(2024, 6, 14), change("src/app.go", 1, 0)))
	s.ProcessCommit(commit("c2", "Ada", day(2024, 12, 14), change("src/app.go", 1, 0)))
	s.ProcessCommit(commit("c3", "Ada", day(2025, 1, 1), change("src/app.go", 1, 0)))
	s.ProcessCommit(commit("c4", "Ada", day(2025, 5, 15), change("src/app.go", 1, 0)))

	rows := s.Results()
	require.Len(t, rows, 1)
	r := rows[0]
	assert.Equal(t, "app.go", r.FileName)
	assert.Equal(t, 4, r.TotalCommits)
	assert.Equal(t, 1, r.CommitsLastMonth)
	assert.Equal(t, 3, r.CommitsLastYear)
	assert.Equal(t, 2, r.CommitsHotSpot)
	assert.Equal(t, day(2024, 6, 14), r.FirstCommitDate)
	assert.Equal(t, day(2025, 5, 15), r.LastCommitDate)
	assert.Equal(t, 31, r.CodeAgeDays)
	assert.Equal(t, 1, r.CodeAgeMonths)
}

func TestFileInfoRenameMerges(t *testing.T) {
	s := NewFileInfo(newFileInfoStore(), nil, nil, 6, 10).Start(params("run"))
	s.ProcessCommit(commit("c1", "Ada", day(2024, 1, 1), change("a.go", 1, 0)))
	s.ProcessCommit(commit("c2", "Bob", day(2024, 2, 1), change("b.go", 1, 0)))
	s.ProcessCommit(commit("c3", "Ada", day(2024, 3, 1), renamed("a.go", "b.go", 0, 0)))

	rows := s.Results()
	require.Len(t, rows, 1)
	assert.Equal(t, "b.go", rows[0].FilePath)
	assert.Equal(t, 3, rows[0].TotalCommits)
	assert.Equal(t, day(2024, 1, 1), rows[0].FirstCommitDate)
	assert.Equal(t, day(2024, 3, 1), rows[0].LastCommitDate)
}

func TestFileInfoFinishAttachesLines(t *testing.T) {
	ctx := context.Background()
	store := newFileInfoStore()
	counter := fakeCounter{lines: map[string]schema.FileLines{
		"main.go": {Language: "Go", Code: 10, Comment: 2, Blank: 3, Total: 15, Bytes: 2048},
	}}
	s := NewFileInfo(store, fakeLister{files: []string{"main.go", "README"}}, counter, 6, 10).Start(params("run"))
	s.ProcessCommit(commit("c1", "Ada", day(2025, 6, 1), change("main.go", 15, 0), change("README", 1, 0), change("old.go", 1, 0)))
	require.NoError(t, s.Finish(ctx))

	got, err := store.FindAllByRunID(ctx, "run")
	require.NoError(t, err)
	require.Len(t, got, 2)
	rows := map[string]schema.FileInfo{}
	for _, r := range got {
		rows[r.FilePath] = r
	}
	m := rows["main.go"]
	assert.Equal(t, "Go", m.Language)
	assert.Equal(t, 10, m.CodeLines)
	assert.Equal(t, 2, m.CommentLines)
	assert.Equal(t, 3, m.BlankLines)
	assert.Equal(t, 15, m.TotalLines)
	assert.Equal(t, int64(2048), m.SizeBytes)
	assert.Equal(t, "2.0 kB", m.FileSize)

	assert.Empty(t, rows["README"].Language)
	assert.Empty(t, rows["README"].FileSize)
}

func TestFileInfoCounterErrorIsTolerated(t *testing.T) {
	ctx := context.Background()
	store := newFileInfoStore()
	s := NewFileInfo(store, nil, fakeCounter{err: errors.New("disk gone")}, 6, 10).Start(params("run"))
	s.ProcessCommit(commit("c1", "Ada", day(2025, 6, 1), change("a.go", 1, 0)))
	require.NoError(t, s.Finish(ctx))

	rows, err := store.FindAllByRunID(ctx, "run")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Zero(t, rows[0].TotalLines)
}

func TestFileInfoListerErrorPersistsNothing(t *testing.T) {
	store := newFileInfoStore()
	s := NewFileInfo(store, fakeLister{err: errListing}, nil, 6, 10).Start(params("run"))
	s.ProcessCommit(commit("c1", "Ada", day(2025, 6, 1), change("a.go", 1, 0)))
	assert.ErrorIs(t, s.Finish(context.Background()), errListing)
	assert.Zero(t, store.saves)
}
