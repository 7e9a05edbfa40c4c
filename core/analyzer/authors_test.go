package analyzer

import (
	"context"
	"testing"
	"time"

	"github.com/huangsam/hotspotter/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authorsByName(rows []schema.AuthorStatistics) map[string]schema.AuthorStatistics {
	out := make(map[string]schema.AuthorStatistics, len(rows))
	for _, r := range rows {
		out[r.Name] = r
	}
	return out
}

func TestAuthorsAggregates(t *testing.T) {
	s := NewAuthors(newAuthorStore(), newKnowledgeStore(), 6, 10).Start(params("run"))
	s.ProcessCommit(commit("c1", "Ada", day(2024, 3, 10), change("a.go", 10, 2), change("b.go", 5, 0)))
	s.ProcessCommit(&schema.Commit{Hash: "c2", Date: day(2025, 6, 1), AuthorName: "Ada", AuthorEmail: "ada@work.example", Changes: []schema.FileChange{change("a.go", 1, 1)}})
	s.ProcessCommit(commit("c3", "Bob", day(2024, 1, 1), change("c.go", 3, 0)))

	rows := s.Results()
	require.Len(t, rows, 2)
	assert.Equal(t, "Ada", rows[0].Name, "rows are sorted by name")

	ada := rows[0]
	assert.Equal(t, []string{"Ada@example.com", "ada@work.example"}, ada.Emails)
	assert.Equal(t, day(2024, 3, 10), ada.FirstCommitDate)
	assert.Equal(t, day(2025, 6, 1), ada.LastCommitDate)
	assert.Equal(t, 2, ada.Commits)
	assert.Equal(t, 16, ada.LinesAdded)
	assert.Equal(t, 3, ada.LinesDeleted)
	assert.Equal(t, 2, ada.UniqueFiles)
	assert.Equal(t, 14, ada.DaysSinceLastCommit)
	assert.Equal(t, 0, ada.MonthsSinceLastCommit)
	assert.Equal(t, 15, ada.MonthsSinceFirstCommit)
	assert.True(t, ada.IsActive)

	bob := rows[1]
	assert.Equal(t, 17, bob.MonthsSinceLastCommit)
	assert.False(t, bob.IsActive)
}

func TestAuthorsOutOfOrderDates(t *testing.T) {
	s := NewAuthors(newAuthorStore(), nil, 6, 10).Start(params("run"))
	s.ProcessCommit(commit("c1", "Ada", day(2024, 5, 1)))
	s.ProcessCommit(commit("c2", "Ada", day(2024, 2, 1)))
	s.ProcessCommit(commit("c3", "Ada", day(2024, 4, 1)))

	ada := s.Results()[0]
	assert.Equal(t, day(2024, 2, 1), ada.FirstCommitDate)
	assert.Equal(t, day(2024, 5, 1), ada.LastCommitDate)
	assert.Equal(t, 3, ada.Commits)
	assert.Zero(t, ada.UniqueFiles)
}

func TestAuthorsActiveThreshold(t *testing.T) {
	// Reference is 2025-06-15 with a six month threshold.
	tests := []struct {
		last   time.Time
		months int
		active bool
	}{
		{day(2025, 6, 15), 0, true},
		{day(2024, 12, 16), 5, true},
		{day(2024, 12, 15), 6, false},
		{day(2023, 1, 1), 29, false},
	}
	for _, tt := range tests {
		t.Run(tt.last.Format(time.DateOnly), func(t *testing.T) {
			s := NewAuthors(newAuthorStore(), nil, 6, 10).Start(params("run"))
			s.ProcessCommit(commit("c1", "Ada", tt.last))
			row := s.Results()[0]
			assert.Equal(t, tt.months, row.MonthsSinceLastCommit)
			assert.Equal(t, tt.active, row.IsActive)
		})
	}
}

func TestAuthorsUniqueFilesFollowRenames(t *testing.T) {
	s := NewAuthors(newAuthorStore(), nil, 6, 10).Start(params("run"))
	s.ProcessCommit(commit("c1", "Ada", day(2024, 1, 1), change("a.go", 1, 0)))
	s.ProcessCommit(commit("c2", "Ada", day(2024, 1, 2), renamed("a.go", "b.go", 1, 0)))
	s.ProcessCommit(commit("c3", "Ada", day(2024, 1, 3), change("b.go", 1, 0), change("c.go", 1, 0)))
	s.ProcessCommit(commit("c4", "Bob", day(2024, 1, 4), change("b.go", 1, 0)))

	rows := authorsByName(s.Results())
	assert.Equal(t, 2, rows["Ada"].UniqueFiles)
	assert.Equal(t, 1, rows["Bob"].UniqueFiles)
}

func TestAuthorsRenameOntoExistingPath(t *testing.T) {
	s := NewAuthors(newAuthorStore(), nil, 6, 10).Start(params("run"))
	s.ProcessCommit(commit("c1", "Ada", day(2024, 1, 1), change("old.go", 1, 0)))
	s.ProcessCommit(commit("c2", "Ada", day(2024, 1, 2), change("new.go", 1, 0)))
	s.ProcessCommit(commit("c3", "Bob", day(2024, 1, 3), change("old.go", 1, 0)))
	s.ProcessCommit(commit("c4", "Bob", day(2024, 1, 4), renamed("old.go", "new.go", 1, 0)))

	rows := authorsByName(s.Results())
	assert.Equal(t, 1, rows["Ada"].UniqueFiles)
	assert.Equal(t, 1, rows["Bob"].UniqueFiles)
}

func TestAuthorsEnrichCountsLeadFiles(t *testing.T) {
	ctx := context.Background()
	store := newAuthorStore()
	knowledge := newKnowledgeStore()
	require.NoError(t, knowledge.SaveAll(ctx, []schema.FileKnowledge{
		{RunID: "run", FilePath: "a.go", LeadAuthor: "Ada"},
		{RunID: "run", FilePath: "b.go", LeadAuthor: "Ada"},
		{RunID: "run", FilePath: "c.go", LeadAuthor: "Bob"},
		{RunID: "run", FilePath: "d.go"},
		{RunID: "older", FilePath: "e.go", LeadAuthor: "Cy"},
	}))

	s := NewAuthors(store, knowledge, 6, 10).Start(params("run"))
	for _, name := range []string{"Ada", "Bob", "Cy"} {
		s.ProcessCommit(commit("c-"+name, name, day(2025, 6, 1)))
	}
	require.NoError(t, s.Finish(ctx))
	require.NoError(t, s.Enrich(ctx))

	got, err := store.FindAllByRunID(ctx, "run")
	require.NoError(t, err)
	rows := authorsByName(got)
	assert.Equal(t, 2, rows["Ada"].FilesAsLeadAuthor)
	assert.Equal(t, 1, rows["Bob"].FilesAsLeadAuthor)
	assert.Zero(t, rows["Cy"].FilesAsLeadAuthor)
}

func TestAuthorsEnrichWithoutKnowledgeStore(t *testing.T) {
	ctx := context.Background()
	s := NewAuthors(newAuthorStore(), nil, 6, 10).Start(params("run"))
	s.ProcessCommit(commit("c1", "Ada", day(2025, 6, 1)))
	require.NoError(t, s.Finish(ctx))
	assert.Error(t, s.Enrich(ctx))
}
