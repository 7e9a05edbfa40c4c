package parquet

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/hotspotter/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var analyzedAt = time.Date(2025, 6, 15, 12, 30, 0, 0, time.UTC)

func TestStructTags(t *testing.T) {
	tests := []struct {
		name    string
		model   any
		columns []string
	}{
		{"runs", new(AnalysisRun), []string{"id", "start_date", "analyzed_at", "status", "schema_version"}},
		{"knowledge", new(FileKnowledge), []string{"run_id", "file_path", "contributions", "lead_author", "knowledge_loss"}},
		{"ownership", new(FileOwnership), []string{"run_id", "lead_authors", "contributors"}},
		{"authors", new(AuthorStatistics), []string{"name", "emails", "is_active", "files_as_lead_author"}},
		{"trends", new(DailyStats), []string{"day", "active_authors"}},
		{"files", new(FileInfo), []string{"file_name", "commits_hot_spot", "language", "size_bytes"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			names := make(map[string]bool)
			for _, f := range parquet.SchemaOf(tt.model).Fields() {
				names[f.Name()] = true
			}
			for _, col := range tt.columns {
				assert.True(t, names[col], "column %s should exist", col)
			}
		})
	}
}

func TestWriteFileRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.parquet")
	runs := ConvertAnalysisRuns([]schema.AnalysisInfo{
		{ID: "a", RepoName: "repo", AnalyzedAt: analyzedAt, ReferenceDate: analyzedAt, Status: schema.StatusCompleted, SchemaVersion: schema.SchemaVersion},
		{ID: "b", RepoName: "repo", AnalyzedAt: analyzedAt, Status: schema.StatusFailed, Error: "boom", StartDate: analyzedAt.AddDate(-1, 0, 0)},
	})
	require.NoError(t, WriteFile(runs, path))

	got, err := parquet.ReadFile[AnalysisRun](path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Nil(t, got[0].StartDate)
	assert.Nil(t, got[0].Error)
	assert.Equal(t, "boom", *got[1].Error)
	assert.True(t, analyzedAt.AddDate(-1, 0, 0).Equal(*got[1].StartDate))
	assert.True(t, analyzedAt.Equal(got[0].AnalyzedAt))
}

func TestWriteFileNestedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "knowledge.parquet")
	rows := ConvertFileKnowledge([]schema.FileKnowledge{
		{
			RunID:    "run",
			FilePath: "src/main.go",
			Contributions: []schema.AuthorContribution{
				{Name: "Ada", LinesAdded: 75, Commits: 3, Percentage: 75},
				{Name: "Bob", LinesAdded: 25, Commits: 1, Percentage: 25},
			},
			LeadAuthor:           "Ada",
			LeadAuthorPercentage: 75,
			Contributors:         2,
		},
		{RunID: "run", FilePath: "empty.txt"},
	})
	require.NoError(t, WriteFile(rows, path))

	got, err := parquet.ReadFile[FileKnowledge](path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Len(t, got[0].Contributions, 2)
	assert.Equal(t, "Bob", got[0].Contributions[1].Name)
	assert.Equal(t, "Ada", *got[0].LeadAuthor)
	assert.Nil(t, got[1].LeadAuthor)
}

func TestWriteFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trends.parquet")
	require.NoError(t, WriteFile([]DailyStats{}, path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestWriteFileBadPath(t *testing.T) {
	err := WriteFile([]DailyStats{}, filepath.Join(t.TempDir(), "missing", "x.parquet"))
	assert.Error(t, err)
}

func TestConvertersKeepValues(t *testing.T) {
	day := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	files := ConvertFileInfo([]schema.FileInfo{{RunID: "r", FilePath: "a/b.go", FileName: "b.go", TotalCommits: 7, SizeBytes: 1 << 33, LastCommitDate: day}})
	assert.Equal(t, int32(7), files[0].TotalCommits)
	assert.Equal(t, int64(1<<33), files[0].SizeBytes)

	authors := ConvertAuthorStatistics([]schema.AuthorStatistics{{Name: "Ada", Emails: []string{"a@x"}, IsActive: true}})
	assert.Equal(t, []string{"a@x"}, authors[0].Emails)
	assert.True(t, authors[0].IsActive)

	trends := ConvertDailyStats([]schema.DailyStats{{Day: day, ActiveAuthors: 3}})
	assert.Equal(t, day, trends[0].Day)

	owners := ConvertFileOwnership([]schema.FileOwnership{{LeadAuthors: []string{"Ada", "Bob"}}})
	assert.Equal(t, []string{"Ada", "Bob"}, owners[0].LeadAuthors)
}
