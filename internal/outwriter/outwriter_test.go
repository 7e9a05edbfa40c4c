package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/hotspotter/internal/contract"
	"github.com/huangsam/hotspotter/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func testConfig(output schema.OutputMode, file string) *contract.Config {
	return &contract.Config{Output: output, OutputFile: file, Precision: 1, Width: 120}
}

func sampleKnowledge() []schema.FileKnowledge {
	return []schema.FileKnowledge{
		{FilePath: "src/core/engine.go", LeadAuthor: "Ada", LeadAuthorPercentage: 82.5, Contributors: 3, ActiveContributors: 1, KnowledgeLoss: 60, Commits: 12, LinesAdded: 400},
		{FilePath: "README.md", Contributors: 101, KnowledgeLoss: 0, Commits: 150},
	}
}

func TestKnowledgeTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeKnowledgeTable(&buf, sampleKnowledge(), testConfig(schema.TextOut, "")))
	out := buf.String()
	assert.Contains(t, out, "src/core/engine.go")
	assert.Contains(t, out, "82.5")
	assert.Contains(t, out, "Showing 2 files by knowledge loss")
	assert.Contains(t, strings.ToUpper(out), "LOSS")
}

func TestKnowledgeCSV(t *testing.T) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	cfg := testConfig(schema.CSVOut, "")
	cfg.Precision = 2
	require.NoError(t, writeKnowledgeCSV(w, sampleKnowledge(), cfg))
	w.Flush()

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "lead_author", records[0][2])
	assert.Equal(t, []string{"1", "src/core/engine.go", "Ada", "82.50", "3", "1", "60.00", "400", "12"}, records[1])
	assert.Equal(t, "", records[2][2], "no lead stays empty")
}

func TestWriteKnowledgeJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "k.json")
	require.NoError(t, WriteKnowledge(sampleKnowledge(), testConfig(schema.JSONOut, path)))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var got []schema.FileKnowledge
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, sampleKnowledge(), got)
}

func TestHTMLOnlyForTrends(t *testing.T) {
	err := WriteAuthors(nil, testConfig(schema.HTMLOut, filepath.Join(t.TempDir(), "x.html")))
	assert.ErrorContains(t, err, "only available for trends")
}

func TestOwnershipOutput(t *testing.T) {
	rows := []schema.FileOwnership{
		{FilePath: "a.go", LeadAuthors: []string{"Ada", "Bob", "Cy", "Dee"}, Contributors: 4, Commits: 4, LinesAdded: 40},
		{FilePath: "b.go", LeadAuthors: []string{}, Contributors: 0},
	}
	var buf bytes.Buffer
	require.NoError(t, writeOwnershipTable(&buf, rows, testConfig(schema.TextOut, "")))
	assert.Contains(t, buf.String(), "Ada, Bob +2")
	assert.Contains(t, buf.String(), "No owners")

	buf.Reset()
	w := csv.NewWriter(&buf)
	require.NoError(t, writeOwnershipCSV(w, rows))
	w.Flush()
	assert.Contains(t, buf.String(), "Ada|Bob|Cy|Dee")
}

func TestOwnersLabel(t *testing.T) {
	tests := []struct {
		owners []string
		want   string
	}{
		{nil, "No owners"},
		{[]string{"Ada"}, "Ada"},
		{[]string{"Ada", "Bob"}, "Ada, Bob"},
		{[]string{"Ada", "Bob", "Cy"}, "Ada, Bob +1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ownersLabel(tt.owners))
	}
}

func TestAuthorsOutput(t *testing.T) {
	rows := []schema.AuthorStatistics{
		{Name: "Ada", Emails: []string{"a@x", "ada@y"}, IsActive: true, Commits: 1200, LinesAdded: 5, LastCommitDate: day, DaysSinceLastCommit: 3},
		{Name: "Bob", IsActive: false, Commits: 2},
	}
	var buf bytes.Buffer
	require.NoError(t, writeAuthorsTable(&buf, rows, testConfig(schema.TextOut, "")))
	out := buf.String()
	assert.Contains(t, out, "1,200")
	assert.Contains(t, out, "inactive")
	assert.Contains(t, out, "2025-06-01 (3d)")
	assert.Contains(t, out, "Showing 2 authors (1 active)")

	buf.Reset()
	w := csv.NewWriter(&buf)
	require.NoError(t, writeAuthorsCSV(w, rows))
	w.Flush()
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "a@x|ada@y", records[1][2])
	assert.Equal(t, "true", records[1][3])
	assert.Equal(t, "", records[2][9], "zero dates are empty")
}

func sampleTrends() []schema.DailyStats {
	return []schema.DailyStats{
		{Day: day, Commits: 3, UniqueAuthors: 2, ActiveAuthors: 2},
		{Day: day.AddDate(0, 0, 1), ActiveAuthors: 2},
	}
}

func TestTrendsOutput(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeTrendsTable(&buf, sampleTrends()))
	assert.Contains(t, buf.String(), "2025-06-02")
	assert.Contains(t, buf.String(), "Showing 2 days")

	buf.Reset()
	w := csv.NewWriter(&buf)
	require.NoError(t, writeTrendsCSV(w, sampleTrends()))
	w.Flush()
	assert.True(t, strings.HasPrefix(buf.String(), "day,commits,unique_authors,active_authors"))
}

func TestTrendsChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trends.html")
	require.NoError(t, WriteTrends(sampleTrends(), testConfig(schema.HTMLOut, path)))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(raw)
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "Repository activity")
	assert.Contains(t, html, "2025-06-01")
	assert.Contains(t, html, "Active authors")
}

func TestFilesOutput(t *testing.T) {
	rows := []schema.FileInfo{{
		FilePath: "pkg/a.go", FileName: "a.go", Language: "Go", TotalCommits: 9, CommitsHotSpot: 4,
		CodeLines: 120, FileSize: "3.1 kB", CodeAgeMonths: 7, LastCommitDate: day, SizeBytes: 3100,
	}}
	var buf bytes.Buffer
	require.NoError(t, writeFilesTable(&buf, rows, testConfig(schema.TextOut, "")))
	assert.Contains(t, buf.String(), "3.1 kB")
	assert.Contains(t, buf.String(), "7mo")

	buf.Reset()
	w := csv.NewWriter(&buf)
	require.NoError(t, writeFilesCSV(w, rows))
	w.Flush()
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "3100", records[1][16])
}

func TestRunsOutput(t *testing.T) {
	runs := []schema.AnalysisInfo{{
		ID: "1f0c", RepoName: "hotspotter", RepoPath: "/src/hotspotter", Status: schema.StatusCompleted,
		Phase: schema.PhaseCompleted, CommitsProcessed: 12345, DurationMs: 2500, AnalyzedAt: time.Now(), ReferenceDate: day,
	}}
	var buf bytes.Buffer
	require.NoError(t, writeRunsTable(&buf, runs, testConfig(schema.TextOut, "")))
	assert.Contains(t, buf.String(), "12,345")
	assert.Contains(t, buf.String(), "2.5s")

	buf.Reset()
	failed := runs[0]
	failed.Status = schema.StatusFailed
	failed.Error = "git log: exit status 128"
	require.NoError(t, writeRunSummaryTable(&buf, failed, testConfig(schema.TextOut, "")))
	assert.Contains(t, buf.String(), "Analysis of hotspotter")
	assert.Contains(t, buf.String(), "beginning .. HEAD")
	assert.Contains(t, buf.String(), "exit status 128")

	buf.Reset()
	w := csv.NewWriter(&buf)
	require.NoError(t, writeRunsCSV(w, runs))
	w.Flush()
	assert.Contains(t, buf.String(), "1f0c,hotspotter,completed,completed")
}

func TestStructureJSON(t *testing.T) {
	resp := schema.StructureResponse{
		Structure: &schema.StructureNode{Name: "root", Type: schema.NodeDir, NumberOfFiles: 1},
		RefData:   schema.ReferenceData{MaxCommits: 3},
	}
	var buf bytes.Buffer
	require.NoError(t, writeStructureJSON(&buf, resp, false))
	assert.JSONEq(t, `{"structure":{"n":"root","p":"","t":"dir","nf":1},"refdata":{"mc":3,"mchs":0,"mloc":0}}`, buf.String())
	assert.NotContains(t, strings.TrimSpace(buf.String()), "\n")

	buf.Reset()
	require.NoError(t, writeStructureJSON(&buf, resp, true))
	assert.Contains(t, buf.String(), "\n  ")
}

func TestPathWidth(t *testing.T) {
	tests := []struct {
		width, reserved, want int
	}{
		{80, 75, 15},
		{200, 20, 70},
		{120, 60, 40},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, pathWidth(&contract.Config{Width: tt.width}, tt.reserved))
	}
}

func TestColoredLabels(t *testing.T) {
	plain := &contract.Config{}
	assert.Equal(t, "active", activity(true, plain))
	assert.Equal(t, "completed", statusLabel(schema.StatusCompleted, plain))
	assert.Equal(t, "Title", heading("Title", plain))
}
