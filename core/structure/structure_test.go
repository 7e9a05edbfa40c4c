package structure

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/huangsam/hotspotter/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func info(path string, commits, hot, loc int) schema.FileInfo {
	return schema.FileInfo{
		RunID:           "run",
		FilePath:        path,
		TotalCommits:    commits,
		CommitsHotSpot:  hot,
		CodeLines:       loc,
		FirstCommitDate: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		LastCommitDate:  time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC),
		Language:        "Go",
	}
}

func find(node *schema.StructureNode, path string) *schema.StructureNode {
	if node.Path == path {
		return node
	}
	for _, child := range node.Children {
		if found := find(child, path); found != nil {
			return found
		}
	}
	return nil
}

func TestHeight(t *testing.T) {
	tests := []struct {
		commits, max int
		want         float64
	}{
		{0, 10, 0},
		{10, 10, 1},
		{5, 10, 0.27},
		{1, 10, 0.03},
		{3, 0, 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Height(tt.commits, tt.max), 1e-9, "%d/%d", tt.commits, tt.max)
	}
}

func TestWidth(t *testing.T) {
	assert.InDelta(t, 0.33, Width(1, 3), 1e-9)
	assert.InDelta(t, 1.0, Width(40, 40), 1e-9)
	assert.Zero(t, Width(12, 0))
}

func TestBuildTree(t *testing.T) {
	files := []schema.FileInfo{
		info("src/api/handler.go", 10, 4, 200),
		info("src/main.go", 5, 1, 100),
		info("README.md", 1, 0, 0),
	}
	knowledge := []schema.FileKnowledge{
		{FilePath: "src/main.go", LeadAuthor: "Ada", LeadAuthorPercentage: 75, Contributors: 2, ActiveContributors: 1},
		{FilePath: "README.md", Contributors: 101, ActiveContributors: 3},
	}

	resp := Build(files, knowledge)
	assert.Equal(t, schema.ReferenceData{MaxCommits: 10, MaxCommitsHotSpot: 4, MaxLinesOfCode: 200}, resp.RefData)

	root := resp.Structure
	assert.Equal(t, RootName, root.Name)
	assert.Equal(t, 3, root.NumberOfFiles)
	assert.Equal(t, 300, root.LinesOfCode)
	assert.InDelta(t, 5.33, root.AverageCommits, 1e-9)
	assert.Nil(t, root.Height)

	require.Len(t, root.Children, 2)
	assert.Equal(t, "src", root.Children[0].Name, "directories sort before files")
	assert.Equal(t, "README.md", root.Children[1].Name)

	src := find(root, "src")
	require.NotNil(t, src)
	assert.Equal(t, 2, src.NumberOfFiles)
	assert.InDelta(t, 7.5, src.AverageCommits, 1e-9)
	assert.Nil(t, src.Width)

	handler := find(root, "src/api/handler.go")
	require.NotNil(t, handler)
	assert.Equal(t, "handler.go", handler.Name)
	assert.InDelta(t, 1.0, *handler.Height, 1e-9)
	assert.InDelta(t, 1.0, *handler.Width, 1e-9)
	assert.Nil(t, handler.LeadAuthor, "no knowledge row")
	assert.Nil(t, handler.Contributors)
	assert.Equal(t, "2024-01-02", handler.FirstCommitDate)
	assert.Equal(t, "2025-03-04", handler.LastCommitDate)

	main := find(root, "src/main.go")
	require.NotNil(t, main)
	assert.Equal(t, "Ada", *main.LeadAuthor)
	assert.InDelta(t, 75.0, *main.LeadAuthorKnowledge, 1e-9)
	assert.Equal(t, 1, *main.ActiveContributors)
	assert.InDelta(t, 0.27, *main.Height, 1e-9)
	assert.InDelta(t, 0.5, *main.Width, 1e-9)

	readme := find(root, "README.md")
	assert.Nil(t, readme.LeadAuthor, "no lead author")
	assert.Equal(t, 101, *readme.Contributors)
	assert.Zero(t, *readme.Width)
}

func TestBuildZeroMaxima(t *testing.T) {
	resp := Build([]schema.FileInfo{info("a.txt", 0, 0, 0)}, nil)
	a := find(resp.Structure, "a.txt")
	require.NotNil(t, a)
	assert.Zero(t, *a.Height)
	assert.Zero(t, *a.Width)
}

func TestBuildEmpty(t *testing.T) {
	resp := Build(nil, nil)
	require.NotNil(t, resp.Structure)
	assert.Empty(t, resp.Structure.Children)
	assert.Zero(t, resp.Structure.NumberOfFiles)
	assert.Zero(t, resp.Structure.AverageCommits)
}

func TestBuildIsOrderIndependent(t *testing.T) {
	a := []schema.FileInfo{info("x/b.go", 2, 0, 5), info("x/a.go", 1, 0, 5), info("y.go", 3, 0, 1)}
	b := []schema.FileInfo{a[2], a[0], a[1]}
	first, err := json.Marshal(Build(a, nil))
	require.NoError(t, err)
	second, err := json.Marshal(Build(b, nil))
	require.NoError(t, err)
	assert.JSONEq(t, string(first), string(second))
}
