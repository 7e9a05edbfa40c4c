// Package structure turns the persisted file rows of a run into a directory
// tree weighted for display.
package structure

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/huangsam/hotspotter/internal/contract"
	"github.com/huangsam/hotspotter/schema"
)

// RootName is the name of the synthetic root directory.
const RootName = "root"

// heightScale is e^2 - 1, the denominator of the height curve.
var heightScale = math.Exp(2) - 1

// Build joins file info with knowledge by path and returns the tree plus the
// run-wide maxima. Files without a knowledge row leave the knowledge fields
// unset. The result does not depend on the order of the inputs.
func Build(files []schema.FileInfo, knowledge []schema.FileKnowledge) schema.StructureResponse {
	byPath := make(map[string]*schema.FileKnowledge, len(knowledge))
	for i := range knowledge {
		byPath[knowledge[i].FilePath] = &knowledge[i]
	}

	sorted := make([]schema.FileInfo, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].FilePath < sorted[j].FilePath })

	root := &schema.StructureNode{Name: RootName, Type: schema.NodeDir}
	dirs := map[string]*schema.StructureNode{"": root}
	var ref schema.ReferenceData
	for _, fi := range sorted {
		ref.MaxCommits = max(ref.MaxCommits, fi.TotalCommits)
		ref.MaxCommitsHotSpot = max(ref.MaxCommitsHotSpot, fi.CommitsHotSpot)
		ref.MaxLinesOfCode = max(ref.MaxLinesOfCode, fi.CodeLines)

		parent := ensureDir(dirs, root, fi.FilePath)
		parent.Children = append(parent.Children, fileNode(fi, byPath[fi.FilePath]))
	}

	setDimensions(root, ref)
	aggregate(root)
	return schema.StructureResponse{Structure: root, RefData: ref}
}

// ensureDir creates the directory chain of filePath and returns its parent.
func ensureDir(dirs map[string]*schema.StructureNode, root *schema.StructureNode, filePath string) *schema.StructureNode {
	segments := strings.Split(filePath, "/")
	parent := root
	current := ""
	for _, segment := range segments[:len(segments)-1] {
		if current != "" {
			current += "/"
		}
		current += segment
		dir, ok := dirs[current]
		if !ok {
			dir = &schema.StructureNode{Name: segment, Path: current, Type: schema.NodeDir}
			dirs[current] = dir
			parent.Children = append(parent.Children, dir)
		}
		parent = dir
	}
	return parent
}

func fileNode(fi schema.FileInfo, fk *schema.FileKnowledge) *schema.StructureNode {
	name := fi.FileName
	if name == "" {
		name = fi.FilePath[strings.LastIndex(fi.FilePath, "/")+1:]
	}
	node := &schema.StructureNode{
		Name:            name,
		Path:            fi.FilePath,
		Type:            schema.NodeFile,
		FileType:        fi.Language,
		FileSize:        fi.FileSize,
		LinesOfCode:     fi.CodeLines,
		Commits:         fi.TotalCommits,
		CommitsHotSpot:  fi.CommitsHotSpot,
		CommitsLastYear: fi.CommitsLastYear,
		FirstCommitDate: dayString(fi.FirstCommitDate),
		LastCommitDate:  dayString(fi.LastCommitDate),
	}
	if fk != nil {
		if fk.LeadAuthor != "" {
			lead := fk.LeadAuthor
			pct := fk.LeadAuthorPercentage
			node.LeadAuthor = &lead
			node.LeadAuthorKnowledge = &pct
		}
		contributors := fk.Contributors
		active := fk.ActiveContributors
		node.Contributors = &contributors
		node.ActiveContributors = &active
	}
	return node
}

func dayString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(contract.DateFormat)
}

// Height maps commits onto [0, 1] along (e^(2x) - 1) / (e^2 - 1), rounded to
// two decimals, so the busiest files stand out. A zero maximum yields 0.
func Height(commits, maxCommits int) float64 {
	if maxCommits <= 0 {
		return 0
	}
	x := float64(commits) / float64(maxCommits)
	return round2((math.Exp(2*x) - 1) / heightScale)
}

// Width is the share of the largest file's lines, rounded to two decimals.
// A zero maximum yields 0.
func Width(lines, maxLines int) float64 {
	if maxLines <= 0 {
		return 0
	}
	return round2(float64(lines) / float64(maxLines))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func setDimensions(node *schema.StructureNode, ref schema.ReferenceData) {
	if node.Type == schema.NodeDir {
		for _, child := range node.Children {
			setDimensions(child, ref)
		}
		return
	}
	h := Height(node.Commits, ref.MaxCommits)
	w := Width(node.LinesOfCode, ref.MaxLinesOfCode)
	node.Height = &h
	node.Width = &w
}

type dirStats struct {
	files   int
	lines   int
	commits int
}

// aggregate fills file count, lines and average commits bottom-up. Children
// of each directory are ordered with directories first, then by name.
func aggregate(node *schema.StructureNode) dirStats {
	if node.Type == schema.NodeFile {
		return dirStats{files: 1, lines: node.LinesOfCode, commits: node.Commits}
	}
	var total dirStats
	for _, child := range node.Children {
		s := aggregate(child)
		total.files += s.files
		total.lines += s.lines
		total.commits += s.commits
	}
	sort.SliceStable(node.Children, func(i, j int) bool {
		a, b := node.Children[i], node.Children[j]
		if a.Type != b.Type {
			return a.Type == schema.NodeDir
		}
		return a.Name < b.Name
	})
	node.NumberOfFiles = total.files
	node.LinesOfCode = total.lines
	if total.files > 0 {
		node.AverageCommits = round2(float64(total.commits) / float64(total.files))
	}
	return total
}
