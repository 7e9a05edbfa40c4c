package analyzer

import (
	"sort"

	"github.com/huangsam/hotspotter/schema"
)

// minLeadPercentage is the share below which a file is considered too
// fragmented to have a lead author.
const minLeadPercentage = 1.0

// fileContributions accumulates per-author work on one file. order keeps
// first-seen order so ties resolve the same way on every run.
type fileContributions struct {
	authors map[string]*schema.AuthorContribution
	order   []string
}

func newFileContributions() *fileContributions {
	return &fileContributions{authors: make(map[string]*schema.AuthorContribution)}
}

func (f *fileContributions) add(author string, lines, commits int) {
	c, ok := f.authors[author]
	if !ok {
		c = &schema.AuthorContribution{Name: author}
		f.authors[author] = c
		f.order = append(f.order, author)
	}
	c.LinesAdded += lines
	c.Commits += commits
}

// merge folds other into f, keeping f's authors first.
func (f *fileContributions) merge(other *fileContributions) {
	for _, name := range other.order {
		c := other.authors[name]
		f.add(name, c.LinesAdded, c.Commits)
	}
}

// summarize returns the totals and the contributions with percentages,
// sorted by percentage descending. Equal percentages keep first-seen order.
func (f *fileContributions) summarize() (lines, commits int, out []schema.AuthorContribution) {
	for _, name := range f.order {
		c := f.authors[name]
		lines += c.LinesAdded
		commits += c.Commits
	}
	out = make([]schema.AuthorContribution, 0, len(f.order))
	for _, name := range f.order {
		c := *f.authors[name]
		c.Percentage = percentage(c.LinesAdded, lines)
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Percentage > out[j].Percentage })
	return lines, commits, out
}

// contributionIndex is the rename-aware path to contributions map shared by
// the knowledge and ownership analyzers.
type contributionIndex struct {
	files map[string]*fileContributions
}

func newContributionIndex() *contributionIndex {
	return &contributionIndex{files: make(map[string]*fileContributions)}
}

func (idx *contributionIndex) apply(commit *schema.Commit) {
	for _, change := range commit.Changes {
		if change.IsRenamed() {
			idx.rename(change.OldPath, change.NewPath)
		}
		fc, ok := idx.files[change.Path]
		if !ok {
			fc = newFileContributions()
			idx.files[change.Path] = fc
		}
		fc.add(commit.AuthorName, change.LinesAdded, 1)
	}
}

// rename moves the accumulator of oldPath to newPath, merging when newPath
// already has history of its own.
func (idx *contributionIndex) rename(oldPath, newPath string) {
	if oldPath == newPath {
		return
	}
	src, ok := idx.files[oldPath]
	if !ok {
		return
	}
	delete(idx.files, oldPath)
	if dst, exists := idx.files[newPath]; exists {
		dst.merge(src)
		return
	}
	idx.files[newPath] = src
}

// paths returns the live paths in sorted order.
func (idx *contributionIndex) paths() []string {
	return sortedKeys(idx.files)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
