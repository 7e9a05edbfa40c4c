package analyzer

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/hotspotter/internal/contract"
	"github.com/huangsam/hotspotter/schema"
)

// FileInfo tracks per-file commit recency and attaches size metadata.
type FileInfo struct {
	store         contract.RowStore[schema.FileInfo]
	lister        contract.FileLister
	counter       contract.LineCounter
	hotSpotMonths int
	batchSize     int
}

// NewFileInfo creates the analyzer. hotSpotMonths is the trailing period
// whose commits count towards CommitsHotSpot.
func NewFileInfo(store contract.RowStore[schema.FileInfo], lister contract.FileLister, counter contract.LineCounter, hotSpotMonths, batchSize int) *FileInfo {
	return &FileInfo{store: store, lister: lister, counter: counter, hotSpotMonths: hotSpotMonths, batchSize: batchSize}
}

type fileState struct {
	first     time.Time
	last      time.Time
	total     int
	lastMonth int
	lastYear  int
	hotSpot   int
}

func (f *fileState) merge(other *fileState) {
	if other.first.Before(f.first) {
		f.first = other.first
	}
	if other.last.After(f.last) {
		f.last = other.last
	}
	f.total += other.total
	f.lastMonth += other.lastMonth
	f.lastYear += other.lastYear
	f.hotSpot += other.hotSpot
}

// FileInfoSession is the per-file activity state of one run.
type FileInfoSession struct {
	analyzer  *FileInfo
	params    RunParams
	reference time.Time
	monthAgo  time.Time
	yearAgo   time.Time
	hotAgo    time.Time
	files     map[string]*fileState
}

var _ Session = &FileInfoSession{} // Compile-time check

// Start allocates a session. The bucket boundaries are fixed here from the
// reference date.
func (f *FileInfo) Start(params RunParams) *FileInfoSession {
	ref := params.reference()
	return &FileInfoSession{
		analyzer:  f,
		params:    params,
		reference: ref,
		monthAgo:  contract.AddMonths(ref, -1),
		yearAgo:   contract.AddMonths(ref, -12),
		hotAgo:    contract.AddMonths(ref, -f.hotSpotMonths),
		files:     make(map[string]*fileState),
	}
}

// Name implements Session.
func (s *FileInfoSession) Name() string { return FileInfoName }

// ProcessCommit implements Session. The buckets are cumulative: a commit in
// the last month also counts for the last year and, when inside it, the
// hot-spot period.
func (s *FileInfoSession) ProcessCommit(commit *schema.Commit) {
	if s == nil || commit == nil || s.files == nil {
		return
	}
	for _, change := range commit.Changes {
		if change.IsRenamed() {
			s.rename(change.OldPath, change.NewPath)
		}
		st, ok := s.files[change.Path]
		if !ok {
			st = &fileState{first: commit.Date, last: commit.Date}
			s.files[change.Path] = st
		}
		if commit.Date.Before(st.first) {
			st.first = commit.Date
		}
		if commit.Date.After(st.last) {
			st.last = commit.Date
		}
		st.total++
		if !commit.Date.Before(s.monthAgo) {
			st.lastMonth++
		}
		if !commit.Date.Before(s.yearAgo) {
			st.lastYear++
		}
		if !commit.Date.Before(s.hotAgo) {
			st.hotSpot++
		}
	}
}

func (s *FileInfoSession) rename(oldPath, newPath string) {
	if oldPath == newPath {
		return
	}
	src, ok := s.files[oldPath]
	if !ok {
		return
	}
	delete(s.files, oldPath)
	if dst, exists := s.files[newPath]; exists {
		dst.merge(src)
		return
	}
	s.files[newPath] = src
}

// Results derives the rows of every live path, without line metadata.
func (s *FileInfoSession) Results() []schema.FileInfo {
	if s == nil || s.files == nil {
		return nil
	}
	rows := make([]schema.FileInfo, 0, len(s.files))
	for _, p := range sortedKeys(s.files) {
		st := s.files[p]
		rows = append(rows, schema.FileInfo{
			RunID:            s.params.RunID,
			FilePath:         p,
			FileName:         path.Base(p),
			FirstCommitDate:  st.first,
			LastCommitDate:   st.last,
			TotalCommits:     st.total,
			CommitsLastMonth: st.lastMonth,
			CommitsLastYear:  st.lastYear,
			CommitsHotSpot:   st.hotSpot,
			CodeAgeDays:      contract.DaysBetween(st.last, s.reference),
			CodeAgeMonths:    contract.MonthsBetween(st.last, s.reference),
		})
	}
	return rows
}

// Finish implements Session. Paths gone from HEAD are dropped; the others
// get language and line counts when the counter knows them.
func (s *FileInfoSession) Finish(ctx context.Context) error {
	if s == nil || s.files == nil {
		return nil
	}
	if s.analyzer.batchSize < 1 {
		return fmt.Errorf("%w (received %d)", ErrInvalidBatchSize, s.analyzer.batchSize)
	}
	files, err := existingFiles(ctx, s.analyzer.lister, s.params.RepoPath)
	if err != nil {
		return err
	}

	var rows []schema.FileInfo
	for _, row := range s.Results() {
		if keep(files, row.FilePath) {
			rows = append(rows, row)
		}
	}
	s.files = nil

	if s.analyzer.counter != nil && len(rows) > 0 {
		paths := make([]string, len(rows))
		for i, row := range rows {
			paths[i] = row.FilePath
		}
		lines, err := s.analyzer.counter.Count(ctx, s.params.RepoPath, paths)
		if err != nil {
			contract.LogWarn("failed to count lines, saving file info without them", err)
		}
		for i := range rows {
			if fl, ok := lines[rows[i].FilePath]; ok {
				applyLines(&rows[i], fl)
			}
		}
	}
	return SaveInBatches(ctx, s.analyzer.store, FileInfoName, rows, s.analyzer.batchSize)
}

func applyLines(row *schema.FileInfo, fl schema.FileLines) {
	row.Language = fl.Language
	row.CodeLines = fl.Code
	row.CommentLines = fl.Comment
	row.BlankLines = fl.Blank
	row.TotalLines = fl.Total
	row.SizeBytes = fl.Bytes
	row.FileSize = humanize.Bytes(uint64(max(fl.Bytes, 0)))
}
