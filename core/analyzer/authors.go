package analyzer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/huangsam/hotspotter/internal/contract"
	"github.com/huangsam/hotspotter/schema"
)

// Authors aggregates per-author activity and decides who is still active.
type Authors struct {
	store            contract.RowStore[schema.AuthorStatistics]
	knowledge        contract.RowStore[schema.FileKnowledge]
	inactivityMonths int
	batchSize        int
}

// NewAuthors creates the analyzer. An author is active while fewer than
// inactivityMonths calendar months have passed since their last commit. The
// knowledge store is read during enrichment to count lead-author files.
func NewAuthors(store contract.RowStore[schema.AuthorStatistics], knowledge contract.RowStore[schema.FileKnowledge], inactivityMonths, batchSize int) *Authors {
	return &Authors{store: store, knowledge: knowledge, inactivityMonths: inactivityMonths, batchSize: batchSize}
}

type authorState struct {
	emails  map[string]struct{}
	first   time.Time
	last    time.Time
	commits int
	added   int
	deleted int
	files   map[int]struct{}
}

// AuthorsSession is the author state of one run.
type AuthorsSession struct {
	analyzer  *Authors
	params    RunParams
	reference time.Time
	authors   map[string]*authorState

	// File identities survive renames so a renamed file is not counted
	// twice towards an author's unique files.
	fileIDs map[string]int
	nextID  int
}

var (
	_ Session  = &AuthorsSession{} // Compile-time check
	_ Enricher = &AuthorsSession{} // Compile-time check
)

// Start allocates a session. It never touches storage.
func (a *Authors) Start(params RunParams) *AuthorsSession {
	return &AuthorsSession{
		analyzer:  a,
		params:    params,
		reference: params.reference(),
		authors:   make(map[string]*authorState),
		fileIDs:   make(map[string]int),
	}
}

// Name implements Session.
func (s *AuthorsSession) Name() string { return AuthorsName }

// ProcessCommit implements Session.
func (s *AuthorsSession) ProcessCommit(commit *schema.Commit) {
	if s == nil || commit == nil || s.authors == nil {
		return
	}
	st, ok := s.authors[commit.AuthorName]
	if !ok {
		st = &authorState{
			emails: make(map[string]struct{}),
			first:  commit.Date,
			last:   commit.Date,
			files:  make(map[int]struct{}),
		}
		s.authors[commit.AuthorName] = st
	}
	if commit.AuthorEmail != "" {
		st.emails[commit.AuthorEmail] = struct{}{}
	}
	if commit.Date.Before(st.first) {
		st.first = commit.Date
	}
	if commit.Date.After(st.last) {
		st.last = commit.Date
	}
	st.commits++

	for _, change := range commit.Changes {
		st.added += change.LinesAdded
		st.deleted += change.LinesDeleted
		st.files[s.fileID(change)] = struct{}{}
	}
}

func (s *AuthorsSession) fileID(change schema.FileChange) int {
	if change.IsRenamed() {
		if id, ok := s.fileIDs[change.OldPath]; ok {
			delete(s.fileIDs, change.OldPath)
			if dest, taken := s.fileIDs[change.NewPath]; taken {
				s.mergeFileID(id, dest)
			} else {
				s.fileIDs[change.NewPath] = id
			}
		}
	}
	id, ok := s.fileIDs[change.Path]
	if !ok {
		id = s.nextID
		s.nextID++
		s.fileIDs[change.Path] = id
	}
	return id
}

// mergeFileID folds the identity from into into for every author, so a
// rename onto an existing path leaves one file behind.
func (s *AuthorsSession) mergeFileID(from, into int) {
	for _, st := range s.authors {
		if _, ok := st.files[from]; ok {
			delete(st.files, from)
			st.files[into] = struct{}{}
		}
	}
}

// Results derives one row per author, sorted by name.
func (s *AuthorsSession) Results() []schema.AuthorStatistics {
	if s == nil || s.authors == nil {
		return nil
	}
	rows := make([]schema.AuthorStatistics, 0, len(s.authors))
	for _, name := range sortedKeys(s.authors) {
		st := s.authors[name]
		emails := make([]string, 0, len(st.emails))
		for e := range st.emails {
			emails = append(emails, e)
		}
		sort.Strings(emails)

		monthsSinceLast := contract.MonthsBetween(st.last, s.reference)
		rows = append(rows, schema.AuthorStatistics{
			RunID:                  s.params.RunID,
			Name:                   name,
			Emails:                 emails,
			FirstCommitDate:        st.first,
			LastCommitDate:         st.last,
			DaysSinceFirstCommit:   contract.DaysBetween(st.first, s.reference),
			MonthsSinceFirstCommit: contract.MonthsBetween(st.first, s.reference),
			DaysSinceLastCommit:    contract.DaysBetween(st.last, s.reference),
			MonthsSinceLastCommit:  monthsSinceLast,
			Commits:                st.commits,
			LinesAdded:             st.added,
			LinesDeleted:           st.deleted,
			UniqueFiles:            len(st.files),
			IsActive:               monthsSinceLast < s.analyzer.inactivityMonths,
		})
	}
	return rows
}

// Finish implements Session.
func (s *AuthorsSession) Finish(ctx context.Context) error {
	if s == nil || s.authors == nil {
		return nil
	}
	if s.analyzer.batchSize < 1 {
		return fmt.Errorf("%w (received %d)", ErrInvalidBatchSize, s.analyzer.batchSize)
	}
	rows := s.Results()
	s.authors, s.fileIDs = nil, nil
	return SaveInBatches(ctx, s.analyzer.store, AuthorsName, rows, s.analyzer.batchSize)
}

// Enrich implements Enricher. It counts, per author, the files of this run
// where they are the knowledge lead author.
func (s *AuthorsSession) Enrich(ctx context.Context) error {
	if s == nil {
		return nil
	}
	rows, err := s.analyzer.store.FindAllByRunID(ctx, s.params.RunID)
	if err != nil {
		return fmt.Errorf("failed to read author rows: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}
	if s.analyzer.knowledge == nil {
		return fmt.Errorf("no knowledge store configured for %s enrichment", AuthorsName)
	}
	files, err := s.analyzer.knowledge.FindAllByRunID(ctx, s.params.RunID)
	if err != nil {
		return fmt.Errorf("failed to read knowledge rows: %w", err)
	}
	leads := make(map[string]int)
	for _, f := range files {
		if f.LeadAuthor != "" {
			leads[f.LeadAuthor]++
		}
	}
	for i := range rows {
		rows[i].FilesAsLeadAuthor = leads[rows[i].Name]
	}
	return SaveInBatches(ctx, s.analyzer.store, AuthorsName, rows, s.analyzer.batchSize)
}
