package analyzer

import (
	"context"
	"fmt"

	"github.com/huangsam/hotspotter/internal/contract"
	"github.com/huangsam/hotspotter/schema"
)

// Knowledge measures how concentrated each file's written lines are in one
// author, and how much of it belongs to authors who have gone inactive.
type Knowledge struct {
	store     contract.RowStore[schema.FileKnowledge]
	authors   contract.RowStore[schema.AuthorStatistics]
	lister    contract.FileLister
	batchSize int
}

// NewKnowledge creates the analyzer. The authors store is read during
// enrichment for the active flag of each contributor.
func NewKnowledge(store contract.RowStore[schema.FileKnowledge], authors contract.RowStore[schema.AuthorStatistics], lister contract.FileLister, batchSize int) *Knowledge {
	return &Knowledge{store: store, authors: authors, lister: lister, batchSize: batchSize}
}

// KnowledgeSession is the knowledge state of one run.
type KnowledgeSession struct {
	analyzer *Knowledge
	params   RunParams
	index    *contributionIndex
}

var (
	_ Session  = &KnowledgeSession{} // Compile-time check
	_ Enricher = &KnowledgeSession{} // Compile-time check
)

// Start allocates a session. It never touches storage.
func (k *Knowledge) Start(params RunParams) *KnowledgeSession {
	return &KnowledgeSession{analyzer: k, params: params, index: newContributionIndex()}
}

// Name implements Session.
func (s *KnowledgeSession) Name() string { return KnowledgeName }

// ProcessCommit implements Session.
func (s *KnowledgeSession) ProcessCommit(commit *schema.Commit) {
	if s == nil || commit == nil || s.index == nil {
		return
	}
	s.index.apply(commit)
}

// Results derives the rows of every live path without filtering or saving.
func (s *KnowledgeSession) Results() []schema.FileKnowledge {
	if s == nil || s.index == nil {
		return nil
	}
	rows := make([]schema.FileKnowledge, 0, len(s.index.files))
	for _, path := range s.index.paths() {
		rows = append(rows, s.row(path, s.index.files[path]))
	}
	return rows
}

func (s *KnowledgeSession) row(path string, fc *fileContributions) schema.FileKnowledge {
	lines, commits, contributions := fc.summarize()
	row := schema.FileKnowledge{
		RunID:         s.params.RunID,
		FilePath:      path,
		LinesAdded:    lines,
		Commits:       commits,
		Contributions: contributions,
		Contributors:  len(contributions),
	}
	if lead, ok := knowledgeLead(contributions); ok {
		row.LeadAuthor = lead.Name
		row.LeadAuthorPercentage = lead.Percentage
	}
	return row
}

// knowledgeLead picks the single lead author from contributions sorted by
// percentage. The highest commit count breaks a percentage tie; a remaining
// tie goes to the author seen first in the history.
func knowledgeLead(sorted []schema.AuthorContribution) (schema.AuthorContribution, bool) {
	if len(sorted) == 0 || sorted[0].Percentage < minLeadPercentage {
		return schema.AuthorContribution{}, false
	}
	best := sorted[0]
	for _, c := range sorted[1:] {
		if c.Percentage != best.Percentage {
			break
		}
		if c.Commits > best.Commits {
			best = c
		}
	}
	return best, true
}

// Finish implements Session.
func (s *KnowledgeSession) Finish(ctx context.Context) error {
	if s == nil || s.index == nil {
		return nil
	}
	if s.analyzer.batchSize < 1 {
		return fmt.Errorf("%w (received %d)", ErrInvalidBatchSize, s.analyzer.batchSize)
	}
	files, err := existingFiles(ctx, s.analyzer.lister, s.params.RepoPath)
	if err != nil {
		return err
	}

	var rows []schema.FileKnowledge
	for _, row := range s.Results() {
		if keep(files, row.FilePath) {
			rows = append(rows, row)
		}
	}
	s.index = nil
	return SaveInBatches(ctx, s.analyzer.store, KnowledgeName, rows, s.analyzer.batchSize)
}

// Enrich implements Enricher. It recomputes active contributors and
// knowledge loss from the run's author rows. Authors are matched by display
// name only; a name with no author row counts as inactive.
func (s *KnowledgeSession) Enrich(ctx context.Context) error {
	if s == nil {
		return nil
	}
	rows, err := s.analyzer.store.FindAllByRunID(ctx, s.params.RunID)
	if err != nil {
		return fmt.Errorf("failed to read knowledge rows: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}
	if s.analyzer.authors == nil {
		return fmt.Errorf("no author store configured for %s enrichment", KnowledgeName)
	}
	authors, err := s.analyzer.authors.FindAllByRunID(ctx, s.params.RunID)
	if err != nil {
		return fmt.Errorf("failed to read author rows: %w", err)
	}
	active := make(map[string]bool, len(authors))
	for _, a := range authors {
		active[a.Name] = a.IsActive
	}

	for i := range rows {
		applyKnowledgeLoss(&rows[i], active)
	}
	return SaveInBatches(ctx, s.analyzer.store, KnowledgeName, rows, s.analyzer.batchSize)
}

func applyKnowledgeLoss(row *schema.FileKnowledge, active map[string]bool) {
	row.ActiveContributors = 0
	lost := 0
	for _, c := range row.Contributions {
		if active[c.Name] {
			row.ActiveContributors++
		} else {
			lost += c.LinesAdded
		}
	}
	row.KnowledgeLoss = percentage(lost, row.LinesAdded)
}
