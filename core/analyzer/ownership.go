package analyzer

import (
	"context"
	"fmt"
	"math"

	"github.com/huangsam/hotspotter/internal/contract"
	"github.com/huangsam/hotspotter/schema"
)

// coLeadTolerance is how close, in percentage points, a contributor must be
// to the top share to count as a co-owner.
const coLeadTolerance = 0.01

// Ownership records every author holding the top share of a file.
type Ownership struct {
	store     contract.RowStore[schema.FileOwnership]
	lister    contract.FileLister
	batchSize int
}

// NewOwnership creates the analyzer.
func NewOwnership(store contract.RowStore[schema.FileOwnership], lister contract.FileLister, batchSize int) *Ownership {
	return &Ownership{store: store, lister: lister, batchSize: batchSize}
}

// OwnershipSession is the ownership state of one run.
type OwnershipSession struct {
	analyzer *Ownership
	params   RunParams
	index    *contributionIndex
}

var _ Session = &OwnershipSession{} // Compile-time check

// Start allocates a session. It never touches storage.
func (o *Ownership) Start(params RunParams) *OwnershipSession {
	return &OwnershipSession{analyzer: o, params: params, index: newContributionIndex()}
}

// Name implements Session.
func (s *OwnershipSession) Name() string { return OwnershipName }

// ProcessCommit implements Session.
func (s *OwnershipSession) ProcessCommit(commit *schema.Commit) {
	if s == nil || commit == nil || s.index == nil {
		return
	}
	s.index.apply(commit)
}

// Results derives the rows of every live path without filtering or saving.
func (s *OwnershipSession) Results() []schema.FileOwnership {
	if s == nil || s.index == nil {
		return nil
	}
	rows := make([]schema.FileOwnership, 0, len(s.index.files))
	for _, path := range s.index.paths() {
		lines, commits, contributions := s.index.files[path].summarize()
		rows = append(rows, schema.FileOwnership{
			RunID:         s.params.RunID,
			FilePath:      path,
			LinesAdded:    lines,
			Commits:       commits,
			Contributions: contributions,
			LeadAuthors:   ownershipLeads(contributions),
			Contributors:  len(contributions),
		})
	}
	return rows
}

// ownershipLeads returns every contributor within coLeadTolerance of the
// top share, in sorted order. It is empty when the top share is below one
// percent.
func ownershipLeads(sorted []schema.AuthorContribution) []string {
	leads := []string{}
	if len(sorted) == 0 || sorted[0].Percentage < minLeadPercentage {
		return leads
	}
	top := sorted[0].Percentage
	for _, c := range sorted {
		if math.Abs(c.Percentage-top) >= coLeadTolerance {
			break
		}
		leads = append(leads, c.Name)
	}
	return leads
}

// Finish implements Session.
func (s *OwnershipSession) Finish(ctx context.Context) error {
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

	var rows []schema.FileOwnership
	for _, row := range s.Results() {
		if keep(files, row.FilePath) {
			rows = append(rows, row)
		}
	}
	s.index = nil
	return SaveInBatches(ctx, s.analyzer.store, OwnershipName, rows, s.analyzer.batchSize)
}
