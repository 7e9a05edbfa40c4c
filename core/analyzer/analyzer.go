// Package analyzer holds the stateful analyzers that consume the commit
// stream of one run.
//
// Every analyzer follows the same lifecycle. Start allocates a session for a
// run. ProcessCommit is called once per commit, in log order. Finish derives
// the aggregate fields and persists them in batches. Sessions that also
// implement Enricher get a second, strictly later pass that reads other
// analyzers' persisted rows for the same run.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/hotspotter/internal/contract"
	"github.com/huangsam/hotspotter/internal/metrics"
	"github.com/huangsam/hotspotter/schema"
)

// ErrInvalidBatchSize is returned when a batch size below one is used.
var ErrInvalidBatchSize = errors.New("batch size must be at least 1")

// Session names, also used as table labels in logs and metrics.
const (
	KnowledgeName = "knowledge"
	OwnershipName = "ownership"
	AuthorsName   = "authors"
	TrendsName    = "trends"
	FileInfoName  = "files"
)

// Session is the per-run state of one analyzer. A nil commit is ignored.
type Session interface {
	Name() string
	ProcessCommit(commit *schema.Commit)
	Finish(ctx context.Context) error
}

// Enricher is implemented by sessions that recompute fields from other
// analyzers' persisted output. Enrich must only run after every session of
// the run has finished.
type Enricher interface {
	Enrich(ctx context.Context) error
}

// RunParams identifies the run a session belongs to.
type RunParams struct {
	RunID    string
	RepoPath string

	// ReferenceDate is the "now" for all relative-time math. Zero means today.
	ReferenceDate time.Time
}

// reference returns the frozen reference day of the run.
func (p RunParams) reference() time.Time {
	if p.ReferenceDate.IsZero() {
		return contract.TruncateDay(time.Now())
	}
	return contract.TruncateDay(p.ReferenceDate)
}

// SaveInBatches persists rows in slices of at most size rows. A failed batch
// is logged and the remaining batches are still attempted; the joined batch
// errors are returned.
func SaveInBatches[T any](ctx context.Context, store contract.RowStore[T], table string, rows []T, size int) error {
	if size < 1 {
		return fmt.Errorf("%w (received %d)", ErrInvalidBatchSize, size)
	}
	if store == nil {
		return fmt.Errorf("no store configured for %s", table)
	}

	var errs []error
	for batch, start := 0, 0; start < len(rows); batch, start = batch+1, start+size {
		end := min(start+size, len(rows))
		if err := store.SaveAll(ctx, rows[start:end]); err != nil {
			metrics.BatchFailures.WithLabelValues(table).Inc()
			contract.Logger.WithError(err).WithField("table", table).WithField("batch", batch).Warn("failed to save batch")
			errs = append(errs, fmt.Errorf("failed to save %s batch %d: %w", table, batch, err))
			continue
		}
		metrics.RowsPersisted.WithLabelValues(table).Add(float64(end - start))
	}
	return errors.Join(errs...)
}

// existingFiles asks the lister for the paths at HEAD. A nil lister keeps
// every path, which is signalled by a nil set.
func existingFiles(ctx context.Context, lister contract.FileLister, repoPath string) (map[string]struct{}, error) {
	if lister == nil {
		return nil, nil
	}
	files, err := lister.ListFiles(ctx, repoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to list existing files: %w", err)
	}
	return files, nil
}

// keep reports whether path survives the existing-file filter.
func keep(files map[string]struct{}, path string) bool {
	if files == nil {
		return true
	}
	_, ok := files[path]
	return ok
}

func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) * 100 / float64(total)
}
