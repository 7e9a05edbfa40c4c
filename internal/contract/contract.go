// Package contract provides interfaces and shared utilities for hotspotter's internal architecture.
package contract

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/huangsam/hotspotter/schema"
)

// ErrRunNotFound is returned when a run id has no stored run row.
var ErrRunNotFound = errors.New("analysis run not found")

// GitClient defines the git operations the pipeline needs.
// This allows the orchestration to be tested without needing a real git executable.
type GitClient interface {
	// --- Generic / Low-Level ---

	// Run executes a git command and returns its output.
	// Its use should be minimized in favor of the explicit methods below.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// --- Reference Resolution ---

	// GetRepoHash returns the current HEAD commit hash of the repository.
	GetRepoHash(ctx context.Context, repoPath string) (string, error)

	// GetRepoRoot returns the absolute path to the root of the Git repository
	// containing the given context path.
	GetRepoRoot(ctx context.Context, contextPath string) (string, error)

	// --- Activity Logs ---

	// WriteActivityLog streams the numstat history of the repository, oldest
	// commit first, into w. Zero times leave that side of the range open.
	WriteActivityLog(ctx context.Context, repoPath string, w io.Writer, startTime, endTime time.Time) error

	// --- File State ---

	// ListTrackedFiles returns all paths tracked in the index.
	ListTrackedFiles(ctx context.Context, repoPath string) ([]string, error)
}

// FileLister returns the set of paths that exist in a repository's working tree.
type FileLister interface {
	ListFiles(ctx context.Context, repoPath string) (map[string]struct{}, error)
}

// LineCounter returns language and line metadata for the given repository paths.
// Paths it cannot read are left out of the result.
type LineCounter interface {
	Count(ctx context.Context, repoPath string, paths []string) (map[string]schema.FileLines, error)
}

// --- Persistence ---

// RowStore is a batch-capable store for one result type. Rows are unique by
// run id plus the natural key of the type; saving an existing key replaces it.
type RowStore[T any] interface {
	SaveAll(ctx context.Context, rows []T) error
	FindAllByRunID(ctx context.Context, runID string) ([]T, error)
}

// RunStore tracks analysis runs.
type RunStore interface {
	// SaveRun inserts or replaces the run row.
	SaveRun(ctx context.Context, info schema.AnalysisInfo) error

	// GetRun returns ErrRunNotFound when no row exists for id.
	GetRun(ctx context.Context, id string) (schema.AnalysisInfo, error)

	// ListRuns returns all runs, newest first.
	ListRuns(ctx context.Context) ([]schema.AnalysisInfo, error)
}

// ResultStores groups the stores of one backend.
type ResultStores interface {
	Runs() RunStore
	Knowledge() RowStore[schema.FileKnowledge]
	Ownership() RowStore[schema.FileOwnership]
	Authors() RowStore[schema.AuthorStatistics]
	Trends() RowStore[schema.DailyStats]
	Files() RowStore[schema.FileInfo]

	// GetStatus returns status information about the store
	GetStatus(ctx context.Context) (schema.StoreStatus, error)

	// Close closes the underlying connection
	Close() error
}

// StoreManager hands out the active result stores.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetResultStores() ResultStores
}
