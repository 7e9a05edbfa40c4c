package core

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/huangsam/hotspotter/core/structure"
	"github.com/huangsam/hotspotter/internal/contract"
	"github.com/huangsam/hotspotter/schema"
)

// LatestRun selects the newest stored run wherever a run id is accepted.
const LatestRun = "latest"

var (
	// ErrRunNotFound is returned when no run row exists for the id.
	ErrRunNotFound = contract.ErrRunNotFound

	// ErrRunNotCompleted is returned by queries that need every analyzer's
	// output of a run.
	ErrRunNotCompleted = errors.New("analysis run has not completed")
)

// Results answers read queries over persisted runs. Every query first
// resolves the run so an unknown id is an error, not an empty result.
type Results struct {
	stores contract.ResultStores
}

// NewResults returns a query layer over stores.
func NewResults(stores contract.ResultStores) *Results {
	return &Results{stores: stores}
}

// Runs returns every stored run, newest first.
func (r *Results) Runs(ctx context.Context) ([]schema.AnalysisInfo, error) {
	return r.stores.Runs().ListRuns(ctx)
}

// Run returns the run row for id, or the newest run for LatestRun.
func (r *Results) Run(ctx context.Context, id string) (schema.AnalysisInfo, error) {
	if id == LatestRun || id == "" {
		runs, err := r.stores.Runs().ListRuns(ctx)
		if err != nil {
			return schema.AnalysisInfo{}, err
		}
		if len(runs) == 0 {
			return schema.AnalysisInfo{}, ErrRunNotFound
		}
		return runs[0], nil
	}
	return r.stores.Runs().GetRun(ctx, id)
}

// Knowledge returns the knowledge rows of a run, highest knowledge loss first.
func (r *Results) Knowledge(ctx context.Context, id string) ([]schema.FileKnowledge, error) {
	rows, err := rowsOf(ctx, r, id, r.stores.Knowledge())
	if err != nil {
		return nil, err
	}
	slices.SortFunc(rows, func(a, b schema.FileKnowledge) int {
		return cmp.Or(cmp.Compare(b.KnowledgeLoss, a.KnowledgeLoss), cmp.Compare(a.FilePath, b.FilePath))
	})
	return rows, nil
}

// Ownership returns the ownership rows of a run, most lines added first.
func (r *Results) Ownership(ctx context.Context, id string) ([]schema.FileOwnership, error) {
	rows, err := rowsOf(ctx, r, id, r.stores.Ownership())
	if err != nil {
		return nil, err
	}
	slices.SortFunc(rows, func(a, b schema.FileOwnership) int {
		return cmp.Or(cmp.Compare(b.LinesAdded, a.LinesAdded), cmp.Compare(a.FilePath, b.FilePath))
	})
	return rows, nil
}

// Authors returns the author rows of a run, most commits first.
func (r *Results) Authors(ctx context.Context, id string) ([]schema.AuthorStatistics, error) {
	rows, err := rowsOf(ctx, r, id, r.stores.Authors())
	if err != nil {
		return nil, err
	}
	slices.SortFunc(rows, func(a, b schema.AuthorStatistics) int {
		return cmp.Or(cmp.Compare(b.Commits, a.Commits), cmp.Compare(a.Name, b.Name))
	})
	return rows, nil
}

// Trends returns the daily rows of a run in calendar order.
func (r *Results) Trends(ctx context.Context, id string) ([]schema.DailyStats, error) {
	rows, err := rowsOf(ctx, r, id, r.stores.Trends())
	if err != nil {
		return nil, err
	}
	slices.SortFunc(rows, func(a, b schema.DailyStats) int {
		return a.Day.Compare(b.Day)
	})
	return rows, nil
}

// Files returns the file rows of a run, most commits first.
func (r *Results) Files(ctx context.Context, id string) ([]schema.FileInfo, error) {
	rows, err := rowsOf(ctx, r, id, r.stores.Files())
	if err != nil {
		return nil, err
	}
	slices.SortFunc(rows, func(a, b schema.FileInfo) int {
		return cmp.Or(cmp.Compare(b.TotalCommits, a.TotalCommits), cmp.Compare(a.FilePath, b.FilePath))
	})
	return rows, nil
}

// Structure builds the repository tree of a completed run.
func (r *Results) Structure(ctx context.Context, id string) (schema.StructureResponse, error) {
	info, err := r.Run(ctx, id)
	if err != nil {
		return schema.StructureResponse{}, err
	}
	if info.Status != schema.StatusCompleted {
		return schema.StructureResponse{}, fmt.Errorf("%w: %s is %s", ErrRunNotCompleted, info.ID, info.Status)
	}
	files, err := r.stores.Files().FindAllByRunID(ctx, info.ID)
	if err != nil {
		return schema.StructureResponse{}, err
	}
	knowledge, err := r.stores.Knowledge().FindAllByRunID(ctx, info.ID)
	if err != nil {
		return schema.StructureResponse{}, err
	}
	return structure.Build(files, knowledge), nil
}

// Limit returns at most n leading rows. A non-positive n keeps all rows.
func Limit[T any](rows []T, n int) []T {
	if n <= 0 || len(rows) <= n {
		return rows
	}
	return rows[:n]
}

func rowsOf[T any](ctx context.Context, r *Results, id string, store contract.RowStore[T]) ([]T, error) {
	info, err := r.Run(ctx, id)
	if err != nil {
		return nil, err
	}
	return store.FindAllByRunID(ctx, info.ID)
}
