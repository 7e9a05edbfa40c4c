package iocache

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/hotspotter/internal/contract"
	"github.com/huangsam/hotspotter/internal/parquet"
	"github.com/huangsam/hotspotter/schema"
	"golang.org/x/sync/errgroup"
)

// ExportFile is one Parquet file written by ExportResults.
type ExportFile struct {
	Table string
	Path  string
	Rows  int
}

// ExportResults writes every result table to "<prefix>.<table>.parquet".
// When runID is set only that run is exported; otherwise all runs are.
func ExportResults(ctx context.Context, stores contract.ResultStores, prefix, runID string) ([]ExportFile, error) {
	if prefix == "" {
		return nil, errors.New("--output-file is required for export command")
	}

	runs, err := exportRuns(ctx, stores.Runs(), runID)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, errors.New("no analysis data found to export")
	}
	ids := make([]string, len(runs))
	for i, r := range runs {
		ids[i] = r.ID
	}

	var (
		knowledge []schema.FileKnowledge
		ownership []schema.FileOwnership
		authors   []schema.AuthorStatistics
		trends    []schema.DailyStats
		files     []schema.FileInfo
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { knowledge, err = collect(gctx, stores.Knowledge(), ids); return })
	g.Go(func() (err error) { ownership, err = collect(gctx, stores.Ownership(), ids); return })
	g.Go(func() (err error) { authors, err = collect(gctx, stores.Authors(), ids); return })
	g.Go(func() (err error) { trends, err = collect(gctx, stores.Trends(), ids); return })
	g.Go(func() (err error) { files, err = collect(gctx, stores.Files(), ids); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	exports := []ExportFile{
		{Table: analysesTable, Rows: len(runs)},
		{Table: knowledgeTable, Rows: len(knowledge)},
		{Table: ownershipTable, Rows: len(ownership)},
		{Table: authorsTable, Rows: len(authors)},
		{Table: trendsTable, Rows: len(trends)},
		{Table: fileInfoTable, Rows: len(files)},
	}
	for i := range exports {
		exports[i].Path = fmt.Sprintf("%s.%s.parquet", prefix, exports[i].Table)
	}

	var wg errgroup.Group
	wg.Go(func() error { return parquet.WriteFile(parquet.ConvertAnalysisRuns(runs), exports[0].Path) })
	wg.Go(func() error { return parquet.WriteFile(parquet.ConvertFileKnowledge(knowledge), exports[1].Path) })
	wg.Go(func() error { return parquet.WriteFile(parquet.ConvertFileOwnership(ownership), exports[2].Path) })
	wg.Go(func() error { return parquet.WriteFile(parquet.ConvertAuthorStatistics(authors), exports[3].Path) })
	wg.Go(func() error { return parquet.WriteFile(parquet.ConvertDailyStats(trends), exports[4].Path) })
	wg.Go(func() error { return parquet.WriteFile(parquet.ConvertFileInfo(files), exports[5].Path) })
	if err := wg.Wait(); err != nil {
		return nil, fmt.Errorf("failed to write parquet export: %w", err)
	}
	return exports, nil
}

// PrintExportSummary lists the written files.
func PrintExportSummary(w io.Writer, exports []ExportFile) {
	for _, e := range exports {
		_, _ = fmt.Fprintf(w, "Exported %d rows of %s to: %s\n", e.Rows, e.Table, e.Path)
	}
	_, _ = fmt.Fprintln(w, "\nExport complete! The Parquet files can be read with DuckDB, Spark, Arrow or pandas.")
}

func exportRuns(ctx context.Context, runs contract.RunStore, runID string) ([]schema.AnalysisInfo, error) {
	if runID == "" {
		all, err := runs.ListRuns(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve analysis runs: %w", err)
		}
		return all, nil
	}
	run, err := runs.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	return []schema.AnalysisInfo{run}, nil
}

func collect[T any](ctx context.Context, store contract.RowStore[T], runIDs []string) ([]T, error) {
	var out []T
	for _, id := range runIDs {
		rows, err := store.FindAllByRunID(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}
