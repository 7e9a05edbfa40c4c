package cmd

import (
	"context"

	"github.com/huangsam/hotspotter/core"
	"github.com/huangsam/hotspotter/internal/contract"
	"github.com/huangsam/hotspotter/internal/outwriter"
	"github.com/spf13/cobra"
)

// resultsCmd groups the per-analyzer queries of a stored run.
var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Show the stored results of an analysis run.",
	Long: `Query one analyzer's rows for a run. The run id defaults to 'latest'.

Examples:
  # Files most at risk of knowledge loss in the newest run
  hotspotter results knowledge

  # Authors of a specific run as CSV
  hotspotter results authors 3f1c... --output csv --output-file authors.csv

  # Activity trends as an interactive chart
  hotspotter results trends --output html --output-file trends.html`,
}

var resultsKnowledgeCmd = resultCommand("knowledge", "Files ranked by knowledge loss.",
	func(ctx context.Context, r *core.Results, id string) error {
		rows, err := r.Knowledge(ctx, id)
		if err != nil {
			return err
		}
		return outwriter.WriteKnowledge(core.Limit(rows, cfg.ResultLimit), cfg)
	})

var resultsOwnershipCmd = resultCommand("ownership", "Files with their lead authors, most changed first.",
	func(ctx context.Context, r *core.Results, id string) error {
		rows, err := r.Ownership(ctx, id)
		if err != nil {
			return err
		}
		return outwriter.WriteOwnership(core.Limit(rows, cfg.ResultLimit), cfg)
	})

var resultsAuthorsCmd = resultCommand("authors", "Author activity, most commits first.",
	func(ctx context.Context, r *core.Results, id string) error {
		rows, err := r.Authors(ctx, id)
		if err != nil {
			return err
		}
		return outwriter.WriteAuthors(core.Limit(rows, cfg.ResultLimit), cfg)
	})

// Trends are a time series, so the limit does not apply.
var resultsTrendsCmd = resultCommand("trends", "Daily commits and active authors.",
	func(ctx context.Context, r *core.Results, id string) error {
		rows, err := r.Trends(ctx, id)
		if err != nil {
			return err
		}
		return outwriter.WriteTrends(rows, cfg)
	})

var resultsFilesCmd = resultCommand("files", "File activity, age and size, most commits first.",
	func(ctx context.Context, r *core.Results, id string) error {
		rows, err := r.Files(ctx, id)
		if err != nil {
			return err
		}
		return outwriter.WriteFiles(core.Limit(rows, cfg.ResultLimit), cfg)
	})

// structureCmd prints the repository tree of a completed run.
var structureCmd = resultCommand("structure", "Print the repository tree of a completed run as JSON.",
	func(ctx context.Context, r *core.Results, id string) error {
		resp, err := r.Structure(ctx, id)
		if err != nil {
			return err
		}
		return outwriter.WriteStructure(resp, cfg)
	})

// resultCommand builds a query command taking an optional run id.
func resultCommand(name, short string, query func(context.Context, *core.Results, string) error) *cobra.Command {
	return &cobra.Command{
		Use:     name + " [run-id]",
		Short:   short,
		Args:    cobra.MaximumNArgs(1),
		PreRunE: querySetupWrapper,
		Run: func(_ *cobra.Command, args []string) {
			runID := core.LatestRun
			if len(args) == 1 {
				runID = args[0]
			}
			if err := query(rootCtx, core.NewResults(storeManager.GetResultStores()), runID); err != nil {
				contract.LogFatal("Cannot show "+name, err)
			}
		},
	}
}
