package cmd

import (
	"github.com/huangsam/hotspotter/core"
	"github.com/huangsam/hotspotter/internal/contract"
	"github.com/huangsam/hotspotter/internal/metrics"
	"github.com/huangsam/hotspotter/internal/outwriter"
	"github.com/huangsam/hotspotter/schema"
	"github.com/spf13/cobra"
)

// analyzeCmd runs the mining pipeline over a repository.
var analyzeCmd = &cobra.Command{
	Use:   "analyze [repo-path]",
	Short: "Mine a repository's history and store the results as a new run.",
	Long: `Extract the numstat history of a repository and run every analyzer over it in one pass.

Each run stores:
- Knowledge concentration and knowledge loss per file
- Ownership with co-equal lead authors per file
- Author activity, including who is no longer active
- Gap-filled daily trends with trailing-window active authors
- File activity, age and line counts

The run id printed at the end is what the results commands take.

Examples:
  # Analyze the current repository
  hotspotter analyze

  # Only the last year, measured against a fixed day
  hotspotter analyze --start "1 year ago" --reference-date 2025-01-01

  # Keep results in memory and print the summary as JSON
  hotspotter analyze --backend none --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: repoSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runner := core.NewLocalRunner(contract.NewLocalGitClient(), storeManager.GetResultStores(), cfg.Workers)
		runner.Progress = func(phase schema.RunPhase) {
			contract.Logger.WithField("repo", cfg.RepoPath).Debugf("phase %s", phase)
		}
		info, err := runner.Run(rootCtx, cfg)
		if cfg.MetricsFile != "" {
			if mErr := metrics.WriteFile(cfg.MetricsFile); mErr != nil {
				contract.LogWarn("Failed to write metrics", mErr)
			}
		}
		if err != nil {
			contract.LogFatal("Analysis failed", err)
		}
		if err := outwriter.WriteRunSummary(info, cfg); err != nil {
			contract.LogFatal("Cannot write run summary", err)
		}
	},
}

// runsCmd lists stored runs.
var runsCmd = &cobra.Command{
	Use:     "runs",
	Short:   "List stored analysis runs, newest first.",
	Args:    cobra.NoArgs,
	PreRunE: querySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runs, err := core.NewResults(storeManager.GetResultStores()).Runs(rootCtx)
		if err != nil {
			contract.LogFatal("Cannot list runs", err)
		}
		if err := outwriter.WriteRuns(core.Limit(runs, cfg.ResultLimit), cfg); err != nil {
			contract.LogFatal("Cannot write runs", err)
		}
	},
}
