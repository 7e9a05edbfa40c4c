// Package cmd defines the command-line interface for hotspotter.
package cmd

import (
	"github.com/huangsam/hotspotter/internal/contract"
	"github.com/huangsam/hotspotter/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(structureCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	resultsCmd.AddCommand(resultsKnowledgeCmd)
	resultsCmd.AddCommand(resultsOwnershipCmd)
	resultsCmd.AddCommand(resultsAuthorsCmd)
	resultsCmd.AddCommand(resultsTrendsCmd)
	resultsCmd.AddCommand(resultsFilesCmd)

	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeExportCmd)
	storeCmd.AddCommand(storeMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or html (trends only)")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("backend", string(schema.SQLiteBackend), "Result store backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("db-connect", "", "Database connection string (SQLite file path, or DSN for mysql/postgresql)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// The mcp analyze_repository tool takes these from the config file, env or defaults.
	analyzeCmd.Flags().String("start", "", "Start date in ISO8601, YYYY-MM-DD or time ago")
	analyzeCmd.Flags().String("end", "", "End date in ISO8601, YYYY-MM-DD or time ago")
	analyzeCmd.Flags().String("reference-date", "", "Day that relative ages are measured from (defaults to end, then today)")
	analyzeCmd.Flags().Int("inactivity-months", contract.DefaultInactivityMonths, "Months without a commit before an author counts as inactive")
	analyzeCmd.Flags().Int("hotspot-months", contract.DefaultHotSpotMonths, "Trailing months counted as hot spot activity")
	analyzeCmd.Flags().String("trend-window", contract.DefaultTrendWindow, "Trailing window for active authors, like '30 days' or '3 months'")
	analyzeCmd.Flags().Bool("extend-trends", false, "Fill trend rows through the reference date")
	analyzeCmd.Flags().Int("batch-size", contract.DefaultBatchSize, "Rows per store write")
	analyzeCmd.Flags().String("log-dir", "", "Directory for the extracted activity log (defaults to the temp dir)")
	analyzeCmd.Flags().Bool("keep-log", false, "Keep the extracted activity log after the run")
	analyzeCmd.Flags().String("log-timeout", "", "Maximum time for log extraction, like 15m")
	analyzeCmd.Flags().String("metrics-file", "", "Write Prometheus metrics to this file after the run")
	if err := viper.BindPFlags(analyzeCmd.Flags()); err != nil {
		contract.LogFatal("Error binding analyze flags", err)
	}

	storeExportCmd.Flags().String("run-id", "", "Export only this run (defaults to every run)")
	if err := viper.BindPFlags(storeExportCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store export flags", err)
	}

	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store migrate flags", err)
	}
}
