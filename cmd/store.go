package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/huangsam/hotspotter/internal/contract"
	"github.com/huangsam/hotspotter/internal/iocache"
	"github.com/huangsam/hotspotter/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// storeSetup loads the backend settings only. It does not open the stores,
// so clear and migrate can work on a fresh or broken database.
func storeSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}
	if err := contract.SetLogLevel(viper.GetString("log-level")); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(strings.ToLower(viper.GetString("backend")))
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return fmt.Errorf("invalid backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	connStr := viper.GetString("db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.Backend = backend
	cfg.DBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// storeOpenSetup loads the backend settings and opens the stores.
func storeOpenSetup(_ *cobra.Command, _ []string) error {
	if err := storeSetup(); err != nil {
		return err
	}
	if err := iocache.InitStores(cfg.Backend, cfg.DBConnect); err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}
	return nil
}

func storeSetupWrapper(_ *cobra.Command, _ []string) error {
	return storeSetup()
}

// sqliteFile is the database file a sqlite backend uses.
func sqliteFile() string {
	if cfg.DBConnect != "" {
		return cfg.DBConnect
	}
	return contract.GetDBFilePath()
}

// storeCmd focused on result store management.
//
// Note: Store subcommands use minimal initialization instead of the full
// sharedSetup. This avoids Git repo validation and config processing for
// simple store operations.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the result store",
	Long: `Manage the database that holds analysis runs and their results.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (in-memory)

Subcommands:
  status  - Show run counts, table sizes and connection info
  clear   - Remove all stored results
  export  - Export results to Parquet for analytics
  migrate - Run database schema migrations`,
}

// storeStatusCmd shows store status.
var storeStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display store statistics and connection details",
	PreRunE: storeOpenSetup,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := storeManager.GetResultStores().GetStatus(rootCtx)
		if err != nil {
			contract.LogFatal("Failed to get store status", err)
		}
		iocache.PrintStoreStatus(os.Stdout, status)
	},
}

// storeClearCmd clears all stored results.
var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored analysis runs and results",
	Long: `Delete every stored run and result row.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the result tables

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  hotspotter store export --output-file backup
  hotspotter store clear`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearStores(cfg.Backend, sqliteFile(), cfg.DBConnect); err != nil {
			contract.LogFatal("Failed to clear stored results", err)
		}
		fmt.Println("Stored results cleared successfully.")
	},
}

// storeExportCmd exports stored results to Parquet files.
var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored results to Parquet for BI tools and analytics",
	Long: `Export runs and result rows to one Parquet file per table.

Files are named <output-file>.<table>.parquet for the tables analyses,
knowledge, ownership, authors, trends and file_info.

Requires: --output-file parameter

Examples:
  # Export every run
  hotspotter store export --output-file hotspotter

  # Query with DuckDB
  duckdb -c "SELECT * FROM read_parquet('hotspotter.knowledge.parquet') LIMIT 10"`,
	PreRunE: storeOpenSetup,
	Run: func(_ *cobra.Command, _ []string) {
		exports, err := iocache.ExportResults(rootCtx, storeManager.GetResultStores(), cfg.OutputFile, viper.GetString("run-id"))
		if err != nil {
			contract.LogFatal("Failed to export stored results", err)
		}
		iocache.PrintExportSummary(os.Stdout, exports)
	},
}

// storeMigrateCmd runs database migrations for the result store.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the result store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  hotspotter store migrate

  # Rollback to initial state
  hotspotter store migrate --target-version 0`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		connStr := cfg.DBConnect
		if cfg.Backend == schema.SQLiteBackend {
			connStr = sqliteFile()
		}
		res, err := iocache.Migrate(cfg.Backend, connStr, viper.GetInt("target-version"))
		if err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
		if !res.Changed {
			fmt.Printf("Schema already at version %d.\n", res.To)
			return
		}
		fmt.Printf("Migrated schema from version %d to %d.\n", res.From, res.To)
	},
}
