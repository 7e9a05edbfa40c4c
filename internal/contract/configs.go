package contract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/huangsam/hotspotter/schema"
)

// Default values for configuration.
const (
	DefaultInactivityMonths = 6
	DefaultHotSpotMonths    = 6
	DefaultTrendWindow      = "3 months"
	DefaultBatchSize        = 500
	DefaultLogTimeout       = 15 * time.Minute
	DefaultResultLimit      = 50
	MaxResultLimit          = 10000
	DefaultPrecision        = 1
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.NumCPU()

// Config holds the runtime configuration for the analysis.
// This struct remains the "final, validated" config.
type Config struct {
	RepoPath  string
	StartTime time.Time // zero means the start of history
	EndTime   time.Time // zero means up to HEAD

	// ReferenceDate is the frozen "now" for every relative-time computation
	// of a run, truncated to a UTC calendar day.
	ReferenceDate time.Time

	InactivityMonths int
	HotSpotMonths    int
	TrendWindow      int
	TrendWindowUnit  schema.WindowUnit
	ExtendTrends     bool

	BatchSize  int
	Workers    int
	LogDir     string
	KeepLog    bool
	LogTimeout time.Duration

	Backend   schema.DatabaseBackend
	DBConnect string // Please use env var as this is plaintext

	Output      schema.OutputMode
	OutputFile  string
	ResultLimit int
	Precision   int
	Width       int // Terminal width override (0 = auto-detect)
	UseColors   bool

	LogLevel    string
	MetricsFile string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	RepoPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	OutputFile string `mapstructure:"output-file"`
	Output     string `mapstructure:"output"`
	Limit      int    `mapstructure:"limit"`
	Precision  int    `mapstructure:"precision"`
	Width      int    `mapstructure:"width"`
	Color      string `mapstructure:"color"`
	Backend    string `mapstructure:"backend"`
	DBConnect  string `mapstructure:"db-connect"`
	LogLevel   string `mapstructure:"log-level"`
	Workers    int    `mapstructure:"workers"`

	// --- Fields from analyzeCmd.Flags() ---
	Start            string `mapstructure:"start"`
	End              string `mapstructure:"end"`
	ReferenceDate    string `mapstructure:"reference-date"`
	InactivityMonths int    `mapstructure:"inactivity-months"`
	HotSpotMonths    int    `mapstructure:"hotspot-months"`
	TrendWindow      string `mapstructure:"trend-window"`
	ExtendTrends     bool   `mapstructure:"extend-trends"`
	BatchSize        int    `mapstructure:"batch-size"`
	LogDir           string `mapstructure:"log-dir"`
	KeepLog          bool   `mapstructure:"keep-log"`
	LogTimeout       string `mapstructure:"log-timeout"`
	MetricsFile      string `mapstructure:"metrics-file"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct. The repository path is only resolved
// when input.RepoPathStr is set.
func ProcessAndValidate(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateAnalysisInputs(cfg, input); err != nil {
		return err
	}
	if err := processTimeRange(cfg, input, time.Now()); err != nil {
		return err
	}
	if input.RepoPathStr == "" {
		return nil
	}
	return resolveGitPath(ctx, cfg, client, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs processes and validates the presentation and storage fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.MetricsFile = input.MetricsFile

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, html", cfg.Output)
	}

	if err := SetLogLevel(input.LogLevel); err != nil {
		return err
	}
	cfg.LogLevel = input.LogLevel

	cfg.Backend = schema.DatabaseBackend(strings.ToLower(input.Backend))
	if _, ok := schema.ValidDatabaseBackends[cfg.Backend]; !ok {
		return fmt.Errorf("invalid backend '%s'. must be sqlite, mysql, postgresql, none", input.Backend)
	}
	cfg.DBConnect = input.DBConnect
	return ValidateDatabaseConnectionString(cfg.Backend, cfg.DBConnect)
}

// validateAnalysisInputs validates the analyzer tuning fields.
func validateAnalysisInputs(cfg *Config, input *ConfigRawInput) error {
	if input.InactivityMonths < 1 {
		return fmt.Errorf("inactivity-months must be at least 1 (received %d)", input.InactivityMonths)
	}
	cfg.InactivityMonths = input.InactivityMonths

	if input.HotSpotMonths < 1 {
		return fmt.Errorf("hotspot-months must be at least 1 (received %d)", input.HotSpotMonths)
	}
	cfg.HotSpotMonths = input.HotSpotMonths

	window, unit, err := ParseWindow(input.TrendWindow)
	if err != nil {
		return fmt.Errorf("invalid --trend-window: %w", err)
	}
	cfg.TrendWindow = window
	cfg.TrendWindowUnit = unit
	cfg.ExtendTrends = input.ExtendTrends

	if input.BatchSize < 1 {
		return fmt.Errorf("batch-size must be at least 1 (received %d)", input.BatchSize)
	}
	cfg.BatchSize = input.BatchSize

	cfg.LogDir = input.LogDir
	if cfg.LogDir == "" {
		cfg.LogDir = os.TempDir()
	}
	cfg.KeepLog = input.KeepLog

	cfg.LogTimeout = DefaultLogTimeout
	if input.LogTimeout != "" {
		timeout, err := time.ParseDuration(input.LogTimeout)
		if err != nil || timeout <= 0 {
			return fmt.Errorf("invalid --log-timeout %q: expected a positive duration like 15m", input.LogTimeout)
		}
		cfg.LogTimeout = timeout
	}
	return nil
}

// ParseDate accepts RFC3339, a plain calendar day, or "N [units] ago".
func ParseDate(s string, now time.Time) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(DateFormat, s); err == nil {
		return t, nil
	}
	t, err := ParseRelativeTime(s, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q. Expected ISO8601, YYYY-MM-DD or 'N [units] ago'", s)
	}
	return t, nil
}

// processTimeRange handles the date parsing, time range validation and the
// frozen reference date.
func processTimeRange(cfg *Config, input *ConfigRawInput, now time.Time) error {
	cfg.StartTime = time.Time{}
	cfg.EndTime = time.Time{}

	if input.Start != "" {
		t, err := ParseDate(input.Start, now)
		if err != nil {
			return fmt.Errorf("invalid start: %w", err)
		}
		cfg.StartTime = t
	}
	if input.End != "" {
		t, err := ParseDate(input.End, now)
		if err != nil {
			return fmt.Errorf("invalid end: %w", err)
		}
		cfg.EndTime = t
	}

	if !cfg.StartTime.IsZero() && !cfg.EndTime.IsZero() && cfg.StartTime.After(cfg.EndTime) {
		return fmt.Errorf("start time (%s) cannot be after end time (%s)", cfg.StartTime.Format(DateFormat), cfg.EndTime.Format(DateFormat))
	}

	switch {
	case input.ReferenceDate != "":
		t, err := ParseDate(input.ReferenceDate, now)
		if err != nil {
			return fmt.Errorf("invalid reference-date: %w", err)
		}
		cfg.ReferenceDate = TruncateDay(t)
	case !cfg.EndTime.IsZero():
		cfg.ReferenceDate = TruncateDay(cfg.EndTime)
	default:
		cfg.ReferenceDate = TruncateDay(now)
	}
	return nil
}

// resolveGitPath resolves the Git repository root from the user-provided path.
func resolveGitPath(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	absSearchPath, err := filepath.Abs(input.RepoPathStr)
	if err != nil {
		return err
	}
	absSearchPath = filepath.Clean(absSearchPath)

	gitContextPath := absSearchPath
	if info, statErr := os.Stat(absSearchPath); statErr == nil && !info.IsDir() {
		gitContextPath = filepath.Dir(absSearchPath)
	}

	gitRoot, err := client.GetRepoRoot(ctx, gitContextPath)
	if err != nil {
		return err
	}
	cfg.RepoPath = gitRoot
	return nil
}
