package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for persisted results.
	DatabaseBackend string

	// RunStatus represents the lifecycle state of an analysis run.
	RunStatus string

	// RunPhase represents the pipeline phase an analysis run is in.
	RunPhase string

	// WindowUnit is the unit of the trailing active-author window.
	WindowUnit string
)

// All output modes supported.
const (
	CSVOut  OutputMode = "csv"
	TextOut OutputMode = "text" // default
	JSONOut OutputMode = "json"
	HTMLOut OutputMode = "html" // trends only
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All run statuses.
const (
	StatusInProgress RunStatus = "in_progress"
	StatusCompleted  RunStatus = "completed"
	StatusFailed     RunStatus = "failed"
)

// Pipeline phases in the order a run visits them.
const (
	PhaseProcessingData    RunPhase = "processing_data"
	PhaseAnalyzing         RunPhase = "analyzing"
	PhaseGeneratingResults RunPhase = "generating_results"
	PhaseFinalizing        RunPhase = "finalizing"
	PhaseCompleted         RunPhase = "completed"
)

// Window units.
const (
	WindowDays   WindowUnit = "days"
	WindowMonths WindowUnit = "months"
)

// SchemaVersion is stamped on every analysis run row so readers can detect
// rows written by an older layout of the result tables.
const SchemaVersion = 1

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:  {},
	TextOut: {},
	JSONOut: {},
	HTMLOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidWindowUnits lists all valid window units.
var ValidWindowUnits = map[WindowUnit]struct{}{
	WindowDays:   {},
	WindowMonths: {},
}
