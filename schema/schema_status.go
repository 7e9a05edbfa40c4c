package schema

import "time"

// AnalysisInfo is the run row. It is written at the start of a run and
// rewritten when the run completes or fails.
type AnalysisInfo struct {
	ID               string    `json:"id"`
	RepoPath         string    `json:"repo_path"`
	RepoName         string    `json:"repo_name"`
	HeadHash         string    `json:"head_hash"`
	StartDate        time.Time `json:"start_date"` // zero when unbounded
	EndDate          time.Time `json:"end_date"`   // zero when unbounded
	ReferenceDate    time.Time `json:"reference_date"`
	AnalyzedAt       time.Time `json:"analyzed_at"`
	Status           RunStatus `json:"status"`
	Phase            RunPhase  `json:"phase"`
	Error            string    `json:"error,omitempty"`
	DurationMs       int64     `json:"duration_ms"`
	CommitsProcessed int       `json:"commits_processed"`
	SkippedBlocks    int       `json:"skipped_blocks"`
	SchemaVersion    int       `json:"schema_version"`
}

// StoreStatus represents the status of the result store.
type StoreStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalRuns     int              `json:"total_runs"`
	LastRunID     string           `json:"last_run_id"`
	LastRunTime   time.Time        `json:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}
