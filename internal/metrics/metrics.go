// Package metrics holds the prometheus collectors for analysis runs.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry is the private registry every collector below is registered on.
var Registry = prometheus.NewRegistry()

var (
	// Runs counts finished runs by final status.
	Runs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hotspotter",
		Name:      "runs_total",
		Help:      "Analysis runs by final status.",
	}, []string{"status"})

	// CommitsParsed counts commits handed to the analyzers.
	CommitsParsed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "hotspotter",
		Name:      "commits_parsed_total",
		Help:      "Commits read from activity logs.",
	})

	// BlocksSkipped counts malformed log blocks.
	BlocksSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "hotspotter",
		Name:      "log_blocks_skipped_total",
		Help:      "Log blocks dropped because their header did not parse.",
	})

	// RowsPersisted counts result rows saved per table.
	RowsPersisted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hotspotter",
		Name:      "rows_persisted_total",
		Help:      "Result rows written, by table.",
	}, []string{"table"})

	// BatchFailures counts failed batch writes per table.
	BatchFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hotspotter",
		Name:      "batch_failures_total",
		Help:      "Batch writes that failed, by table.",
	}, []string{"table"})

	// PhaseDuration observes how long each pipeline phase took.
	PhaseDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hotspotter",
		Name:      "phase_duration_seconds",
		Help:      "Wall time per pipeline phase.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
	}, []string{"phase"})
)

func init() {
	Registry.MustRegister(
		Runs, CommitsParsed, BlocksSkipped, RowsPersisted, BatchFailures, PhaseDuration,
		collectors.NewGoCollector(),
	)
}

// ObservePhase records the time since start under phase.
func ObservePhase(phase string, start time.Time) {
	PhaseDuration.WithLabelValues(phase).Observe(time.Since(start).Seconds())
}

// WriteFile dumps the registry in the text exposition format, which is
// what the node_exporter textfile collector reads.
func WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
