// Package core runs the mining pipeline and answers queries over its
// persisted results.
package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/hotspotter/core/analyzer"
	"github.com/huangsam/hotspotter/core/logparse"
	"github.com/huangsam/hotspotter/internal/contract"
	"github.com/huangsam/hotspotter/internal/linecount"
	"github.com/huangsam/hotspotter/internal/metrics"
	"github.com/huangsam/hotspotter/schema"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Runner drives one analysis run: log extraction, the single pass over the
// commit stream, finish, enrich and run bookkeeping.
type Runner struct {
	client  contract.GitClient
	stores  contract.ResultStores
	lister  contract.FileLister
	counter contract.LineCounter

	// Progress, when set, is called as the run enters each phase.
	Progress func(phase schema.RunPhase)

	now   func() time.Time
	newID func() string
}

// NewRunner wires the collaborators of a run. lister and counter may be nil,
// which keeps every path and skips line counting.
func NewRunner(client contract.GitClient, stores contract.ResultStores, lister contract.FileLister, counter contract.LineCounter) *Runner {
	return &Runner{
		client:  client,
		stores:  stores,
		lister:  lister,
		counter: counter,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// NewLocalRunner wires a runner for a repository on local disk: tracked
// paths come from the index and line counts from the working tree.
func NewLocalRunner(client contract.GitClient, stores contract.ResultStores, workers int) *Runner {
	return NewRunner(client, stores, contract.NewIndexFileLister(client), linecount.New(workers))
}

// run is the mutable state of one Run call.
type run struct {
	info    schema.AnalysisInfo
	started time.Time
	log     *logrus.Entry
}

// Run analyzes cfg.RepoPath and returns the final run row. A failure to
// read the log marks the run failed and is returned; analyzer finish and
// enrich errors are logged and the run still completes.
func (r *Runner) Run(ctx context.Context, cfg *contract.Config) (schema.AnalysisInfo, error) {
	state, err := r.begin(ctx, cfg)
	if err != nil {
		return schema.AnalysisInfo{}, err
	}

	logPath := filepath.Join(cfg.LogDir, state.info.ID+".log")
	if !cfg.KeepLog {
		defer func() {
			if err := os.Remove(logPath); err != nil && !errors.Is(err, os.ErrNotExist) {
				contract.LogWarn("failed to remove activity log", err)
			}
		}()
	}

	phaseStart := r.enter(state, schema.PhaseProcessingData)
	if err := r.extractLog(ctx, cfg, logPath); err != nil {
		return r.fail(ctx, state, err)
	}
	metrics.ObservePhase(string(schema.PhaseProcessingData), phaseStart)

	phaseStart = r.enter(state, schema.PhaseAnalyzing)
	sessions, enrichers := r.startSessions(cfg, state.info)
	if err := r.consume(ctx, state, logPath, sessions); err != nil {
		return r.fail(ctx, state, err)
	}
	metrics.ObservePhase(string(schema.PhaseAnalyzing), phaseStart)

	phaseStart = r.enter(state, schema.PhaseGeneratingResults)
	for _, err := range r.finish(ctx, cfg.Workers, sessions) {
		state.log.WithError(err).Warn("analyzer finish failed")
	}
	metrics.ObservePhase(string(schema.PhaseGeneratingResults), phaseStart)

	phaseStart = r.enter(state, schema.PhaseFinalizing)
	for _, err := range r.enrich(ctx, enrichers) {
		state.log.WithError(err).Warn("analyzer enrich failed")
	}
	metrics.ObservePhase(string(schema.PhaseFinalizing), phaseStart)

	return r.complete(ctx, state)
}

// begin allocates the run id and saves the in-progress run row.
func (r *Runner) begin(ctx context.Context, cfg *contract.Config) (*run, error) {
	started := r.now()
	reference := cfg.ReferenceDate
	if reference.IsZero() {
		reference = contract.TruncateDay(started)
	}

	head, err := r.client.GetRepoHash(ctx, cfg.RepoPath)
	if err != nil {
		contract.LogWarn("failed to resolve HEAD", err)
	}

	info := schema.AnalysisInfo{
		ID:            r.newID(),
		RepoPath:      cfg.RepoPath,
		RepoName:      filepath.Base(cfg.RepoPath),
		HeadHash:      head,
		StartDate:     cfg.StartTime,
		EndDate:       cfg.EndTime,
		ReferenceDate: reference,
		AnalyzedAt:    started.UTC(),
		Status:        schema.StatusInProgress,
		Phase:         schema.PhaseProcessingData,
		SchemaVersion: schema.SchemaVersion,
	}
	if err := r.stores.Runs().SaveRun(ctx, info); err != nil {
		return nil, fmt.Errorf("failed to record analysis run: %w", err)
	}
	return &run{
		info:    info,
		started: started,
		log:     contract.Logger.WithField("run_id", info.ID),
	}, nil
}

// enter moves the run to phase and returns the phase start time. The run
// row is only rewritten at completion or failure.
func (r *Runner) enter(state *run, phase schema.RunPhase) time.Time {
	state.info.Phase = phase
	state.log.WithField("phase", phase).Info("entering phase")
	if r.Progress != nil {
		r.Progress(phase)
	}
	return r.now()
}

// extractLog writes the numstat history to logPath under the log timeout.
func (r *Runner) extractLog(ctx context.Context, cfg *contract.Config, logPath string) (err error) {
	timeout := cfg.LogTimeout
	if timeout <= 0 {
		timeout = contract.DefaultLogTimeout
	}
	logCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	file, err := os.Create(logPath)
	if err != nil {
		return fmt.Errorf("failed to create activity log: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close activity log: %w", closeErr)
		}
	}()

	if err := r.client.WriteActivityLog(logCtx, cfg.RepoPath, file, cfg.StartTime, cfg.EndTime); err != nil {
		return fmt.Errorf("failed to extract activity log: %w", err)
	}
	return nil
}

// startSessions starts the five analyzers for the run, in dispatch order.
func (r *Runner) startSessions(cfg *contract.Config, info schema.AnalysisInfo) ([]analyzer.Session, []analyzer.Enricher) {
	params := analyzer.RunParams{RunID: info.ID, RepoPath: cfg.RepoPath, ReferenceDate: info.ReferenceDate}
	s := r.stores

	knowledge := analyzer.NewKnowledge(s.Knowledge(), s.Authors(), r.lister, cfg.BatchSize).Start(params)
	ownership := analyzer.NewOwnership(s.Ownership(), r.lister, cfg.BatchSize).Start(params)
	authors := analyzer.NewAuthors(s.Authors(), s.Knowledge(), cfg.InactivityMonths, cfg.BatchSize).Start(params)
	trends := analyzer.NewActivityTrends(s.Trends(), analyzer.TrendsOptions{
		Window:            cfg.TrendWindow,
		Unit:              cfg.TrendWindowUnit,
		ExtendToReference: cfg.ExtendTrends,
	}, cfg.BatchSize).Start(params)
	files := analyzer.NewFileInfo(s.Files(), r.lister, r.counter, cfg.HotSpotMonths, cfg.BatchSize).Start(params)

	sessions := []analyzer.Session{knowledge, ownership, authors, trends, files}
	enrichers := []analyzer.Enricher{authors, knowledge}
	return sessions, enrichers
}

// consume parses the log once and hands every commit to every session.
func (r *Runner) consume(ctx context.Context, state *run, logPath string, sessions []analyzer.Session) error {
	it, err := logparse.Open(logPath)
	if err != nil {
		return err
	}
	err = logparse.ForEach(it, func(commit schema.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, s := range sessions {
			s.ProcessCommit(&commit)
		}
		state.info.CommitsProcessed++
		return nil
	})
	state.info.SkippedBlocks = it.Skipped()
	metrics.CommitsParsed.Add(float64(state.info.CommitsProcessed))
	metrics.BlocksSkipped.Add(float64(state.info.SkippedBlocks))
	if err != nil {
		return fmt.Errorf("failed to read activity log: %w", err)
	}
	return nil
}

// finish runs every session's Finish with at most workers in flight. A
// failing session does not stop the others.
func (r *Runner) finish(ctx context.Context, workers int, sessions []analyzer.Session) []error {
	var (
		mu   sync.Mutex
		errs []error
	)
	var g errgroup.Group
	g.SetLimit(max(workers, 1))
	for _, s := range sessions {
		g.Go(func() error {
			if err := s.Finish(ctx); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errs
}

// enrich runs the enrich pass. The enrichers read only finished rows of
// other analyzers, never each other's enriched fields, so they run together.
func (r *Runner) enrich(ctx context.Context, enrichers []analyzer.Enricher) []error {
	var (
		mu   sync.Mutex
		errs []error
	)
	var g errgroup.Group
	for _, e := range enrichers {
		g.Go(func() error {
			if err := e.Enrich(ctx); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errs
}

func (r *Runner) complete(ctx context.Context, state *run) (schema.AnalysisInfo, error) {
	state.info.Status = schema.StatusCompleted
	state.info.Phase = schema.PhaseCompleted
	state.info.DurationMs = r.now().Sub(state.started).Milliseconds()
	metrics.Runs.WithLabelValues(string(schema.StatusCompleted)).Inc()
	if r.Progress != nil {
		r.Progress(schema.PhaseCompleted)
	}
	if err := r.stores.Runs().SaveRun(ctx, state.info); err != nil {
		return state.info, fmt.Errorf("failed to record completed run: %w", err)
	}
	state.log.WithField("commits", state.info.CommitsProcessed).WithField("skipped", state.info.SkippedBlocks).Info("analysis completed")
	return state.info, nil
}

// fail records cause on the run row and returns it. The row is saved with
// a fresh context so a canceled run is still marked failed.
func (r *Runner) fail(ctx context.Context, state *run, cause error) (schema.AnalysisInfo, error) {
	state.info.Status = schema.StatusFailed
	state.info.Error = cause.Error()
	state.info.DurationMs = r.now().Sub(state.started).Milliseconds()
	metrics.Runs.WithLabelValues(string(schema.StatusFailed)).Inc()
	state.log.WithError(cause).WithField("phase", state.info.Phase).Error("analysis failed")

	if err := r.stores.Runs().SaveRun(context.WithoutCancel(ctx), state.info); err != nil {
		return state.info, errors.Join(cause, fmt.Errorf("failed to record failed run: %w", err))
	}
	return state.info, cause
}
