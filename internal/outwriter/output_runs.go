package outwriter

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/hotspotter/internal/contract"
	"github.com/huangsam/hotspotter/schema"
)

var runsHeader = []string{
	"id", "repo", "status", "phase", "head", "commits", "skipped_blocks", "duration_ms", "reference_date", "analyzed_at",
}

// WriteRuns prints the run list.
func WriteRuns(runs []schema.AnalysisInfo, cfg *contract.Config) error {
	return dispatch(cfg, "runs", runs,
		func(w io.Writer, cfg *contract.Config) error { return writeRunsTable(w, runs, cfg) },
		func(w *csv.Writer, _ *contract.Config) error { return writeRunsCSV(w, runs) })
}

// WriteRunSummary prints the outcome of one run.
func WriteRunSummary(info schema.AnalysisInfo, cfg *contract.Config) error {
	return dispatch(cfg, "run summary", info,
		func(w io.Writer, cfg *contract.Config) error { return writeRunSummaryTable(w, info, cfg) },
		func(w *csv.Writer, _ *contract.Config) error { return writeRunsCSV(w, []schema.AnalysisInfo{info}) })
}

func writeRunsTable(w io.Writer, runs []schema.AnalysisInfo, cfg *contract.Config) error {
	table := newTable(w, "Run", "Repo", "Status", "Commits", "Duration", "Analyzed")
	data := make([][]string, 0, len(runs))
	for _, r := range runs {
		data = append(data, []string{
			r.ID,
			r.RepoName,
			statusLabel(r.Status, cfg),
			humanize.Comma(int64(r.CommitsProcessed)),
			(time.Duration(r.DurationMs) * time.Millisecond).String(),
			humanize.Time(r.AnalyzedAt),
		})
	}
	if err := renderTable(table, data); err != nil {
		return err
	}
	_, err := io.WriteString(w, "Showing "+strconv.Itoa(len(runs))+" runs\n")
	return err
}

func writeRunSummaryTable(w io.Writer, info schema.AnalysisInfo, cfg *contract.Config) error {
	if _, err := io.WriteString(w, heading("Analysis of "+info.RepoName, cfg)+"\n"); err != nil {
		return err
	}
	table := newTable(w, "Field", "Value")
	data := [][]string{
		{"Run ID", info.ID},
		{"Repository", info.RepoPath},
		{"HEAD", info.HeadHash},
		{"Status", statusLabel(info.Status, cfg)},
		{"Phase", string(info.Phase)},
		{"Range", rangeLabel(info.StartDate, info.EndDate)},
		{"Reference date", fmtDate(info.ReferenceDate)},
		{"Commits processed", humanize.Comma(int64(info.CommitsProcessed))},
		{"Skipped blocks", strconv.Itoa(info.SkippedBlocks)},
		{"Duration", (time.Duration(info.DurationMs) * time.Millisecond).String()},
	}
	if info.Error != "" {
		data = append(data, []string{"Error", info.Error})
	}
	return renderTable(table, data)
}

func writeRunsCSV(w *csv.Writer, runs []schema.AnalysisInfo) error {
	if err := w.Write(runsHeader); err != nil {
		return err
	}
	for _, r := range runs {
		rec := []string{
			r.ID,
			r.RepoName,
			string(r.Status),
			string(r.Phase),
			r.HeadHash,
			strconv.Itoa(r.CommitsProcessed),
			strconv.Itoa(r.SkippedBlocks),
			strconv.FormatInt(r.DurationMs, 10),
			fmtDate(r.ReferenceDate),
			r.AnalyzedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

func statusLabel(status schema.RunStatus, cfg *contract.Config) string {
	if !cfg.UseColors {
		return string(status)
	}
	switch status {
	case schema.StatusCompleted:
		return contract.ActiveColor.Sprint(status)
	case schema.StatusFailed:
		return contract.InactiveColor.Sprint(status)
	default:
		return contract.HotColor.Sprint(status)
	}
}

func rangeLabel(start, end time.Time) string {
	from, to := fmtDate(start), fmtDate(end)
	if from == "" {
		from = "beginning"
	}
	if to == "" {
		to = "HEAD"
	}
	return from + " .. " + to
}
