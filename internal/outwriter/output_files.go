package outwriter

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/huangsam/hotspotter/internal/contract"
	"github.com/huangsam/hotspotter/schema"
)

// WriteFiles prints per-file activity rows.
func WriteFiles(rows []schema.FileInfo, cfg *contract.Config) error {
	return dispatch(cfg, "files", rows,
		func(w io.Writer, cfg *contract.Config) error { return writeFilesTable(w, rows, cfg) },
		func(w *csv.Writer, _ *contract.Config) error { return writeFilesCSV(w, rows) })
}

func writeFilesTable(w io.Writer, rows []schema.FileInfo, cfg *contract.Config) error {
	table := newTable(w, "Rank", "Path", "Lang", "Commits", "Hot", "Year", "LOC", "Size", "Age", "Last")
	width := pathWidth(cfg, 80)
	data := make([][]string, 0, len(rows))
	for i, r := range rows {
		hot := strconv.Itoa(r.CommitsHotSpot)
		if cfg.UseColors && r.CommitsHotSpot > 0 {
			hot = contract.HotColor.Sprint(hot)
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncatePath(r.FilePath, width),
			r.Language,
			strconv.Itoa(r.TotalCommits),
			hot,
			strconv.Itoa(r.CommitsLastYear),
			strconv.Itoa(r.CodeLines),
			r.FileSize,
			strconv.Itoa(r.CodeAgeMonths) + "mo",
			fmtDate(r.LastCommitDate),
		})
	}
	if err := renderTable(table, data); err != nil {
		return err
	}
	_, err := io.WriteString(w, "Showing "+strconv.Itoa(len(rows))+" files by commits\n")
	return err
}

func writeFilesCSV(w *csv.Writer, rows []schema.FileInfo) error {
	header := []string{
		"rank", "file", "file_name", "language", "total_commits", "commits_last_month", "commits_last_year",
		"commits_hot_spot", "code_age_days", "code_age_months", "first_commit_date", "last_commit_date",
		"code_lines", "comment_lines", "blank_lines", "total_lines", "size_bytes",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for i, r := range rows {
		rec := []string{
			strconv.Itoa(i + 1),
			r.FilePath,
			r.FileName,
			r.Language,
			strconv.Itoa(r.TotalCommits),
			strconv.Itoa(r.CommitsLastMonth),
			strconv.Itoa(r.CommitsLastYear),
			strconv.Itoa(r.CommitsHotSpot),
			strconv.Itoa(r.CodeAgeDays),
			strconv.Itoa(r.CodeAgeMonths),
			fmtDate(r.FirstCommitDate),
			fmtDate(r.LastCommitDate),
			strconv.Itoa(r.CodeLines),
			strconv.Itoa(r.CommentLines),
			strconv.Itoa(r.BlankLines),
			strconv.Itoa(r.TotalLines),
			strconv.FormatInt(r.SizeBytes, 10),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}
