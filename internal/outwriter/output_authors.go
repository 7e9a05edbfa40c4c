package outwriter

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/hotspotter/internal/contract"
	"github.com/huangsam/hotspotter/schema"
)

// WriteAuthors prints author statistics.
func WriteAuthors(rows []schema.AuthorStatistics, cfg *contract.Config) error {
	return dispatch(cfg, "authors", rows,
		func(w io.Writer, cfg *contract.Config) error { return writeAuthorsTable(w, rows, cfg) },
		func(w *csv.Writer, _ *contract.Config) error { return writeAuthorsCSV(w, rows) })
}

func writeAuthorsTable(w io.Writer, rows []schema.AuthorStatistics, cfg *contract.Config) error {
	table := newTable(w, "Rank", "Author", "Status", "Commits", "Added", "Deleted", "Files", "Lead", "Last Commit")
	active := 0
	data := make([][]string, 0, len(rows))
	for i, r := range rows {
		if r.IsActive {
			active++
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			r.Name,
			activity(r.IsActive, cfg),
			humanize.Comma(int64(r.Commits)),
			humanize.Comma(int64(r.LinesAdded)),
			humanize.Comma(int64(r.LinesDeleted)),
			strconv.Itoa(r.UniqueFiles),
			strconv.Itoa(r.FilesAsLeadAuthor),
			fmtDate(r.LastCommitDate) + " (" + strconv.Itoa(r.DaysSinceLastCommit) + "d)",
		})
	}
	if err := renderTable(table, data); err != nil {
		return err
	}
	_, err := io.WriteString(w, "Showing "+strconv.Itoa(len(rows))+" authors ("+strconv.Itoa(active)+" active)\n")
	return err
}

func writeAuthorsCSV(w *csv.Writer, rows []schema.AuthorStatistics) error {
	header := []string{
		"rank", "name", "emails", "is_active", "commits", "lines_added", "lines_deleted", "unique_files",
		"files_as_lead_author", "first_commit_date", "last_commit_date", "days_since_first_commit",
		"months_since_first_commit", "days_since_last_commit", "months_since_last_commit",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for i, r := range rows {
		rec := []string{
			strconv.Itoa(i + 1),
			r.Name,
			strings.Join(r.Emails, "|"),
			strconv.FormatBool(r.IsActive),
			strconv.Itoa(r.Commits),
			strconv.Itoa(r.LinesAdded),
			strconv.Itoa(r.LinesDeleted),
			strconv.Itoa(r.UniqueFiles),
			strconv.Itoa(r.FilesAsLeadAuthor),
			fmtDate(r.FirstCommitDate),
			fmtDate(r.LastCommitDate),
			strconv.Itoa(r.DaysSinceFirstCommit),
			strconv.Itoa(r.MonthsSinceFirstCommit),
			strconv.Itoa(r.DaysSinceLastCommit),
			strconv.Itoa(r.MonthsSinceLastCommit),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}
