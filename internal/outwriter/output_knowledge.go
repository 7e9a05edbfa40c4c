package outwriter

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/hotspotter/internal/contract"
	"github.com/huangsam/hotspotter/schema"
)

// WriteKnowledge prints knowledge concentration rows.
func WriteKnowledge(rows []schema.FileKnowledge, cfg *contract.Config) error {
	return dispatch(cfg, "knowledge", rows,
		func(w io.Writer, cfg *contract.Config) error { return writeKnowledgeTable(w, rows, cfg) },
		func(w *csv.Writer, cfg *contract.Config) error { return writeKnowledgeCSV(w, rows, cfg) })
}

// WriteOwnership prints ownership rows.
func WriteOwnership(rows []schema.FileOwnership, cfg *contract.Config) error {
	return dispatch(cfg, "ownership", rows,
		func(w io.Writer, cfg *contract.Config) error { return writeOwnershipTable(w, rows, cfg) },
		func(w *csv.Writer, _ *contract.Config) error { return writeOwnershipCSV(w, rows) })
}

func writeKnowledgeTable(w io.Writer, rows []schema.FileKnowledge, cfg *contract.Config) error {
	table := newTable(w, "Rank", "Path", "Lead", "Lead %", "Contrib", "Active", "Loss %", "Commits")
	width := pathWidth(cfg, 75)
	data := make([][]string, 0, len(rows))
	for i, r := range rows {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncatePath(r.FilePath, width),
			leadLabel(r.LeadAuthor),
			fmtFloat(r.LeadAuthorPercentage, cfg.Precision),
			strconv.Itoa(r.Contributors),
			strconv.Itoa(r.ActiveContributors),
			fmtFloat(r.KnowledgeLoss, cfg.Precision),
			strconv.Itoa(r.Commits),
		})
	}
	if err := renderTable(table, data); err != nil {
		return err
	}
	_, err := io.WriteString(w, "Showing "+strconv.Itoa(len(rows))+" files by knowledge loss\n")
	return err
}

func writeKnowledgeCSV(w *csv.Writer, rows []schema.FileKnowledge, cfg *contract.Config) error {
	header := []string{
		"rank", "file", "lead_author", "lead_author_percentage", "contributors",
		"active_contributors", "knowledge_loss", "lines_added", "commits",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for i, r := range rows {
		rec := []string{
			strconv.Itoa(i + 1),
			r.FilePath,
			r.LeadAuthor,
			fmtFloat(r.LeadAuthorPercentage, cfg.Precision),
			strconv.Itoa(r.Contributors),
			strconv.Itoa(r.ActiveContributors),
			fmtFloat(r.KnowledgeLoss, cfg.Precision),
			strconv.Itoa(r.LinesAdded),
			strconv.Itoa(r.Commits),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

func writeOwnershipTable(w io.Writer, rows []schema.FileOwnership, cfg *contract.Config) error {
	table := newTable(w, "Rank", "Path", "Owners", "Contrib", "Lines", "Commits")
	width := pathWidth(cfg, 60)
	data := make([][]string, 0, len(rows))
	for i, r := range rows {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncatePath(r.FilePath, width),
			ownersLabel(r.LeadAuthors),
			strconv.Itoa(r.Contributors),
			strconv.Itoa(r.LinesAdded),
			strconv.Itoa(r.Commits),
		})
	}
	if err := renderTable(table, data); err != nil {
		return err
	}
	_, err := io.WriteString(w, "Showing "+strconv.Itoa(len(rows))+" files by ownership\n")
	return err
}

func writeOwnershipCSV(w *csv.Writer, rows []schema.FileOwnership) error {
	if err := w.Write([]string{"rank", "file", "lead_authors", "contributors", "lines_added", "commits"}); err != nil {
		return err
	}
	for i, r := range rows {
		rec := []string{
			strconv.Itoa(i + 1),
			r.FilePath,
			strings.Join(r.LeadAuthors, "|"),
			strconv.Itoa(r.Contributors),
			strconv.Itoa(r.LinesAdded),
			strconv.Itoa(r.Commits),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

func leadLabel(lead string) string {
	if lead == "" {
		return "-"
	}
	return lead
}

// ownersLabel shows up to two owners and counts the rest.
func ownersLabel(owners []string) string {
	switch {
	case len(owners) == 0:
		return "No owners"
	case len(owners) <= 2:
		return strings.Join(owners, ", ")
	default:
		return strings.Join(owners[:2], ", ") + " +" + strconv.Itoa(len(owners)-2)
	}
}
