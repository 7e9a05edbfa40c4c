// Package outwriter renders analysis results as text tables, CSV, JSON and
// HTML charts.
package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/hotspotter/internal/contract"
	"github.com/huangsam/hotspotter/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/term"
)

// tableRenderer writes the text form of one result type.
type tableRenderer func(w io.Writer, cfg *contract.Config) error

// csvRenderer writes the CSV rows of one result type, header first.
type csvRenderer func(w *csv.Writer, cfg *contract.Config) error

// dispatch picks the renderer for cfg.Output and sends it to the output file
// or stdout. HTML is only meaningful for trends, which handle it themselves.
func dispatch(cfg *contract.Config, what string, data any, text tableRenderer, rows csvRenderer) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, data)
		}, "Wrote JSON "+what)
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			csvWriter := csv.NewWriter(w)
			if err := rows(csvWriter, cfg); err != nil {
				return err
			}
			csvWriter.Flush()
			return csvWriter.Error()
		}, "Wrote CSV "+what)
	case schema.HTMLOut:
		return fmt.Errorf("html output is only available for trends, not %s", what)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return text(w, cfg)
		}, "Wrote table of "+what)
	}
}

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		_, _ = fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// newTable returns a right-aligned table with the given header.
func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.Header(header)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	return table
}

func renderTable(table *tablewriter.Table, data [][]string) error {
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// fmtFloat formats v with the configured precision.
func fmtFloat(v float64, precision int) string {
	return fmt.Sprintf("%.*f", precision, v)
}

// fmtDate renders a calendar day, or an empty string for the zero time.
func fmtDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(contract.DateFormat)
}

// pathWidth calculates the maximum width for paths in table output based
// on terminal width and the width the other columns reserve.
func pathWidth(cfg *contract.Config, reserved int) int {
	termWidth := cfg.Width
	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve generous space for table borders, separators, and padding
	available := termWidth - reserved - 20
	switch {
	case available < 15:
		return 15
	case available > 70:
		return 70
	default:
		return available
	}
}

// activity renders an author's activity state, colored when enabled.
func activity(active bool, cfg *contract.Config) string {
	if cfg.UseColors {
		return contract.ColorActivityLabel(active)
	}
	return contract.ActivityLabel(active)
}

// heading renders a section title, colored when enabled.
func heading(title string, cfg *contract.Config) string {
	if cfg.UseColors {
		return contract.HeaderColor.Sprint(title)
	}
	return title
}
