package outwriter

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/huangsam/hotspotter/internal/contract"
	"github.com/huangsam/hotspotter/schema"
)

// WriteTrends prints the daily activity series. HTML output renders a line
// chart of commits and authors per day.
func WriteTrends(rows []schema.DailyStats, cfg *contract.Config) error {
	if cfg.Output == schema.HTMLOut {
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeTrendsChart(w, rows)
		}, "Wrote trends chart")
	}
	return dispatch(cfg, "trends", rows,
		func(w io.Writer, _ *contract.Config) error { return writeTrendsTable(w, rows) },
		func(w *csv.Writer, _ *contract.Config) error { return writeTrendsCSV(w, rows) })
}

func writeTrendsTable(w io.Writer, rows []schema.DailyStats) error {
	table := newTable(w, "Day", "Commits", "Authors", "Active", "Added", "Deleted")
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		data = append(data, []string{
			fmtDate(r.Day),
			strconv.Itoa(r.Commits),
			strconv.Itoa(r.UniqueAuthors),
			strconv.Itoa(r.ActiveAuthors),
			strconv.Itoa(r.LinesAdded),
			strconv.Itoa(r.LinesDeleted),
		})
	}
	if err := renderTable(table, data); err != nil {
		return err
	}
	_, err := io.WriteString(w, "Showing "+strconv.Itoa(len(rows))+" days\n")
	return err
}

func writeTrendsCSV(w *csv.Writer, rows []schema.DailyStats) error {
	if err := w.Write([]string{"day", "commits", "unique_authors", "active_authors", "lines_added", "lines_deleted"}); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			fmtDate(r.Day),
			strconv.Itoa(r.Commits),
			strconv.Itoa(r.UniqueAuthors),
			strconv.Itoa(r.ActiveAuthors),
			strconv.Itoa(r.LinesAdded),
			strconv.Itoa(r.LinesDeleted),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// trendsChart builds the line chart for the series.
func trendsChart(rows []schema.DailyStats) *charts.Line {
	days := make([]string, len(rows))
	commits := make([]opts.LineData, len(rows))
	authors := make([]opts.LineData, len(rows))
	active := make([]opts.LineData, len(rows))
	for i, r := range rows {
		days[i] = fmtDate(r.Day)
		commits[i] = opts.LineData{Value: r.Commits}
		authors[i] = opts.LineData{Value: r.UniqueAuthors}
		active[i] = opts.LineData{Value: r.ActiveAuthors}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "hotspotter trends", Width: "100%", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: "Repository activity", Left: "center"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "8%"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}, opts.DataZoom{Type: "inside"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Day"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Count"}),
	)
	line.SetXAxis(days).
		AddSeries("Commits", commits).
		AddSeries("Unique authors", authors).
		AddSeries("Active authors", active, charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	return line
}

func writeTrendsChart(w io.Writer, rows []schema.DailyStats) error {
	return trendsChart(rows).Render(w)
}
