package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"flowcast/internal/analysis"
	"flowcast/internal/dataset"
	"flowcast/internal/simulation"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
)

const (
	formatTable    = "table"
	formatJSON     = "json"
	formatMarkdown = "markdown"
)

var confidenceLevels = []float64{50, 70, 85, 95}

func validateFormat(format string) error {
	switch format {
	case formatTable, formatJSON, formatMarkdown, "md":
		return nil
	default:
		return fmt.Errorf("unknown format %q: use table, json or markdown", format)
	}
}

// renderer writes titled tables as box-drawn text or markdown.
type renderer struct {
	w        io.Writer
	markdown bool
}

func newRenderer(w io.Writer, format string) renderer {
	return renderer{w: w, markdown: format == formatMarkdown || format == "md"}
}

func (r renderer) table(title string, header table.Row, rows []table.Row) {
	if len(rows) == 0 {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.w)
	t.AppendHeader(header)
	t.AppendRows(rows)

	if r.markdown {
		_, _ = fmt.Fprintf(r.w, "### %s\n\n", title)
		t.RenderMarkdown()
	} else {
		t.SetStyle(table.StyleLight)
		t.SetTitle(title)
		t.Render()
	}
	_, _ = fmt.Fprintln(r.w)
}

func (r renderer) warnings(ws []string) {
	for _, w := range ws {
		if r.markdown {
			_, _ = fmt.Fprintf(r.w, "> **Warning:** %s\n", w)
		} else {
			_, _ = fmt.Fprintf(r.w, "! %s\n", w)
		}
	}
	if len(ws) > 0 {
		_, _ = fmt.Fprintln(r.w)
	}
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderReport(w io.Writer, rep analysis.Report, format string) error {
	if format == formatJSON {
		return renderJSON(w, rep)
	}

	r := newRenderer(w, format)
	r.warnings(rep.Warnings)

	r.table("Dataset", table.Row{"Field", "Value"}, []table.Row{
		{"Source", rep.Source},
		{"Rows", rep.TotalRows},
		{"Items", rep.Items},
		{"Dropped rows", rep.DroppedRows},
	})
	r.table("Columns", table.Row{"Role", "Header", "Method", "Confidence"}, columnRows(rep.Columns))

	if rep.Items == 0 {
		return nil
	}

	ct := rep.CycleTime
	r.table("Cycle Time (days)", table.Row{"Measure", "Value"}, []table.Row{
		{"Items", ct.Count},
		{"P50", days(ct.P50)},
		{"P70", days(ct.P70)},
		{"P85", days(ct.P85)},
		{"P95", days(ct.P95)},
		{"Reference line", days(ct.ReferenceLine)},
		{"Above reference", ct.AboveReference},
	})

	pb := rep.ProcessBehaviour
	r.table("Process Behaviour", table.Row{"Measure", "Value"}, []table.Row{
		{"Status", pb.Status},
		{"Average", days(pb.Limits.CentralLine)},
		{"Upper natural process limit", days(pb.Limits.UpperLimit)},
		{"Lower natural process limit", days(pb.Limits.LowerLimit)},
		{"Average moving range", days(pb.Limits.AverageMovingRange)},
		{"Moving range limit", days(pb.Limits.MovingRangeUpperLimit)},
	})
	signals := make([]table.Row, 0, len(pb.Signals))
	for _, s := range pb.Signals {
		signals = append(signals, table.Row{s.Index, s.Key, s.Type, s.Description})
	}
	r.table("Signals", table.Row{"#", "Item", "Type", "Description"}, signals)

	groups := make([]table.Row, 0, len(rep.Correlation.Groups))
	for _, g := range rep.Correlation.Groups {
		groups = append(groups, table.Row{g.Estimate, g.Count, days(g.Min), days(g.Avg), days(g.Max)})
	}
	if len(groups) > 0 {
		groups = append(groups, table.Row{"Pearson r", fmt.Sprintf("%.2f", rep.Correlation.Coefficient), "", "", ""})
	}
	r.table("Estimate vs Cycle Time", table.Row{"Estimate", "Items", "Min", "Avg", "Max"}, groups)

	tp := rep.Throughput
	r.table("Throughput", table.Row{"Measure", "Value"}, []table.Row{
		{"Days", tp.Days},
		{"Items", tp.TotalItems},
		{"Mean per day", fmt.Sprintf("%.2f", tp.MeanPerDay)},
		{"Median per day", fmt.Sprintf("%.1f", tp.MedianPerDay)},
		{"Max per day", tp.MaxPerDay},
	})

	renderForecast(r, rep.Forecast)
	if rep.Duration != nil {
		renderForecast(r, *rep.Duration)
	}
	return nil
}

func renderForecast(r renderer, res simulation.Result) {
	title := fmt.Sprintf("Forecast: items within %d days (%d trials)", res.HorizonDays, res.Trials)
	unit := "Items (at least)"
	if res.Mode == simulation.ModeDuration {
		title = fmt.Sprintf("Forecast: days to deliver %d items (%d trials)", res.Backlog, res.Trials)
		unit = "Days (at most)"
	}

	rows := make([]table.Row, 0, len(confidenceLevels))
	for _, level := range confidenceLevels {
		rows = append(rows, table.Row{fmt.Sprintf("%.0f%%", level), res.AtConfidence(level)})
	}
	r.table(title, table.Row{"Confidence", unit}, rows)
	r.warnings(slices.Concat(res.Warnings, res.Insights))
}

func renderBacktest(r renderer, res simulation.WalkForwardResult) {
	rows := make([]table.Row, 0, len(res.Checkpoints))
	for _, c := range res.Checkpoints {
		hit := "no"
		if c.IsWithinCone {
			hit = "yes"
		}
		rows = append(rows, table.Row{
			c.Date,
			c.ActualValue,
			fmt.Sprintf("%.0f-%.0f", c.ConeLow, c.ConeHigh),
			c.PredictedP85,
			hit,
		})
	}
	r.table(fmt.Sprintf("Backtest: accuracy %.0f%%", res.AccuracyScore*100),
		table.Row{"Checkpoint", "Actual", "Cone", "P85", "Within cone"}, rows)

	r.warnings(lo.Compact([]string{res.ValidationMessage, res.DriftWarning}))
}

func columnRows(cols dataset.ResolvedColumns) []table.Row {
	roles := []struct {
		name  string
		match dataset.ColumnMatch
	}{
		{"ID", cols.ID},
		{"End date", cols.EndDate},
		{"Cycle time", cols.CycleTime},
		{"Estimate", cols.Estimate},
	}
	rows := make([]table.Row, 0, len(roles))
	for _, role := range roles {
		header := role.match.Key
		if header == "" {
			header = "-"
		}
		rows = append(rows, table.Row{role.name, header, role.match.Method, role.match.Confidence})
	}
	return rows
}

func days(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
