package analysis

import (
	"fmt"
	"strings"

	"flowcast/internal/dataset"
	"flowcast/internal/simulation"
	"flowcast/internal/stats"
)

// Options controls the forecasts included in a Report.
type Options struct {
	Params  simulation.Params
	Seed    int64 // 0 seeds from the clock
	Backlog int   // adds a duration forecast when positive
}

// DefaultOptions returns the recommended simulation parameters without a backlog.
func DefaultOptions() Options {
	return Options{Params: simulation.DefaultParams()}
}

// Report is the combined result of every analysis over one dataset.
type Report struct {
	Source           string                  `json:"source"`
	Columns          dataset.ResolvedColumns `json:"columns"`
	TotalRows        int                     `json:"total_rows"`
	Items            int                     `json:"items"`
	DroppedRows      int                     `json:"dropped_rows"`
	Warnings         []string                `json:"warnings,omitempty"`
	CycleTime        stats.CycleTimeAnalysis `json:"cycle_time"`
	ProcessBehaviour stats.ProcessBehaviour  `json:"process_behaviour"`
	Correlation      stats.Correlation       `json:"correlation"`
	Throughput       stats.ThroughputSummary `json:"throughput"`
	Forecast         simulation.Result       `json:"forecast"`
	Duration         *simulation.Result      `json:"duration,omitempty"`
}

// Report runs the full pipeline. An unusable schema yields an empty report with
// a warning rather than an error.
func (s *Session) Report(opts Options) Report {
	cols := s.Columns()
	rng := simulation.NewSource(opts.Seed)

	r := Report{
		Source:           s.name,
		Columns:          cols,
		TotalRows:        s.TotalRows(),
		Items:            len(s.Items()),
		DroppedRows:      s.DroppedRows(),
		Warnings:         s.Warnings(),
		CycleTime:        s.CycleTime(),
		ProcessBehaviour: s.ProcessBehaviour(),
		Correlation:      s.Correlation(),
		Throughput:       s.ThroughputSummary(),
		Forecast:         s.Forecast(opts.Params, rng),
	}

	if opts.Backlog > 0 {
		d := s.Duration(opts.Backlog, opts.Params.Trials, rng)
		r.Duration = &d
	}

	return r
}

// Warnings lists the data quality issues found while projecting the dataset.
func (s *Session) Warnings() []string {
	cols := s.Columns()

	var warnings []string
	if !cols.Usable() {
		var missing []string
		if !cols.EndDate.Found() {
			missing = append(missing, "end date")
		}
		if !cols.CycleTime.Found() {
			missing = append(missing, "cycle time")
		}
		warnings = append(warnings, fmt.Sprintf("No usable data: could not identify the %s column.", strings.Join(missing, " and ")))
		return warnings
	}

	for _, role := range cols.LowConfidence() {
		warnings = append(warnings, fmt.Sprintf("The %s column was inferred from cell content; verify the mapping.", strings.ReplaceAll(role, "_", " ")))
	}
	if dropped := s.DroppedRows(); dropped > 0 {
		warnings = append(warnings, fmt.Sprintf("%d of %d rows were skipped because of an invalid date or cycle time.", dropped, s.TotalRows()))
	}
	if !cols.Estimate.Found() {
		warnings = append(warnings, "No estimate column found; correlation analysis is empty.")
	}
	return warnings
}
