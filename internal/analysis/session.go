package analysis

import (
	"sync"

	"flowcast/internal/dataset"
	"flowcast/internal/simulation"
	"flowcast/internal/stats"

	"github.com/rs/zerolog/log"
)

// Session orchestrates the analytical pipeline for a single dataset.
// Columns are resolved and rows parsed once; every analysis reads the cached
// work items.
type Session struct {
	name    string
	table   dataset.Table
	bounds  simulation.Bounds
	workers int

	once    sync.Once
	columns dataset.ResolvedColumns
	items   []dataset.WorkItem
	daily   []stats.DailyThroughput
}

// NewSession creates a session over a parsed table.
func NewSession(name string, table dataset.Table) *Session {
	return &Session{
		name:    name,
		table:   table,
		bounds:  simulation.DefaultBounds(),
		workers: 1,
	}
}

// WithSimulation sets the bounds and worker count used by forecasts.
func (s *Session) WithSimulation(bounds simulation.Bounds, workers int) *Session {
	s.bounds = bounds
	if workers < 1 {
		workers = 1
	}
	s.workers = workers
	return s
}

func (s *Session) project() {
	s.once.Do(func() {
		s.columns = dataset.ResolveColumns(s.table.Headers, s.table.Rows)
		s.items = dataset.SortChronologically(dataset.ParseWorkItems(s.table.Rows, s.columns))
		s.daily = stats.BuildDailyThroughput(s.items)

		log.Debug().
			Str("source", s.name).
			Int("rows", len(s.table.Rows)).
			Int("items", len(s.items)).
			Int("dropped", len(s.table.Rows)-len(s.items)).
			Bool("usable", s.columns.Usable()).
			Msg("Dataset projected")
	})
}

// Name returns the label of the data source.
func (s *Session) Name() string {
	return s.name
}

// Columns returns the resolved column mapping.
func (s *Session) Columns() dataset.ResolvedColumns {
	s.project()
	return s.columns
}

// Items returns the valid work items in completion order.
func (s *Session) Items() []dataset.WorkItem {
	s.project()
	return s.items
}

// TotalRows is the number of data rows in the table.
func (s *Session) TotalRows() int {
	return len(s.table.Rows)
}

// DroppedRows is the number of rows that did not yield a work item.
func (s *Session) DroppedRows() int {
	s.project()
	return len(s.table.Rows) - len(s.items)
}

// Throughput returns the zero-filled daily throughput series.
func (s *Session) Throughput() []stats.DailyThroughput {
	s.project()
	return s.daily
}

// ThroughputSummary describes the daily throughput series.
func (s *Session) ThroughputSummary() stats.ThroughputSummary {
	return stats.SummarizeThroughput(s.Throughput())
}

// Cadence folds the daily throughput into day, week or month buckets.
func (s *Session) Cadence(bucket string) []stats.DeliveryCadence {
	return stats.CalculateDeliveryCadence(s.Throughput(), bucket)
}

// CycleTime returns the cycle-time distribution analysis.
func (s *Session) CycleTime() stats.CycleTimeAnalysis {
	return stats.AnalyzeCycleTimes(s.Items())
}

// ProcessBehaviour runs the XmR analysis over cycle times in completion order.
func (s *Session) ProcessBehaviour() stats.ProcessBehaviour {
	items := s.Items()
	return stats.AnalyzeProcessBehaviour(dataset.CycleTimes(items), dataset.IDs(items))
}

// Correlation returns the estimate vs. cycle time banding.
func (s *Session) Correlation() stats.Correlation {
	return stats.AggregateCorrelation(s.Items())
}

func (s *Session) engine(rng simulation.Source) *simulation.Engine {
	return simulation.NewEngine(simulation.NewHistogram(s.Throughput()), rng).
		WithBounds(s.bounds).
		WithWorkers(s.workers)
}

// Forecast runs the scope Monte-Carlo simulation over the daily throughput.
func (s *Session) Forecast(p simulation.Params, rng simulation.Source) simulation.Result {
	res := s.engine(rng).RunScope(p)
	log.Debug().
		Str("source", s.name).
		Int("trials", res.Trials).
		Int("horizon_days", res.HorizonDays).
		Int("p85", res.P85).
		Msg("Scope forecast completed")
	return res
}

// Duration forecasts the days needed to deliver backlog items.
func (s *Session) Duration(backlog, trials int, rng simulation.Source) simulation.Result {
	res := s.engine(rng).RunDuration(backlog, trials)
	log.Debug().
		Str("source", s.name).
		Int("trials", res.Trials).
		Int("backlog", backlog).
		Int("p85", res.P85).
		Msg("Duration forecast completed")
	return res
}

// Backtest replays the forecaster against the dataset's own history.
func (s *Session) Backtest(cfg simulation.WalkForwardConfig, rng simulation.Source) (simulation.WalkForwardResult, error) {
	return simulation.WalkForward(s.Throughput(), cfg, rng)
}
