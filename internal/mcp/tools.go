package mcp

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// DatasetInput addresses a dataset registered by load_dataset.
type DatasetInput struct {
	DatasetID string `json:"dataset_id" jsonschema:"Identifier returned by load_dataset"`
}

// LoadDatasetInput loads a table from disk or from inline rows.
type LoadDatasetInput struct {
	Path    string           `json:"path,omitempty" jsonschema:"Path to a CSV or XLSX file with a header row"`
	Name    string           `json:"name,omitempty" jsonschema:"Label for inline rows"`
	Headers []string         `json:"headers,omitempty" jsonschema:"Column order of the inline rows"`
	Rows    []map[string]any `json:"rows,omitempty" jsonschema:"Inline rows as objects of column name to cell value"`
}

// ThroughputInput selects the bucket size of the delivery cadence.
type ThroughputInput struct {
	DatasetID string `json:"dataset_id" jsonschema:"Identifier returned by load_dataset"`
	Bucket    string `json:"bucket,omitempty" jsonschema:"Cadence bucket: day, week (default) or month"`
}

// ForecastInput configures a scope forecast.
type ForecastInput struct {
	DatasetID   string `json:"dataset_id" jsonschema:"Identifier returned by load_dataset"`
	HorizonDays int    `json:"horizon_days,omitempty"`
	Trials      int    `json:"trials,omitempty"`
	Seed        int64  `json:"seed,omitempty" jsonschema:"Random seed for a reproducible run; 0 seeds from the clock"`
}

// DurationInput configures a duration forecast.
type DurationInput struct {
	DatasetID    string `json:"dataset_id" jsonschema:"Identifier returned by load_dataset"`
	BacklogItems int    `json:"backlog_items" jsonschema:"Number of items still to deliver"`
	Trials       int    `json:"trials,omitempty"`
	Seed         int64  `json:"seed,omitempty" jsonschema:"Random seed for a reproducible run; 0 seeds from the clock"`
}

// BacktestInput configures a walk-forward backtest.
type BacktestInput struct {
	DatasetID    string `json:"dataset_id" jsonschema:"Identifier returned by load_dataset"`
	Mode         string `json:"mode,omitempty" jsonschema:"Forecast to validate: scope (default) or duration"`
	LookbackDays int    `json:"lookback_days,omitempty" jsonschema:"How far back checkpoints are placed (default 90)"`
	StepDays     int    `json:"step_days,omitempty" jsonschema:"Days between checkpoints (default 14)"`
	HorizonDays  int    `json:"horizon_days,omitempty" jsonschema:"Scope horizon per checkpoint (default 14)"`
	BacklogItems int    `json:"backlog_items,omitempty" jsonschema:"Duration backlog per checkpoint (default 10)"`
	Seed         int64  `json:"seed,omitempty" jsonschema:"Random seed for a reproducible run; 0 seeds from the clock"`
}

// inputSchema derives the schema of T and overrides property descriptions.
func inputSchema[T any](descriptions map[string]string) *jsonschema.Schema {
	schema, err := jsonschema.For[T](nil)
	if err != nil {
		panic(fmt.Sprintf("tool input schema: %v", err))
	}
	for name, desc := range descriptions {
		if prop, ok := schema.Properties[name]; ok {
			prop.Description = desc
		}
	}
	return schema
}

func (s *Server) registerTools() {
	sim := s.cfg.Simulation
	trialsDesc := fmt.Sprintf("Number of Monte-Carlo trials, clamped to [%d, %d] (default %d)", sim.MinTrials, sim.MaxTrials, sim.DefaultTrials)
	horizonDesc := fmt.Sprintf("Forecast horizon in days, clamped to [%d, %d] (default %d)", sim.MinHorizonDays, sim.MaxHorizonDays, sim.DefaultHorizonDays)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name: "load_dataset",
		Description: "Load a table of completed work items (id, completion date, cycle time, optional estimate) from a CSV/XLSX file or inline rows. " +
			"Columns are identified by header name first and by cell content second. Returns a dataset_id used by every analysis tool. " +
			"Dates are read day-first (DD/MM/YYYY).",
		InputSchema: inputSchema[LoadDatasetInput](nil),
	}, s.handleLoadDataset)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "analyze_cycle_time",
		Description: "Cycle-time distribution of a dataset: interpolated percentiles (50/70/85/95), the 85th percentile reference line and a whole-day frequency histogram.",
		InputSchema: inputSchema[DatasetInput](nil),
	}, s.handleAnalyzeCycleTime)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name: "analyze_process_behaviour",
		Description: "Process Behaviour Chart (XmR) over cycle times in completion order. Reports natural process limits, moving ranges and special-cause signals. " +
			"Use this to judge whether the process is predictable before trusting a forecast.",
		InputSchema: inputSchema[DatasetInput](nil),
	}, s.handleAnalyzeProcessBehaviour)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "analyze_correlation",
		Description: "Groups items by integer estimate and reports min/avg/max cycle time per group, plus the Pearson coefficient between estimate and cycle time.",
		InputSchema: inputSchema[DatasetInput](nil),
	}, s.handleAnalyzeCorrelation)

	throughput := inputSchema[ThroughputInput](nil)
	throughput.Properties["bucket"].Enum = []any{"day", "week", "month"}
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name: "analyze_throughput",
		Description: "Daily throughput between the first and last completion date, zero-filled, with a summary of the sample used by the forecasters " +
			"and the delivery cadence per week or month. Partial periods at either end are flagged.",
		InputSchema: throughput,
	}, s.handleAnalyzeThroughput)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name: "forecast_monte_carlo",
		Description: "Monte-Carlo forecast of how many items will be delivered within a horizon (How Much), resampling historical DAILY THROUGHPUT. " +
			"NOT FOR CYCLE TIME. Report the P85 as 'at least N items with 85% confidence'.",
		InputSchema: inputSchema[ForecastInput](map[string]string{
			"trials":       trialsDesc,
			"horizon_days": horizonDesc,
		}),
	}, s.handleForecastMonteCarlo)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "forecast_duration",
		Description: "Monte-Carlo forecast of how many days it takes to deliver a backlog (When), resampling historical daily throughput.",
		InputSchema: inputSchema[DurationInput](map[string]string{
			"trials": trialsDesc,
		}),
	}, s.handleForecastDuration)

	backtest := inputSchema[BacktestInput](nil)
	backtest.Properties["mode"].Enum = []any{"scope", "duration"}
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "forecast_backtest",
		Description: "Walk-forward validation: replays the forecaster at past checkpoints and reports how often reality fell inside the predicted cone.",
		InputSchema: backtest,
	}, s.handleForecastBacktest)
}
