package simulation

import (
	"errors"
	"fmt"
	"time"

	"flowcast/internal/stats"
)

// ErrUnknownMode is returned for a backtest mode other than scope or duration.
var ErrUnknownMode = errors.New("unknown simulation mode")

// WalkForwardConfig defines the parameters for the backtesting analysis.
type WalkForwardConfig struct {
	Mode         Mode `json:"mode"`
	LookbackDays int  `json:"lookback_days"` // how far back checkpoints are placed
	StepDays     int  `json:"step_days"`     // days between checkpoints
	HorizonDays  int  `json:"horizon_days"`  // scope mode only
	BacklogItems int  `json:"backlog_items"` // duration mode only
	HistoryDays  int  `json:"history_days"`  // sample window before each checkpoint
	Trials       int  `json:"trials"`
}

// DefaultWalkForwardConfig returns a scope backtest over the last 90 days.
func DefaultWalkForwardConfig() WalkForwardConfig {
	return WalkForwardConfig{
		Mode:         ModeScope,
		LookbackDays: 90,
		StepDays:     14,
		HorizonDays:  DefaultHorizonDays,
		BacklogItems: 10,
		HistoryDays:  180,
		Trials:       5000,
	}
}

// ValidationCheckpoint represents a single point in the past where we ran a simulation.
type ValidationCheckpoint struct {
	Date         string  `json:"date"`
	ActualValue  float64 `json:"actual_value"` // items delivered or days taken
	PredictedP50 float64 `json:"predicted_p50"`
	PredictedP85 float64 `json:"predicted_p85"`
	PredictedP95 float64 `json:"predicted_p95"`
	ConeLow      float64 `json:"cone_low"`
	ConeHigh     float64 `json:"cone_high"`
	IsWithinCone bool    `json:"is_within_cone"`
}

// WalkForwardResult holds the aggregate results of the analysis.
type WalkForwardResult struct {
	AccuracyScore     float64                `json:"accuracy_score"` // share of checkpoints within cone
	Checkpoints       []ValidationCheckpoint `json:"checkpoints"`
	DriftWarning      string                 `json:"drift_warning,omitempty"`
	ValidationMessage string                 `json:"validation_message"`
}

// WalkForward replays the forecaster at checkpoints in the past and compares each
// forecast with what the series shows happened afterwards. Checkpoints are placed
// backwards from the end of the series, newest first.
func WalkForward(series []stats.DailyThroughput, cfg WalkForwardConfig, rng Source) (WalkForwardResult, error) {
	if cfg.Mode != ModeScope && cfg.Mode != ModeDuration {
		return WalkForwardResult{}, fmt.Errorf("%w: %q", ErrUnknownMode, cfg.Mode)
	}
	cfg = withWalkForwardDefaults(cfg)

	result := WalkForwardResult{
		Checkpoints: make([]ValidationCheckpoint, 0),
	}

	counts := stats.ThroughputCounts(series)
	n := len(counts)

	earliest := n - cfg.LookbackDays
	if driftStart, ok := detectDrift(series); ok && driftStart > earliest {
		earliest = driftStart
		result.DriftWarning = fmt.Sprintf("Systemic process drift detected around %s. Backtesting capped at this date.", series[driftStart].Date.Format(time.DateOnly))
	}

	hits := 0
	for cut := n - cfg.StepDays; cut > earliest && cut > 0; cut -= cfg.StepDays {
		from := max(0, cut-cfg.HistoryDays)
		engine := NewEngine(NewHistogramFromCounts(counts[from:cut]), rng)

		cp := ValidationCheckpoint{Date: series[cut].Date.Format(time.DateOnly)}

		var res Result
		switch cfg.Mode {
		case ModeScope:
			if cut+cfg.HorizonDays > n {
				continue
			}
			res = engine.RunScope(Params{Trials: cfg.Trials, HorizonDays: cfg.HorizonDays})
			cp.ActualValue = float64(sumCounts(counts[cut : cut+cfg.HorizonDays]))
			// Scope: high confidence means few items.
			cp.ConeLow = float64(res.AtConfidence(95))
			cp.ConeHigh = float64(res.AtConfidence(5))
		case ModeDuration:
			actual := daysToDeliver(counts[cut:], cfg.BacklogItems)
			if actual < 0 {
				continue
			}
			res = engine.RunDuration(cfg.BacklogItems, cfg.Trials)
			cp.ActualValue = float64(actual)
			cp.ConeLow = float64(res.AtConfidence(5))
			cp.ConeHigh = float64(res.AtConfidence(95))
		}

		cp.PredictedP50 = float64(res.P50)
		cp.PredictedP85 = float64(res.P85)
		cp.PredictedP95 = float64(res.P95)
		if cp.ActualValue >= cp.ConeLow && cp.ActualValue <= cp.ConeHigh {
			cp.IsWithinCone = true
			hits++
		}
		result.Checkpoints = append(result.Checkpoints, cp)
	}

	total := len(result.Checkpoints)
	if total > 0 {
		result.AccuracyScore = float64(hits) / float64(total)
		result.ValidationMessage = fmt.Sprintf("Walk-Forward Analysis: %d/%d (%.0f%%) of actual outcomes fell within the predicted forecast cone (P5-P95).", hits, total, result.AccuracyScore*100)
	} else {
		result.ValidationMessage = "Insufficient historical data or drift constraints prevented meaningful backtesting."
	}

	if result.AccuracyScore < 0.7 && total > 3 {
		result.ValidationMessage += " Warning: Low forecast reliability detected."
	}

	return result, nil
}

func withWalkForwardDefaults(cfg WalkForwardConfig) WalkForwardConfig {
	def := DefaultWalkForwardConfig()
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = def.LookbackDays
	}
	if cfg.StepDays <= 0 {
		cfg.StepDays = def.StepDays
	}
	if cfg.HorizonDays <= 0 {
		cfg.HorizonDays = def.HorizonDays
	}
	if cfg.BacklogItems <= 0 {
		cfg.BacklogItems = def.BacklogItems
	}
	if cfg.HistoryDays <= 0 {
		cfg.HistoryDays = def.HistoryDays
	}
	if cfg.Trials <= 0 {
		cfg.Trials = def.Trials
	}
	return cfg
}

// detectDrift groups the series into whole weeks, aligned so the last week ends
// on the last day, and looks for an XmR shift. It returns the day index where
// the most recent shifted run starts.
func detectDrift(series []stats.DailyThroughput) (int, bool) {
	offset := len(series) % 7
	weeks := (len(series) - offset) / 7
	if weeks < 8 {
		return 0, false
	}

	totals := make([]float64, weeks)
	keys := make([]string, weeks)
	for w := 0; w < weeks; w++ {
		start := offset + w*7
		for _, d := range series[start : start+7] {
			totals[w] += float64(d.Count)
		}
		keys[w] = series[start].Date.Format(time.DateOnly)
	}

	behaviour := stats.AnalyzeProcessBehaviour(totals, keys)
	shiftAt := -1
	for _, s := range behaviour.Signals {
		if s.Type == "shift" {
			shiftAt = s.Index
		}
	}
	if shiftAt < 0 {
		return 0, false
	}

	// The signal fires on the 8th point of the run.
	runStart := shiftAt - 8
	return offset + runStart*7, true
}

func sumCounts(counts []int) int {
	total := 0
	for _, c := range counts {
		total += c
	}
	return total
}

// daysToDeliver returns how many days it took to complete n items, or -1 if the
// series ends first.
func daysToDeliver(counts []int, n int) int {
	done := 0
	for i, c := range counts {
		done += c
		if done >= n {
			return i + 1
		}
	}
	return -1
}
