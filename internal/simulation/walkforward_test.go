package simulation

import (
	"errors"
	"testing"
	"time"

	"flowcast/internal/stats"
)

func dailySeries(counts ...[]int) []stats.DailyThroughput {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var series []stats.DailyThroughput
	for _, block := range counts {
		for _, c := range block {
			series = append(series, stats.DailyThroughput{Date: start.AddDate(0, 0, len(series)), Count: c})
		}
	}
	return series
}

func repeat(v, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestWalkForward_Scope(t *testing.T) {
	// Consistent 1 item per day for 240 days
	series := dailySeries(repeat(1, 240))

	cfg := WalkForwardConfig{
		Mode:         ModeScope,
		LookbackDays: 30,
		StepDays:     10,
		HorizonDays:  10,
		Trials:       1000,
	}

	res, err := WalkForward(series, cfg, seeded(1))
	if err != nil {
		t.Fatalf("Execution failed: %v", err)
	}

	if len(res.Checkpoints) != 2 {
		t.Fatalf("Expected 2 checkpoints, got %d", len(res.Checkpoints))
	}

	for _, cp := range res.Checkpoints {
		if cp.ActualValue != 10 {
			t.Errorf("Checkpoint %s: Expected actual 10, got %.1f", cp.Date, cp.ActualValue)
		}
		if !cp.IsWithinCone {
			t.Errorf("Checkpoint %s: Expected actual within cone [%.0f, %.0f]", cp.Date, cp.ConeLow, cp.ConeHigh)
		}
	}
	if res.AccuracyScore != 1 {
		t.Errorf("Expected accuracy 1.0, got %.2f", res.AccuracyScore)
	}
	if res.DriftWarning != "" {
		t.Errorf("Expected no drift for a flat series, got %q", res.DriftWarning)
	}
	if res.Checkpoints[0].Date != series[230].Date.Format(time.DateOnly) {
		t.Errorf("Expected newest checkpoint first, got %s", res.Checkpoints[0].Date)
	}
}

func TestWalkForward_Duration(t *testing.T) {
	series := dailySeries(repeat(2, 200))

	cfg := WalkForwardConfig{
		Mode:         ModeDuration,
		LookbackDays: 60,
		StepDays:     14,
		BacklogItems: 10,
		Trials:       1000,
	}

	res, err := WalkForward(series, cfg, seeded(1))
	if err != nil {
		t.Fatalf("Execution failed: %v", err)
	}
	if len(res.Checkpoints) == 0 {
		t.Fatalf("Expected checkpoints, got 0")
	}
	for _, cp := range res.Checkpoints {
		if cp.ActualValue != 5 || cp.PredictedP85 != 5 {
			t.Errorf("Checkpoint %s: Expected 5 days actual and predicted, got %.0f/%.0f", cp.Date, cp.ActualValue, cp.PredictedP85)
		}
	}
}

func TestWalkForward_DriftCapsLookback(t *testing.T) {
	series := dailySeries(repeat(1, 120), repeat(5, 60))

	cfg := WalkForwardConfig{
		Mode:         ModeScope,
		LookbackDays: 90,
		StepDays:     7,
		HorizonDays:  7,
		Trials:       1000,
	}

	res, err := WalkForward(series, cfg, seeded(1))
	if err != nil {
		t.Fatalf("Execution failed: %v", err)
	}
	if res.DriftWarning == "" {
		t.Fatalf("Expected a drift warning")
	}

	driftDay := series[117].Date.Format(time.DateOnly)
	for _, cp := range res.Checkpoints {
		if cp.Date <= driftDay {
			t.Errorf("Expected checkpoints after %s, got %s", driftDay, cp.Date)
		}
	}
}

func TestWalkForward_UnknownMode(t *testing.T) {
	_, err := WalkForward(dailySeries(repeat(1, 30)), WalkForwardConfig{Mode: "velocity"}, seeded(1))
	if !errors.Is(err, ErrUnknownMode) {
		t.Errorf("Expected ErrUnknownMode, got %v", err)
	}
}

func TestWalkForward_InsufficientHistory(t *testing.T) {
	res, err := WalkForward(dailySeries(repeat(1, 5)), WalkForwardConfig{Mode: ModeScope, StepDays: 14}, seeded(1))
	if err != nil {
		t.Fatalf("Execution failed: %v", err)
	}
	if len(res.Checkpoints) != 0 || res.AccuracyScore != 0 {
		t.Errorf("Expected no checkpoints, got %d", len(res.Checkpoints))
	}
}
