package stats

import (
	"math"
	"testing"
)

func TestCalculateControlLimits(t *testing.T) {
	values := []float64{10, 12, 11, 13, 11}
	limits, mr := CalculateControlLimits(values)

	expectedAvg := 11.4
	if math.Abs(limits.CentralLine-expectedAvg) > 0.001 {
		t.Errorf("Expected average %v, got %v", expectedAvg, limits.CentralLine)
	}

	expectedAmR := 1.75
	if math.Abs(limits.AverageMovingRange-expectedAmR) > 0.001 {
		t.Errorf("Expected AmR %v, got %v", expectedAmR, limits.AverageMovingRange)
	}

	expectedUNPL := 16.055
	if math.Abs(limits.UpperLimit-expectedUNPL) > 0.001 {
		t.Errorf("Expected UNPL %v, got %v", expectedUNPL, limits.UpperLimit)
	}

	expectedLNPL := 6.745
	if math.Abs(limits.LowerLimit-expectedLNPL) > 0.001 {
		t.Errorf("Expected LNPL %v, got %v", expectedLNPL, limits.LowerLimit)
	}

	expectedURL := 5.7225
	if math.Abs(limits.MovingRangeUpperLimit-expectedURL) > 0.001 {
		t.Errorf("Expected URL %v, got %v", expectedURL, limits.MovingRangeUpperLimit)
	}

	if len(mr) != 4 {
		t.Fatalf("Expected 4 moving ranges, got %d", len(mr))
	}
}

func TestAnalyzeProcessBehaviour_Flat(t *testing.T) {
	result := AnalyzeProcessBehaviour([]float64{5, 5, 5, 5, 5}, nil)

	if result.Limits.CentralLine != 5 {
		t.Errorf("Expected central line 5, got %v", result.Limits.CentralLine)
	}
	if result.Limits.AverageMovingRange != 0 {
		t.Errorf("Expected AmR 0, got %v", result.Limits.AverageMovingRange)
	}
	if result.Limits.UpperLimit != 5 || result.Limits.LowerLimit != 5 {
		t.Errorf("Expected zero-width limits at 5, got [%v, %v]", result.Limits.LowerLimit, result.Limits.UpperLimit)
	}
	if result.SpecialCauseCount != 0 {
		t.Errorf("Expected no special causes, got %d", result.SpecialCauseCount)
	}
	if result.Status != "stable" {
		t.Errorf("Expected status 'stable', got %v", result.Status)
	}
}

func TestAnalyzeProcessBehaviour_Points(t *testing.T) {
	keys := []string{"A", "B", "C"}
	result := AnalyzeProcessBehaviour([]float64{4, 7, 5}, keys)

	if len(result.Points) != 3 {
		t.Fatalf("Expected 3 points, got %d", len(result.Points))
	}
	first := result.Points[0]
	if first.Index != 1 || first.Key != "A" || first.MovingRange != nil {
		t.Errorf("Unexpected first point: %+v", first)
	}
	second := result.Points[1]
	if second.MovingRange == nil || *second.MovingRange != 3 {
		t.Errorf("Expected moving range 3 on second point, got %+v", second.MovingRange)
	}
	third := result.Points[2]
	if third.Index != 3 || *third.MovingRange != 2 {
		t.Errorf("Unexpected third point: %+v", third)
	}
}

func TestAnalyzeProcessBehaviour_SingleSpikeInShortSeries(t *testing.T) {
	// With four points the spike inflates its own limits:
	// CL = 32.5, AmR = (0+0+90)/3 = 30, UNPL = 32.5 + 2.66*30 = 112.3.
	result := AnalyzeProcessBehaviour([]float64{10, 10, 10, 100}, nil)

	if math.Abs(result.Limits.CentralLine-32.5) > 0.001 {
		t.Errorf("Expected central line 32.5, got %v", result.Limits.CentralLine)
	}
	if math.Abs(result.Limits.AverageMovingRange-30) > 0.001 {
		t.Errorf("Expected AmR 30, got %v", result.Limits.AverageMovingRange)
	}
	if math.Abs(result.Limits.UpperLimit-112.3) > 0.001 {
		t.Errorf("Expected UNPL 112.3, got %v", result.Limits.UpperLimit)
	}
	if result.Limits.LowerLimit != 0 {
		t.Errorf("Expected LNPL clamped to 0, got %v", result.Limits.LowerLimit)
	}
	if result.Points[3].SpecialCause {
		t.Errorf("Expected 100 to stay inside UNPL 112.3")
	}
	if result.SpecialCauseCount != 0 {
		t.Errorf("Expected no special causes, got %d", result.SpecialCauseCount)
	}
}

func TestAnalyzeProcessBehaviour_SpecialCause(t *testing.T) {
	values := []float64{10, 10, 10, 10, 10, 10, 10, 10, 100}
	keys := []string{"1", "2", "3", "4", "5", "6", "7", "8", "OUT"}
	result := AnalyzeProcessBehaviour(values, keys)

	// CL = 20, AmR = 90/8 = 11.25, UNPL = 49.925
	if math.Abs(result.Limits.UpperLimit-49.925) > 0.001 {
		t.Errorf("Expected UNPL 49.925, got %v", result.Limits.UpperLimit)
	}
	if !result.Points[8].SpecialCause {
		t.Errorf("Expected last point to be a special cause")
	}
	if result.SpecialCauseCount != 1 {
		t.Errorf("Expected exactly 1 special cause, got %d", result.SpecialCauseCount)
	}

	found := false
	for _, s := range result.Signals {
		if s.Type == "outlier" && s.Key == "OUT" && s.Index == 9 {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected outlier signal bound to key OUT, got %+v", result.Signals)
	}
	if result.Status != "unstable" {
		t.Errorf("Expected status 'unstable', got %v", result.Status)
	}
}

func TestAnalyzeProcessBehaviour_LowerLimitClamped(t *testing.T) {
	result := AnalyzeProcessBehaviour([]float64{1, 20, 1, 20}, nil)

	if result.Limits.LowerLimit != 0 {
		t.Errorf("Expected LNPL clamped to 0, got %v", result.Limits.LowerLimit)
	}
}

func TestAnalyzeProcessBehaviour_ShiftIsNotSpecialCause(t *testing.T) {
	// Eight points above the average then eight below, all inside the limits.
	values := []float64{11, 12, 11, 12, 11, 12, 11, 12, 8, 9, 8, 9, 8, 9, 8, 9}
	result := AnalyzeProcessBehaviour(values, nil)

	shifts := 0
	for _, s := range result.Signals {
		if s.Type == "shift" {
			shifts++
		}
	}
	if shifts != 2 {
		t.Errorf("Expected 2 shift signals (one at index 8, one at index 16), got %v", shifts)
	}
	if result.SpecialCauseCount != 0 {
		t.Errorf("Expected shifts not to mark special causes, got %d", result.SpecialCauseCount)
	}
}

func TestAnalyzeProcessBehaviour_Degenerate(t *testing.T) {
	empty := AnalyzeProcessBehaviour(nil, nil)
	if empty.Status != "insufficient_data" || len(empty.Points) != 0 {
		t.Errorf("Unexpected result for empty input: %+v", empty)
	}

	single := AnalyzeProcessBehaviour([]float64{7}, nil)
	if single.Limits.AverageMovingRange != 0 || single.Limits.UpperLimit != 7 || single.Limits.LowerLimit != 7 {
		t.Errorf("Unexpected limits for single point: %+v", single.Limits)
	}
	if single.Points[0].SpecialCause {
		t.Errorf("Single point must not be a special cause")
	}
}

func TestXmRBenchmark(t *testing.T) {
	// Monthly accounts receivable benchmark (Wheeler / r-bar.net tutorials).
	values := []float64{
		22433, 22612, 22660, 22380, 22545, 22903, 22843, 22595, 22078, 21942,
	}

	limits, _ := CalculateControlLimits(values)

	if math.Abs(limits.CentralLine-22499.1) > 0.01 {
		t.Errorf("Expected average 22499.1, got %v", limits.CentralLine)
	}
	// Moving ranges: 179,48,280,165,358,60,248,517,136 => 1991/9
	expectedAmR := 1991.0 / 9.0
	if math.Abs(limits.AverageMovingRange-expectedAmR) > 0.01 {
		t.Errorf("Expected AmR %v, got %v", expectedAmR, limits.AverageMovingRange)
	}
}
