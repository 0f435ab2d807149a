package stats

import (
	"math"
	"testing"

	"flowcast/internal/dataset"
)

func est(v float64) *float64 { return &v }

func TestAggregateCorrelation(t *testing.T) {
	items := []dataset.WorkItem{
		{ID: "A", CycleTimeDays: 5, Estimate: est(3)},
		{ID: "B", CycleTimeDays: 9, Estimate: est(3.7)},
		{ID: "C", CycleTimeDays: 2, Estimate: est(5)},
		{ID: "D", CycleTimeDays: 0, Estimate: est(5)},
		{ID: "E", CycleTimeDays: 4, Estimate: est(0)},
		{ID: "F", CycleTimeDays: 4},
	}

	res := AggregateCorrelation(items)

	if len(res.Groups) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(res.Groups))
	}
	g := res.Groups[0]
	if g.Estimate != 3 || g.Min != 5 || g.Max != 9 || g.Avg != 7 || g.Count != 2 {
		t.Errorf("Unexpected est=3 group: %+v", g)
	}
	if len(g.Members) != 2 || g.Members[0] != "A" || g.Members[1] != "B" {
		t.Errorf("Unexpected members: %v", g.Members)
	}
	if res.Groups[1].Estimate != 5 || res.Groups[1].Count != 1 {
		t.Errorf("Unexpected est=5 group: %+v", res.Groups[1])
	}
	if res.TotalItems != 3 || res.DistinctEstimates != 2 {
		t.Errorf("Expected 3 items over 2 estimates, got %d over %d", res.TotalItems, res.DistinctEstimates)
	}
	if res.EstimateRange != "3-5" {
		t.Errorf("Expected range '3-5', got %q", res.EstimateRange)
	}
}

func TestAggregateCorrelation_Empty(t *testing.T) {
	res := AggregateCorrelation([]dataset.WorkItem{{ID: "A", CycleTimeDays: 3}})

	if len(res.Groups) != 0 || res.TotalItems != 0 || res.EstimateRange != "" || res.Coefficient != 0 {
		t.Errorf("Expected empty correlation, got %+v", res)
	}
}

func TestAggregateCorrelation_SingleEstimate(t *testing.T) {
	res := AggregateCorrelation([]dataset.WorkItem{
		{ID: "A", CycleTimeDays: 3, Estimate: est(2)},
		{ID: "B", CycleTimeDays: 4, Estimate: est(2)},
	})

	if res.EstimateRange != "2" {
		t.Errorf("Expected range '2', got %q", res.EstimateRange)
	}
	if res.Coefficient != 0 {
		t.Errorf("Expected 0 coefficient for constant estimates, got %v", res.Coefficient)
	}
}

func TestCalculateCorrelation(t *testing.T) {
	perfect := CalculateCorrelation([]float64{1, 2, 3, 4}, []float64{2, 4, 6, 8})
	if math.Abs(perfect-1) > 1e-9 {
		t.Errorf("Expected perfect positive correlation, got %.3f", perfect)
	}

	inverse := CalculateCorrelation([]float64{1, 2, 3, 4}, []float64{8, 6, 4, 2})
	if math.Abs(inverse+1) > 1e-9 {
		t.Errorf("Expected perfect negative correlation, got %.3f", inverse)
	}

	if c := CalculateCorrelation([]float64{1, 2}, []float64{1}); c != 0 {
		t.Errorf("Expected 0 for mismatched series, got %v", c)
	}
}
