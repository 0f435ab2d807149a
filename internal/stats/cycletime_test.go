package stats

import (
	"math"
	"testing"

	"flowcast/internal/dataset"
)

func TestAnalyzeCycleTimes(t *testing.T) {
	var items []dataset.WorkItem
	for i := 10; i >= 1; i-- {
		items = append(items, dataset.WorkItem{ID: string(rune('A' + i - 1)), CompletedOn: day(i), CycleTimeDays: float64(i)})
	}

	res := AnalyzeCycleTimes(items)

	if res.Count != 10 || res.Min != 1 || res.Max != 10 || res.Mean != 5.5 {
		t.Errorf("Unexpected description: %+v", res.Description)
	}
	if math.Abs(res.P85-8.65) > 1e-9 || res.ReferenceLine != res.P85 {
		t.Errorf("Expected interpolated P85 8.65, got %v (line %v)", res.P85, res.ReferenceLine)
	}
	if res.AboveReference != 2 {
		t.Errorf("Expected 2 items above the reference line, got %d", res.AboveReference)
	}
	if res.Points[0].ID != "A" || res.Points[0].CompletedOn != "2024-03-01" {
		t.Errorf("Expected points in completion order, got first %+v", res.Points[0])
	}
	if len(res.Distribution) != 10 || res.Distribution[0].Days != 1 || res.Distribution[0].Count != 1 {
		t.Errorf("Unexpected distribution: %+v", res.Distribution)
	}
}

func TestAnalyzeCycleTimes_FractionalDaysRoundUp(t *testing.T) {
	res := AnalyzeCycleTimes([]dataset.WorkItem{
		{ID: "A", CompletedOn: day(1), CycleTimeDays: 0.5},
		{ID: "B", CompletedOn: day(2), CycleTimeDays: 1},
		{ID: "C", CompletedOn: day(3), CycleTimeDays: 2.2},
	})

	expected := []FrequencyBin{{Days: 1, Count: 2}, {Days: 3, Count: 1}}
	if len(res.Distribution) != len(expected) {
		t.Fatalf("Expected %d bins, got %+v", len(expected), res.Distribution)
	}
	for i, b := range expected {
		if res.Distribution[i] != b {
			t.Errorf("Bin %d: expected %+v, got %+v", i, b, res.Distribution[i])
		}
	}
}

func TestAnalyzeCycleTimes_ExtremeOutlier(t *testing.T) {
	tests := []struct {
		name    string
		outlier float64
		days    int
	}{
		{"twenty million days", 2e7, 20000000},
		{"beyond int range", 1e300, math.MaxInt32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := AnalyzeCycleTimes([]dataset.WorkItem{
				{ID: "A", CompletedOn: day(1), CycleTimeDays: 1},
				{ID: "B", CompletedOn: day(2), CycleTimeDays: tt.outlier},
			})

			expected := []FrequencyBin{{Days: 1, Count: 1}, {Days: tt.days, Count: 1}}
			if len(res.Distribution) != len(expected) {
				t.Fatalf("Expected %d bins, got %d", len(expected), len(res.Distribution))
			}
			for i, b := range expected {
				if res.Distribution[i] != b {
					t.Errorf("Bin %d: expected %+v, got %+v", i, b, res.Distribution[i])
				}
			}
		})
	}
}

func TestAnalyzeCycleTimes_Empty(t *testing.T) {
	res := AnalyzeCycleTimes(nil)

	if res.Count != 0 || res.P85 != 0 || res.Mean != 0 {
		t.Errorf("Expected zeroed analysis, got %+v", res)
	}
}
