package stats

import (
	"testing"
	"time"

	"flowcast/internal/dataset"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildDailyThroughput_ZeroFill(t *testing.T) {
	items := []dataset.WorkItem{
		{ID: "A", CompletedOn: day(5)},
		{ID: "B", CompletedOn: day(1)},
		{ID: "C", CompletedOn: day(1)},
		{ID: "D", CompletedOn: day(5)},
		{ID: "E", CompletedOn: day(5)},
	}

	series := BuildDailyThroughput(items)

	if len(series) != 5 {
		t.Fatalf("Expected 5 days, got %d", len(series))
	}
	expected := []int{2, 0, 0, 0, 3}
	for i, c := range ThroughputCounts(series) {
		if c != expected[i] {
			t.Errorf("Day %d: expected %d, got %d", i, expected[i], c)
		}
	}
	for i, d := range series {
		if !d.Date.Equal(day(1 + i)) {
			t.Errorf("Day %d: expected date %v, got %v", i, day(1+i), d.Date)
		}
	}
}

func TestBuildDailyThroughput_AcrossMonthBoundary(t *testing.T) {
	items := []dataset.WorkItem{
		{CompletedOn: time.Date(2024, 2, 27, 0, 0, 0, 0, time.UTC)},
		{CompletedOn: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)},
	}

	series := BuildDailyThroughput(items)

	// 2024 is a leap year: 27, 28, 29 Feb, 1, 2 Mar.
	if len(series) != 5 {
		t.Fatalf("Expected 5 days, got %d", len(series))
	}
}

func TestBuildDailyThroughput_Empty(t *testing.T) {
	if series := BuildDailyThroughput(nil); len(series) != 0 {
		t.Errorf("Expected empty series, got %d entries", len(series))
	}
}

func TestSummarizeThroughput(t *testing.T) {
	series := []DailyThroughput{
		{Date: day(1), Count: 2},
		{Date: day(2), Count: 0},
		{Date: day(3), Count: 0},
		{Date: day(4), Count: 4},
	}

	s := SummarizeThroughput(series)

	if s.Days != 4 || s.TotalItems != 6 || s.MaxPerDay != 4 || s.ZeroDays != 2 {
		t.Errorf("Unexpected summary: %+v", s)
	}
	if s.MeanPerDay != 1.5 {
		t.Errorf("Expected mean 1.5, got %v", s.MeanPerDay)
	}
	if s.MedianPerDay != 1 {
		t.Errorf("Expected median 1, got %v", s.MedianPerDay)
	}
	if s.ZeroDayShare != 0.5 {
		t.Errorf("Expected zero-day share 0.5, got %v", s.ZeroDayShare)
	}
	if s.FirstDay != "2024-03-01" || s.LastDay != "2024-03-04" {
		t.Errorf("Unexpected range %s..%s", s.FirstDay, s.LastDay)
	}
}
