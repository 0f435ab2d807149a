package stats

import (
	"time"

	"flowcast/internal/dataset"
)

// DailyThroughput is the number of items completed on a calendar day.
type DailyThroughput struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// ThroughputSummary describes a daily throughput series.
type ThroughputSummary struct {
	Days         int     `json:"days"`
	TotalItems   int     `json:"total_items"`
	MeanPerDay   float64 `json:"mean_per_day"`
	MedianPerDay float64 `json:"median_per_day"`
	MaxPerDay    int     `json:"max_per_day"`
	ZeroDays     int     `json:"zero_days"`
	ZeroDayShare float64 `json:"zero_day_share"`
	FirstDay     string  `json:"first_day,omitempty"`
	LastDay      string  `json:"last_day,omitempty"`
}

// BuildDailyThroughput counts completions per day over the contiguous range
// between the earliest and latest completion date. Days without completions
// are present with a zero count.
func BuildDailyThroughput(items []dataset.WorkItem) []DailyThroughput {
	if len(items) == 0 {
		return nil
	}

	minDay := dataset.Day(items[0].CompletedOn)
	maxDay := minDay
	for _, it := range items[1:] {
		d := dataset.Day(it.CompletedOn)
		if d.Before(minDay) {
			minDay = d
		}
		if d.After(maxDay) {
			maxDay = d
		}
	}

	days := dayOffset(minDay, maxDay) + 1
	series := make([]DailyThroughput, days)
	for i := range series {
		series[i].Date = minDay.AddDate(0, 0, i)
	}

	for _, it := range items {
		series[dayOffset(minDay, dataset.Day(it.CompletedOn))].Count++
	}

	return series
}

// dayOffset returns whole days from a to b; both must be UTC midnights.
func dayOffset(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

// ThroughputCounts extracts the per-day counts in chronological order.
func ThroughputCounts(series []DailyThroughput) []int {
	counts := make([]int, len(series))
	for i, d := range series {
		counts[i] = d.Count
	}
	return counts
}

// SummarizeThroughput describes a daily series. Empty input yields zeros.
func SummarizeThroughput(series []DailyThroughput) ThroughputSummary {
	if len(series) == 0 {
		return ThroughputSummary{}
	}

	counts := ThroughputCounts(series)
	summary := ThroughputSummary{
		Days:         len(series),
		MedianPerDay: CalculateMedianDiscrete(counts),
		FirstDay:     series[0].Date.Format(time.DateOnly),
		LastDay:      series[len(series)-1].Date.Format(time.DateOnly),
	}
	for _, c := range counts {
		summary.TotalItems += c
		if c > summary.MaxPerDay {
			summary.MaxPerDay = c
		}
		if c == 0 {
			summary.ZeroDays++
		}
	}
	summary.MeanPerDay = float64(summary.TotalItems) / float64(summary.Days)
	summary.ZeroDayShare = float64(summary.ZeroDays) / float64(summary.Days)

	return summary
}
