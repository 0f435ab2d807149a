package simulation

import (
	"flowcast/internal/stats"
)

// recentWindowDays is the trailing window used for the recent throughput rate.
const recentWindowDays = 30

// Histogram tracks daily throughput counts, the sampling universe of the simulation.
// Zero days are part of the sample.
type Histogram struct {
	Counts []int
	Meta   map[string]any
}

// NewHistogram creates a histogram from a contiguous daily throughput series.
func NewHistogram(series []stats.DailyThroughput) *Histogram {
	return NewHistogramFromCounts(stats.ThroughputCounts(series))
}

// NewHistogramFromCounts creates a histogram from raw per-day counts.
// Negative counts are treated as zero.
func NewHistogramFromCounts(counts []int) *Histogram {
	buckets := make([]int, len(counts))
	for i, c := range counts {
		if c > 0 {
			buckets[i] = c
		}
	}

	days := len(buckets)
	totalCount := 0
	recentCount := 0
	zeroDays := 0
	for i, c := range buckets {
		totalCount += c
		if i >= days-recentWindowDays {
			recentCount += c
		}
		if c == 0 {
			zeroDays++
		}
	}

	avgAcross := 0.0
	recentAvg := 0.0
	if days > 0 {
		avgAcross = float64(totalCount) / float64(days)

		recentDays := recentWindowDays
		if days < recentWindowDays {
			recentDays = days
		}
		recentAvg = float64(recentCount) / float64(recentDays)
	}

	meta := map[string]any{
		"days_in_sample":     days,
		"items_in_sample":    totalCount,
		"zero_days":          zeroDays,
		"throughput_overall": avgAcross,
		"throughput_recent":  recentAvg,
	}

	return &Histogram{
		Counts: buckets,
		Meta:   meta,
	}
}

// Total is the number of items across all sampled days.
func (h *Histogram) Total() int {
	total := 0
	for _, c := range h.Counts {
		total += c
	}
	return total
}

// ZeroDayShare is the fraction of sampled days without a completion.
func (h *Histogram) ZeroDayShare() float64 {
	if len(h.Counts) == 0 {
		return 0
	}
	zero := 0
	for _, c := range h.Counts {
		if c == 0 {
			zero++
		}
	}
	return float64(zero) / float64(len(h.Counts))
}
