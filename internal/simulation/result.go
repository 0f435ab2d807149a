package simulation

import (
	"sort"
)

// Mode identifies the question a simulation answers.
type Mode string

const (
	ModeScope    Mode = "scope"    // how many items within N days
	ModeDuration Mode = "duration" // how many days for N items
)

// Result holds the percentiles of the simulation.
// For scope runs the values are item totals; for duration runs they are days.
type Result struct {
	Mode        Mode        `json:"mode"`
	Trials      int         `json:"trials"`
	HorizonDays int         `json:"horizon_days,omitempty"`
	Backlog     int         `json:"backlog,omitempty"`
	P50         int         `json:"p50"`
	P85         int         `json:"p85"`
	P95         int         `json:"p95"`
	Mean        float64     `json:"mean"`
	Min         int         `json:"min"`
	Max         int         `json:"max"`
	Histogram   map[int]int `json:"histogram"`
	Warnings    []string    `json:"warnings,omitempty"`
	Insights    []string    `json:"insights,omitempty"`
}

// Bin is one value of the outcome histogram.
type Bin struct {
	Value int `json:"value"`
	Count int `json:"count"`
}

func (r *Result) summarize(sorted []int) {
	r.Trials = len(sorted)
	if len(sorted) == 0 {
		return
	}

	sum := 0
	for _, v := range sorted {
		sum += v
		r.Histogram[v]++
	}
	r.Mean = float64(sum) / float64(len(sorted))
	r.Min = sorted[0]
	r.Max = sorted[len(sorted)-1]
}

// Bins returns the histogram ordered by value.
func (r Result) Bins() []Bin {
	bins := make([]Bin, 0, len(r.Histogram))
	for v, c := range r.Histogram {
		bins = append(bins, Bin{Value: v, Count: c})
	}
	sort.Slice(bins, func(i, j int) bool { return bins[i].Value < bins[j].Value })
	return bins
}

// AtConfidence returns the forecast value held with the given confidence (0-100).
// Scope runs read floor(n*(1-level/100)) and duration runs floor(n*level/100)
// from the ascending outcomes.
func (r Result) AtConfidence(level float64) int {
	if r.Trials == 0 {
		return 0
	}

	idx := scopeIndex(r.Trials, level)
	if r.Mode == ModeDuration {
		idx = durationIndex(r.Trials, level)
	}

	seen := 0
	for _, b := range r.Bins() {
		seen += b.Count
		if seen > idx {
			return b.Value
		}
	}
	return r.Max
}

// ProbabilityOfAtLeast is the share of trials whose outcome reached v.
func (r Result) ProbabilityOfAtLeast(v int) float64 {
	if r.Trials == 0 {
		return 0
	}
	hits := 0
	for value, c := range r.Histogram {
		if value >= v {
			hits += c
		}
	}
	return float64(hits) / float64(r.Trials)
}
