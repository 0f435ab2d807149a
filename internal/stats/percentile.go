package stats

import (
	"math"
	"slices"
)

// Percentile returns the p-th quantile (p in [0,1]) of an ascending sample,
// interpolating linearly between the two nearest order statistics.
// An empty sample yields 0.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	index := float64(n-1) * p
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	weight := index - float64(lower)

	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Description summarizes a numeric sample.
type Description struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
}

// Describe computes count, mean, min, max and median. Empty input yields zeros.
func Describe(values []float64) Description {
	if len(values) == 0 {
		return Description{}
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	return Description{
		Count:  len(sorted),
		Mean:   Mean(sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Median: CalculateMedianContinuous(sorted),
	}
}
