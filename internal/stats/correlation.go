package stats

import (
	"fmt"
	"math"
	"slices"

	"flowcast/internal/dataset"

	"github.com/samber/lo"
)

// EstimateGroup summarizes the cycle times of items sharing an estimate.
type EstimateGroup struct {
	Estimate int      `json:"estimate"`
	Min      float64  `json:"min"`
	Max      float64  `json:"max"`
	Avg      float64  `json:"avg"`
	Count    int      `json:"count"`
	Members  []string `json:"members"`
}

// Correlation is the estimate vs. cycle time banding of a dataset.
type Correlation struct {
	Groups            []EstimateGroup `json:"groups"`
	TotalItems        int             `json:"total_items"`
	DistinctEstimates int             `json:"distinct_estimates"`
	EstimateRange     string          `json:"estimate_range"`
	Coefficient       float64         `json:"pearson_coefficient"`
}

type estimatedItem struct {
	id        string
	estimate  int
	cycleTime float64
}

// AggregateCorrelation groups items by integer estimate. Items without a
// positive estimate or with a non-positive cycle time are left out.
func AggregateCorrelation(items []dataset.WorkItem) Correlation {
	qualifying := make([]estimatedItem, 0, len(items))
	for _, it := range items {
		if it.Estimate == nil || it.CycleTimeDays <= 0 {
			continue
		}
		est := int(math.Trunc(*it.Estimate))
		if est <= 0 {
			continue
		}
		qualifying = append(qualifying, estimatedItem{id: it.ID, estimate: est, cycleTime: it.CycleTimeDays})
	}

	if len(qualifying) == 0 {
		return Correlation{Groups: []EstimateGroup{}}
	}

	byEstimate := lo.GroupBy(qualifying, func(e estimatedItem) int { return e.estimate })
	estimates := lo.Keys(byEstimate)
	slices.Sort(estimates)

	groups := make([]EstimateGroup, 0, len(estimates))
	for _, est := range estimates {
		members := byEstimate[est]
		g := EstimateGroup{
			Estimate: est,
			Min:      members[0].cycleTime,
			Max:      members[0].cycleTime,
			Count:    len(members),
			Members:  make([]string, 0, len(members)),
		}
		sum := 0.0
		for _, m := range members {
			g.Min = math.Min(g.Min, m.cycleTime)
			g.Max = math.Max(g.Max, m.cycleTime)
			sum += m.cycleTime
			g.Members = append(g.Members, m.id)
		}
		g.Avg = sum / float64(len(members))
		groups = append(groups, g)
	}

	xs := lo.Map(qualifying, func(e estimatedItem, _ int) float64 { return float64(e.estimate) })
	ys := lo.Map(qualifying, func(e estimatedItem, _ int) float64 { return e.cycleTime })

	return Correlation{
		Groups:            groups,
		TotalItems:        len(qualifying),
		DistinctEstimates: len(groups),
		EstimateRange:     estimateRange(estimates),
		Coefficient:       CalculateCorrelation(xs, ys),
	}
}

func estimateRange(sorted []int) string {
	if len(sorted) == 0 {
		return ""
	}
	first, last := sorted[0], sorted[len(sorted)-1]
	if first == last {
		return fmt.Sprintf("%d", first)
	}
	return fmt.Sprintf("%d-%d", first, last)
}

// CalculateCorrelation calculates the Pearson correlation between two series.
// Mismatched, empty or zero-variance input yields 0.
func CalculateCorrelation(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	n := float64(len(a))
	sumA, sumB := 0.0, 0.0
	sumA2, sumB2 := 0.0, 0.0
	sumAB := 0.0

	for i := 0; i < len(a); i++ {
		sumA += a[i]
		sumB += b[i]
		sumA2 += a[i] * a[i]
		sumB2 += b[i] * b[i]
		sumAB += a[i] * b[i]
	}

	num := (n * sumAB) - (sumA * sumB)
	den := math.Sqrt((n*sumA2 - sumA*sumA) * (n*sumB2 - sumB*sumB))

	if den == 0 || math.IsNaN(den) {
		return 0
	}

	return num / den
}
