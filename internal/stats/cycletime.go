package stats

import (
	"maps"
	"math"
	"slices"
	"time"

	"flowcast/internal/dataset"
)

// ReferencePercentile is the service level drawn as the reference line on cycle-time charts.
const ReferencePercentile = 0.85

// CycleTimePoint is one item on the cycle-time scatterplot.
type CycleTimePoint struct {
	ID          string  `json:"id"`
	CompletedOn string  `json:"completed_on"`
	CycleTime   float64 `json:"cycle_time"`
	AboveLine   bool    `json:"above_reference"`
}

// maxBinDays caps the bin key so extreme cycle times stay within int range.
const maxBinDays = math.MaxInt32

// FrequencyBin counts items whose cycle time rounds up to Days.
type FrequencyBin struct {
	Days  int `json:"days"`
	Count int `json:"count"`
}

// CycleTimeAnalysis is the distribution view of completed item cycle times.
type CycleTimeAnalysis struct {
	Description
	P50            float64          `json:"p50"`
	P70            float64          `json:"p70"`
	P85            float64          `json:"p85"`
	P95            float64          `json:"p95"`
	ReferenceLine  float64          `json:"reference_line"`
	AboveReference int              `json:"above_reference"`
	Distribution   []FrequencyBin   `json:"distribution"`
	Points         []CycleTimePoint `json:"points"`
}

// AnalyzeCycleTimes computes interpolated percentiles, the 85th percentile
// reference line and a whole-day frequency distribution holding only occupied
// days. Points are returned in completion order.
func AnalyzeCycleTimes(items []dataset.WorkItem) CycleTimeAnalysis {
	if len(items) == 0 {
		return CycleTimeAnalysis{Distribution: []FrequencyBin{}, Points: []CycleTimePoint{}}
	}

	chrono := dataset.SortChronologically(items)
	values := dataset.CycleTimes(chrono)

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	res := CycleTimeAnalysis{
		Description:   Describe(values),
		P50:           Percentile(sorted, 0.50),
		P70:           Percentile(sorted, 0.70),
		P85:           Percentile(sorted, 0.85),
		P95:           Percentile(sorted, 0.95),
		ReferenceLine: Percentile(sorted, ReferencePercentile),
		Points:        make([]CycleTimePoint, 0, len(chrono)),
	}

	counts := make(map[int]int)
	for _, it := range chrono {
		above := it.CycleTimeDays > res.ReferenceLine
		if above {
			res.AboveReference++
		}
		res.Points = append(res.Points, CycleTimePoint{
			ID:          it.ID,
			CompletedOn: it.CompletedOn.Format(time.DateOnly),
			CycleTime:   it.CycleTimeDays,
			AboveLine:   above,
		})
		counts[binDays(it.CycleTimeDays)]++
	}

	days := slices.Sorted(maps.Keys(counts))
	res.Distribution = make([]FrequencyBin, 0, len(days))
	for _, d := range days {
		res.Distribution = append(res.Distribution, FrequencyBin{Days: d, Count: counts[d]})
	}

	return res
}

func binDays(ct float64) int {
	return int(math.Min(math.Ceil(ct), maxBinDays))
}
