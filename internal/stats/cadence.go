package stats

import (
	"time"
)

// DeliveryCadence is the throughput of one calendar bucket.
type DeliveryCadence struct {
	Start          time.Time `json:"start"`
	Label          string    `json:"label"`
	ItemsDelivered int       `json:"items_delivered"`
	ObservedDays   int       `json:"observed_days"`
	Partial        bool      `json:"partial,omitempty"` // bucket only partly covered by the data
}

// CalculateDeliveryCadence folds a daily throughput series into day, week or
// month buckets. Buckets at either end that the data only partly covers are
// flagged so they are not mistaken for a slowdown.
func CalculateDeliveryCadence(series []DailyThroughput, bucket string) []DeliveryCadence {
	if len(series) == 0 {
		return []DeliveryCadence{}
	}

	w := NewAnalysisWindow(series[0].Date, series[len(series)-1].Date, bucket)
	starts := w.Subdivide()
	results := make([]DeliveryCadence, len(starts))
	for i, s := range starts {
		results[i] = DeliveryCadence{
			Start:   s,
			Label:   w.GenerateLabel(s),
			Partial: w.IsPartial(s),
		}
	}

	for _, d := range series {
		idx := w.FindBucketIndex(d.Date)
		if idx < 0 || idx >= len(results) {
			continue
		}
		results[idx].ItemsDelivered += d.Count
		results[idx].ObservedDays++
	}
	return results
}
