package stats

import (
	"fmt"
	"time"
)

// Bucket sizes for time-bucketed aggregations.
const (
	BucketDay   = "day"
	BucketWeek  = "week"
	BucketMonth = "month"
)

// ParseBucket validates a bucket name. An empty name means BucketDay.
func ParseBucket(s string) (string, error) {
	switch s {
	case "", BucketDay:
		return BucketDay, nil
	case BucketWeek, BucketMonth:
		return s, nil
	default:
		return "", fmt.Errorf("unknown bucket %q: use day, week or month", s)
	}
}

// AnalysisWindow is the calendar span of a dataset split into buckets.
// First and Last are the observed data boundaries; Start and End are snapped
// to whole buckets around them.
type AnalysisWindow struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	First  time.Time `json:"first"`
	Last   time.Time `json:"last"`
	Bucket string    `json:"bucket"` // "day", "week", "month"
}

// NewAnalysisWindow creates a window with boundaries snapped to the bucket.
func NewAnalysisWindow(first, last time.Time, bucket string) AnalysisWindow {
	if bucket == "" {
		bucket = BucketDay
	}
	return AnalysisWindow{
		Start:  SnapToStart(first, bucket),
		End:    SnapToEnd(last, bucket),
		First:  SnapToStart(first, BucketDay),
		Last:   SnapToStart(last, BucketDay),
		Bucket: bucket,
	}
}

// SnapToStart normalizes a timestamp to the beginning of its bucket (0:00:00).
func SnapToStart(t time.Time, bucket string) time.Time {
	if t.IsZero() {
		return t
	}
	switch bucket {
	case BucketMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	case BucketWeek:
		// Snap to Monday
		weekday := int(t.Weekday())
		if weekday == 0 {
			weekday = 7 // Sunday -> 7
		}
		return time.Date(t.Year(), t.Month(), t.Day()-(weekday-1), 0, 0, 0, 0, t.Location())
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
}

// SnapToEnd normalizes a timestamp to the very end of its bucket (23:59:59.999...).
func SnapToEnd(t time.Time, bucket string) time.Time {
	if t.IsZero() {
		return t
	}
	return next(SnapToStart(t, bucket), bucket).Add(-time.Nanosecond)
}

func next(bucketStart time.Time, bucket string) time.Time {
	switch bucket {
	case BucketMonth:
		return bucketStart.AddDate(0, 1, 0)
	case BucketWeek:
		return bucketStart.AddDate(0, 0, 7)
	default:
		return bucketStart.AddDate(0, 0, 1)
	}
}

// IsPartial reports whether the bucket starting at bucketStart extends beyond
// the observed data, so its total undercounts a full period.
func (w AnalysisWindow) IsPartial(bucketStart time.Time) bool {
	return bucketStart.Before(w.First) || SnapToEnd(bucketStart, w.Bucket).After(w.Last.AddDate(0, 0, 1))
}

// Subdivide returns the bucket start times within the window.
func (w AnalysisWindow) Subdivide() []time.Time {
	var buckets []time.Time
	for current := w.Start; current.Before(w.End); current = next(current, w.Bucket) {
		buckets = append(buckets, current)
	}
	return buckets
}

// FindBucketIndex returns the index of the bucket containing t, or -1 if out of bounds.
func (w AnalysisWindow) FindBucketIndex(t time.Time) int {
	tNorm := SnapToStart(t, w.Bucket)
	if tNorm.Before(w.Start) || tNorm.After(w.End) {
		return -1
	}

	switch w.Bucket {
	case BucketMonth:
		return (tNorm.Year()-w.Start.Year())*12 + int(tNorm.Month()-w.Start.Month())
	case BucketWeek:
		return int(tNorm.Sub(w.Start).Hours() / (24 * 7))
	default:
		return int(tNorm.Sub(w.Start).Hours() / 24)
	}
}

// GenerateLabel returns a human-readable label for a bucket (e.g., "Jan 2024" or "2024-W01").
func (w AnalysisWindow) GenerateLabel(t time.Time) string {
	switch w.Bucket {
	case BucketMonth:
		return t.Format("Jan 2006")
	case BucketWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	default:
		return t.Format(time.DateOnly)
	}
}
