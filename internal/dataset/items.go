package dataset

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"
)

// WorkItem is a completed work item extracted from a Row.
type WorkItem struct {
	ID            string    `json:"id"`
	CompletedOn   time.Time `json:"completed_on"`
	CycleTimeDays float64   `json:"cycle_time_days"`
	Estimate      *float64  `json:"estimate,omitempty"`
}

// ParseWorkItems converts rows into work items using the resolved columns.
// Rows with an invalid date or cycle time are skipped. Without a resolved
// end-date or cycle-time column the result is empty.
func ParseWorkItems(rows []Row, cols ResolvedColumns) []WorkItem {
	if !cols.Usable() {
		return nil
	}

	items := make([]WorkItem, 0, len(rows))
	for i, row := range rows {
		item, ok := parseWorkItem(row, cols, i)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return items
}

func parseWorkItem(row Row, cols ResolvedColumns, index int) (WorkItem, bool) {
	completed, ok := ParseDate(row.Get(cols.EndDate.Key))
	if !ok {
		return WorkItem{}, false
	}

	ct, err := strconv.ParseFloat(row.Get(cols.CycleTime.Key), 64)
	if err != nil || ct < 0 || math.IsNaN(ct) || math.IsInf(ct, 0) {
		return WorkItem{}, false
	}

	id := row.Get(cols.ID.Key)
	if id == "" {
		id = fmt.Sprintf("row-%d", index+1)
	}

	item := WorkItem{
		ID:            id,
		CompletedOn:   completed,
		CycleTimeDays: ct,
	}

	if cols.Estimate.Found() {
		if est, err := strconv.ParseFloat(row.Get(cols.Estimate.Key), 64); err == nil && !math.IsNaN(est) && !math.IsInf(est, 0) {
			item.Estimate = &est
		}
	}

	return item, true
}

// SortChronologically orders items by completion date, keeping input order for ties.
func SortChronologically(items []WorkItem) []WorkItem {
	sorted := make([]WorkItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CompletedOn.Before(sorted[j].CompletedOn)
	})
	return sorted
}

// CycleTimes extracts the cycle-time sample in item order.
func CycleTimes(items []WorkItem) []float64 {
	out := make([]float64, len(items))
	for i, it := range items {
		out[i] = it.CycleTimeDays
	}
	return out
}

// IDs extracts item identifiers in item order.
func IDs(items []WorkItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
