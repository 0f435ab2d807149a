package engine

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"flowcast/internal/dataset"

	"github.com/xuri/excelize/v2"
)

// Header is the column layout of generated files.
var Header = []string{"Key", "End Date", "Cycle Time", "Estimate"}

type GeneratorConfig struct {
	Scenario     string
	Distribution string // "uniform" or "weibull"
	Count        int
	Dirty        int // rows with an unparseable date or negative cycle time
	Now          time.Time
	Seed         int64
}

// Item is one completed work item.
type Item struct {
	Key           string
	CompletedOn   time.Time
	CycleTimeDays float64
	Estimate      int
}

var fibonacci = []int{1, 2, 3, 5, 8, 13}

// Generate starts Count items at a rate of one per day ending at Now and
// returns the ones that finished before Now, in completion order.
func Generate(cfg GeneratorConfig) []Item {
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	start := cfg.Now.AddDate(0, 0, -cfg.Count)
	items := make([]Item, 0, cfg.Count)

	for i := 0; i < cfg.Count; i++ {
		arrival := start.AddDate(0, 0, i)

		k, lambda := 2.5, 9.5 // Mild: ~8 day median
		switch cfg.Scenario {
		case "chaos":
			k = 0.8
			if cfg.Distribution == "weibull" {
				lambda = 12.0
			}
		case "drift":
			ratio := float64(i) / float64(cfg.Count)
			k = 2.5 - (1.7 * ratio) // Shift 2.5 -> 0.8
			lambda = 9.5 + (2.5 * ratio)
		}

		var duration float64
		if cfg.Distribution == "weibull" {
			duration = weibullSample(rng, k, lambda)
		} else {
			// Uniform baseline: 6-11 days
			duration = 6.0 + rng.Float64()*5.0
			if cfg.Scenario == "chaos" && rng.Float64() < 0.2 {
				duration += 10 + rng.Float64()*15 // Controlled Black Swans
			}
			if cfg.Scenario == "drift" && i > cfg.Count/2 {
				duration *= 2.0
			}
		}
		duration = math.Round(duration*10) / 10

		done := arrival.Add(time.Duration(duration * 24 * float64(time.Hour)))
		if !done.Before(cfg.Now) {
			continue
		}

		items = append(items, Item{
			Key:           fmt.Sprintf("FLOW-%d", i+1),
			CompletedOn:   time.Date(done.Year(), done.Month(), done.Day(), 0, 0, 0, 0, time.UTC),
			CycleTimeDays: duration,
			Estimate:      estimateFor(rng, duration),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CompletedOn.Before(items[j].CompletedOn)
	})
	return items
}

// estimateFor picks a Fibonacci estimate loosely tied to the duration.
func estimateFor(rng *rand.Rand, duration float64) int {
	idx := int(duration / 5)
	idx += rng.Intn(3) - 1
	idx = max(0, min(idx, len(fibonacci)-1))
	return fibonacci[idx]
}

func weibullSample(rng *rand.Rand, k, lambda float64) float64 {
	u := rng.Float64()
	if u == 0 {
		u = 0.0001
	}
	// X = lambda * (-ln(1-u))^(1/k)
	return lambda * math.Pow(-math.Log(1.0-u), 1.0/k)
}

// Records renders items as table rows, appending dirty rows the analysis must drop.
func Records(items []Item, dirty int) [][]string {
	records := make([][]string, 0, len(items)+dirty)
	for _, it := range items {
		records = append(records, []string{
			it.Key,
			it.CompletedOn.Format("02/01/2006"),
			strconv.FormatFloat(it.CycleTimeDays, 'f', -1, 64),
			strconv.Itoa(it.Estimate),
		})
	}
	for i := 0; i < dirty; i++ {
		key := fmt.Sprintf("DIRTY-%d", i+1)
		if i%2 == 0 {
			records = append(records, []string{key, "unknown", "4", "2"})
		} else {
			records = append(records, []string{key, "01/01/2024", "-3", "2"})
		}
	}
	return records
}

// Save writes the items to path as CSV or XLSX depending on its extension.
func Save(path string, items []Item, dirty int) error {
	format, err := dataset.DetectFormat(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	records := Records(items, dirty)
	if format == dataset.FormatXLSX {
		return saveXLSX(path, records)
	}
	return saveCSV(path, records)
}

func saveCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		return err
	}
	if err := w.WriteAll(records); err != nil {
		return err
	}
	return f.Close()
}

func saveXLSX(path string, records [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows := append([][]string{Header}, records...)
	for i, rec := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(rec))
		for j, v := range rec {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}
