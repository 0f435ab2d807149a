package engine

import (
	"path/filepath"
	"slices"
	"testing"
	"time"

	"flowcast/internal/dataset"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestGenerate_Deterministic(t *testing.T) {
	cfg := GeneratorConfig{Scenario: "chaos", Distribution: "weibull", Count: 120, Now: now, Seed: 11}

	a := Generate(cfg)
	b := Generate(cfg)
	if !slices.Equal(a, b) {
		t.Fatal("Expected identical output for the same seed")
	}
	if len(a) == 0 || len(a) > cfg.Count {
		t.Fatalf("Expected between 1 and %d items, got %d", cfg.Count, len(a))
	}

	for i, it := range a {
		if !it.CompletedOn.Before(now) {
			t.Errorf("%s completed in the future: %v", it.Key, it.CompletedOn)
		}
		if it.CycleTimeDays < 0 {
			t.Errorf("%s has negative cycle time %v", it.Key, it.CycleTimeDays)
		}
		if !slices.Contains(fibonacci, it.Estimate) {
			t.Errorf("%s has non-Fibonacci estimate %d", it.Key, it.Estimate)
		}
		if i > 0 && it.CompletedOn.Before(a[i-1].CompletedOn) {
			t.Errorf("Expected completion order, %s precedes %s", a[i-1].Key, it.Key)
		}
	}
}

func TestGenerate_UniformBounds(t *testing.T) {
	items := Generate(GeneratorConfig{Scenario: "mild", Count: 100, Now: now, Seed: 3})

	for _, it := range items {
		if it.CycleTimeDays < 6 || it.CycleTimeDays > 11 {
			t.Errorf("Expected uniform cycle time in [6, 11], got %v", it.CycleTimeDays)
		}
	}
}

func TestSave_RoundTrip(t *testing.T) {
	items := Generate(GeneratorConfig{Scenario: "mild", Count: 60, Now: now, Seed: 5})

	for _, name := range []string{"items.csv", "items.xlsx"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := Save(path, items, 3); err != nil {
				t.Fatalf("Save failed: %v", err)
			}

			table, err := dataset.ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile failed: %v", err)
			}
			if len(table.Rows) != len(items)+3 {
				t.Fatalf("Expected %d rows, got %d", len(items)+3, len(table.Rows))
			}

			cols := dataset.ResolveColumns(table.Headers, table.Rows)
			if !cols.Usable() || cols.Estimate.Key != "Estimate" {
				t.Fatalf("Expected all columns resolved, got %+v", cols)
			}
			parsed := dataset.ParseWorkItems(table.Rows, cols)
			if len(parsed) != len(items) {
				t.Errorf("Expected dirty rows to be dropped: %d items, got %d", len(items), len(parsed))
			}
		})
	}
}

func TestSave_UnsupportedFormat(t *testing.T) {
	if err := Save(filepath.Join(t.TempDir(), "items.json"), nil, 0); err == nil {
		t.Error("Expected an error for an unsupported extension")
	}
}
