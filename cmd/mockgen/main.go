package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"flowcast/cmd/mockgen/engine"
)

func main() {
	scenario := flag.String("scenario", "mild", "Scenario to generate: mild, chaos, drift")
	distribution := flag.String("distribution", "uniform", "Distribution to use: uniform, weibull")
	out := flag.String("out", "./.cache/items.csv", "Output file (.csv or .xlsx)")
	count := flag.Int("count", 200, "Number of items to start")
	dirty := flag.Int("dirty", 0, "Number of invalid rows to append")
	seed := flag.Int64("seed", 0, "Random seed (0 seeds from the clock)")
	flag.Parse()

	cfg := engine.GeneratorConfig{
		Scenario:     *scenario,
		Distribution: *distribution,
		Count:        *count,
		Dirty:        *dirty,
		Now:          time.Now(),
		Seed:         *seed,
	}

	fmt.Printf("Generating scenario '%s' (Distribution: %s, Count: %d) to %s...\n", cfg.Scenario, cfg.Distribution, cfg.Count, *out)

	items := engine.Generate(cfg)

	if err := engine.Save(*out, items, cfg.Dirty); err != nil {
		fmt.Printf("Failed to save mock data: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Done. %d completed items written.\n", len(items))
}
