package simulation

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// Source is the random source consumed by the Engine. *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
	Int63() int64
}

// NewSource returns a source seeded with seed, or with the clock when seed is 0.
func NewSource(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// durationSafetyLimit caps duration trials when sampled throughput keeps coming up empty.
const durationSafetyLimit = 20000

// minChunkTrials is the smallest slice of trials worth handing to a worker.
const minChunkTrials = 1000

// Engine performs the Monte-Carlo simulation.
type Engine struct {
	histogram *Histogram
	rng       Source
	bounds    Bounds
	workers   int
}

// NewEngine creates an engine over the histogram. A nil rng falls back to a time-seeded source.
func NewEngine(h *Histogram, rng Source) *Engine {
	if rng == nil {
		rng = NewSource(0)
	}
	if h == nil {
		h = &Histogram{}
	}
	return &Engine{
		histogram: h,
		rng:       rng,
		bounds:    DefaultBounds(),
		workers:   1,
	}
}

// WithBounds sets the parameter bounds applied to every run.
func (e *Engine) WithBounds(b Bounds) *Engine {
	e.bounds = b
	return e
}

// WithWorkers splits trials across n goroutines. Each worker draws from its own
// source seeded from the engine's source, so seeded runs stay reproducible.
func (e *Engine) WithWorkers(n int) *Engine {
	if n < 1 {
		n = 1
	}
	e.workers = n
	return e
}

// RunScope forecasts how many items complete within the horizon. Every trial
// sums HorizonDays days drawn with replacement from the throughput histogram.
func (e *Engine) RunScope(p Params) Result {
	p = e.bounds.Clamp(p)

	res := Result{
		Mode:        ModeScope,
		HorizonDays: p.HorizonDays,
		Histogram:   map[int]int{},
	}
	if len(e.histogram.Counts) == 0 {
		res.Warnings = append(res.Warnings, "No historical throughput available. Simulation was not run.")
		return res
	}

	counts := e.histogram.Counts
	totals := e.runTrials(p.Trials, func(rng Source) int {
		total := 0
		for d := 0; d < p.HorizonDays; d++ {
			total += counts[rng.Intn(len(counts))]
		}
		return total
	})
	sort.Ints(totals)

	res.summarize(totals)
	// Scope: "X% confidence of at least V items" reads from the low end.
	res.P50 = totals[scopeIndex(len(totals), 50)]
	res.P85 = totals[scopeIndex(len(totals), 85)]
	res.P95 = totals[scopeIndex(len(totals), 95)]

	if e.histogram.ZeroDayShare() > 0.5 {
		res.Insights = append(res.Insights, "More than half of the sampled days delivered nothing; expect a wide forecast range.")
	}
	return res
}

// RunDuration forecasts how many days it takes to finish backlog items.
func (e *Engine) RunDuration(backlog int, trials int) Result {
	p := Params{Trials: e.bounds.ClampTrials(trials)}
	requested := backlog
	backlog = e.bounds.ClampBacklog(backlog)

	res := Result{
		Mode:      ModeDuration,
		Backlog:   backlog,
		Histogram: map[int]int{},
	}
	if backlog != requested {
		res.Warnings = append(res.Warnings, fmt.Sprintf("Backlog of %d items was capped at %d.", requested, backlog))
	}
	if len(e.histogram.Counts) == 0 {
		res.Warnings = append(res.Warnings, "No historical throughput available. Simulation was not run.")
		return res
	}
	if backlog <= 0 {
		res.Warnings = append(res.Warnings, "Backlog is empty; nothing to forecast.")
		return res
	}
	if e.histogram.Total() == 0 {
		res.Trials = p.Trials
		res.P50, res.P85, res.P95 = durationSafetyLimit, durationSafetyLimit, durationSafetyLimit
		res.Min, res.Max, res.Mean = durationSafetyLimit, durationSafetyLimit, durationSafetyLimit
		res.Histogram[durationSafetyLimit] = p.Trials
		res.Warnings = append(res.Warnings, "No historical throughput found for the selected criteria. The duration forecast is theoretically infinite based on current data.")
		return res
	}

	counts := e.histogram.Counts
	days := e.runTrials(p.Trials, func(rng Source) int {
		elapsed := 0
		remaining := backlog
		for remaining > 0 && elapsed < durationSafetyLimit {
			elapsed++
			remaining -= counts[rng.Intn(len(counts))]
		}
		return elapsed
	})
	sort.Ints(days)

	res.summarize(days)
	// Duration: "X% confidence of finishing within D days" reads from the high end.
	res.P50 = days[durationIndex(len(days), 50)]
	res.P85 = days[durationIndex(len(days), 85)]
	res.P95 = days[durationIndex(len(days), 95)]

	if res.Max >= durationSafetyLimit {
		res.Warnings = append(res.Warnings, "Some trials hit the safety limit; throughput is too sparse for a reliable duration forecast.")
	}
	return res
}

func (e *Engine) runTrials(trials int, trial func(rng Source) int) []int {
	out := make([]int, trials)
	if e.workers <= 1 || trials < 2*minChunkTrials {
		for i := range out {
			out[i] = trial(e.rng)
		}
		return out
	}

	workers := e.workers
	if limit := trials / minChunkTrials; workers > limit {
		workers = limit
	}
	chunk := (trials + workers - 1) / workers

	// Seeds are drawn up front so the outcome does not depend on scheduling.
	seeds := make([]int64, workers)
	for i := range seeds {
		seeds[i] = e.rng.Int63()
	}

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := min(start+chunk, trials)
		if start >= end {
			break
		}
		rng := rand.New(rand.NewSource(seeds[w]))
		g.Go(func() error {
			for i := start; i < end; i++ {
				out[i] = trial(rng)
			}
			return nil
		})
	}
	_ = g.Wait()

	return out
}

// scopeIndex maps a confidence level to the ascending-array index floor(n*(1-level/100)).
func scopeIndex(n int, level float64) int {
	return clampIndex(int(math.Floor(float64(n)*(1-level/100))), n)
}

// durationIndex maps a confidence level to the ascending-array index floor(n*level/100).
func durationIndex(n int, level float64) int {
	return clampIndex(int(math.Floor(float64(n)*level/100)), n)
}

func clampIndex(idx, n int) int {
	if idx < 0 {
		return 0
	}
	if idx > n-1 {
		return n - 1
	}
	return idx
}
