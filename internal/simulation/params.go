package simulation

// Defaults and limits for simulation parameters.
const (
	DefaultTrials      = 10000
	DefaultHorizonDays = 14
	DefaultMaxBacklog  = 10000
)

// Params is the immutable configuration of a single simulation run.
type Params struct {
	Trials      int `json:"trials"`
	HorizonDays int `json:"horizon_days"`
}

// Bounds are the operator-configured limits that Params are clamped to.
type Bounds struct {
	MinTrials      int `json:"min_trials"`
	MaxTrials      int `json:"max_trials"`
	MinHorizonDays int `json:"min_horizon_days"`
	MaxHorizonDays int `json:"max_horizon_days"`
	MaxBacklog     int `json:"max_backlog"` // 0 means DefaultMaxBacklog
}

// DefaultBounds returns the stock limits: [1000, 100000] trials, [1, 365] days
// and a backlog of at most 10000 items.
func DefaultBounds() Bounds {
	return Bounds{
		MinTrials:      1000,
		MaxTrials:      100000,
		MinHorizonDays: 1,
		MaxHorizonDays: 365,
		MaxBacklog:     DefaultMaxBacklog,
	}
}

// DefaultParams returns the recommended parameters.
func DefaultParams() Params {
	return Params{Trials: DefaultTrials, HorizonDays: DefaultHorizonDays}
}

// Clamp forces p into the bounds. Out-of-range values are never an error.
func (b Bounds) Clamp(p Params) Params {
	return Params{
		Trials:      b.ClampTrials(p.Trials),
		HorizonDays: clamp(p.HorizonDays, b.MinHorizonDays, b.MaxHorizonDays),
	}
}

// ClampTrials forces a trial count into the bounds.
func (b Bounds) ClampTrials(n int) int {
	return clamp(n, b.MinTrials, b.MaxTrials)
}

// ClampBacklog caps a duration forecast backlog.
func (b Bounds) ClampBacklog(n int) int {
	limit := b.MaxBacklog
	if limit <= 0 {
		limit = DefaultMaxBacklog
	}
	return min(n, limit)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
