package stats

import (
	"math"
)

// Wheeler's scaling constants for Individuals and Moving Range charts (n=2 subgroups).
const (
	NaturalProcessLimitFactor = 2.66
	MovingRangeLimitFactor    = 3.27
)

// ControlLimits holds the derived XmR chart limits.
type ControlLimits struct {
	CentralLine           float64 `json:"central_line"`
	UpperLimit            float64 `json:"upper_natural_process_limit"`
	LowerLimit            float64 `json:"lower_natural_process_limit"`
	AverageMovingRange    float64 `json:"average_moving_range"`
	MovingRangeUpperLimit float64 `json:"moving_range_upper_limit"`
}

// BehaviourPoint is one observation on the Individuals chart.
type BehaviourPoint struct {
	Index        int      `json:"index"` // 1-based
	Key          string   `json:"key,omitempty"`
	Value        float64  `json:"value"`
	MovingRange  *float64 `json:"moving_range"`
	SpecialCause bool     `json:"special_cause"`
}

// Signal represents a detected special cause variation.
type Signal struct {
	Index       int    `json:"index"`
	Key         string `json:"key"`
	Type        string `json:"type"` // "outlier", "shift"
	Description string `json:"description"`
}

// ProcessBehaviour represents the output of a Process Behaviour Chart analysis.
type ProcessBehaviour struct {
	Limits            ControlLimits    `json:"limits"`
	Points            []BehaviourPoint `json:"points"`
	Signals           []Signal         `json:"signals"`
	SpecialCauseCount int              `json:"special_cause_count"`
	Status            string           `json:"status"` // "stable", "unstable", "insufficient_data"
}

// CalculateControlLimits performs the math for an Individuals and Moving Range chart.
func CalculateControlLimits(values []float64) (ControlLimits, []float64) {
	if len(values) == 0 {
		return ControlLimits{}, nil
	}

	limits := ControlLimits{
		CentralLine: Mean(values),
	}

	var movingRanges []float64
	if len(values) > 1 {
		mrSum := 0.0
		movingRanges = make([]float64, len(values)-1)
		for i := 1; i < len(values); i++ {
			mr := math.Abs(values[i] - values[i-1])
			movingRanges[i-1] = mr
			mrSum += mr
		}
		limits.AverageMovingRange = mrSum / float64(len(movingRanges))
	}

	limits.UpperLimit = limits.CentralLine + (NaturalProcessLimitFactor * limits.AverageMovingRange)
	limits.LowerLimit = math.Max(0, limits.CentralLine-(NaturalProcessLimitFactor*limits.AverageMovingRange))
	limits.MovingRangeUpperLimit = MovingRangeLimitFactor * limits.AverageMovingRange

	return limits, movingRanges
}

// AnalyzeProcessBehaviour builds the XmR chart for a chronologically ordered
// sample and binds optional keys (item IDs) to points and signals.
func AnalyzeProcessBehaviour(values []float64, keys []string) ProcessBehaviour {
	if len(values) == 0 {
		return ProcessBehaviour{Status: "insufficient_data"}
	}

	limits, movingRanges := CalculateControlLimits(values)

	result := ProcessBehaviour{
		Limits: limits,
		Points: make([]BehaviourPoint, len(values)),
		Status: "stable",
	}

	for i, v := range values {
		p := BehaviourPoint{
			Index:        i + 1,
			Key:          keyAt(keys, i),
			Value:        v,
			SpecialCause: v > limits.UpperLimit || v < limits.LowerLimit,
		}
		if i > 0 {
			mr := movingRanges[i-1]
			p.MovingRange = &mr
		}
		if p.SpecialCause {
			result.SpecialCauseCount++
		}
		result.Points[i] = p
	}

	result.Signals = detectSignals(values, limits, keys)

	if len(values) < 2 {
		result.Status = "insufficient_data"
	} else if len(result.Signals) > 0 {
		result.Status = "unstable"
	}

	return result
}

func keyAt(keys []string, i int) string {
	if i < len(keys) {
		return keys[i]
	}
	return ""
}

func detectSignals(values []float64, limits ControlLimits, keys []string) []Signal {
	var signals []Signal

	for i, v := range values {
		if v > limits.UpperLimit {
			signals = append(signals, Signal{
				Index:       i + 1,
				Key:         keyAt(keys, i),
				Type:        "outlier",
				Description: "Point above Upper Natural Process Limit (UNPL)",
			})
		} else if v < limits.LowerLimit {
			signals = append(signals, Signal{
				Index:       i + 1,
				Key:         keyAt(keys, i),
				Type:        "outlier",
				Description: "Point below Lower Natural Process Limit (LNPL)",
			})
		}
	}

	if len(values) >= 8 {
		side := 0
		count := 0
		for i, v := range values {
			currentSide := 0
			if v > limits.CentralLine {
				currentSide = 1
			} else if v < limits.CentralLine {
				currentSide = -1
			}

			if currentSide == side && currentSide != 0 {
				count++
			} else {
				side = currentSide
				count = 1
			}

			if count == 8 {
				signals = append(signals, Signal{
					Index:       i + 1,
					Key:         keyAt(keys, i),
					Type:        "shift",
					Description: "8 consecutive points on one side of the average identified (Process Shift)",
				})
			}
		}
	}

	return signals
}
