package visuals

import (
	"fmt"
	"math"
	"strings"

	"flowcast/internal/simulation"
	"flowcast/internal/stats"
)

// maxPoints is roughly where xychart-beta labels start to overlap.
const maxPoints = 60

// subsampleRate returns the stride that keeps n points under maxPoints.
func subsampleRate(n int) int {
	if n > maxPoints {
		return int(math.Ceil(float64(n) / maxPoints))
	}
	return 1
}

func fence(body string) string {
	return "```mermaid\n" + body + "```"
}

// GenerateXmRChart creates a Mermaid xychart-beta for Process Behaviour (Individuals chart with limits).
func GenerateXmRChart(result stats.ProcessBehaviour) string {
	if len(result.Points) == 0 {
		return ""
	}

	var labels []string
	var values []string
	var averages []string
	var unpls []string
	var lnpls []string

	cl := fmt.Sprintf("%.1f", result.Limits.CentralLine)
	unpl := fmt.Sprintf("%.1f", result.Limits.UpperLimit)
	lnpl := fmt.Sprintf("%.1f", result.Limits.LowerLimit)

	rate := subsampleRate(len(result.Points))
	for i, p := range result.Points {
		if i%rate != 0 && i != len(result.Points)-1 {
			continue
		}
		labels = append(labels, fmt.Sprintf("%d", p.Index))
		values = append(values, fmt.Sprintf("%.1f", p.Value))
		averages = append(averages, cl)
		unpls = append(unpls, unpl)
		lnpls = append(lnpls, lnpl)
	}

	// Dynamically scale Y-axis based on max value to give breathing room above the UNPL
	maxY := result.Limits.UpperLimit * 1.2
	for _, p := range result.Points {
		if p.Value > maxY {
			maxY = p.Value * 1.1
		}
	}

	var sb strings.Builder
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Process Behaviour (XmR)\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Cycle Time (Days)\" 0 --> %d\n", int(math.Ceil(maxY))))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(values, ", ")))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(averages, ", ")))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(unpls, ", ")))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(lnpls, ", ")))
	return fence(sb.String())
}

// GenerateThroughputChart creates a Mermaid bar chart of daily throughput.
// Long series are folded into consecutive buckets labelled by their first day.
func GenerateThroughputChart(series []stats.DailyThroughput) string {
	if len(series) == 0 {
		return ""
	}

	rate := subsampleRate(len(series))
	title := "Delivery Cadence (Daily Throughput)"
	if rate > 1 {
		title = fmt.Sprintf("Delivery Cadence (Throughput per %d Days)", rate)
	}

	var labels []string
	var values []string
	maxVal := 0
	for start := 0; start < len(series); start += rate {
		end := min(start+rate, len(series))
		count := 0
		for _, d := range series[start:end] {
			count += d.Count
		}
		labels = append(labels, fmt.Sprintf("\"%s\"", series[start].Date.Format("Jan02")))
		values = append(values, fmt.Sprintf("%d", count))
		if count > maxVal {
			maxVal = count
		}
	}

	var sb strings.Builder
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title \"%s\"\n", title))
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Items Delivered\" 0 --> %d\n", maxVal+int(math.Max(1, float64(maxVal)*0.2))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	return fence(sb.String())
}

// GenerateCadenceChart creates a Mermaid bar chart of bucketed throughput.
// Partial buckets are marked with an asterisk.
func GenerateCadenceChart(cadence []stats.DeliveryCadence) string {
	if len(cadence) == 0 {
		return ""
	}

	var labels []string
	var values []string
	maxVal := 0
	for _, c := range cadence {
		label := c.Label
		if c.Partial {
			label += "*"
		}
		labels = append(labels, fmt.Sprintf("\"%s\"", label))
		values = append(values, fmt.Sprintf("%d", c.ItemsDelivered))
		maxVal = max(maxVal, c.ItemsDelivered)
	}

	var sb strings.Builder
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Delivery Cadence (* = partial period)\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Items Delivered\" 0 --> %d\n", maxVal+int(math.Max(1, float64(maxVal)*0.2))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	return fence(sb.String())
}

// GenerateCycleTimeChart creates a Mermaid bar chart of the cycle-time frequency
// distribution with the 85th percentile drawn as a line.
func GenerateCycleTimeChart(result stats.CycleTimeAnalysis) string {
	if len(result.Distribution) == 0 {
		return ""
	}

	var labels []string
	var values []string
	maxVal := 0
	for _, bin := range result.Distribution {
		labels = append(labels, fmt.Sprintf("%d", bin.Days))
		values = append(values, fmt.Sprintf("%d", bin.Count))
		if bin.Count > maxVal {
			maxVal = bin.Count
		}
	}

	var sb strings.Builder
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title \"Cycle Time Distribution (85th percentile: %.1f days)\"\n", result.ReferenceLine))
	sb.WriteString(fmt.Sprintf("    x-axis \"Cycle Time (Days)\" [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Items\" 0 --> %d\n", maxVal+1))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	return fence(sb.String())
}

// GenerateCorrelationChart creates a Mermaid chart of average and maximum cycle time per estimate.
func GenerateCorrelationChart(result stats.Correlation) string {
	if len(result.Groups) == 0 {
		return ""
	}

	var labels []string
	var avgs []string
	var maxes []string
	maxVal := 0.0
	for _, g := range result.Groups {
		labels = append(labels, fmt.Sprintf("\"%d\"", g.Estimate))
		avgs = append(avgs, fmt.Sprintf("%.1f", g.Avg))
		maxes = append(maxes, fmt.Sprintf("%.1f", g.Max))
		if g.Max > maxVal {
			maxVal = g.Max
		}
	}

	var sb strings.Builder
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Estimate vs. Cycle Time\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis \"Estimate\" [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Cycle Time (Days)\" 0 --> %d\n", int(math.Ceil(maxVal*1.2))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(avgs, ", ")))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(maxes, ", ")))
	return fence(sb.String())
}

var cdfLevels = []struct {
	level float64
	label string
}{
	{10, "10% (Aggressive)"},
	{30, "30% (Unlikely)"},
	{50, "50% (Coin Toss)"},
	{70, "70% (Probable)"},
	{85, "85% (Likely)"},
	{90, "90% (Conservative)"},
	{95, "95% (Safe)"},
	{98, "98% (Certain)"},
}

// GenerateSimulationCDF creates a Mermaid bar chart showing the forecast at increasing confidence levels.
func GenerateSimulationCDF(result simulation.Result) string {
	if result.Trials == 0 || result.Max == 0 {
		return ""
	}

	yAxisLabel := "Days (Duration)"
	if result.Mode == simulation.ModeScope {
		yAxisLabel = "Items Delivered (Scope)"
	}

	labels := make([]string, 0, len(cdfLevels))
	values := make([]string, 0, len(cdfLevels))
	for _, l := range cdfLevels {
		labels = append(labels, fmt.Sprintf("\"%s\"", l.label))
		values = append(values, fmt.Sprintf("%d", result.AtConfidence(l.level)))
	}

	var sb strings.Builder
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Monte Carlo Simulation (Cumulative Probability)\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"%s\" 0 --> %d\n", yAxisLabel, int(math.Ceil(float64(result.Max)*1.1))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	return fence(sb.String())
}

// GenerateForecastHistogram creates a Mermaid bar chart of how often each outcome occurred.
func GenerateForecastHistogram(result simulation.Result) string {
	bins := result.Bins()
	if len(bins) == 0 {
		return ""
	}

	xLabel := "Items Delivered"
	if result.Mode == simulation.ModeDuration {
		xLabel = "Days"
	}

	var labels []string
	var values []string
	maxVal := 0
	rate := subsampleRate(len(bins))
	for start := 0; start < len(bins); start += rate {
		end := min(start+rate, len(bins))
		count := 0
		for _, b := range bins[start:end] {
			count += b.Count
		}
		labels = append(labels, fmt.Sprintf("%d", bins[start].Value))
		values = append(values, fmt.Sprintf("%d", count))
		if count > maxVal {
			maxVal = count
		}
	}

	var sb strings.Builder
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title \"Forecast Outcomes (%d trials)\"\n", result.Trials))
	sb.WriteString(fmt.Sprintf("    x-axis \"%s\" [%s]\n", xLabel, strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Trials\" 0 --> %d\n", maxVal+int(math.Max(1, float64(maxVal)*0.1))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	return fence(sb.String())
}
