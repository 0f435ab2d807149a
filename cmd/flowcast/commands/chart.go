package commands

import (
	"fmt"

	"flowcast/internal/analysis"
	"flowcast/internal/simulation"
	"flowcast/internal/stats"
	"flowcast/internal/visuals"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var chartKinds = []string{"xmr", "throughput", "cycletime", "correlation", "forecast"}

func renderChart(session *analysis.Session, kind, bucket string, params simulation.Params, seed int64) (string, error) {
	switch kind {
	case "xmr":
		return visuals.GenerateXmRChart(session.ProcessBehaviour()), nil
	case "throughput":
		b, err := stats.ParseBucket(bucket)
		if err != nil {
			return "", err
		}
		if b == stats.BucketDay {
			return visuals.GenerateThroughputChart(session.Throughput()), nil
		}
		return visuals.GenerateCadenceChart(session.Cadence(b)), nil
	case "cycletime":
		return visuals.GenerateCycleTimeChart(session.CycleTime()), nil
	case "correlation":
		return visuals.GenerateCorrelationChart(session.Correlation()), nil
	case "forecast":
		return visuals.GenerateSimulationCDF(session.Forecast(params, simulation.NewSource(seed))), nil
	default:
		return "", fmt.Errorf("unknown chart kind %q: use one of %v", kind, chartKinds)
	}
}

func newChartCommand(a *app) *cobra.Command {
	var (
		kind   string
		bucket string
		open   bool
		seed   int64
	)

	cmd := &cobra.Command{
		Use:   "chart <file>",
		Short: "Print a Mermaid chart for a work-item file",
		Example: `  flowcast chart items.csv --kind xmr
  flowcast chart items.csv --kind throughput --bucket week
  flowcast chart items.csv --kind forecast --open`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.session(args[0])
			if err != nil {
				return err
			}

			chart, err := renderChart(session, kind, bucket, a.cfg.Simulation.Params(), seed)
			if err != nil {
				return err
			}
			if chart == "" {
				return fmt.Errorf("%s: not enough data for a %s chart", session.Name(), kind)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), chart)

			if open {
				log.Info().Str("kind", kind).Msg("Opening chart in mermaid.live")
				return visuals.OpenInBrowser(chart)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "xmr", fmt.Sprintf("chart to render: %v", chartKinds))
	cmd.Flags().StringVar(&bucket, "bucket", stats.BucketDay, "throughput bucket: day, week or month")
	cmd.Flags().BoolVar(&open, "open", false, "open the chart in the mermaid.live editor")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for the forecast chart")
	return cmd
}
