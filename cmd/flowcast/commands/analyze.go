package commands

import (
	"flowcast/internal/analysis"

	"github.com/spf13/cobra"
)

func newAnalyzeCommand(a *app) *cobra.Command {
	var (
		format  string
		seed    int64
		backlog int
	)

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Run every analysis over a work-item file",
		Long: `Resolve the columns of a CSV or XLSX file, drop invalid rows and report
cycle-time percentiles, the process behaviour chart, estimate correlation,
daily throughput and a scope forecast with the configured defaults.`,
		Example: `  flowcast analyze items.csv
  flowcast analyze items.xlsx --format markdown --backlog 40`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			session, err := a.session(args[0])
			if err != nil {
				return err
			}

			report := session.Report(analysis.Options{
				Params:  a.cfg.Simulation.Params(),
				Seed:    seed,
				Backlog: backlog,
			})
			return renderReport(cmd.OutOrStdout(), report, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: table, json or markdown")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for a reproducible forecast (0 seeds from the clock)")
	cmd.Flags().IntVar(&backlog, "backlog", 0, "also forecast the days needed to deliver this many items")
	return cmd
}
