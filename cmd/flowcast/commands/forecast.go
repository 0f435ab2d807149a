package commands

import (
	"fmt"

	"flowcast/internal/simulation"

	"github.com/spf13/cobra"
)

type forecastOutput struct {
	Forecast simulation.Result             `json:"forecast"`
	Duration *simulation.Result            `json:"duration,omitempty"`
	Backtest *simulation.WalkForwardResult `json:"backtest,omitempty"`
}

func newForecastCommand(a *app) *cobra.Command {
	var (
		trials   int
		horizon  int
		seed     int64
		backlog  int
		backtest bool
		format   string
	)

	cmd := &cobra.Command{
		Use:   "forecast <file>",
		Short: "Monte-Carlo forecast from the daily throughput of a work-item file",
		Long: `Resample the historical daily throughput to forecast how many items will be
delivered within a horizon and, with --backlog, how many days a backlog takes.
--backtest replays the forecaster at past checkpoints to show how well it
would have predicted this team's own history.`,
		Example: `  flowcast forecast items.csv --horizon 30 --seed 7
  flowcast forecast items.csv --backlog 25 --backtest`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			session, err := a.session(args[0])
			if err != nil {
				return err
			}
			if !session.Columns().Usable() {
				return fmt.Errorf("%s: %s", session.Name(), session.Warnings()[0])
			}

			params := a.cfg.Simulation.Params()
			if trials > 0 {
				params.Trials = trials
			}
			if horizon > 0 {
				params.HorizonDays = horizon
			}

			rng := simulation.NewSource(seed)
			out := forecastOutput{Forecast: session.Forecast(params, rng)}
			if backlog > 0 {
				d := session.Duration(backlog, params.Trials, rng)
				out.Duration = &d
			}
			if backtest {
				cfg := simulation.DefaultWalkForwardConfig()
				cfg.HorizonDays = params.HorizonDays
				if backlog > 0 {
					cfg.Mode = simulation.ModeDuration
					cfg.BacklogItems = backlog
				}
				bt, err := session.Backtest(cfg, rng)
				if err != nil {
					return fmt.Errorf("backtest: %w", err)
				}
				out.Backtest = &bt
			}

			if format == formatJSON {
				return renderJSON(cmd.OutOrStdout(), out)
			}
			r := newRenderer(cmd.OutOrStdout(), format)
			renderForecast(r, out.Forecast)
			if out.Duration != nil {
				renderForecast(r, *out.Duration)
			}
			if out.Backtest != nil {
				renderBacktest(r, *out.Backtest)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&trials, "trials", 0, "number of trials (default from configuration)")
	cmd.Flags().IntVar(&horizon, "horizon", 0, "forecast horizon in days (default from configuration)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for a reproducible run (0 seeds from the clock)")
	cmd.Flags().IntVar(&backlog, "backlog", 0, "forecast the days needed to deliver this many items")
	cmd.Flags().BoolVar(&backtest, "backtest", false, "validate the forecaster against the file's own history")
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: table, json or markdown")
	return cmd
}
