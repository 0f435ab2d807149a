package commands

import (
	"fmt"
	"io"
	"path/filepath"

	"flowcast/internal/analysis"
	"flowcast/internal/config"
	"flowcast/internal/dataset"
	"flowcast/internal/logging"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// app is the state shared by the commands of one invocation.
type app struct {
	verbose   bool
	cfg       *config.AppConfig
	logCloser io.Closer
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "flowcast",
		Short: "Flowcast turns completed work items into flow metrics and Monte-Carlo forecasts",
		Long: `Flowcast reads a table of completed work items (CSV or XLSX) and reports cycle-time
percentiles, a process behaviour chart, estimate correlation and daily throughput,
then forecasts delivery with a Monte-Carlo simulation of historical throughput.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logCloser != nil {
				_ = a.logCloser.Close()
			}
		},
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose logging")
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		newAnalyzeCommand(a),
		newForecastCommand(a),
		newChartCommand(a),
		newServeCommand(a),
		newMCPCommand(a),
		newVersionCommand(),
	)
	return root
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCommand().Execute()
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	// Configuration loading logs at debug level before the real logger exists.
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	a.cfg = cfg

	closer, err := logging.Init(logging.Options{Verbose: a.verbose, Dir: cfg.LogDir})
	if err != nil {
		return err
	}
	a.logCloser = closer

	log.Debug().
		Str("version", Version).
		Str("commit", Commit).
		Str("buildDate", BuildDate).
		Str("config", cfg.ConfigFile).
		Msg("Flowcast starting")
	return nil
}

// session loads a dataset file into an analysis session bound to the configured simulation limits.
func (a *app) session(path string) (*analysis.Session, error) {
	table, err := dataset.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return analysis.NewSession(filepath.Base(path), table).
		WithSimulation(a.cfg.Simulation.Bounds(), a.cfg.Simulation.Workers), nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "flowcast %s (commit %s, built %s)\n", Version, Commit, BuildDate)
		},
	}
}
