package mcp

import (
	"context"
	"errors"

	"flowcast/internal/simulation"
	"flowcast/internal/visuals"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) handleForecastMonteCarlo(ctx context.Context, req *sdk.CallToolRequest, in ForecastInput) (*sdk.CallToolResult, any, error) {
	session, err := s.session(in.DatasetID)
	if err != nil {
		return nil, nil, err
	}

	params := s.cfg.Simulation.Params()
	if in.Trials > 0 {
		params.Trials = in.Trials
	}
	if in.HorizonDays > 0 {
		params.HorizonDays = in.HorizonDays
	}

	result := session.Forecast(params, simulation.NewSource(in.Seed))
	result.Insights = append(result.Insights, "Scope Interpretation: P85 is the number of items delivered at least, with 85% confidence, within the horizon.")

	res := map[string]interface{}{
		"forecast":      result,
		"_data_quality": session.Warnings(),
		"_guidance": []string{
			"Higher confidence means FEWER items: P95 <= P85 <= P50.",
			"DO NOT extrapolate beyond this result if the simulation returned zero trials or warnings about missing throughput.",
		},
	}
	if s.cfg.EnableMermaidCharts {
		res["visual_simulation_cdf"] = visuals.GenerateSimulationCDF(result)
		res["visual_simulation_histogram"] = visuals.GenerateForecastHistogram(result)
	}
	return nil, res, nil
}

func (s *Server) handleForecastDuration(ctx context.Context, req *sdk.CallToolRequest, in DurationInput) (*sdk.CallToolResult, any, error) {
	session, err := s.session(in.DatasetID)
	if err != nil {
		return nil, nil, err
	}
	if in.BacklogItems <= 0 {
		return nil, nil, errors.New("backlog_items must be > 0 for a duration forecast")
	}

	trials := s.cfg.Simulation.DefaultTrials
	if in.Trials > 0 {
		trials = in.Trials
	}

	result := session.Duration(in.BacklogItems, trials, simulation.NewSource(in.Seed))

	res := map[string]interface{}{
		"forecast":      result,
		"_data_quality": session.Warnings(),
		"_guidance": []string{
			"Higher confidence means MORE days: P50 <= P85 <= P95.",
			"If the result is unexpectedly far in the future, warn the user that the throughput sample may be too sparse.",
		},
	}
	if s.cfg.EnableMermaidCharts {
		res["visual_simulation_cdf"] = visuals.GenerateSimulationCDF(result)
	}
	return nil, res, nil
}

func (s *Server) handleForecastBacktest(ctx context.Context, req *sdk.CallToolRequest, in BacktestInput) (*sdk.CallToolResult, any, error) {
	session, err := s.session(in.DatasetID)
	if err != nil {
		return nil, nil, err
	}

	cfg := simulation.DefaultWalkForwardConfig()
	if in.Mode != "" {
		cfg.Mode = simulation.Mode(in.Mode)
	}
	cfg.LookbackDays = in.LookbackDays
	cfg.StepDays = in.StepDays
	cfg.HorizonDays = in.HorizonDays
	cfg.BacklogItems = in.BacklogItems

	result, err := session.Backtest(cfg, simulation.NewSource(in.Seed))
	if err != nil {
		return nil, nil, err
	}

	res := map[string]interface{}{
		"backtest":      result,
		"_data_quality": session.Warnings(),
		"_guidance": []string{
			"An accuracy score below 0.7 means the history is a poor predictor of the near future; present forecasts with that caveat.",
		},
	}
	return nil, res, nil
}
