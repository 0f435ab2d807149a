package mcp

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"flowcast/internal/analysis"
	"flowcast/internal/dataset"
	"flowcast/internal/stats"
	"flowcast/internal/visuals"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) handleLoadDataset(ctx context.Context, req *sdk.CallToolRequest, in LoadDatasetInput) (*sdk.CallToolResult, any, error) {
	var (
		table dataset.Table
		name  string
		err   error
	)

	switch {
	case in.Path != "":
		table, err = dataset.ReadFile(in.Path)
		if err != nil {
			return nil, nil, err
		}
		name = filepath.Base(in.Path)
	case len(in.Rows) > 0:
		table = inlineTable(in.Headers, in.Rows)
		name = in.Name
		if name == "" {
			name = "inline"
		}
	default:
		return nil, nil, errors.New("either path or rows must be provided")
	}

	id, session := s.registry.Register(name, table)

	res := map[string]interface{}{
		"dataset_id":    id,
		"source":        name,
		"columns":       session.Columns(),
		"total_rows":    session.TotalRows(),
		"items":         len(session.Items()),
		"dropped_rows":  session.DroppedRows(),
		"_data_quality": session.Warnings(),
		"_guidance": []string{
			"Pass dataset_id to the analyze_* and forecast_* tools.",
			"Columns with confidence 'low' were inferred from cell content; confirm them with the user before drawing conclusions.",
		},
	}
	return nil, res, nil
}

// inlineTable builds a table from JSON objects. Without explicit headers the
// union of keys is used in sorted order.
func inlineTable(headers []string, objects []map[string]any) dataset.Table {
	if len(headers) == 0 {
		seen := make(map[string]bool)
		for _, obj := range objects {
			for k := range obj {
				if !seen[k] {
					seen[k] = true
					headers = append(headers, k)
				}
			}
		}
		sort.Strings(headers)
	}

	rows := make([]dataset.Row, 0, len(objects))
	for _, obj := range objects {
		rows = append(rows, dataset.NewRow(obj))
	}
	return dataset.Table{Headers: headers, Rows: rows}
}

func (s *Server) session(id string) (*analysis.Session, error) {
	if id == "" {
		return nil, errors.New("dataset_id is required; call load_dataset first")
	}
	return s.registry.Get(id)
}

func (s *Server) handleAnalyzeCycleTime(ctx context.Context, req *sdk.CallToolRequest, in DatasetInput) (*sdk.CallToolResult, any, error) {
	session, err := s.session(in.DatasetID)
	if err != nil {
		return nil, nil, err
	}

	ct := session.CycleTime()
	res := map[string]interface{}{
		"cycle_time":    ct,
		"_data_quality": session.Warnings(),
		"_guidance": []string{
			"Percentiles are interpolated. Quote the 85th percentile as '85% of items finished within N days'.",
			"Items above the reference line are the ones worth a conversation; they are listed in points with above_reference=true.",
		},
	}
	if s.cfg.EnableMermaidCharts {
		res["visual_cycle_time_histogram"] = visuals.GenerateCycleTimeChart(ct)
	}
	return nil, res, nil
}

func (s *Server) handleAnalyzeProcessBehaviour(ctx context.Context, req *sdk.CallToolRequest, in DatasetInput) (*sdk.CallToolResult, any, error) {
	session, err := s.session(in.DatasetID)
	if err != nil {
		return nil, nil, err
	}

	pb := session.ProcessBehaviour()
	res := map[string]interface{}{
		"process_behaviour": pb,
		"_data_quality":     session.Warnings(),
		"_guidance": []string{
			"Points outside the natural process limits are special causes: investigate them individually instead of averaging them away.",
			"Shift signals (8 consecutive points on one side of the average) indicate a changed process; forecasts that sample across the shift are less reliable.",
		},
	}
	if s.cfg.EnableMermaidCharts {
		res["visual_xmr_chart"] = visuals.GenerateXmRChart(pb)
	}
	return nil, res, nil
}

func (s *Server) handleAnalyzeCorrelation(ctx context.Context, req *sdk.CallToolRequest, in DatasetInput) (*sdk.CallToolResult, any, error) {
	session, err := s.session(in.DatasetID)
	if err != nil {
		return nil, nil, err
	}

	corr := session.Correlation()
	res := map[string]interface{}{
		"correlation":   corr,
		"_data_quality": session.Warnings(),
		"_guidance": []string{
			fmt.Sprintf("Pearson coefficient %.2f: values near 0 mean estimates say little about how long items take.", corr.Coefficient),
		},
	}
	if s.cfg.EnableMermaidCharts {
		res["visual_correlation_chart"] = visuals.GenerateCorrelationChart(corr)
	}
	return nil, res, nil
}

func (s *Server) handleAnalyzeThroughput(ctx context.Context, req *sdk.CallToolRequest, in ThroughputInput) (*sdk.CallToolResult, any, error) {
	session, err := s.session(in.DatasetID)
	if err != nil {
		return nil, nil, err
	}
	if in.Bucket == "" {
		in.Bucket = stats.BucketWeek
	}
	bucket, err := stats.ParseBucket(in.Bucket)
	if err != nil {
		return nil, nil, err
	}

	daily := session.Throughput()
	cadence := session.Cadence(bucket)
	res := map[string]interface{}{
		"summary":       session.ThroughputSummary(),
		"daily":         daily,
		"cadence":       cadence,
		"_data_quality": session.Warnings(),
		"_guidance": []string{
			"Cadence buckets marked partial are only partly covered by the data; do not read their lower totals as a slowdown.",
		},
	}
	if s.cfg.EnableMermaidCharts {
		res["visual_throughput_chart"] = visuals.GenerateThroughputChart(daily)
		res["visual_cadence_chart"] = visuals.GenerateCadenceChart(cadence)
	}
	return nil, res, nil
}
