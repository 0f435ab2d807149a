package analysis

import (
	"testing"

	"flowcast/internal/dataset"
	"flowcast/internal/simulation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() dataset.Table {
	return dataset.NewTable(
		[]string{"ID", "End", "CT", "Estimate"},
		[][]string{
			{"A-1", "01/03/2024", "2", "1"},
			{"A-2", "01/03/2024", "3", "2"},
			{"A-3", "03/03/2024", "5", "3"},
			{"A-4", "not a date", "4", "1"},
			{"A-5", "05/03/2024", "-1", "2"},
			{"A-6", "06/03/2024", "8", "5"},
		},
	)
}

func TestSession_ProjectsValidItems(t *testing.T) {
	s := NewSession("sample.csv", sampleTable())

	assert.True(t, s.Columns().Usable())
	assert.Equal(t, 6, s.TotalRows())
	assert.Len(t, s.Items(), 4)
	assert.Equal(t, 2, s.DroppedRows())

	daily := s.Throughput()
	require.Len(t, daily, 6)
	assert.Equal(t, 2, daily[0].Count)
	assert.Equal(t, 0, daily[1].Count)
	assert.Equal(t, 1, daily[5].Count)
}

func TestSession_Analyses(t *testing.T) {
	s := NewSession("sample.csv", sampleTable())

	ct := s.CycleTime()
	assert.Equal(t, 4, ct.Count)
	assert.InDelta(t, 4.0, ct.P50, 1e-9)

	pb := s.ProcessBehaviour()
	require.Len(t, pb.Points, 4)
	assert.Equal(t, "A-1", pb.Points[0].Key)

	corr := s.Correlation()
	assert.Equal(t, 4, corr.TotalItems)
	assert.Equal(t, "1-5", corr.EstimateRange)

	summary := s.ThroughputSummary()
	assert.Equal(t, 6, summary.Days)
	assert.Equal(t, 4, summary.TotalItems)
}

func TestSession_Report(t *testing.T) {
	s := NewSession("sample.csv", sampleTable())

	r := s.Report(Options{Params: simulation.Params{Trials: 1000, HorizonDays: 7}, Seed: 42, Backlog: 5})

	assert.Equal(t, "sample.csv", r.Source)
	assert.Equal(t, 4, r.Items)
	assert.Equal(t, 2, r.DroppedRows)
	assert.Contains(t, r.Warnings, "2 of 6 rows were skipped because of an invalid date or cycle time.")
	assert.Equal(t, 1000, r.Forecast.Trials)
	assert.Equal(t, 7, r.Forecast.HorizonDays)
	require.NotNil(t, r.Duration)
	assert.Equal(t, 5, r.Duration.Backlog)

	again := NewSession("sample.csv", sampleTable()).Report(Options{Params: simulation.Params{Trials: 1000, HorizonDays: 7}, Seed: 42, Backlog: 5})
	assert.Equal(t, r, again)
}

func TestSession_UnusableSchema(t *testing.T) {
	table := dataset.NewTable(
		[]string{"Name", "Owner"},
		[][]string{{"alpha", "bob"}, {"beta", "eve"}},
	)
	s := NewSession("people.csv", table)

	r := s.Report(DefaultOptions())

	assert.Empty(t, s.Items())
	assert.Equal(t, 0, r.Items)
	assert.Equal(t, 0, r.Forecast.Trials)
	assert.Equal(t, 0.0, r.CycleTime.P85)
	require.NotEmpty(t, r.Warnings)
	assert.Equal(t, "No usable data: could not identify the end date and cycle time column.", r.Warnings[0])
}

func TestSession_SimulationBounds(t *testing.T) {
	s := NewSession("sample.csv", sampleTable()).
		WithSimulation(simulation.Bounds{MinTrials: 100, MaxTrials: 200, MinHorizonDays: 1, MaxHorizonDays: 3}, 0)

	res := s.Forecast(simulation.Params{Trials: 5000, HorizonDays: 30}, simulation.NewSource(1))
	assert.Equal(t, 200, res.Trials)
	assert.Equal(t, 3, res.HorizonDays)
}
