package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := Load(newFlags(t, "--data-path", dir))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.HTTPAddr)
	assert.Equal(t, 10000, cfg.Simulation.DefaultTrials)
	assert.Equal(t, 14, cfg.Simulation.DefaultHorizonDays)
	assert.Equal(t, 1, cfg.Simulation.Workers)
	assert.Equal(t, filepath.Join(dir, "logs"), cfg.LogDir)
	assert.DirExists(t, cfg.LogDir)

	b := cfg.Simulation.Bounds()
	assert.Equal(t, 1000, b.MinTrials)
	assert.Equal(t, 100000, b.MaxTrials)
	assert.Equal(t, 1, b.MinHorizonDays)
	assert.Equal(t, 365, b.MaxHorizonDays)
	assert.Equal(t, 10000, b.MaxBacklog)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yamlPath := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
http_addr: "0.0.0.0:9000"
enable_mermaid_charts: true
simulation:
  default_trials: 20000
  workers: 2
`), 0o644))

	t.Setenv("FLOWCAST_CONFIG", yamlPath)
	t.Setenv("FLOWCAST_SIMULATION__DEFAULT_TRIALS", "30000")

	cfg, err := Load(newFlags(t, "--data-path", dir, "--workers", "8"))
	require.NoError(t, err)

	assert.Equal(t, yamlPath, cfg.ConfigFile)
	assert.Equal(t, "0.0.0.0:9000", cfg.HTTPAddr)
	assert.True(t, cfg.EnableMermaidCharts)
	assert.Equal(t, 30000, cfg.Simulation.DefaultTrials, "env overrides file")
	assert.Equal(t, 8, cfg.Simulation.Workers, "flag overrides file")
}

func TestLoad_WorkingDirectoryFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte("simulation:\n  default_horizon_days: 30\n"), 0o644))

	cfg, err := Load(newFlags(t, "--data-path", dir))
	require.NoError(t, err)

	assert.Equal(t, configFileName, cfg.ConfigFile)
	assert.Equal(t, 30, cfg.Simulation.DefaultHorizonDays)
}

func TestLoad_DotEnvQuoting(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(`FLOWCAST_LOG_DIR='`+filepath.Join(dir, "log dir")+`'`), 0o644))
	t.Cleanup(func() { os.Unsetenv("FLOWCAST_LOG_DIR") })

	cfg, err := Load(newFlags(t, "--data-path", dir))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "log dir"), cfg.LogDir)
}

func TestLoad_InvalidBounds(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("FLOWCAST_SIMULATION__MIN_TRIALS", "50000")

	_, err := Load(newFlags(t, "--data-path", dir))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DefaultTrials")
}

func TestValidate(t *testing.T) {
	valid := func() *AppConfig {
		return &AppConfig{
			HTTPAddr: ":8080",
			Simulation: SimulationConfig{
				DefaultTrials: 10, MinTrials: 1, MaxTrials: 100,
				DefaultHorizonDays: 7, MinHorizonDays: 1, MaxHorizonDays: 30,
				MaxBacklog: 500, Workers: 1,
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *AppConfig)
		wantErr bool
	}{
		{"valid", func(c *AppConfig) {}, false},
		{"zero workers", func(c *AppConfig) { c.Simulation.Workers = 0 }, true},
		{"max below min", func(c *AppConfig) { c.Simulation.MaxTrials = 0 }, true},
		{"horizon above max", func(c *AppConfig) { c.Simulation.DefaultHorizonDays = 31 }, true},
		{"bad address", func(c *AppConfig) { c.HTTPAddr = "nope" }, true},
		{"zero max backlog", func(c *AppConfig) { c.Simulation.MaxBacklog = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := Validate(c)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
