package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"flowcast/internal/simulation"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

const (
	envPrefix      = "FLOWCAST_"
	configEnv      = "FLOWCAST_CONFIG"
	configFileName = "flowcast.yaml"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	DataPath            string           `koanf:"data_path"`
	LogDir              string           `koanf:"log_dir"`
	HTTPAddr            string           `koanf:"http_addr" validate:"required,hostname_port"`
	EnableMermaidCharts bool             `koanf:"enable_mermaid_charts"`
	Simulation          SimulationConfig `koanf:"simulation"`

	// ConfigFile is the yaml file that was loaded, if any.
	ConfigFile string `koanf:"-"`
}

// SimulationConfig holds the operator limits for Monte-Carlo runs.
type SimulationConfig struct {
	DefaultTrials      int `koanf:"default_trials" validate:"gtefield=MinTrials,ltefield=MaxTrials"`
	MinTrials          int `koanf:"min_trials" validate:"min=1"`
	MaxTrials          int `koanf:"max_trials" validate:"gtefield=MinTrials"`
	DefaultHorizonDays int `koanf:"default_horizon_days" validate:"gtefield=MinHorizonDays,ltefield=MaxHorizonDays"`
	MinHorizonDays     int `koanf:"min_horizon_days" validate:"min=1"`
	MaxHorizonDays     int `koanf:"max_horizon_days" validate:"gtefield=MinHorizonDays"`
	MaxBacklog         int `koanf:"max_backlog" validate:"min=1"`
	Workers            int `koanf:"workers" validate:"min=1,max=256"`
}

// Bounds returns the limits every simulation is clamped to.
func (c SimulationConfig) Bounds() simulation.Bounds {
	return simulation.Bounds{
		MinTrials:      c.MinTrials,
		MaxTrials:      c.MaxTrials,
		MinHorizonDays: c.MinHorizonDays,
		MaxHorizonDays: c.MaxHorizonDays,
		MaxBacklog:     c.MaxBacklog,
	}
}

// Params returns the parameters used when a caller does not supply any.
func (c SimulationConfig) Params() simulation.Params {
	return simulation.Params{Trials: c.DefaultTrials, HorizonDays: c.DefaultHorizonDays}
}

func defaults() map[string]any {
	b := simulation.DefaultBounds()
	return map[string]any{
		"data_path":                       "",
		"log_dir":                         "",
		"http_addr":                       "127.0.0.1:8080",
		"enable_mermaid_charts":           false,
		"simulation.default_trials":       simulation.DefaultTrials,
		"simulation.min_trials":           b.MinTrials,
		"simulation.max_trials":           b.MaxTrials,
		"simulation.default_horizon_days": simulation.DefaultHorizonDays,
		"simulation.min_horizon_days":     b.MinHorizonDays,
		"simulation.max_horizon_days":     b.MaxHorizonDays,
		"simulation.max_backlog":          b.MaxBacklog,
		"simulation.workers":              1,
	}
}

// RegisterFlags adds the configuration flags to a flag set.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a flowcast.yaml configuration file")
	fs.String("data-path", "", "directory for logs and generated files")
	fs.String("log-dir", "", "directory for the rotating log file (default <data-path>/logs)")
	fs.String("addr", "", "HTTP listen address for serve")
	fs.Int("workers", 1, "goroutines used per simulation")
	fs.Bool("mermaid", false, "include Mermaid charts in tool responses")
}

// flagKeys maps flag names to config keys where they differ.
var flagKeys = map[string]string{
	"addr":    "http_addr",
	"workers": "simulation.workers",
	"mermaid": "enable_mermaid_charts",
}

// Load loads the configuration. Precedence (highest to lowest):
// flags > FLOWCAST_* env vars > yaml file > defaults. A .env file beside the
// binary or in the working directory seeds the environment first.
func Load(flags *pflag.FlagSet) (*AppConfig, error) {
	// 1. Try to load from the executable's directory (highest priority for MCP servers)
	exeDir := ""
	if exePath, err := os.Executable(); err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	cfgFile := findConfigFile(flags, exeDir)
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	// FLOWCAST_SIMULATION__MAX_TRIALS -> simulation.max_trials
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.ConfigFile = cfgFile

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	resolvePaths(&cfg, exeDir)
	return &cfg, nil
}

// Validate checks the bounds of a configuration.
func Validate(cfg *AppConfig) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		var msgs []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
			}
		} else {
			msgs = append(msgs, err.Error())
		}
		return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
	}
	return nil
}

// findConfigFile finds the config file to use.
// Priority: --config flag > FLOWCAST_CONFIG > ./flowcast.yaml > flowcast.yaml beside the binary
func findConfigFile(flags *pflag.FlagSet, exeDir string) string {
	if flags != nil {
		if path, _ := flags.GetString("config"); path != "" {
			return path
		}
	}
	if path := os.Getenv(configEnv); path != "" {
		return path
	}
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName
	}
	if exeDir != "" {
		candidate := filepath.Join(exeDir, configFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

func resolvePaths(cfg *AppConfig, exeDir string) {
	if cfg.DataPath == "" {
		if exeDir != "" {
			cfg.DataPath = exeDir
		} else {
			cfg.DataPath = "."
		}
	}
	if cfg.LogDir == "" {
		cfg.LogDir = filepath.Join(cfg.DataPath, "logs")
	}

	// Ensure directories exist
	if err := os.MkdirAll(cfg.LogDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", cfg.LogDir).Msg("Failed to create log directory")
	}
}
