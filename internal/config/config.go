package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"goassoc/internal/errors"

	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Bootstrap BootstrapConfig `yaml:"bootstrap"`
	Patterns  PatternConfig   `yaml:"patterns"`
	Network   NetworkConfig   `yaml:"network"`
	Runtime   RuntimeConfig   `yaml:"runtime"`
	Paths     PathConfig      `yaml:"paths"`
}

// AnalysisConfig holds hypothesis testing and effect size settings
type AnalysisConfig struct {
	// Alpha is the FDR significance threshold applied to adjusted p-values.
	Alpha float64 `yaml:"alpha"`
	// MinExpectedCellCount triggers the exact test when any expected
	// contingency cell falls below it.
	MinExpectedCellCount float64 `yaml:"min_expected_cell_count"`
	// LogOddsPseudocount is added to all four cells before the odds ratio.
	LogOddsPseudocount float64 `yaml:"log_odds_pseudocount"`
	// MinEffectSize prunes network edges whose |weight| falls below it.
	MinEffectSize float64 `yaml:"min_effect_size"`
}

// BootstrapConfig holds resampling settings
type BootstrapConfig struct {
	Iterations int   `yaml:"iterations"`
	Seed       int64 `yaml:"seed"`
}

// PatternConfig holds exclusivity scanning settings
type PatternConfig struct {
	// K is the combination size, 2 or 3.
	K int `yaml:"k"`
	// SDMultiplier scales the adaptive classification threshold
	// (mean ± multiplier × sample SD of observed-minus-expected deltas).
	SDMultiplier float64 `yaml:"sd_multiplier"`
	// PrevalenceFloor skips features present in fewer strains than this
	// (or absent in fewer) before combinations are enumerated.
	PrevalenceFloor int `yaml:"prevalence_floor"`
	// MaxCombinations aborts a scan that would enumerate more than this.
	MaxCombinations int `yaml:"max_combinations"`
}

// NetworkConfig holds association graph settings
type NetworkConfig struct {
	// WeightMetric selects the edge weight: phi, cramers_v, or log_odds.
	WeightMetric string `yaml:"weight_metric"`
	// HubZScoreMultiplier sets the hub cutoff above the mean degree centrality.
	HubZScoreMultiplier float64 `yaml:"hub_zscore_multiplier"`
	ComputeBetweenness  bool    `yaml:"compute_betweenness"`
}

// RuntimeConfig holds execution settings
type RuntimeConfig struct {
	// Workers bounds the pair-test and bootstrap fan-out. 0 means NumCPU.
	Workers int `yaml:"workers"`
	// BatchTimeout wraps the whole analysis call; zero disables it.
	// Individual pair computations are never cancelled mid-flight.
	BatchTimeout time.Duration `yaml:"batch_timeout"`
}

// PathConfig holds file system paths
type PathConfig struct {
	MatrixFile string `yaml:"matrix_file"`
	TreeFile   string `yaml:"tree_file"`
	OutputDir  string `yaml:"output_dir"`
}

// Valid weight metrics for NetworkConfig.WeightMetric.
const (
	WeightMetricPhi      = "phi"
	WeightMetricCramersV = "cramers_v"
	WeightMetricLogOdds  = "log_odds"
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Alpha:                0.05,
			MinExpectedCellCount: 5,
			LogOddsPseudocount:   0.5,
			MinEffectSize:        0.0,
		},
		Bootstrap: BootstrapConfig{
			Iterations: 1000,
			Seed:       42,
		},
		Patterns: PatternConfig{
			K:               2,
			SDMultiplier:    2.0,
			PrevalenceFloor: 1,
			MaxCombinations: 250000,
		},
		Network: NetworkConfig{
			WeightMetric:        WeightMetricPhi,
			HubZScoreMultiplier: 1.5,
			ComputeBetweenness:  false,
		},
		Runtime: RuntimeConfig{
			Workers:      0,
			BatchTimeout: 0,
		},
		Paths: PathConfig{
			OutputDir: "./out",
		},
	}
}

// Load reads configuration from defaults overlaid with environment variables
// and validates it
func Load() (*Config, error) {
	config := Default()
	applyEnv(config)

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// LoadWithProfile reads defaults, overlays a YAML profile file if path is
// non-empty, then overlays environment variables. Precedence: defaults <
// profile < env. Flags are applied by the CLI on top of the result.
func LoadWithProfile(path string) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.IOError(path, err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, errors.Wrapf(err, "failed to parse profile %s", path)
		}
	}

	applyEnv(config)

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func applyEnv(config *Config) {
	config.Analysis.Alpha = getEnvFloatOrDefault("ALPHA", config.Analysis.Alpha)
	config.Analysis.MinExpectedCellCount = getEnvFloatOrDefault("MIN_EXPECTED_CELL_COUNT", config.Analysis.MinExpectedCellCount)
	config.Analysis.LogOddsPseudocount = getEnvFloatOrDefault("LOG_ODDS_PSEUDOCOUNT", config.Analysis.LogOddsPseudocount)
	config.Analysis.MinEffectSize = getEnvFloatOrDefault("MIN_EFFECT_SIZE", config.Analysis.MinEffectSize)

	config.Bootstrap.Iterations = getEnvIntOrDefault("BOOTSTRAP_ITERATIONS", config.Bootstrap.Iterations)
	config.Bootstrap.Seed = getEnvInt64OrDefault("BOOTSTRAP_SEED", config.Bootstrap.Seed)

	config.Patterns.K = getEnvIntOrDefault("PATTERN_K", config.Patterns.K)
	config.Patterns.SDMultiplier = getEnvFloatOrDefault("PATTERN_SD_MULTIPLIER", config.Patterns.SDMultiplier)
	config.Patterns.PrevalenceFloor = getEnvIntOrDefault("PATTERN_PREVALENCE_FLOOR", config.Patterns.PrevalenceFloor)
	config.Patterns.MaxCombinations = getEnvIntOrDefault("PATTERN_MAX_COMBINATIONS", config.Patterns.MaxCombinations)

	config.Network.WeightMetric = getEnvOrDefault("NETWORK_WEIGHT_METRIC", config.Network.WeightMetric)
	config.Network.HubZScoreMultiplier = getEnvFloatOrDefault("HUB_ZSCORE_MULTIPLIER", config.Network.HubZScoreMultiplier)
	config.Network.ComputeBetweenness = getEnvBoolOrDefault("COMPUTE_BETWEENNESS", config.Network.ComputeBetweenness)

	config.Runtime.Workers = getEnvIntOrDefault("WORKERS", config.Runtime.Workers)
	config.Runtime.BatchTimeout = getEnvDurationOrDefault("BATCH_TIMEOUT", config.Runtime.BatchTimeout)

	config.Paths.MatrixFile = getEnvOrDefault("MATRIX_FILE", config.Paths.MatrixFile)
	config.Paths.TreeFile = getEnvOrDefault("TREE_FILE", config.Paths.TreeFile)
	config.Paths.OutputDir = getEnvOrDefault("OUTPUT_DIR", config.Paths.OutputDir)
}

func validateConfig(config *Config) error {
	if config.Analysis.Alpha <= 0 || config.Analysis.Alpha >= 1 {
		return errors.ConfigInvalid(fmt.Sprintf("alpha must be in (0,1), got %v", config.Analysis.Alpha))
	}
	if config.Analysis.MinExpectedCellCount < 0 {
		return errors.ConfigInvalid("min_expected_cell_count cannot be negative")
	}
	if config.Analysis.LogOddsPseudocount <= 0 {
		return errors.ConfigInvalid("log_odds_pseudocount must be positive")
	}
	if config.Analysis.MinEffectSize < 0 {
		return errors.ConfigInvalid("min_effect_size cannot be negative")
	}
	if config.Bootstrap.Iterations <= 0 {
		return errors.ConfigInvalid("bootstrap iterations must be positive")
	}
	if config.Patterns.K != 2 && config.Patterns.K != 3 {
		return errors.ConfigInvalid(fmt.Sprintf("pattern k must be 2 or 3, got %d", config.Patterns.K))
	}
	if config.Patterns.SDMultiplier <= 0 {
		return errors.ConfigInvalid("pattern sd_multiplier must be positive")
	}
	if config.Patterns.PrevalenceFloor < 0 {
		return errors.ConfigInvalid("pattern prevalence_floor cannot be negative")
	}
	if config.Patterns.MaxCombinations <= 0 {
		return errors.ConfigInvalid("pattern max_combinations must be positive")
	}
	switch config.Network.WeightMetric {
	case WeightMetricPhi, WeightMetricCramersV, WeightMetricLogOdds:
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unknown network weight_metric %q", config.Network.WeightMetric))
	}
	if config.Network.HubZScoreMultiplier <= 0 {
		return errors.ConfigInvalid("hub_zscore_multiplier must be positive")
	}
	if config.Runtime.Workers < 0 {
		return errors.ConfigInvalid("workers cannot be negative")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
