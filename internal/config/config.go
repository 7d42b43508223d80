package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"gorarity/adapters/rarity/formulas"
	"gorarity/domain/rarity"
	"gorarity/internal"
	"gorarity/internal/errors"

	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	Scoring ScoringConfig
	Input   InputConfig
	Log     LogConfig
}

// ScoringConfig holds the options exposed to callers of the scoring engine
type ScoringConfig struct {
	Formula      rarity.FormulaName
	Normalized   bool
	RankBy       []rarity.RankMetric
	TieTolerance float64
	Workers      int
}

// InputConfig holds where token metadata comes from
type InputConfig struct {
	Path string
}

// LogConfig holds logging settings
type LogConfig struct {
	Level internal.LogLevel
}

// Load reads configuration from the file named by RARITY_CONFIG, if any, then
// environment variables, and validates it
func Load() (*Config, error) {
	return LoadFrom(getEnvOrDefault("RARITY_CONFIG", ""))
}

// LoadFrom layers defaults, the YAML file at path (skipped when empty) and the
// environment, in that order
func LoadFrom(path string) (*Config, error) {
	config := Default()

	if path != "" {
		if err := applyFile(config, path); err != nil {
			return nil, errors.Wrap(err, "failed to load configuration file")
		}
	}

	if err := applyEnv(config); err != nil {
		return nil, errors.Wrap(err, "failed to load scoring configuration")
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Scoring: ScoringConfig{
			Formula:      rarity.FormulaInformationContent,
			Normalized:   true,
			RankBy:       []rarity.RankMetric{rarity.RankByScore},
			TieTolerance: 1e-9,
			Workers:      runtime.GOMAXPROCS(0),
		},
		Log: LogConfig{Level: internal.LogLevelInfo},
	}
}

// fileConfig is the YAML layout; pointers tell unset keys from zero values
type fileConfig struct {
	Scoring struct {
		Formula      *string  `yaml:"formula"`
		Normalized   *bool    `yaml:"normalized"`
		RankBy       []string `yaml:"rank_by"`
		TieTolerance *float64 `yaml:"tie_tolerance"`
		Workers      *int     `yaml:"workers"`
	} `yaml:"scoring"`
	Input struct {
		Path string `yaml:"path"`
	} `yaml:"input"`
	LogLevel string `yaml:"log_level"`
}

func applyFile(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.ConfigInvalid(fmt.Sprintf("read config file: %v", err))
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return errors.ConfigInvalid(fmt.Sprintf("parse config yaml: %v", err))
	}

	if fc.Scoring.Formula != nil {
		formula, err := formulas.ParseName(*fc.Scoring.Formula)
		if err != nil {
			return errors.ConfigInvalid(err.Error())
		}
		config.Scoring.Formula = formula
	}
	if fc.Scoring.Normalized != nil {
		config.Scoring.Normalized = *fc.Scoring.Normalized
	}
	if len(fc.Scoring.RankBy) > 0 {
		rankBy, err := ParseRankBy(strings.Join(fc.Scoring.RankBy, ","))
		if err != nil {
			return err
		}
		config.Scoring.RankBy = rankBy
	}
	if fc.Scoring.TieTolerance != nil {
		config.Scoring.TieTolerance = *fc.Scoring.TieTolerance
	}
	if fc.Scoring.Workers != nil {
		config.Scoring.Workers = *fc.Scoring.Workers
	}
	if fc.Input.Path != "" {
		config.Input.Path = fc.Input.Path
	}
	if fc.LogLevel != "" {
		config.Log.Level = internal.ParseLogLevel(fc.LogLevel)
	}

	return nil
}

func applyEnv(config *Config) error {
	formula, err := formulas.ParseName(getEnvOrDefault("RARITY_FORMULA", string(config.Scoring.Formula)))
	if err != nil {
		return errors.ConfigInvalid(err.Error())
	}
	config.Scoring.Formula = formula

	if value := os.Getenv("RARITY_RANK_BY"); value != "" {
		rankBy, err := ParseRankBy(value)
		if err != nil {
			return err
		}
		config.Scoring.RankBy = rankBy
	}

	config.Scoring.Normalized = getEnvBoolOrDefault("RARITY_NORMALIZED", config.Scoring.Normalized)
	config.Scoring.TieTolerance = getEnvFloatOrDefault("RARITY_TIE_TOLERANCE", config.Scoring.TieTolerance)
	config.Scoring.Workers = getEnvIntOrDefault("RARITY_WORKERS", config.Scoring.Workers)
	config.Input.Path = getEnvOrDefault("RARITY_INPUT", config.Input.Path)
	if value := os.Getenv("LOG_LEVEL"); value != "" {
		config.Log.Level = internal.ParseLogLevel(value)
	}

	return nil
}

// ParseRankBy parses a comma separated list of rank metrics
func ParseRankBy(s string) ([]rarity.RankMetric, error) {
	var metrics []rarity.RankMetric
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		m, err := rarity.ParseRankMetric(part)
		if err != nil {
			return nil, errors.ConfigInvalid(err.Error())
		}
		metrics = append(metrics, m)
	}
	if len(metrics) == 0 {
		metrics = []rarity.RankMetric{rarity.RankByScore}
	}
	return metrics, nil
}

func validateConfig(config *Config) error {
	if config.Scoring.TieTolerance < 0 {
		return errors.ConfigInvalid("tie tolerance must not be negative")
	}
	if config.Scoring.Workers < 1 {
		return errors.ConfigInvalid("workers must be at least 1")
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
