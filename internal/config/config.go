// Package config manages reportqa configuration loading with XDG user
// config, project-local overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level configuration structure.
type Config struct {
	Anthropic  AnthropicConfig  `mapstructure:"anthropic"`
	Validation ValidationConfig `mapstructure:"validation"`
	Reflection ReflectionConfig `mapstructure:"reflection"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline"`
	Retry      RetryConfig      `mapstructure:"retry"`
	History    HistoryConfig    `mapstructure:"history"`
}

// AnthropicConfig contains API settings.
type AnthropicConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	UseBedrock bool   `mapstructure:"use_bedrock"`
	AWSRegion  string `mapstructure:"aws_region"`
	AWSProfile string `mapstructure:"aws_profile"`
}

// ValidationConfig contains numeric validation settings.
type ValidationConfig struct {
	// Sector selects the benchmark table (e_ticaret, saas, perakende,
	// uretim, hizmet). Unknown sectors fall back to the default table.
	Sector string `mapstructure:"sector"`
	// BenchmarksPath optionally points at a YAML benchmark table that
	// replaces the built-in one.
	BenchmarksPath string `mapstructure:"benchmarks_path"`
	// SumTolerance is the allowed deviation of a percentage column from 100.
	SumTolerance float64 `mapstructure:"sum_tolerance"`
	// GrowthWarnCeiling flags growth rates above it as suspicious.
	GrowthWarnCeiling float64 `mapstructure:"growth_warn_ceiling"`
	// GrowthErrorCeiling flags growth rates above it as errors.
	GrowthErrorCeiling float64 `mapstructure:"growth_error_ceiling"`
}

// ReflectionConfig contains critique/revise loop settings.
type ReflectionConfig struct {
	ScoreThreshold    int `mapstructure:"score_threshold"`
	CritiqueMaxTokens int `mapstructure:"critique_max_tokens"`
	ReviseMaxTokens   int `mapstructure:"revise_max_tokens"`
}

// PipelineConfig contains batch run settings.
type PipelineConfig struct {
	MaxWorkers int `mapstructure:"max_workers"`
}

// RetryConfig contains the transient-failure retry policy.
type RetryConfig struct {
	MaxAttempts    int           `mapstructure:"max_attempts"`
	MinWait        time.Duration `mapstructure:"min_wait"`
	MaxWait        time.Duration `mapstructure:"max_wait"`
	Multiplier     float64       `mapstructure:"multiplier"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// HistoryConfig contains run-history store settings.
type HistoryConfig struct {
	// Path is the SQLite database file. Empty means the XDG data
	// location; "off" disables recording.
	Path string `mapstructure:"path"`
}

// Load loads configuration from XDG paths, project overrides, and
// environment variables. Precedence (highest to lowest):
//  1. Environment variables (ANTHROPIC_API_KEY)
//  2. Project config (.reportqa.yaml in current directory or a parent)
//  3. User config (~/.config/reportqa/config.yaml)
//  4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getUserConfigDir())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific file (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("anthropic.api_key", cfg.Anthropic.APIKey)
	v.Set("anthropic.model", cfg.Anthropic.Model)
	v.Set("anthropic.use_bedrock", cfg.Anthropic.UseBedrock)
	v.Set("anthropic.aws_region", cfg.Anthropic.AWSRegion)
	v.Set("anthropic.aws_profile", cfg.Anthropic.AWSProfile)
	v.Set("validation.sector", cfg.Validation.Sector)
	v.Set("validation.benchmarks_path", cfg.Validation.BenchmarksPath)
	v.Set("validation.sum_tolerance", cfg.Validation.SumTolerance)
	v.Set("validation.growth_warn_ceiling", cfg.Validation.GrowthWarnCeiling)
	v.Set("validation.growth_error_ceiling", cfg.Validation.GrowthErrorCeiling)
	v.Set("reflection.score_threshold", cfg.Reflection.ScoreThreshold)
	v.Set("reflection.critique_max_tokens", cfg.Reflection.CritiqueMaxTokens)
	v.Set("reflection.revise_max_tokens", cfg.Reflection.ReviseMaxTokens)
	v.Set("pipeline.max_workers", cfg.Pipeline.MaxWorkers)
	v.Set("retry.max_attempts", cfg.Retry.MaxAttempts)
	v.Set("retry.min_wait", cfg.Retry.MinWait.String())
	v.Set("retry.max_wait", cfg.Retry.MaxWait.String())
	v.Set("retry.multiplier", cfg.Retry.Multiplier)
	v.Set("retry.request_timeout", cfg.Retry.RequestTimeout.String())
	v.Set("history.path", cfg.History.Path)

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// GetHistoryPath resolves the run-history database location.
func GetHistoryPath(cfg *Config) string {
	if cfg.History.Path != "" {
		return cfg.History.Path
	}
	return filepath.Join(getUserDataDir(), "history.db")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "")
	v.SetDefault("anthropic.use_bedrock", false)

	v.SetDefault("validation.sector", "default")
	v.SetDefault("validation.sum_tolerance", 5.0)
	v.SetDefault("validation.growth_warn_ceiling", 200.0)
	v.SetDefault("validation.growth_error_ceiling", 1000.0)

	v.SetDefault("reflection.score_threshold", 85)
	v.SetDefault("reflection.critique_max_tokens", 1500)
	v.SetDefault("reflection.revise_max_tokens", 3000)

	v.SetDefault("pipeline.max_workers", 3)

	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.min_wait", "2s")
	v.SetDefault("retry.max_wait", "10s")
	v.SetDefault("retry.multiplier", 1.5)
	v.SetDefault("retry.request_timeout", "30s")

	v.SetDefault("history.path", "")
}

// getUserConfigDir returns the XDG config directory for reportqa.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "reportqa")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "reportqa")
	}
	return filepath.Join(home, ".config", "reportqa")
}

// getUserDataDir returns the XDG data directory for reportqa.
func getUserDataDir() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "reportqa")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".local", "share", "reportqa")
	}
	return filepath.Join(home, ".local", "share", "reportqa")
}

// findProjectConfig searches for .reportqa.yaml in the current directory and
// parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".reportqa.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Validation: ValidationConfig{
			Sector:             "default",
			SumTolerance:       5,
			GrowthWarnCeiling:  200,
			GrowthErrorCeiling: 1000,
		},
		Reflection: ReflectionConfig{
			ScoreThreshold:    85,
			CritiqueMaxTokens: 1500,
			ReviseMaxTokens:   3000,
		},
		Pipeline: PipelineConfig{
			MaxWorkers: 3,
		},
		Retry: RetryConfig{
			MaxAttempts:    3,
			MinWait:        2 * time.Second,
			MaxWait:        10 * time.Second,
			Multiplier:     1.5,
			RequestTimeout: 30 * time.Second,
		},
	}
}
