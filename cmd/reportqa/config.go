package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/raporgen/reportqa/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify reportqa configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/reportqa/config.yaml
Project-specific overrides can be placed in .reportqa.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		switch len(args) {
		case 0:
			displayAllConfig(cfg)
		case 1:
			displayConfigKey(cfg, args[0])
		default:
			setConfigKey(cfg, args[0], args[1])
		}
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	// Mask API key if set
	apiKeyDisplay := "(not set)"
	if cfg.Anthropic.APIKey != "" {
		apiKeyDisplay = "****"
	}

	fmt.Printf("anthropic.api_key: %s\n", apiKeyDisplay)
	fmt.Printf("anthropic.model: %s\n", cfg.Anthropic.Model)
	fmt.Printf("anthropic.use_bedrock: %t\n", cfg.Anthropic.UseBedrock)
	fmt.Printf("validation.sector: %s\n", cfg.Validation.Sector)
	fmt.Printf("validation.sum_tolerance: %g\n", cfg.Validation.SumTolerance)
	fmt.Printf("validation.growth_warn_ceiling: %g\n", cfg.Validation.GrowthWarnCeiling)
	fmt.Printf("validation.growth_error_ceiling: %g\n", cfg.Validation.GrowthErrorCeiling)
	fmt.Printf("reflection.score_threshold: %d\n", cfg.Reflection.ScoreThreshold)
	fmt.Printf("pipeline.max_workers: %d\n", cfg.Pipeline.MaxWorkers)
	fmt.Printf("retry.max_attempts: %d\n", cfg.Retry.MaxAttempts)
	fmt.Printf("retry.min_wait: %s\n", cfg.Retry.MinWait)
	fmt.Printf("retry.max_wait: %s\n", cfg.Retry.MaxWait)
	fmt.Printf("history.path: %s\n", cfg.History.Path)
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(cfg *config.Config, key string) {
	value, err := getConfigValue(cfg, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(value)
}

// setConfigKey sets a configuration value and saves the config.
func setConfigKey(cfg *config.Config, key, value string) {
	if err := setConfigValue(cfg, key, value); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Set %s = %s\n", key, value)
}

// getConfigValue returns a configuration value as a string.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch key {
	case "anthropic.api_key":
		if cfg.Anthropic.APIKey == "" {
			return "(not set)", nil
		}
		return "****", nil
	case "anthropic.model":
		return cfg.Anthropic.Model, nil
	case "anthropic.use_bedrock":
		return strconv.FormatBool(cfg.Anthropic.UseBedrock), nil
	case "validation.sector":
		return cfg.Validation.Sector, nil
	case "validation.sum_tolerance":
		return strconv.FormatFloat(cfg.Validation.SumTolerance, 'g', -1, 64), nil
	case "validation.growth_warn_ceiling":
		return strconv.FormatFloat(cfg.Validation.GrowthWarnCeiling, 'g', -1, 64), nil
	case "validation.growth_error_ceiling":
		return strconv.FormatFloat(cfg.Validation.GrowthErrorCeiling, 'g', -1, 64), nil
	case "reflection.score_threshold":
		return strconv.Itoa(cfg.Reflection.ScoreThreshold), nil
	case "pipeline.max_workers":
		return strconv.Itoa(cfg.Pipeline.MaxWorkers), nil
	case "retry.max_attempts":
		return strconv.Itoa(cfg.Retry.MaxAttempts), nil
	case "retry.min_wait":
		return cfg.Retry.MinWait.String(), nil
	case "retry.max_wait":
		return cfg.Retry.MaxWait.String(), nil
	case "history.path":
		return cfg.History.Path, nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// setConfigValue updates a configuration value from its string form.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "anthropic.api_key":
		cfg.Anthropic.APIKey = value
	case "anthropic.model":
		cfg.Anthropic.Model = value
	case "anthropic.use_bedrock":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %s", value)
		}
		cfg.Anthropic.UseBedrock = b
	case "validation.sector":
		cfg.Validation.Sector = value
	case "validation.sum_tolerance":
		return setFloat(&cfg.Validation.SumTolerance, value)
	case "validation.growth_warn_ceiling":
		return setFloat(&cfg.Validation.GrowthWarnCeiling, value)
	case "validation.growth_error_ceiling":
		return setFloat(&cfg.Validation.GrowthErrorCeiling, value)
	case "reflection.score_threshold":
		return setInt(&cfg.Reflection.ScoreThreshold, value)
	case "pipeline.max_workers":
		return setInt(&cfg.Pipeline.MaxWorkers, value)
	case "retry.max_attempts":
		return setInt(&cfg.Retry.MaxAttempts, value)
	case "retry.min_wait":
		return setDuration(&cfg.Retry.MinWait, value)
	case "retry.max_wait":
		return setDuration(&cfg.Retry.MaxWait, value)
	case "history.path":
		cfg.History.Path = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

func setFloat(dst *float64, value string) error {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid number: %s", value)
	}
	*dst = f
	return nil
}

func setInt(dst *int, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid integer: %s", value)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, value string) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid duration: %s", value)
	}
	*dst = d
	return nil
}
