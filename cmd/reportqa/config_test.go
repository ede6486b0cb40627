package main

import (
	"testing"
	"time"

	"github.com/raporgen/reportqa/internal/config"
)

func TestSetAndGetConfigValue(t *testing.T) {
	cfg := config.Default()

	tests := []struct {
		key   string
		value string
		want  string
	}{
		{"anthropic.model", "claude-sonnet-4-20250514", "claude-sonnet-4-20250514"},
		{"anthropic.use_bedrock", "true", "true"},
		{"validation.sector", "saas", "saas"},
		{"validation.sum_tolerance", "3.5", "3.5"},
		{"reflection.score_threshold", "90", "90"},
		{"pipeline.max_workers", "5", "5"},
		{"retry.min_wait", "1s", "1s"},
		{"history.path", "/tmp/runs.db", "/tmp/runs.db"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if err := setConfigValue(cfg, tt.key, tt.value); err != nil {
				t.Fatalf("setConfigValue failed: %v", err)
			}
			got, err := getConfigValue(cfg, tt.key)
			if err != nil {
				t.Fatalf("getConfigValue failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("getConfigValue(%s) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}

	if cfg.Retry.MinWait != time.Second {
		t.Errorf("MinWait = %v, want 1s", cfg.Retry.MinWait)
	}
}

func TestSetConfigValueInvalid(t *testing.T) {
	cfg := config.Default()

	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown key", "nope.nope", "x"},
		{"bad bool", "anthropic.use_bedrock", "maybe"},
		{"bad float", "validation.sum_tolerance", "abc"},
		{"bad int", "pipeline.max_workers", "many"},
		{"bad duration", "retry.min_wait", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := setConfigValue(cfg, tt.key, tt.value); err == nil {
				t.Errorf("setConfigValue(%s, %s) should fail", tt.key, tt.value)
			}
		})
	}
}

func TestGetConfigValueMasksAPIKey(t *testing.T) {
	cfg := config.Default()

	got, err := getConfigValue(cfg, "anthropic.api_key")
	if err != nil {
		t.Fatalf("getConfigValue failed: %v", err)
	}
	if got != "(not set)" {
		t.Errorf("empty key display = %q", got)
	}

	cfg.Anthropic.APIKey = "sk-ant-secret"
	got, _ = getConfigValue(cfg, "anthropic.api_key")
	if got != "****" {
		t.Errorf("set key display = %q, want masked", got)
	}
}
