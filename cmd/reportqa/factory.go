package main

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/raporgen/reportqa/internal/api"
	"github.com/raporgen/reportqa/internal/config"
)

// newCollaborator builds the Anthropic-backed collaborator from config.
func newCollaborator(cfg *config.Config) (*api.Collaborator, error) {
	client, err := api.NewClient(api.ClientConfig{
		Model:         anthropic.Model(cfg.Anthropic.Model),
		APIKey:        cfg.Anthropic.APIKey,
		UseAWSBedrock: cfg.Anthropic.UseBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
	})
	if err != nil {
		return nil, fmt.Errorf("create API client: %w", err)
	}

	return api.NewCollaborator(client, api.RetryConfig{
		MaxAttempts:    cfg.Retry.MaxAttempts,
		BaseDelay:      cfg.Retry.MinWait,
		MaxDelay:       cfg.Retry.MaxWait,
		Multiplier:     cfg.Retry.Multiplier,
		RequestTimeout: cfg.Retry.RequestTimeout,
	}), nil
}
