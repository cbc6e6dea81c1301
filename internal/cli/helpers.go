// Package cli provides API client helper functions.
package cli

import (
	"fmt"

	"github.com/synthlab/synthlink/internal/api"
	"github.com/synthlab/synthlink/internal/config"
)

// loadConfig loads configuration, applying global flag overrides on top of
// file and environment values.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config path: %w", err)
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	// Flags take precedence over everything
	if serviceURL != "" {
		cfg.ServiceURL = serviceURL
	}
	if apiKey != "" {
		cfg.APIKey = apiKey
	}

	return cfg, nil
}

// getAPIClient loads configuration and creates an API client.
// This is the standard way to get an API client in CLI commands.
func getAPIClient() (*api.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	client, err := api.NewClient(cfg, GetLogger())
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	return client, nil
}
