// Package cli provides configuration commands.
package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/synthlab/synthlink/internal/config"
)

// newConfigCmd creates the 'config' command group.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management (show, set, path)",
	}

	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigSetCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

func configPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.DefaultPath()
}

// newConfigShowCmd creates the 'config show' command.
func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			fmt.Printf("url:              %s\n", cfg.ServiceURL)
			fmt.Printf("api-key:          %s\n", maskKey(cfg.APIKey))
			fmt.Printf("poll-interval:    %ds\n", cfg.Polling.IntervalSeconds)
			fmt.Printf("poll-max-errors:  %d\n", cfg.Polling.MaxErrors)
			fmt.Printf("proxy-mode:       %s\n", cfg.Proxy.Mode)
			if cfg.Proxy.Host != "" {
				fmt.Printf("proxy-host:       %s:%d\n", cfg.Proxy.Host, cfg.Proxy.Port)
			}
			return nil
		},
	}
}

// newConfigSetCmd creates the 'config set' command.
func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value and save it.

Keys: url, api-key, poll-interval, poll-max-errors,
      proxy-mode, proxy-host, proxy-port, proxy-user, no-proxy

Example:
  synthlink config set url http://synth.internal:8000
  synthlink config set poll-interval 5`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}

			key, value := strings.ToLower(args[0]), args[1]
			if err := applySetting(cfg, key, value); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := config.Save(cfg, path); err != nil {
				return err
			}

			fmt.Printf("Set %s in %s\n", key, path)
			return nil
		},
	}
}

// newConfigPathCmd creates the 'config path' command.
func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}
}

func applySetting(cfg *config.Config, key, value string) error {
	switch key {
	case "url":
		cfg.ServiceURL = value
	case "api-key":
		cfg.APIKey = value
	case "poll-interval":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("poll-interval must be a positive integer, got %q", value)
		}
		cfg.Polling.IntervalSeconds = n
	case "poll-max-errors":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("poll-max-errors must be a positive integer, got %q", value)
		}
		cfg.Polling.MaxErrors = n
	case "proxy-mode":
		cfg.Proxy.Mode = value
	case "proxy-host":
		cfg.Proxy.Host = value
	case "proxy-port":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 || n > 65535 {
			return fmt.Errorf("proxy-port must be a port number, got %q", value)
		}
		cfg.Proxy.Port = n
	case "proxy-user":
		cfg.Proxy.User = value
	case "no-proxy":
		cfg.Proxy.NoProxy = value
	default:
		return fmt.Errorf("unknown configuration key %q", key)
	}
	return nil
}

func maskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 6 {
		return "******"
	}
	return key[:3] + "..." + key[len(key)-3:]
}
