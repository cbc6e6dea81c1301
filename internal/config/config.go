// Package config provides configuration management for SynthLink.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/ini.v1"

	"github.com/synthlab/synthlink/internal/constants"
)

// Config holds the client configuration.
//
// Config file location:
//   - Windows: %USERPROFILE%\.config\synthlink\config
//   - Unix: ~/.config/synthlink/config
//
// INI format:
//
//	[service]
//	url = http://localhost:8000
//	api_key = <token>
//
//	[polling]
//	interval_seconds = 3
//	max_errors = 5
//
//	[proxy]
//	mode = no-proxy
//	host =
//	port = 8080
//	user =
//	no_proxy =
type Config struct {
	// Service connection settings
	ServiceURL string `ini:"url"`
	APIKey     string `ini:"api_key"`

	// Polling settings
	Polling PollingConfig

	// Proxy settings
	Proxy ProxyConfig
}

// PollingConfig tunes the remote status poller.
type PollingConfig struct {
	// IntervalSeconds is the delay between status fetches.
	// Minimum: 1, Maximum: 300, Default: 3
	IntervalSeconds int `ini:"interval_seconds"`

	// MaxErrors is the consecutive fetch-failure threshold before a run is
	// failed. Minimum: 1, Default: 5
	MaxErrors int `ini:"max_errors"`
}

// ProxyConfig contains outbound proxy settings for enterprise networks.
type ProxyConfig struct {
	// Mode is one of "no-proxy", "system", "basic" or "ntlm".
	Mode string `ini:"mode"`

	Host     string `ini:"host"`
	Port     int    `ini:"port"`
	User     string `ini:"user"`
	Password string `ini:"password"`

	// NoProxy is a comma-separated bypass list of hosts/CIDRs.
	NoProxy string `ini:"no_proxy"`
}

// Validation errors
var (
	ErrMissingServiceURL = errors.New("service url is required")
	ErrInvalidInterval   = errors.New("polling interval_seconds must be between 1 and 300")
	ErrInvalidMaxErrors  = errors.New("polling max_errors must be between 1 and 100")
	ErrInvalidProxyMode  = errors.New("proxy mode must be one of: no-proxy, system, basic, ntlm")
	ErrMissingProxyHost  = errors.New("proxy host is required for basic/ntlm modes")
)

// Environment variable overrides, applied by Load after file parsing.
const (
	EnvServiceURL = "SYNTHLINK_URL"
	EnvAPIKey     = "SYNTHLINK_API_KEY"
)

// DefaultPath returns the default path for the config file.
func DefaultPath() (string, error) {
	var configDir string

	if runtime.GOOS == "windows" {
		userProfile := os.Getenv("USERPROFILE")
		if userProfile == "" {
			return "", errors.New("USERPROFILE environment variable not set")
		}
		configDir = filepath.Join(userProfile, ".config", "synthlink")
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config", "synthlink")
	}

	return filepath.Join(configDir, "config"), nil
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		ServiceURL: "http://localhost:8000",
		Polling: PollingConfig{
			IntervalSeconds: int(constants.DefaultPollInterval / time.Second),
			MaxErrors:       constants.DefaultMaxPollErrors,
		},
		Proxy: ProxyConfig{
			Mode: "no-proxy",
			Port: 8080,
		},
	}
}

// Load reads configuration from an INI file, then applies environment
// overrides. A missing file is not an error; defaults are returned.
func Load(path string) (*Config, error) {
	cfg := New()

	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			applyEnv(cfg)
			return cfg, nil
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		applyEnv(cfg)
		return cfg, nil
	}

	iniFile, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	service := iniFile.Section("service")
	cfg.ServiceURL = service.Key("url").MustString(cfg.ServiceURL)
	cfg.APIKey = service.Key("api_key").String()

	polling := iniFile.Section("polling")
	cfg.Polling.IntervalSeconds = polling.Key("interval_seconds").MustInt(cfg.Polling.IntervalSeconds)
	cfg.Polling.MaxErrors = polling.Key("max_errors").MustInt(cfg.Polling.MaxErrors)

	proxy := iniFile.Section("proxy")
	cfg.Proxy.Mode = proxy.Key("mode").MustString(cfg.Proxy.Mode)
	cfg.Proxy.Host = proxy.Key("host").String()
	cfg.Proxy.Port = proxy.Key("port").MustInt(cfg.Proxy.Port)
	cfg.Proxy.User = proxy.Key("user").String()
	cfg.Proxy.Password = proxy.Key("password").String()
	cfg.Proxy.NoProxy = proxy.Key("no_proxy").String()

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if url := os.Getenv(EnvServiceURL); url != "" {
		cfg.ServiceURL = url
	}
	if key := os.Getenv(EnvAPIKey); key != "" {
		cfg.APIKey = key
	}
}

// Save writes the configuration to an INI file. Parent directories are
// created as needed and the write is atomic (tmp + rename). The API key is
// stored in the file, so permissions are restricted to the owning user.
func Save(cfg *Config, path string) error {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return fmt.Errorf("failed to determine config path: %w", err)
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	iniFile := ini.Empty()

	service, err := iniFile.NewSection("service")
	if err != nil {
		return fmt.Errorf("failed to create service section: %w", err)
	}
	service.Key("url").SetValue(cfg.ServiceURL)
	service.Key("api_key").SetValue(cfg.APIKey)

	polling, err := iniFile.NewSection("polling")
	if err != nil {
		return fmt.Errorf("failed to create polling section: %w", err)
	}
	polling.Key("interval_seconds").SetValue(fmt.Sprintf("%d", cfg.Polling.IntervalSeconds))
	polling.Key("max_errors").SetValue(fmt.Sprintf("%d", cfg.Polling.MaxErrors))

	proxy, err := iniFile.NewSection("proxy")
	if err != nil {
		return fmt.Errorf("failed to create proxy section: %w", err)
	}
	proxy.Key("mode").SetValue(cfg.Proxy.Mode)
	proxy.Key("host").SetValue(cfg.Proxy.Host)
	proxy.Key("port").SetValue(fmt.Sprintf("%d", cfg.Proxy.Port))
	proxy.Key("user").SetValue(cfg.Proxy.User)
	proxy.Key("no_proxy").SetValue(cfg.Proxy.NoProxy)

	tmpPath := path + ".tmp"
	if err := iniFile.SaveTo(tmpPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if runtime.GOOS != "windows" {
		if err := os.Chmod(tmpPath, 0600); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to set config permissions: %w", err)
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}

// Validate checks the configuration for use by the pipeline.
func (cfg *Config) Validate() error {
	if strings.TrimSpace(cfg.ServiceURL) == "" {
		return ErrMissingServiceURL
	}
	if cfg.Polling.IntervalSeconds < 1 || cfg.Polling.IntervalSeconds > 300 {
		return ErrInvalidInterval
	}
	if cfg.Polling.MaxErrors < 1 || cfg.Polling.MaxErrors > 100 {
		return ErrInvalidMaxErrors
	}

	switch strings.ToLower(cfg.Proxy.Mode) {
	case "", "no-proxy", "system":
	case "basic", "ntlm":
		if strings.TrimSpace(cfg.Proxy.Host) == "" {
			return ErrMissingProxyHost
		}
	default:
		return ErrInvalidProxyMode
	}

	return nil
}

// PollInterval returns the polling interval as a time.Duration.
func (cfg *Config) PollInterval() time.Duration {
	return time.Duration(cfg.Polling.IntervalSeconds) * time.Second
}
