// Package util provides configuration and logging for cloudscope.
package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	DataDir  string `mapstructure:"data_dir"`
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`

	// Collector API
	APIEndpoint string `mapstructure:"api_endpoint"`
	APIKey      string `mapstructure:"api_key"`

	// Third-party credentials
	IPInfoToken string `mapstructure:"ipinfo_token"`
	ShodanKey   string `mapstructure:"shodan_key"`

	// Scan settings
	ScanCountry   string        `mapstructure:"scan_country"`
	Workers       int           `mapstructure:"workers"`
	BatchSize     int           `mapstructure:"batch_size"`
	ProbeTimeout  time.Duration `mapstructure:"probe_timeout"`
	ProviderCap   int           `mapstructure:"provider_cap"`
	FlushDelay    time.Duration `mapstructure:"flush_delay"`
	ProviderDelay time.Duration `mapstructure:"provider_delay"`

	// Policy knobs; discovery strategies disagree on both, so they are
	// explicit configuration rather than baked-in behavior.
	KeepUnreachable bool `mapstructure:"keep_unreachable"`
	FilterCountry   bool `mapstructure:"filter_country"`

	// Web server
	WebPort int `mapstructure:"web_port"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".cloudscope")

	return &Config{
		DataDir:  dataDir,
		LogLevel: "info",
		LogFile:  filepath.Join(dataDir, "cloudscope.log"),

		APIEndpoint: "http://localhost:8080",
		APIKey:      "",

		ScanCountry:   "FR",
		Workers:       20,
		BatchSize:     50,
		ProbeTimeout:  5 * time.Second,
		ProviderCap:   500,
		FlushDelay:    500 * time.Millisecond,
		ProviderDelay: 2 * time.Second,

		KeepUnreachable: true,
		FilterCountry:   true,

		WebPort: 8080,
	}
}

// LoadConfig loads configuration from file and environment. Environment
// variables use the CLOUDSCOPE_ prefix (CLOUDSCOPE_API_KEY and so on).
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	if err := EnsureDir(cfg.DataDir); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(cfg.DataDir)
	viper.AddConfigPath(".")

	viper.SetDefault("data_dir", cfg.DataDir)
	viper.SetDefault("log_level", cfg.LogLevel)
	viper.SetDefault("log_file", cfg.LogFile)
	viper.SetDefault("api_endpoint", cfg.APIEndpoint)
	viper.SetDefault("scan_country", cfg.ScanCountry)
	viper.SetDefault("workers", cfg.Workers)
	viper.SetDefault("batch_size", cfg.BatchSize)
	viper.SetDefault("probe_timeout", cfg.ProbeTimeout)
	viper.SetDefault("provider_cap", cfg.ProviderCap)
	viper.SetDefault("flush_delay", cfg.FlushDelay)
	viper.SetDefault("provider_delay", cfg.ProviderDelay)
	viper.SetDefault("keep_unreachable", cfg.KeepUnreachable)
	viper.SetDefault("filter_country", cfg.FilterCountry)
	viper.SetDefault("web_port", cfg.WebPort)

	viper.SetEnvPrefix("cloudscope")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// EnsureDir ensures a directory exists.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
