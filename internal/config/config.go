// Package config loads and validates dabmon configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the root configuration structure
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	History HistoryConfig `mapstructure:"history"`
	Alerts  AlertsConfig  `mapstructure:"alerts"`
	Notify  NotifyConfig  `mapstructure:"notify"`
}

// LogConfig holds logging parameters
type LogConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

// HistoryConfig holds alert history retention parameters
type HistoryConfig struct {
	// DBPath is the SQLite database file for persisted alert history.
	// Empty disables persistence.
	DBPath string `mapstructure:"db_path"`

	// MaxEntries caps the in-memory history; oldest entries are evicted.
	MaxEntries int `mapstructure:"max_entries"`
}

// LoadConfig loads configuration from the default search paths and
// environment variables.
func LoadConfig() (*Config, error) {
	return loadConfig("")
}

// LoadConfigFromPath loads configuration from an explicit file path.
func LoadConfigFromPath(path string) (*Config, error) {
	return loadConfig(path)
}

func loadConfig(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.config/dabmon")
		v.AddConfigPath(".")
	}

	// Environment variable support
	v.AutomaticEnv()
	v.SetEnvPrefix("DABMON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	applyDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file: run on defaults.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Lists cannot be defaulted through viper; fill them in when absent.
	if len(cfg.Alerts.Thresholds) == 0 {
		cfg.Alerts.Thresholds = defaultThresholds()
	}
	if len(cfg.Alerts.Trends) == 0 {
		cfg.Alerts.Trends = defaultTrends()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", "")

	v.SetDefault("history.db_path", defaultDBPath())
	v.SetDefault("history.max_entries", 1000)

	v.SetDefault("alerts.enabled", true)
	v.SetDefault("alerts.trend_window_hours", 24)
	v.SetDefault("alerts.cooldown.enabled", true)
	v.SetDefault("alerts.cooldown.info", 6*time.Hour)
	v.SetDefault("alerts.cooldown.warning", 2*time.Hour)
	v.SetDefault("alerts.cooldown.critical", 45*time.Minute)
	v.SetDefault("alerts.cooldown.emergency", 15*time.Minute)

	v.SetDefault("notify.timeout", 10*time.Second)
	v.SetDefault("notify.webhook.enabled", false)
	v.SetDefault("notify.webhook.max_retries", 3)
	v.SetDefault("notify.email.enabled", false)
	v.SetDefault("notify.email.port", 587)
}

func defaultDBPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.TempDir()
	}
	return filepath.Join(homeDir, ".config", "dabmon", "history.db")
}

// Validate validates the full configuration, failing fast on defects that
// would corrupt classification ordering.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}

	if c.History.MaxEntries < 1 {
		return fmt.Errorf("history.max_entries must be >= 1, got %d", c.History.MaxEntries)
	}

	if err := c.Alerts.Validate(); err != nil {
		return err
	}

	return c.Notify.Validate()
}
