// Package config loads the application configuration from
// ~/.veloform/config.yaml with VELOFORM_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration.
type Config struct {
	Database  DatabaseConfig
	Log       LogConfig
	Detection DetectionConfig
	History   HistoryConfig
}

// DatabaseConfig selects and parameterizes the store backend.
type DatabaseConfig struct {
	Driver string // "sqlite" or "postgres"
	Path   string // sqlite database file
	URL    string // postgres connection string
}

// LogConfig holds logging preferences.
type LogConfig struct {
	Level string
	File  string // empty logs to stderr
}

// DetectionConfig tunes the trend detectors and the watch loop.
type DetectionConfig struct {
	LookbackDays int
	Interval     time.Duration
}

// HistoryConfig holds default reporting windows.
type HistoryConfig struct {
	DaysBack int
}

// Load reads the configuration. With an empty path it searches the data
// directory for config.yaml and treats a missing file as all-defaults;
// an explicit path must exist. Environment variables such as
// VELOFORM_DATABASE_DRIVER override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("log.level", "info")
	v.SetDefault("detection.lookback_days", 28)
	v.SetDefault("detection.interval", 24*time.Hour)
	v.SetDefault("history.days_back", 90)
	if dir, err := Dir(); err == nil {
		v.SetDefault("database.path", filepath.Join(dir, "data.db"))
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("VELOFORM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	return &Config{
		Database: DatabaseConfig{
			Driver: v.GetString("database.driver"),
			Path:   v.GetString("database.path"),
			URL:    v.GetString("database.url"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
			File:  v.GetString("log.file"),
		},
		Detection: DetectionConfig{
			LookbackDays: v.GetInt("detection.lookback_days"),
			Interval:     v.GetDuration("detection.interval"),
		},
		History: HistoryConfig{
			DaysBack: v.GetInt("history.days_back"),
		},
	}, nil
}

// Validate checks that the loaded values can actually run the program.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return errors.New("database.path is required with the sqlite driver")
		}
	case "postgres":
		if c.Database.URL == "" {
			return errors.New("database.url is required with the postgres driver")
		}
	default:
		return fmt.Errorf("database.driver must be \"sqlite\" or \"postgres\", got %q", c.Database.Driver)
	}
	if c.Detection.LookbackDays <= 0 {
		return fmt.Errorf("detection.lookback_days must be positive, got %d", c.Detection.LookbackDays)
	}
	if c.Detection.Interval <= 0 {
		return fmt.Errorf("detection.interval must be positive, got %s", c.Detection.Interval)
	}
	if c.History.DaysBack <= 0 {
		return fmt.Errorf("history.days_back must be positive, got %d", c.History.DaysBack)
	}
	return nil
}

// Dir returns the per-user data directory, ~/.veloform.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".veloform"), nil
}
