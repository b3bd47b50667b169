// Package config loads the host runner settings from defaults, an optional
// YAML file and MEMCLOCK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"memclock/internal/clock"

	"github.com/spf13/viper"
)

const (
	DefaultHz    = 60
	DefaultScale = 4
	DefaultStart = "00:00:00"
	DefaultTitle = "Hien thi dong ho"
	MaxScale     = 8
)

// Config holds the host runner settings.
type Config struct {
	Headless bool   `mapstructure:"headless"`
	Hz       int    `mapstructure:"hz"`
	Steps    uint64 `mapstructure:"steps"`
	Dump     bool   `mapstructure:"dump"`
	Scale    int    `mapstructure:"scale"`
	Start    string `mapstructure:"start"`
	Title    string `mapstructure:"title"`

	ConfigPath string `mapstructure:"-"`
}

// DefaultPath returns $HOME/.config/memclock/config.yml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "memclock", "config.yml"), nil
}

// Load reads configPath (or DefaultPath when empty). A missing file is not
// an error. The result is not validated; call Validate after applying
// overrides.
func Load(configPath string) (Config, error) {
	var cfg Config

	v := viper.New()
	v.SetEnvPrefix("MEMCLOCK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("headless", false)
	v.SetDefault("hz", DefaultHz)
	v.SetDefault("steps", 0)
	v.SetDefault("dump", false)
	v.SetDefault("scale", DefaultScale)
	v.SetDefault("start", DefaultStart)
	v.SetDefault("title", DefaultTitle)

	if configPath == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, err
		}
		configPath = p
	}
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	cfg.ConfigPath = v.ConfigFileUsed()
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Hz <= 0 {
		return fmt.Errorf("invalid hz: %d", c.Hz)
	}
	if c.Scale < 1 || c.Scale > MaxScale {
		return fmt.Errorf("invalid scale: %d (want 1..%d)", c.Scale, MaxScale)
	}
	if _, err := clock.Parse(c.Start); err != nil {
		return fmt.Errorf("invalid start: %w", err)
	}
	return nil
}

// StartTime returns the parsed start time.
func (c Config) StartTime() (clock.TimeOfDay, error) {
	return clock.Parse(c.Start)
}
