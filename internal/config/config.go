// Package config loads ~/.taskboard/config.toml and applies environment
// overrides on top of it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"taskboard/internal/rollup"
	"taskboard/internal/view"
)

const fileName = "config.toml"

type Rollup struct {
	OverdueWeekdays int `toml:"overdue_weekdays"`
	TrailingDays    int `toml:"trailing_days"`
}

type Config struct {
	DataDir          string `toml:"data_dir"`
	Format           string `toml:"format"`
	ClosedWindowDays int    `toml:"closed_window_days"`
	SortOrder        string `toml:"sort_order"`
	LogLevel         string `toml:"log_level"`
	LogFormat        string `toml:"log_format"`
	Rollup           Rollup `toml:"rollup"`
}

func Default() Config {
	p := rollup.DefaultPolicy()
	return Config{
		Format:           "json",
		ClosedWindowDays: view.DefaultClosedWindowDays,
		SortOrder:        string(view.Oldest),
		LogLevel:         "warn",
		LogFormat:        "text",
		Rollup: Rollup{
			OverdueWeekdays: p.OverdueWeekdays,
			TrailingDays:    p.TrailingDays,
		},
	}
}

// Dir is $TASKBOARD_CONFIG_DIR, else ~/.taskboard.
func Dir() (string, error) {
	if v := strings.TrimSpace(os.Getenv("TASKBOARD_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".taskboard"), nil
}

func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Load decodes path over the defaults. A missing file is not an error.
// An empty path means the default location.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		p, err := Path()
		if err != nil {
			return cfg, nil
		}
		path = p
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Default(), fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from TASKBOARD_DIR, TASKBOARD_FORMAT and
// TASKBOARD_LOG_LEVEL.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv("TASKBOARD_DIR")); v != "" {
		c.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKBOARD_FORMAT")); v != "" {
		c.Format = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKBOARD_LOG_LEVEL")); v != "" {
		c.LogLevel = v
	}
}

func (c Config) validate() error {
	if c.ClosedWindowDays < 0 {
		return fmt.Errorf("closed_window_days must be >= 0, got %d", c.ClosedWindowDays)
	}
	if _, err := view.ParseOrder(c.SortOrder); err != nil {
		return err
	}
	if c.Rollup.OverdueWeekdays < 0 || c.Rollup.TrailingDays < 0 {
		return errors.New("rollup offsets must be >= 0")
	}
	return nil
}

// RollupPolicy falls back to the default for zeroed offsets.
func (c Config) RollupPolicy() rollup.Policy {
	p := rollup.DefaultPolicy()
	if c.Rollup.OverdueWeekdays > 0 {
		p.OverdueWeekdays = c.Rollup.OverdueWeekdays
	}
	if c.Rollup.TrailingDays > 0 {
		p.TrailingDays = c.Rollup.TrailingDays
	}
	return p
}

func (c Config) ClosedWindow() view.ClosedWindow {
	return view.ClosedWindow{Days: c.ClosedWindowDays}
}
