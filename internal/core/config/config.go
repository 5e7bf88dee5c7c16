// Package config handles configuration loading and validation for toaster.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/colonyops/toaster/internal/core/toast"
)

// Config holds the application configuration.
type Config struct {
	Limit       int            `yaml:"limit"`
	RemoveDelay time.Duration  `yaml:"remove_delay"`
	Durations   Durations      `yaml:"durations"`
	Surfaces    []Surface      `yaml:"surfaces"`
	Server      ServerConfig   `yaml:"server"`
	History     HistoryConfig  `yaml:"history"`
	TUI         TUIConfig      `yaml:"tui"`
	Database    DatabaseConfig `yaml:"database"`
	DataDir     string         `yaml:"-"` // set by caller, not from config file
}

// Durations are the auto-dismiss durations per kind. Loading notifications
// never auto-dismiss.
type Durations struct {
	Blank   time.Duration `yaml:"blank"`
	Success time.Duration `yaml:"success"`
	Error   time.Duration `yaml:"error"`
	Custom  time.Duration `yaml:"custom"`
}

// Surface overrides settings for every surface key matching Pattern.
type Surface struct {
	// Pattern matches against the surface key (doublestar glob, "/" separated).
	Pattern  string         `yaml:"pattern"`
	Limit    int            `yaml:"limit"`
	Position toast.Position `yaml:"position"`
}

// ServerConfig configures `toaster serve`.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	Gutter         int      `yaml:"gutter"`
}

// HistoryConfig configures the notification history log.
type HistoryConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Retention     int           `yaml:"retention"` // max rows kept, 0 = unlimited
	MaxAge        time.Duration `yaml:"max_age"`   // 0 disables the age sweep
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// TUIConfig configures the terminal surface.
type TUIConfig struct {
	Position toast.Position `yaml:"position"`
	Width    int            `yaml:"width"`
}

// DatabaseConfig holds SQLite connection settings.
type DatabaseConfig struct {
	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`
	BusyTimeout  int `yaml:"busy_timeout"` // milliseconds
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Limit:       toast.DefaultLimit,
		RemoveDelay: toast.DefaultRemoveDelay,
		Durations: Durations{
			Blank:   toast.DefaultDuration(toast.KindBlank),
			Success: toast.DefaultDuration(toast.KindSuccess),
			Error:   toast.DefaultDuration(toast.KindError),
			Custom:  toast.DefaultDuration(toast.KindCustom),
		},
		Server: ServerConfig{
			Addr:   ":5000",
			Gutter: 8,
		},
		History: HistoryConfig{
			Enabled:       true,
			Retention:     500,
			MaxAge:        7 * 24 * time.Hour,
			SweepInterval: 5 * time.Minute,
		},
		TUI: TUIConfig{
			Position: toast.PositionTopRight,
			Width:    44,
		},
		Database: DatabaseConfig{
			MaxOpenConns: 4,
			MaxIdleConns: 2,
			BusyTimeout:  5000,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.DataDir = dataDir
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Limit == 0 {
		c.Limit = defaults.Limit
	}
	if c.RemoveDelay == 0 {
		c.RemoveDelay = defaults.RemoveDelay
	}
	for _, d := range []struct{ dst, def *time.Duration }{
		{&c.Durations.Blank, &defaults.Durations.Blank},
		{&c.Durations.Success, &defaults.Durations.Success},
		{&c.Durations.Error, &defaults.Durations.Error},
		{&c.Durations.Custom, &defaults.Durations.Custom},
	} {
		if *d.dst == 0 {
			*d.dst = *d.def
		}
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaults.Server.Addr
	}
	if c.Server.Gutter == 0 {
		c.Server.Gutter = defaults.Server.Gutter
	}
	if c.History.SweepInterval == 0 {
		c.History.SweepInterval = defaults.History.SweepInterval
	}
	if c.TUI.Position == "" {
		c.TUI.Position = defaults.TUI.Position
	}
	if c.TUI.Width == 0 {
		c.TUI.Width = defaults.TUI.Width
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}
}

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if c.Limit < 0 {
		return fmt.Errorf("limit must not be negative")
	}

	if c.RemoveDelay < 0 {
		return fmt.Errorf("remove_delay must not be negative")
	}

	if c.History.Retention < 0 {
		return fmt.Errorf("history.retention must not be negative")
	}

	if c.History.SweepInterval < 0 {
		return fmt.Errorf("history.sweep_interval must not be negative")
	}

	if !c.TUI.Position.Valid() {
		return fmt.Errorf("tui.position %q is not a valid position", c.TUI.Position)
	}

	for i, s := range c.Surfaces {
		if s.Pattern == "" {
			return fmt.Errorf("surfaces[%d]: pattern is required", i)
		}
		if s.Limit < 0 {
			return fmt.Errorf("surfaces[%d]: limit must not be negative", i)
		}
		if !s.Position.Valid() {
			return fmt.Errorf("surfaces[%d]: position %q is not a valid position", i, s.Position)
		}
	}

	return nil
}

// KindDurations returns the per-kind auto-dismiss durations.
func (c *Config) KindDurations() map[toast.Kind]time.Duration {
	return map[toast.Kind]time.Duration{
		toast.KindBlank:   c.Durations.Blank,
		toast.KindSuccess: c.Durations.Success,
		toast.KindError:   c.Durations.Error,
		toast.KindCustom:  c.Durations.Custom,
	}
}

// SurfaceFor returns the first surface override whose pattern matches key.
func (c *Config) SurfaceFor(key string) (Surface, bool) {
	for _, s := range c.Surfaces {
		if ok, _ := doublestar.Match(s.Pattern, key); ok {
			return s, true
		}
	}
	return Surface{}, false
}

// SettingsFor returns the store settings for the surface key.
func (c *Config) SettingsFor(key string) toast.Settings {
	settings := toast.Settings{Limit: c.Limit}
	if s, ok := c.SurfaceFor(key); ok && s.Limit > 0 {
		settings.Limit = s.Limit
	}
	return settings
}

// PositionFor returns the default position of notifications on key, falling
// back to fallback when no surface override sets one.
func (c *Config) PositionFor(key string, fallback toast.Position) toast.Position {
	if s, ok := c.SurfaceFor(key); ok && s.Position != "" {
		return s.Position
	}
	return fallback
}
