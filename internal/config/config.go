// Package config holds the engine's tunables and loads them from TOML
// files and environment variables. A missing config file is not an
// error; defaults apply.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "REDLINE_"

// Config is the engine configuration.
type Config struct {
	// User identifies the local author for attribution.
	User UserConfig `toml:"user"`
	// Tracking configures the change-tracking engine.
	Tracking TrackingConfig `toml:"tracking"`
	// History configures the undo/redo manager.
	History HistoryConfig `toml:"history"`
	// LogLevel is debug, info, warn, or error.
	LogLevel string `toml:"log_level"`
}

// UserConfig is the local attribution identity.
type UserConfig struct {
	ID   string `toml:"id"`
	Name string `toml:"name"`
}

// TrackingConfig tunes the change-tracking engine.
type TrackingConfig struct {
	// Enabled turns tracking on at startup.
	Enabled bool `toml:"enabled"`
	// BatchWindowMS is the idle window that closes a batch change.
	BatchWindowMS int `toml:"batch_window_ms"`
}

// HistoryConfig tunes the undo/redo manager.
type HistoryConfig struct {
	// Capacity bounds the snapshot list.
	Capacity int `toml:"capacity"`
	// StrokeThreshold forces a snapshot after this many coalesced
	// keystrokes.
	StrokeThreshold int `toml:"stroke_threshold"`
	// TypingDebounceMS is the idle window that closes a typing run.
	TypingDebounceMS int `toml:"typing_debounce_ms"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		User: UserConfig{
			ID:   "local",
			Name: "Local User",
		},
		Tracking: TrackingConfig{
			Enabled:       true,
			BatchWindowMS: 1000,
		},
		History: HistoryConfig{
			Capacity:         100,
			StrokeThreshold:  25,
			TypingDebounceMS: 800,
		},
		LogLevel: "info",
	}
}

// BatchWindow returns the batch idle window as a duration.
func (c TrackingConfig) BatchWindow() time.Duration {
	return time.Duration(c.BatchWindowMS) * time.Millisecond
}

// TypingDebounce returns the typing idle window as a duration.
func (c HistoryConfig) TypingDebounce() time.Duration {
	return time.Duration(c.TypingDebounceMS) * time.Millisecond
}

// Load reads configuration from path over the defaults, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Defaults apply.
		case err != nil:
			return cfg, fmt.Errorf("reading config file %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overrides fields from REDLINE_* variables.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvPrefix + "USER_ID"); v != "" {
		c.User.ID = v
	}
	if v := os.Getenv(EnvPrefix + "USER_NAME"); v != "" {
		c.User.Name = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v, ok := envInt(EnvPrefix + "BATCH_WINDOW_MS"); ok {
		c.Tracking.BatchWindowMS = v
	}
	if v, ok := envInt(EnvPrefix + "HISTORY_CAPACITY"); ok {
		c.History.Capacity = v
	}
	if v, ok := envInt(EnvPrefix + "STROKE_THRESHOLD"); ok {
		c.History.StrokeThreshold = v
	}
	if v, ok := envInt(EnvPrefix + "TYPING_DEBOUNCE_MS"); ok {
		c.History.TypingDebounceMS = v
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Validate checks ranges and rejects nonsensical settings.
func (c Config) Validate() error {
	if c.Tracking.BatchWindowMS <= 0 {
		return fmt.Errorf("tracking.batch_window_ms must be positive, got %d", c.Tracking.BatchWindowMS)
	}
	if c.History.Capacity <= 0 {
		return fmt.Errorf("history.capacity must be positive, got %d", c.History.Capacity)
	}
	if c.History.StrokeThreshold <= 0 {
		return fmt.Errorf("history.stroke_threshold must be positive, got %d", c.History.StrokeThreshold)
	}
	if c.History.TypingDebounceMS <= 0 {
		return fmt.Errorf("history.typing_debounce_ms must be positive, got %d", c.History.TypingDebounceMS)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}
