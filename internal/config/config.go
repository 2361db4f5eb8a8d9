package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Level   LevelConfig   `toml:"level"`
	Time    TimeConfig    `toml:"time"`
	Logging LoggingConfig `toml:"logging"`
	Debug   DebugConfig   `toml:"debug"`
}

type LevelConfig struct {
	Definition string        `toml:"definition"` // level YAML
	Script     string        `toml:"script"`     // optional Lua level script
	TickRate   time.Duration `toml:"tick_rate"`
}

type TimeConfig struct {
	RewindSpeed float64 `toml:"rewind_speed"` // default multiplier on frame delta while rewinding
	// TransformInterpolation selects how positions are replayed: "linear" or "none".
	TransformInterpolation string `toml:"transform_interpolation"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type DebugConfig struct {
	Enabled          bool          `toml:"enabled"`
	BindAddress      string        `toml:"bind_address"`
	SnapshotInterval int           `toml:"snapshot_interval"` // ticks between published snapshots
	WriteTimeout     time.Duration `toml:"write_timeout"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(string(data))
}

// Parse decodes a TOML document over the defaults.
func Parse(doc string) (*Config, error) {
	cfg := Defaults()
	if _, err := toml.Decode(doc, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Level.TickRate <= 0 {
		return fmt.Errorf("level.tick_rate must be positive, got %s", c.Level.TickRate)
	}
	if c.Time.RewindSpeed <= 0 {
		return fmt.Errorf("time.rewind_speed must be positive, got %g", c.Time.RewindSpeed)
	}
	switch c.Time.TransformInterpolation {
	case "linear", "none":
	default:
		return fmt.Errorf("time.transform_interpolation: unknown mode %q", c.Time.TransformInterpolation)
	}
	if c.Debug.SnapshotInterval < 1 {
		c.Debug.SnapshotInterval = 1
	}
	return nil
}

func Defaults() *Config {
	return &Config{
		Level: LevelConfig{
			Definition: "data/levels/prototype.yaml",
			Script:     "scripts/prototype.lua",
			TickRate:   time.Second / 60,
		},
		Time: TimeConfig{
			RewindSpeed:            2.0,
			TransformInterpolation: "linear",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Debug: DebugConfig{
			Enabled:          false,
			BindAddress:      "127.0.0.1:7070",
			SnapshotInterval: 6,
			WriteTimeout:     5 * time.Second,
		},
	}
}
