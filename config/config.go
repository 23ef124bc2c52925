// Package config defines process configuration for cmd/engine.
// Config is loaded from a YAML file with MATCHCORE_* environment overrides.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// bpDivisor converts basis points (1bp = 0.01%) to a decimal.Decimal rate.
var bpDivisor = decimal.NewFromInt(10000)

// Rate converts basis points to a decimal.Decimal rate, e.g. 20bp -> 0.002.
func Rate(bp int) decimal.Decimal {
	return decimal.NewFromInt(int64(bp)).Div(bpDivisor)
}

// Config is the top-level configuration. Maps directly to the YAML file structure.
type Config struct {
	Symbols    []SymbolConfig `mapstructure:"symbols"`
	Fees       FeesConfig     `mapstructure:"fees"`
	Snapshot   SnapshotConfig `mapstructure:"snapshot"`
	Emitter    EmitterConfig  `mapstructure:"emitter"`
	Logging    LoggingConfig  `mapstructure:"logging"`
	Metrics    MetricsConfig  `mapstructure:"metrics"`
}

// SymbolConfig declares a trading pair the engine should accept orders for
// at startup. Symbols submitted later that aren't pre-declared here are
// still accepted lazily by engine.Registry — this list only controls what
// gets a Symbol worker spun up eagerly.
type SymbolConfig struct {
	Name        string `mapstructure:"name"`
	MakerRateBp int    `mapstructure:"maker_rate_bp"`
	TakerRateBp int    `mapstructure:"taker_rate_bp"`
}

// FeesConfig sets the process-wide default maker/taker rates, expressed in
// basis points so the YAML file never carries a raw decimal string.
type FeesConfig struct {
	DefaultMakerRateBp int `mapstructure:"default_maker_rate_bp"`
	DefaultTakerRateBp int `mapstructure:"default_taker_rate_bp"`
}

// SnapshotConfig carries an L2Snapshot depth and a publish interval. Depth is
// checked by Validate; neither field is read by cmd/engine or the emitter,
// and no component publishes snapshots on a timer.
type SnapshotConfig struct {
	Depth    int           `mapstructure:"depth"`
	Interval time.Duration `mapstructure:"interval"`
}

// EmitterConfig sizes the per-subscriber ring buffers of the process-wide
// emitter hub feeding trade/BBO/snapshot subscribers.
type EmitterConfig struct {
	RingCapacity int `mapstructure:"ring_capacity"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// Load reads config from a YAML file with env var overrides. Sensitive
// fields would use MATCHCORE_* env vars the way polymarket-mm's loader uses
// POLY_*; this core has none yet, but the prefix is wired for when a
// persistence DSN or credential is added.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("MATCHCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if lvl := os.Getenv("MATCHCORE_LOGGING_LEVEL"); lvl != "" {
		cfg.Logging.Level = lvl
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("snapshot.depth", 10)
	v.SetDefault("snapshot.interval", 1*time.Second)
	v.SetDefault("emitter.ring_capacity", 4096)
	v.SetDefault("logging.level", "info")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.addr", ":9090")
}

// Validate checks all required fields and value ranges.
func (c *Config) Validate() error {
	if len(c.Symbols) == 0 {
		return fmt.Errorf("at least one entry in symbols is required")
	}
	seen := make(map[string]bool, len(c.Symbols))
	for _, s := range c.Symbols {
		if s.Name == "" {
			return fmt.Errorf("symbols[].name must not be empty")
		}
		if seen[s.Name] {
			return fmt.Errorf("symbols[].name %q duplicated", s.Name)
		}
		seen[s.Name] = true
		if s.MakerRateBp < 0 || s.TakerRateBp < 0 {
			return fmt.Errorf("symbol %q: rate basis points must be >= 0", s.Name)
		}
	}
	if c.Fees.DefaultMakerRateBp < 0 || c.Fees.DefaultTakerRateBp < 0 {
		return fmt.Errorf("fees.default_maker_rate_bp and default_taker_rate_bp must be >= 0")
	}
	if c.Snapshot.Depth <= 0 {
		return fmt.Errorf("snapshot.depth must be > 0")
	}
	if c.Emitter.RingCapacity <= 0 {
		return fmt.Errorf("emitter.ring_capacity must be > 0")
	}
	return nil
}
