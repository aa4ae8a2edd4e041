// Package config loads runtime settings from a YAML file with ATMO_*
// environment overrides.
//
// Precedence, lowest first: Default(), the YAML file, the environment.
// Unknown YAML keys are rejected so typos surface at startup.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/roach88/atmo/internal/core"
	"github.com/roach88/atmo/internal/dispatch"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "ATMO_"

// Config holds runtime settings.
type Config struct {
	AbilityCapacity  int           `yaml:"ability_capacity" env:"ABILITY_CAPACITY"`
	CallbackCapacity int           `yaml:"callback_capacity" env:"CALLBACK_CAPACITY"`
	TickCapacity     int           `yaml:"tick_capacity" env:"TICK_CAPACITY"`
	StaticBuffers    bool          `yaml:"static_buffers" env:"STATIC_BUFFERS"`
	AsyncTick        bool          `yaml:"async_tick" env:"ASYNC_TICK"`
	TickInterval     time.Duration `yaml:"tick_interval" env:"TICK_INTERVAL"`
	MaxDispatchDepth int           `yaml:"max_dispatch_depth" env:"MAX_DISPATCH_DEPTH"`
	LogLevel         string        `yaml:"log_level" env:"LOG_LEVEL"`
	MetricsAddr      string        `yaml:"metrics_addr" env:"METRICS_ADDR"`
	JournalPath      string        `yaml:"journal_path" env:"JOURNAL_PATH"`
}

// Default returns the stock embedded settings.
func Default() Config {
	return Config{
		AbilityCapacity:  core.DefaultAbilityCapacity,
		CallbackCapacity: core.DefaultCallbackCapacity,
		TickCapacity:     core.DefaultTickCapacity,
		TickInterval:     core.DefaultTickInterval,
		MaxDispatchDepth: dispatch.DefaultMaxDepth,
		LogLevel:         "info",
	}
}

// Load reads path (skipped when empty), applies the process environment
// and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := decode(bytes.NewReader(data), &cfg); err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg, nil); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Parse decodes YAML from r on top of Default, then applies environ
// instead of the process environment.
func Parse(r io.Reader, environ map[string]string) (Config, error) {
	cfg := Default()
	if err := decode(r, &cfg); err != nil {
		return Config{}, err
	}
	if err := applyEnv(&cfg, environ); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config, environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks ranges.
func (c Config) Validate() error {
	var errs []error
	if c.AbilityCapacity <= 0 {
		errs = append(errs, fmt.Errorf("ability_capacity must be positive, got %d", c.AbilityCapacity))
	}
	if c.CallbackCapacity <= 0 {
		errs = append(errs, fmt.Errorf("callback_capacity must be positive, got %d", c.CallbackCapacity))
	}
	if c.TickCapacity <= 0 {
		errs = append(errs, fmt.Errorf("tick_capacity must be positive, got %d", c.TickCapacity))
	}
	if c.TickInterval < 0 {
		errs = append(errs, fmt.Errorf("tick_interval must not be negative, got %s", c.TickInterval))
	}
	if c.MaxDispatchDepth < 0 {
		errs = append(errs, fmt.Errorf("max_dispatch_depth must not be negative, got %d", c.MaxDispatchDepth))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}

// RuntimeOptions converts the queue settings to core options.
func (c Config) RuntimeOptions() []core.Option {
	return []core.Option{
		core.WithAbilityCapacity(c.AbilityCapacity),
		core.WithCallbackCapacity(c.CallbackCapacity),
		core.WithTickCapacity(c.TickCapacity),
		core.WithStaticBuffers(c.StaticBuffers),
		core.WithAsyncTick(c.AsyncTick),
	}
}

// RegistryOptions converts the dispatch settings to registry options.
func (c Config) RegistryOptions() []dispatch.Option {
	return []dispatch.Option{
		dispatch.WithMaxDepth(c.MaxDispatchDepth),
	}
}
