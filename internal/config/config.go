// Package config provides configuration management for the tabular CLI.
package config

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/vogtb/go-tabular/packages/spreadsheet"
)

// Defaults
const (
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
	DefaultOutputFormat = "table"
)

// Accepted values
var (
	LogLevels     = []string{"debug", "info", "warn", "error"}
	LogFormats    = []string{"text", "json"}
	OutputFormats = []string{"table", "csv", "markdown", "html"}
)

// Config holds all CLI configuration options.
type Config struct {
	Engine EngineConfig `koanf:"engine"`
	Log    LogConfig    `koanf:"log"`
	Output OutputConfig `koanf:"output"`

	// File is the config file that was read, empty when none was found
	File string `koanf:"-"`
}

// EngineConfig is passed to every table the CLI creates.
type EngineConfig struct {
	MaxDepth int `koanf:"max_depth"`
}

// LogConfig selects the CLI logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// OutputConfig controls how tables are rendered.
type OutputConfig struct {
	Format string `koanf:"format"`
	// Evaluate renders computed values; when false the stored formulas are
	// shown instead
	Evaluate bool `koanf:"evaluate"`
}

// defaults is the lowest configuration layer
func defaults() map[string]interface{} {
	return map[string]interface{}{
		"engine.max_depth": spreadsheet.DefaultMaxDepth,
		"log.level":        DefaultLogLevel,
		"log.format":       DefaultLogFormat,
		"output.format":    DefaultOutputFormat,
		"output.evaluate":  true,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Engine.MaxDepth < 1 {
		return fmt.Errorf("engine.max_depth must be at least 1, got %d", c.Engine.MaxDepth)
	}
	if err := oneOf("log.level", c.Log.Level, LogLevels); err != nil {
		return err
	}
	if err := oneOf("log.format", c.Log.Format, LogFormats); err != nil {
		return err
	}
	return oneOf("output.format", c.Output.Format, OutputFormats)
}

func oneOf(key, value string, allowed []string) error {
	if slices.Contains(allowed, strings.ToLower(value)) {
		return nil
	}
	return fmt.Errorf("invalid %s %q (expected one of: %s)", key, value, strings.Join(allowed, ", "))
}

// SlogLevel maps the configured level name to a slog level.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// TableOptions returns the engine options derived from the config. callers
// add their own logger.
func (c *Config) TableOptions() []spreadsheet.TableOption {
	return []spreadsheet.TableOption{spreadsheet.WithMaxDepth(c.Engine.MaxDepth)}
}
