// Package config defines the runtime configuration of the Flowdeck decision
// core and its loader. Configuration is read from YAML with environment
// variable overrides and validated before use.
package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/flowdeck-io/flowdeck/internal/workflow"
)

// Config is the root configuration for the decision core.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Merge   MergeDefaults `mapstructure:"merge" yaml:"merge" validate:"required"`
	Lint    LintConfig    `mapstructure:"lint" yaml:"lint"`
}

// LoggingConfig controls structured log output.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=text json"`
}

// MergeDefaults supplies engine-wide defaults for Merge nodes whose config
// leaves them unset.
type MergeDefaults struct {
	// DefaultTimeoutMillis is applied to merge configs that enable a timeout
	// without specifying ms. 0 disables the fallback.
	DefaultTimeoutMillis int64 `mapstructure:"default_timeout_ms" yaml:"default_timeout_ms" validate:"min=0"`

	// MaxLiveInstances bounds the number of merge instances a single
	// coordinator may hold at once.
	MaxLiveInstances int `mapstructure:"max_live_instances" yaml:"max_live_instances" validate:"min=1,max=100000"`
}

// CoordinatorOptions translates the merge defaults into coordinator options
// for the engine's MergeCoordinator.
func (m MergeDefaults) CoordinatorOptions() []workflow.CoordinatorOption {
	var opts []workflow.CoordinatorOption
	if m.DefaultTimeoutMillis > 0 {
		opts = append(opts, workflow.WithDefaultTimeout(time.Duration(m.DefaultTimeoutMillis)*time.Millisecond))
	}
	if m.MaxLiveInstances > 0 {
		opts = append(opts, workflow.WithMaxLiveInstances(m.MaxLiveInstances))
	}
	return opts
}

// LintConfig controls workflow document linting behavior.
type LintConfig struct {
	// WarningsAsErrors makes advisory findings fail the lint run.
	WarningsAsErrors bool `mapstructure:"warnings_as_errors" yaml:"warnings_as_errors"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Merge: MergeDefaults{
			DefaultTimeoutMillis: 30000,
			MaxLiveInstances:     1024,
		},
	}
}

// Logger builds a slog.Logger from the logging configuration.
func (c *Config) Logger() *slog.Logger {
	var level slog.Level
	switch c.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if c.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
