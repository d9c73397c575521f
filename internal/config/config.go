// File: internal/config/config.go
// Brief: Flag plumbing and runtime options shared by stackup commands.

// Package config defines the flag plumbing and runtime options shared by
// stackup's commands, translating Cobra/Viper flag values into a strongly
// typed struct that the stack orchestrator and renderers consume.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// Options holds all CLI configuration shared across stackup subcommands.
type Options struct {
	Region       string
	Profile      string
	LogLevel     string
	NoColor      bool
	PollInterval time.Duration
	Timeout      time.Duration
	OutputFormat string
}

// NewOptions returns Options with defaults applied.
func NewOptions() *Options {
	return &Options{
		LogLevel:     "info",
		PollInterval: 5 * time.Second,
		OutputFormat: "yaml",
	}
}

// BindFlags registers the shared flags on the given flag set.
func (o *Options) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Region, "region", o.Region, "AWS region (defaults to the SDK resolution chain)")
	fs.StringVar(&o.Profile, "profile", o.Profile, "AWS shared config profile to use")
	fs.StringVar(&o.LogLevel, "log-level", o.LogLevel, "Log level for stackup output (debug, info, warn, error)")
	fs.BoolVar(&o.NoColor, "no-color", o.NoColor, "Disable colored output")
	fs.DurationVar(&o.PollInterval, "poll-interval", o.PollInterval, "Interval between status polls during long-running operations")
	fs.DurationVar(&o.Timeout, "timeout", o.Timeout, "Abort a long-running operation after this duration (0 waits forever)")
}

// BindOutputFlag registers the output format flag used by read-only commands.
func (o *Options) BindOutputFlag(fs *pflag.FlagSet) {
	fs.StringVarP(&o.OutputFormat, "output", "o", o.OutputFormat, "Output format (yaml or json)")
}

// Validate checks flag combinations that Cobra cannot express on its own.
func (o *Options) Validate() error {
	if o.PollInterval <= 0 {
		return fmt.Errorf("--poll-interval must be positive, got %s", o.PollInterval)
	}
	if o.Timeout < 0 {
		return fmt.Errorf("--timeout must not be negative, got %s", o.Timeout)
	}
	switch o.OutputFormat {
	case "yaml", "json":
	default:
		return fmt.Errorf("unknown output format %q (expected yaml or json)", o.OutputFormat)
	}
	return nil
}
