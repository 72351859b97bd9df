// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the variable [Load] reads the config path
// from.
const EnvironmentVariable = "IMMORTAL_CONFIG"

// Config is the configuration shared by both sides of a ring.
type Config struct {
	// WatchdogBinary is the external watchdog executable. A bare name
	// is resolved through PATH at spawn time.
	// Default: immortal-watchdog
	WatchdogBinary string `yaml:"watchdog_binary"`

	// RecordPath is where the external watchdog writes the revival
	// record before replacing itself with the protected program. Empty
	// disables the record. ${VAR} and ${VAR:-default} are expanded, so
	// ${IMMORTAL_RING_ID} keeps rings on one host apart.
	RecordPath string `yaml:"record_path"`

	// RecordMaxAge bounds how old a revival record may be and still be
	// reported on startup.
	// Default: 1m
	RecordMaxAge time.Duration `yaml:"record_max_age"`

	// Log configures the structured logger.
	Log LogConfig `yaml:"log"`

	// Timing overrides individual heartbeat task intervals. Zero
	// fields are derived from the heartbeat interval.
	Timing TimingConfig `yaml:"timing"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: info
	Level string `yaml:"level"`

	// Format is one of auto, json, text. Auto picks text when stderr
	// is a terminal and JSON otherwise.
	// Default: auto
	Format string `yaml:"format"`
}

// TimingConfig holds per-task interval overrides.
type TimingConfig struct {
	Send          time.Duration `yaml:"send"`
	Check         time.Duration `yaml:"check"`
	Revive        time.Duration `yaml:"revive"`
	TerminatePoll time.Duration `yaml:"terminate_poll"`
	RevivePoll    time.Duration `yaml:"revive_poll"`
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"auto", "json", "text"}
)

// Default returns the configuration used when no file is given. Every
// field a file omits keeps its value from here.
func Default() *Config {
	return &Config{
		WatchdogBinary: "immortal-watchdog",
		RecordMaxAge:   time.Minute,
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load loads the file named by IMMORTAL_CONFIG. Unlike LoadFile, an
// unset variable is not an error: a protected program must work with
// no configuration at all, so Load returns Default.
func Load() (*Config, error) {
	path := os.Getenv(EnvironmentVariable)
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from path on top of Default and expands
// variables in path fields.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) expandVariables() {
	c.WatchdogBinary = expandVars(c.WatchdogBinary)
	c.RecordPath = expandVars(c.RecordPath)
}

// varPattern matches ${VAR} and ${VAR:-default}.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

// Validate checks the configuration for errors, reporting all of them.
func (c *Config) Validate() error {
	var errs []error

	if c.WatchdogBinary == "" {
		errs = append(errs, errors.New("watchdog_binary is required"))
	}
	if c.RecordMaxAge <= 0 {
		errs = append(errs, fmt.Errorf("record_max_age must be positive, got %v", c.RecordMaxAge))
	}
	if !slices.Contains(logLevels, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level must be one of: %v", logLevels))
	}
	if !slices.Contains(logFormats, c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format must be one of: %v", logFormats))
	}

	for _, field := range []struct {
		name  string
		value time.Duration
	}{
		{"send", c.Timing.Send},
		{"check", c.Timing.Check},
		{"revive", c.Timing.Revive},
		{"terminate_poll", c.Timing.TerminatePoll},
		{"revive_poll", c.Timing.RevivePoll},
	} {
		if field.value < 0 {
			errs = append(errs, fmt.Errorf("timing.%s must not be negative, got %v", field.name, field.value))
		}
	}

	return errors.Join(errs...)
}
