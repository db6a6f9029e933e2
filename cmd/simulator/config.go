package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the engine configuration, loaded from YAML with flag overrides
// applied on top.
type Config struct {
	// ScenarioPath is the JSON scenario to load when starting a new game.
	ScenarioPath string `yaml:"scenario"`

	// DatabasePath is the SQLite file holding saved snapshots.
	DatabasePath string `yaml:"database"`

	// StartTime is the initial game clock for a new game, RFC 3339.
	StartTime string `yaml:"start_time"`

	// PulseSeconds is how much simulation time each pulse requests.
	PulseSeconds int64 `yaml:"pulse_seconds"`

	// MinimumStepSeconds is the scheduler's smallest subpulse.
	MinimumStepSeconds int64 `yaml:"minimum_step_seconds"`

	// Pulses bounds how many pulses the run loop executes; 0 means run
	// until cancelled.
	Pulses int `yaml:"pulses"`

	// MetricsAddr serves Prometheus metrics when non-empty, e.g. ":9090".
	MetricsAddr string `yaml:"metrics_addr"`

	// ResumeLatest loads the most recent snapshot instead of the scenario.
	ResumeLatest bool `yaml:"resume_latest"`
}

// DefaultConfig returns the built-in defaults used when no file or flag
// overrides a field.
func DefaultConfig() Config {
	return Config{
		ScenarioPath:       "configs/scenario.json",
		DatabasePath:       "stellarsim.db",
		StartTime:          "2200-01-01T00:00:00Z",
		PulseSeconds:       3600,
		MinimumStepSeconds: 5,
		MetricsAddr:        "",
	}
}

// LoadConfig reads a YAML config file and merges it over the defaults.
// An empty path returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %q: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot run with.
func (c Config) Validate() error {
	if c.PulseSeconds <= 0 {
		return fmt.Errorf("pulse_seconds must be positive, got %d", c.PulseSeconds)
	}
	if c.MinimumStepSeconds <= 0 {
		return fmt.Errorf("minimum_step_seconds must be positive, got %d", c.MinimumStepSeconds)
	}
	if c.Pulses < 0 {
		return fmt.Errorf("pulses must be non-negative, got %d", c.Pulses)
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database path is required")
	}
	if !c.ResumeLatest && c.ScenarioPath == "" {
		return fmt.Errorf("scenario path is required when not resuming")
	}
	if _, err := c.startTime(); err != nil {
		return err
	}
	return nil
}

func (c Config) startTime() (time.Time, error) {
	t, err := time.Parse(time.RFC3339, c.StartTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse start_time %q: %w", c.StartTime, err)
	}
	return t.UTC(), nil
}
