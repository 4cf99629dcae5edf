// Package config loads and validates search configuration from YAML.
package config

import (
	"os"

	"github.com/XiaoConstantine/mosa-go/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration for a search run.
type Config struct {
	// Search configuration
	Search SearchConfig `yaml:"search" validate:"required"`

	// Archive configuration
	Archive ArchiveConfig `yaml:"archive,omitempty" validate:"omitempty"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging,omitempty" validate:"omitempty"`

	// Reporting configuration
	Report ReportConfig `yaml:"report,omitempty" validate:"omitempty"`
}

// SearchConfig holds the generational search parameters.
type SearchConfig struct {
	// Target population size N
	PopulationSize int `yaml:"population_size" validate:"required,min=1"`

	// Generation budget
	MaxGenerations int `yaml:"max_generations" validate:"required,min=1"`

	// Concurrent candidate evaluations within one generation
	MaxGoroutines int `yaml:"max_goroutines,omitempty" validate:"omitempty,min=1"`

	// RNG seed for the external operators; 0 means time-based
	Seed int64 `yaml:"seed,omitempty"`
}

// ArchiveConfig holds archive replacement policy settings.
type ArchiveConfig struct {
	// Preference used when a goal is covered again: "smaller" keeps the
	// smaller candidate, "first" keeps whichever covered the goal first.
	Preference string `yaml:"preference,omitempty" validate:"omitempty,oneof=smaller first"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	// Severity threshold: DEBUG, INFO, WARN, ERROR or FATAL
	Level string `yaml:"level,omitempty" validate:"omitempty,oneof=DEBUG INFO WARN ERROR FATAL"`

	// Optional log file; console output is always on
	File string `yaml:"file,omitempty"`
}

// ReportConfig holds the reporting sinks.
type ReportConfig struct {
	// Path of the SQLite coverage journal; empty disables it
	JournalPath string `yaml:"journal_path,omitempty"`

	// Directory for Arrow fitness-matrix dumps; empty disables them
	MatrixDir string `yaml:"matrix_dir,omitempty"`
}

// Load reads and validates a Config from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.InvalidInput, "failed to read config file")
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses and validates a Config from YAML bytes. Missing
// optional sections fall back to defaults.
func LoadFromBytes(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, errors.InvalidInput, "failed to parse config")
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
