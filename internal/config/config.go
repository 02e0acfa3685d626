// Package config loads the bomgraph configuration file.
//
// The file is YAML and strictly parsed: unknown keys are rejected so typos
// ("databse:") fail loudly instead of silently falling back to defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/bomgraph/internal/graph"
	"github.com/roach88/bomgraph/internal/model"
)

// Backend names.
const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
)

// Config is the on-disk configuration.
type Config struct {
	// Backend selects the edge store: "sqlite" (a database file) or
	// "badger" (a directory).
	Backend string `yaml:"backend" validate:"oneof=sqlite badger"`

	// Database is the SQLite file or Badger directory.
	Database string `yaml:"database" validate:"required"`

	// Tenant is the default tenant for CLI commands.
	Tenant string `yaml:"tenant,omitempty" validate:"max=255"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`

	CycleDetection CycleDetection `yaml:"cycle_detection"`

	// MetricsOut is a Prometheus textfile written when a command exits.
	MetricsOut string `yaml:"metrics_out,omitempty"`
}

// CycleDetection tunes the traversal.
type CycleDetection struct {
	// PageSize is the number of edges fetched per traversal step.
	PageSize int `yaml:"page_size" validate:"min=1,max=100000"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Backend:  BackendSQLite,
		Database: "./bomgraph.db",
		LogLevel: "info",
		CycleDetection: CycleDetection{
			PageSize: graph.DefaultPageSize,
		},
	}
}

// Load reads path over Default(). Fields missing from the file keep their
// default values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over Default() and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field.
func (c Config) Validate() error {
	if err := model.ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level. Unknown values map to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
