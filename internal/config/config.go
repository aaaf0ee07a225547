// Package config loads the server configuration from YAML. Unknown keys
// are rejected so a typo fails loudly instead of silently using a default.
package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/justingibbs/crabgrass/internal/registry"
)

// Duration is a time.Duration that unmarshals from YAML strings like "5m"
// or "30s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q", s)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the plain time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full server configuration.
type Config struct {
	// Database is the SQLite path. ":memory:" is valid for throwaway runs.
	Database string `yaml:"database"`

	// Registry optionally points at a CUE file overriding the default
	// event-to-handler wiring.
	Registry string `yaml:"registry"`

	// PollInterval is how long agent loops sleep after an empty batch.
	PollInterval Duration `yaml:"poll_interval"`

	// BatchSize is how many queue items one agent pass claims.
	BatchSize int `yaml:"batch_size"`

	// MaxAttempts is how many processing failures park an item as failed.
	MaxAttempts int `yaml:"max_attempts"`

	// ReclaimAfter is how long a processing claim may stand before the
	// janitor hands the item back to pending.
	ReclaimAfter Duration `yaml:"reclaim_after"`

	// CompletedTTL is how long completed queue items are kept.
	CompletedTTL Duration `yaml:"completed_ttl"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Database:     "crabgrass.db",
		PollInterval: Duration(5 * time.Second),
		BatchSize:    10,
		MaxAttempts:  3,
		ReclaimAfter: Duration(5 * time.Minute),
		CompletedTTL: Duration(24 * time.Hour),
	}
}

// Load reads path and returns the configuration with defaults applied to
// zero values. An empty path returns Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration bytes.
func Parse(data []byte) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, &registry.ConfigurationError{Problems: []string{fmt.Sprintf("config: %v", err)}}
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.Database == "" {
		c.Database = def.Database
	}
	if c.PollInterval == 0 {
		c.PollInterval = def.PollInterval
	}
	if c.BatchSize == 0 {
		c.BatchSize = def.BatchSize
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = def.MaxAttempts
	}
	if c.ReclaimAfter == 0 {
		c.ReclaimAfter = def.ReclaimAfter
	}
	if c.CompletedTTL == 0 {
		c.CompletedTTL = def.CompletedTTL
	}
}

func (c Config) validate() error {
	var problems []string
	if c.PollInterval < 0 {
		problems = append(problems, "poll_interval: must not be negative")
	}
	if c.BatchSize < 1 {
		problems = append(problems, "batch_size: must be at least 1")
	}
	if c.MaxAttempts < 1 {
		problems = append(problems, "max_attempts: must be at least 1")
	}
	if c.ReclaimAfter < 0 {
		problems = append(problems, "reclaim_after: must not be negative")
	}
	if c.CompletedTTL < 0 {
		problems = append(problems, "completed_ttl: must not be negative")
	}
	if len(problems) > 0 {
		return &registry.ConfigurationError{Problems: problems}
	}
	return nil
}
