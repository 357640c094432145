// Package config loads the optional awsmap configuration file. Every field
// is a default the CLI flags can override.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds run defaults.
type Config struct {
	Profile  string   `yaml:"profile,omitempty"`
	Regions  []string `yaml:"regions,omitempty"`
	Services []string `yaml:"services,omitempty"`
	Workers  int      `yaml:"workers,omitempty"`
	Format   string   `yaml:"format,omitempty"`
	// Tags are Key=Value pairs, same syntax as the --tag flag.
	Tags []string `yaml:"tags,omitempty"`
	// IncludeGlobal forces global services into region-restricted scans.
	IncludeGlobal bool `yaml:"include_global,omitempty"`
	// SnapshotPath is where `--snapshot` and `awsmap diff` keep history.
	SnapshotPath string `yaml:"snapshot_path,omitempty"`
}

// Load reads and validates a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is intentional user input
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Validate rejects values the scanner cannot run with.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	switch c.Format {
	case "", "json", "csv", "html":
	default:
		return fmt.Errorf("unsupported format %q", c.Format)
	}
	return nil
}
