// Package config loads caomdb settings from an HCL file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/hclsimple"
)

const (
	DefaultDatabase = "caom.db"
	DefaultWorkers  = 4
	DefaultLevel    = "info"
)

// Config is the top-level configuration file.
type Config struct {
	Database   string         `hcl:"database,optional"`
	DropTables bool           `hcl:"drop_tables,optional"`
	Workers    int            `hcl:"workers,optional"`
	Log        *LogConfig     `hcl:"log,block"`
	Metrics    *MetricsConfig `hcl:"metrics,block"`
}

type LogConfig struct {
	Level  string `hcl:"level,optional"`
	Pretty bool   `hcl:"pretty,optional"`
}

type MetricsConfig struct {
	// Textfile is where batch runs write the registry. Empty disables it.
	Textfile string `hcl:"textfile,optional"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Database: DefaultDatabase,
		Workers:  DefaultWorkers,
		Log:      &LogConfig{Level: DefaultLevel},
		Metrics:  &MetricsConfig{},
	}
}

// Load reads path. A missing file yields Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse decodes HCL source. filename is used in diagnostics and must end in
// .hcl.
func Parse(filename string, src []byte) (*Config, error) {
	if filepath.Ext(filename) != ".hcl" {
		filename += ".hcl"
	}
	cfg := Default()
	if err := hclsimple.Decode(filename, src, nil, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.fill()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fill restores defaults for blocks and attributes the file left empty.
func (c *Config) fill() {
	if c.Database == "" {
		c.Database = DefaultDatabase
	}
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
	if c.Log == nil {
		c.Log = &LogConfig{}
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLevel
	}
	if c.Metrics == nil {
		c.Metrics = &MetricsConfig{}
	}
}

func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	return nil
}
