package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/miles-bartnik/tyr/internal/build"
	"github.com/miles-bartnik/tyr/internal/dialect"
	"github.com/miles-bartnik/tyr/internal/store"
)

// DefaultConfigFile is read from the working directory when --config is
// not given.
const DefaultConfigFile = "tyr.yaml"

// Config is the project configuration file.
//
//	dialect: duckdb
//	specs: ./schema
//	mode: incremental
//	policy: skip_errors
//	targets: [daily]
//	database:
//	  driver: duckdb
//	  dsn: warehouse.db
type Config struct {
	Dialect  string         `yaml:"dialect,omitempty"`
	Specs    string         `yaml:"specs,omitempty"`
	Mode     string         `yaml:"mode,omitempty"`
	Policy   string         `yaml:"policy,omitempty"`
	Targets  []string       `yaml:"targets,omitempty"`
	Database DatabaseConfig `yaml:"database,omitempty"`
}

// DatabaseConfig selects the engine a build runs against.
type DatabaseConfig struct {
	Driver string `yaml:"driver,omitempty"`
	DSN    string `yaml:"dsn,omitempty"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Specs:  ".",
		Mode:   string(build.FullRebuild),
		Policy: string(build.FailFast),
		Database: DatabaseConfig{
			Driver: string(store.DriverDuckDB),
		},
	}
}

// LoadConfig reads a config file. Unknown keys are rejected and a
// relative specs path is taken relative to the file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.Specs != "" && !filepath.IsAbs(cfg.Specs) {
		cfg.Specs = filepath.Join(filepath.Dir(path), cfg.Specs)
	}
	return &cfg, nil
}

// ResolveConfig loads path, or DefaultConfigFile when path is empty and
// the file exists, and fills unset fields with defaults.
func ResolveConfig(path string) (*Config, error) {
	cfg := &Config{}
	switch {
	case path != "":
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	default:
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			loaded, err := LoadConfig(DefaultConfigFile)
			if err != nil {
				return nil, err
			}
			cfg = loaded
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("stat %s: %w", DefaultConfigFile, err)
		}
	}

	cfg.fillDefaults()
	return cfg, nil
}

func (c *Config) fillDefaults() {
	def := DefaultConfig()
	if c.Specs == "" {
		c.Specs = def.Specs
	}
	if c.Mode == "" {
		c.Mode = def.Mode
	}
	if c.Policy == "" {
		c.Policy = def.Policy
	}
	if c.Database.Driver == "" {
		c.Database.Driver = def.Database.Driver
	}
}

// Validate checks every named value and returns the dialect to render
// with. An unset dialect follows the database driver.
func (c *Config) Validate() (*dialect.Dialect, error) {
	driver, err := store.ParseDriver(c.Database.Driver)
	if err != nil {
		return nil, err
	}
	if _, err := build.ParseMode(c.Mode); err != nil {
		return nil, err
	}
	if _, err := build.ParsePolicy(c.Policy); err != nil {
		return nil, err
	}

	name := c.Dialect
	if name == "" {
		name = driver.Dialect()
	}
	return dialect.Lookup(name)
}
